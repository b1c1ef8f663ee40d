package rolegraph

import (
	"strconv"
	"strings"
)

// Instruction is one statement of the client-side validator script.
type Instruction interface {
	appendTo(b *strings.Builder)
}

// DependsInstr declares that selecting RoleID also requires DependsOn.
type DependsInstr struct {
	RoleID    int64
	DependsOn []int64
}

// ParentInstr declares the parents that must be selected before RoleID.
type ParentInstr struct {
	RoleID  int64
	Parents []int64
}

// GroupRoleInstr binds a rendered role row to its group.
type GroupRoleInstr struct {
	RoleID int64
	Group  string
}

// GroupDeclInstr declares a role group with its selection bounds.
type GroupDeclInstr struct {
	Name        string
	Description string
	Min         int
	Max         int
}

func (i DependsInstr) appendTo(b *strings.Builder) {
	b.WriteString("addDepends(")
	b.WriteString(strconv.FormatInt(i.RoleID, 10))
	b.WriteString(",[")
	writeIDs(b, i.DependsOn)
	b.WriteString("]);")
}

func (i ParentInstr) appendTo(b *strings.Builder) {
	b.WriteString("addParent(")
	b.WriteString(strconv.FormatInt(i.RoleID, 10))
	b.WriteString(",[")
	writeIDs(b, i.Parents)
	b.WriteString("]);")
}

func (i GroupRoleInstr) appendTo(b *strings.Builder) {
	b.WriteString("addGroupRole(")
	b.WriteString(strconv.FormatInt(i.RoleID, 10))
	b.WriteString(",'")
	b.WriteString(quote(i.Group))
	b.WriteString("');\n")
}

func (i GroupDeclInstr) appendTo(b *strings.Builder) {
	b.WriteString("addGroup('")
	b.WriteString(quote(i.Name))
	b.WriteString("','")
	b.WriteString(quote(i.Description))
	b.WriteString("',")
	b.WriteString(strconv.Itoa(i.Min))
	b.WriteString(",")
	b.WriteString(strconv.Itoa(i.Max))
	b.WriteString(");\n")
}

// Script is the ordered instruction sequence produced by a build.
type Script []Instruction

// String serializes the script in instruction order.
func (s Script) String() string {
	var b strings.Builder
	for _, instr := range s {
		if instr == nil {
			continue
		}
		instr.appendTo(&b)
	}
	return b.String()
}

// Render serializes a single instruction.
func Render(instr Instruction) string {
	if instr == nil {
		return ""
	}
	var b strings.Builder
	instr.appendTo(&b)
	return b.String()
}

func writeIDs(b *strings.Builder, ids []int64) {
	for idx, id := range ids {
		if idx > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
}

// quote escapes values embedded in single-quoted script literals.
func quote(value string) string {
	if !strings.ContainsAny(value, `'\`+"\n\r") {
		return value
	}
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return replacer.Replace(value)
}
