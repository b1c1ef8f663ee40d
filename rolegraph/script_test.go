package rolegraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstructionGrammar(t *testing.T) {
	cases := []struct {
		name  string
		instr Instruction
		want  string
	}{
		{"depends", DependsInstr{RoleID: 10, DependsOn: []int64{11, 12}}, "addDepends(10,[11,12]);"},
		{"parent", ParentInstr{RoleID: 10, Parents: []int64{137}}, "addParent(10,[137]);"},
		{"group role", GroupRoleInstr{RoleID: 10, Group: "Users"}, "addGroupRole(10,'Users');\n"},
		{"group decl", GroupDeclInstr{Name: "Users", Description: "User roles", Min: 0, Max: 3}, "addGroup('Users','User roles',0,3);\n"},
		{"quoted", GroupDeclInstr{Name: "Ops", Description: "Operator's roles", Min: 1, Max: 1}, `addGroup('Ops','Operator\'s roles',1,1);` + "\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Render(tc.instr))
		})
	}
}

func TestScriptStringConcatenatesInOrder(t *testing.T) {
	script := Script{
		DependsInstr{RoleID: 1, DependsOn: []int64{2}},
		nil,
		GroupRoleInstr{RoleID: 1, Group: "g"},
		GroupDeclInstr{Name: "g", Description: "d", Min: 0, Max: 5},
	}
	require.Equal(t, "addDepends(1,[2]);addGroupRole(1,'g');\naddGroup('g','d',0,5);\n", script.String())
	require.Empty(t, Render(nil))
}
