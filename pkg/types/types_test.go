package types

import (
	"context"
	"errors"
	"testing"
)

type mapLocalizer map[string]string

func (m mapLocalizer) Translate(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

func TestResolveRoleAction(t *testing.T) {
	if got := ResolveRoleAction("fromRoleActionAdd"); got != RoleActionGrant {
		t.Fatalf("expected grant, got %s", got)
	}
	for _, flag := range []string{"fromRoleActionRemove", "FROMROLEACTIONADD", "add"} {
		if got := ResolveRoleAction(flag); got != RoleActionRevoke {
			t.Fatalf("expected revoke for %q, got %s", flag, got)
		}
	}
}

func TestIntegrationLabel(t *testing.T) {
	if _, ok := IntegrationLabel(nil); ok {
		t.Fatal("nil localizer must not resolve a label")
	}
	if _, ok := IntegrationLabel(mapLocalizer{}); ok {
		t.Fatal("missing key must not resolve a label")
	}
	if _, ok := IntegrationLabel(mapLocalizer{IntegrationLabelKey: "   "}); ok {
		t.Fatal("blank label must not resolve")
	}
	label, ok := IntegrationLabel(mapLocalizer{IntegrationLabelKey: " Integration "})
	if !ok || label != "Integration" {
		t.Fatalf("expected trimmed label, got %q (%v)", label, ok)
	}
}

func TestRoleGroupMatchesAndBase(t *testing.T) {
	group := RoleGroup{Name: "INTEGRATION"}
	if !group.Matches("integration") {
		t.Fatal("expected case-insensitive match")
	}
	if group.Matches("") {
		t.Fatal("blank label must never match")
	}
	if !(RoleGroup{Name: "BaseGroup"}).IsBase() {
		t.Fatal("expected base group detection to ignore case")
	}
	if (RoleGroup{Name: "Admin"}).Key() != "admin" {
		t.Fatal("expected lower-cased key")
	}
}

func TestGrantedConditions(t *testing.T) {
	granted := NewGrantedConditions("reports", " ", "billing")
	ok, err := granted.Allows(context.Background(), []string{"reports", "billing"})
	if err != nil || !ok {
		t.Fatalf("expected allowed, got %v %v", ok, err)
	}
	ok, _ = granted.Allows(context.Background(), []string{"reports", "admin"})
	if ok {
		t.Fatal("expected missing condition to reject")
	}
	ok, _ = granted.Allows(context.Background(), nil)
	if !ok {
		t.Fatal("roles without conditions must be allowed")
	}
}

func TestParseJobStatus(t *testing.T) {
	if ParseJobStatus(" Pending ") != JobStatusPending {
		t.Fatal("expected pending")
	}
	if ParseJobStatus("unknown") != "" {
		t.Fatal("unknown status must normalize to empty")
	}
}

func TestRichErrorsCarryTextCodes(t *testing.T) {
	err := InsertError(errors.New("constraint"), "TX", 1, 5, 100)
	if !IsTextCode(err, TextCodeInsertFailed) {
		t.Fatalf("expected text code %s", TextCodeInsertFailed)
	}
	if IsTextCode(errors.New("plain"), TextCodeInsertFailed) {
		t.Fatal("plain errors carry no text code")
	}
	if !IsTextCode(ElevationError(nil, ActorRef{OfficeID: 1, UserID: 2}), TextCodeElevationFailed) {
		t.Fatal("expected elevation text code")
	}
}
