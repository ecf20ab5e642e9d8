package auth

import "testing"

func TestParseRoleCaseInsensitive(t *testing.T) {
	if ParseRole("ADMIN") != RoleAdmin {
		t.Fatal("expected ADMIN to parse as admin")
	}
	if ParseRole("  Hr ") != RoleHR {
		t.Fatal("expected padded Hr to parse as hr")
	}
	if ParseRole("md") != RoleMD {
		t.Fatal("expected md to parse")
	}
}

func TestParseRoleUnknown(t *testing.T) {
	role := ParseRole("superuser")
	if role != RoleUnknown {
		t.Fatalf("expected unknown role, got %q", role)
	}
	if role.Valid() {
		t.Fatal("unknown role must not be valid")
	}
}

func TestElevatedRoles(t *testing.T) {
	if !RoleAdmin.Elevated() || !RoleHR.Elevated() {
		t.Fatal("admin and hr are elevated")
	}
	for _, role := range []Role{RoleManager, RoleHead, RoleMD, RoleStaff, RoleUser} {
		if role.Elevated() {
			t.Fatalf("role %q must not be elevated by itself", role)
		}
	}
}
