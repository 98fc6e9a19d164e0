package models

import "testing"

func TestAdminAny(t *testing.T) {
	tests := []struct {
		name string
		user User
		want bool
	}{
		{"all signals set", User{Role: RoleAdmin, RoleName: "admin", IsAdmin: true}, true},
		{"role only", User{Role: RoleAdmin, RoleName: "user", IsAdmin: false}, true},
		{"role name only", User{Role: RoleUser, RoleName: "admin", IsAdmin: false}, true},
		{"is_admin flag only", User{Role: RoleUser, RoleName: "user", IsAdmin: true}, true},
		{"no signals", User{Role: RoleUser, RoleName: "user", IsAdmin: false}, false},
		{"zero value", User{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.AdminAny(); got != tt.want {
				t.Errorf("AdminAny() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSyncRoleMirrors(t *testing.T) {
	t.Run("admin role sets both mirrors", func(t *testing.T) {
		u := User{Role: RoleAdmin}
		u.SyncRoleMirrors()
		if u.RoleName != "admin" {
			t.Errorf("RoleName = %q, want %q", u.RoleName, "admin")
		}
		if !u.IsAdmin {
			t.Error("IsAdmin = false, want true")
		}
	})

	t.Run("user role clears both mirrors", func(t *testing.T) {
		u := User{Role: RoleUser, RoleName: "admin", IsAdmin: true}
		u.SyncRoleMirrors()
		if u.RoleName != "user" {
			t.Errorf("RoleName = %q, want %q", u.RoleName, "user")
		}
		if u.IsAdmin {
			t.Error("IsAdmin = true, want false")
		}
	})

	t.Run("synced user agrees with AdminAny", func(t *testing.T) {
		u := User{Role: RoleUser, IsAdmin: true}
		u.SyncRoleMirrors()
		if u.AdminAny() {
			t.Error("synced non-admin user should not satisfy AdminAny")
		}
	})
}
