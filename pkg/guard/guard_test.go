package guard

import "testing"

func TestEvaluateUnauthenticated(t *testing.T) {
	g := New()

	// Every guarded route redirects to login and preserves the origin.
	for path := range g.Table {
		d := g.Evaluate(nil, path)
		if d.Allow {
			t.Errorf("%s: unauthenticated navigation should not be allowed", path)
		}
		if d.Target != LoginPath {
			t.Errorf("%s: target = %q, want %q", path, d.Target, LoginPath)
		}
		if d.From != path {
			t.Errorf("%s: from = %q, requested path must be preserved", path, d.From)
		}
	}
}

func TestEvaluateAdminRoutes(t *testing.T) {
	g := New()

	tests := []struct {
		name  string
		user  *User
		allow bool
	}{
		{"plain user", &User{Role: "user", RoleName: "user"}, false},
		{"role admin", &User{Role: "admin", RoleName: "user"}, true},
		{"role name admin", &User{Role: "user", RoleName: "admin"}, true},
		{"is_admin flag only", &User{Role: "user", RoleName: "user", IsAdmin: true}, true},
		{"all signals", &User{Role: "admin", RoleName: "admin", IsAdmin: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Evaluate(tt.user, "/dashboard")
			if d.Allow != tt.allow {
				t.Fatalf("allow = %v, want %v", d.Allow, tt.allow)
			}
			if !tt.allow && d.Target != UserLanding {
				t.Errorf("denied admin route should land on %q, got %q", UserLanding, d.Target)
			}
		})
	}
}

func TestEvaluateSharedAndPublicRoutes(t *testing.T) {
	g := New()
	user := &User{Role: "user", RoleName: "user"}
	admin := &User{Role: "admin", RoleName: "admin", IsAdmin: true}

	for _, u := range []*User{user, admin} {
		for _, path := range []string{"/mytask", "/profile"} {
			if d := g.Evaluate(u, path); !d.Allow {
				t.Errorf("%s should be open to role %q", path, u.Role)
			}
		}
	}

	// Routes absent from the table are public.
	if d := g.Evaluate(user, "/about"); !d.Allow {
		t.Error("untabled route should be allowed")
	}
}

func TestEvaluatePublic(t *testing.T) {
	g := New()

	if d := g.EvaluatePublic(nil, "/login"); !d.Allow {
		t.Error("anonymous visitor should see the login form")
	}

	d := g.EvaluatePublic(&User{Role: "user", RoleName: "user"}, "/login")
	if d.Allow || d.Target != UserLanding {
		t.Errorf("logged-in user on /login: %+v, want redirect to %q", d, UserLanding)
	}

	d = g.EvaluatePublic(&User{Role: "admin"}, "/register")
	if d.Allow || d.Target != AdminLanding {
		t.Errorf("admin on /register: %+v, want redirect to %q", d, AdminLanding)
	}
}

func TestResolveRoot(t *testing.T) {
	g := New()

	tests := []struct {
		name string
		user *User
		want string
	}{
		{"no session", nil, LoginPath},
		{"user", &User{Role: "user", RoleName: "user"}, UserLanding},
		{"admin", &User{Role: "admin", RoleName: "admin", IsAdmin: true}, AdminLanding},
		{"stale is_admin flag", &User{Role: "user", RoleName: "user", IsAdmin: true}, AdminLanding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ResolveRoot(tt.user); got != tt.want {
				t.Errorf("ResolveRoot() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCustomTable(t *testing.T) {
	g := &Guard{
		Table:        PermissionTable{"/reports": {"admin"}},
		LoginPath:    "/signin",
		AdminLanding: "/admin",
		UserLanding:  "/home",
	}

	d := g.Evaluate(nil, "/reports")
	if d.Target != "/signin" || d.From != "/reports" {
		t.Errorf("custom login path not honored: %+v", d)
	}

	d = g.Evaluate(&User{Role: "user", RoleName: "user"}, "/reports")
	if d.Allow || d.Target != "/home" {
		t.Errorf("custom user landing not honored: %+v", d)
	}
}
