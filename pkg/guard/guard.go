// Package guard implements the client-side route authorization gate: a
// pure decision engine that inspects the current session and a static
// route permission table and either permits a navigation or names the
// redirect target. It performs no I/O; callers feed it the in-memory
// session state and act on the returned decision.
package guard

// Default navigation targets.
const (
	LoginPath    = "/login"
	AdminLanding = "/dashboard"
	UserLanding  = "/mytask"
)

// User carries the role signals the guard inspects. A nil *User means no
// session.
type User struct {
	Role     string
	RoleName string
	IsAdmin  bool
}

// AdminAny reports whether any of the three role signals marks the user
// as admin. The OR is deliberate: user records written by older versions
// of the backend may carry inconsistent signals, and the permissive
// reading is the documented policy.
func (u *User) AdminAny() bool {
	return u.Role == "admin" || u.RoleName == "admin" || u.IsAdmin
}

// PermissionTable maps a route path to the set of roles allowed to view
// it. Paths absent from the table are public.
type PermissionTable map[string][]string

// DefaultTable returns the permission table for the standard app routes.
func DefaultTable() PermissionTable {
	return PermissionTable{
		"/dashboard": {"admin"},
		"/tasks":     {"admin"},
		"/users":     {"admin"},
		"/tickets":   {"admin"},
		"/logwork":   {"admin"},
		"/mytask":    {"admin", "user"},
		"/profile":   {"admin", "user"},
	}
}

// Decision is the outcome of evaluating one navigation attempt.
type Decision struct {
	Allow  bool
	Target string // Redirect target when Allow is false
	From   string // Originally requested path, preserved for post-login return
}

// Guard evaluates navigation attempts against a permission table. It is
// an explicit value passed to whoever routes navigations; there is no
// package-level instance.
type Guard struct {
	Table        PermissionTable
	LoginPath    string
	AdminLanding string
	UserLanding  string
}

// New returns a Guard with the default table and targets.
func New() *Guard {
	return &Guard{
		Table:        DefaultTable(),
		LoginPath:    LoginPath,
		AdminLanding: AdminLanding,
		UserLanding:  UserLanding,
	}
}

// Evaluate decides a navigation to a guarded route. A missing session
// redirects to login carrying the requested path; an authenticated user
// whose role is not permitted is sent to their landing page; everything
// else is allowed.
func (g *Guard) Evaluate(u *User, path string) Decision {
	if u == nil {
		return Decision{Target: g.LoginPath, From: path}
	}

	roles, guarded := g.Table[path]
	if !guarded {
		return Decision{Allow: true}
	}

	for _, role := range roles {
		if role == "admin" && u.AdminAny() {
			return Decision{Allow: true}
		}
		if role != "admin" && role == u.Role {
			return Decision{Allow: true}
		}
	}

	return Decision{Target: g.Landing(u)}
}

// EvaluatePublic decides a navigation to an auth form (login, register).
// An existing session is sent to its landing page so authenticated users
// never see the forms; everyone else is allowed.
func (g *Guard) EvaluatePublic(u *User, path string) Decision {
	if u != nil {
		return Decision{Target: g.Landing(u)}
	}
	return Decision{Allow: true}
}

// ResolveRoot maps "/" to the right starting page for the session.
func (g *Guard) ResolveRoot(u *User) string {
	if u == nil {
		return g.LoginPath
	}
	return g.Landing(u)
}

// Landing returns the role-appropriate default page.
func (g *Guard) Landing(u *User) string {
	if u.AdminAny() {
		return g.AdminLanding
	}
	return g.UserLanding
}
