package domain

// Public view paths.
const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathSignup         = "/signup"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathVerify2FA      = "/verify-2fa"
)

// SearchScope names the backend search endpoint a role may query.
type SearchScope string

const (
	SearchNone    SearchScope = ""
	SearchGlobal  SearchScope = "admin_global"
	SearchSpots   SearchScope = "staff_spots"
	SearchAccount SearchScope = "user_account"
)

// Page is a routable view inside a role subtree.
type Page struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// NavLink is one side-navigation entry.
type NavLink struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Capability is everything the router, the guard and the search panel need
// to know about a role. It is the only place role-keyed behaviour lives.
type Capability struct {
	Role    Role
	Prefix  string
	Pages   []Page
	Sidebar []NavLink
	Search  SearchScope
	// QuickActions are shown when the search query is empty or yields nothing.
	QuickActions []SearchResult
}

// DefaultRoute is the landing view of the role subtree.
func (c Capability) DefaultRoute() string {
	return c.PagePath("dashboard")
}

// PagePath joins the subtree prefix and a page slug.
func (c Capability) PagePath(slug string) string {
	return c.Prefix + "/" + slug
}

// Page looks a slug up in the subtree.
func (c Capability) Page(slug string) (Page, bool) {
	for _, p := range c.Pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

var capabilityOrder = []Role{RoleAdmin, RoleStaff, RoleUser}

var capabilities = map[Role]Capability{
	RoleAdmin: {
		Role:   RoleAdmin,
		Prefix: "/admin",
		Pages: []Page{
			{Slug: "dashboard", Title: "Admin Dashboard"},
			{Slug: "users", Title: "Users"},
			{Slug: "spots", Title: "Parking Spots"},
			{Slug: "spots/add", Title: "Add Parking Spot"},
			{Slug: "reports", Title: "Reports"},
			{Slug: "profile", Title: "Profile"},
		},
		Sidebar: []NavLink{
			{Label: "Dashboard", Path: "/admin/dashboard"},
			{Label: "Users", Path: "/admin/users"},
			{Label: "Parking Spots", Path: "/admin/spots"},
			{Label: "Reports", Path: "/admin/reports"},
			{Label: "Profile", Path: "/admin/profile"},
		},
		Search: SearchGlobal,
		QuickActions: []SearchResult{
			{ID: "admin-dashboard", Title: "Admin Dashboard", Subtitle: "System overview", Category: CategoryActions, Target: "/admin/dashboard"},
			{ID: "admin-users", Title: "Manage Users", Subtitle: "View and manage all users", Category: CategoryActions, Target: "/admin/users"},
			{ID: "admin-spots", Title: "Manage Parking Spots", Subtitle: "Configure parking spots", Category: CategoryActions, Target: "/admin/spots"},
			{ID: "admin-reports", Title: "View Reports", Subtitle: "Revenue and analytics", Category: CategoryActions, Target: "/admin/reports"},
		},
	},
	RoleStaff: {
		Role:   RoleStaff,
		Prefix: "/staff",
		Pages: []Page{
			{Slug: "dashboard", Title: "Staff Dashboard"},
			{Slug: "assign", Title: "Assign Spot"},
			{Slug: "exit", Title: "Process Exit"},
			{Slug: "spots", Title: "Parking Spots"},
			{Slug: "payments", Title: "Payments"},
			{Slug: "profile", Title: "Profile"},
		},
		Sidebar: []NavLink{
			{Label: "Dashboard", Path: "/staff/dashboard"},
			{Label: "Assign Spot", Path: "/staff/assign"},
			{Label: "Process Exit", Path: "/staff/exit"},
			{Label: "Profile", Path: "/staff/profile"},
		},
		Search: SearchSpots,
		QuickActions: []SearchResult{
			{ID: "staff-dashboard", Title: "Staff Dashboard", Subtitle: "Parking operations overview", Category: CategoryActions, Target: "/staff/dashboard"},
			{ID: "staff-spots", Title: "View Spots", Subtitle: "Check parking availability", Category: CategoryActions, Target: "/staff/spots"},
		},
	},
	RoleUser: {
		Role:   RoleUser,
		Prefix: "/user",
		Pages: []Page{
			{Slug: "dashboard", Title: "My Dashboard"},
			{Slug: "reservations", Title: "Reservations"},
			{Slug: "vehicles", Title: "My Vehicles"},
			{Slug: "payments", Title: "Payments"},
			{Slug: "spots", Title: "Parking Spots"},
			{Slug: "history", Title: "History"},
			{Slug: "profile", Title: "Profile"},
		},
		Sidebar: []NavLink{
			{Label: "Dashboard", Path: "/user/dashboard"},
			{Label: "Reservations", Path: "/user/reservations"},
			{Label: "My Vehicles", Path: "/user/vehicles"},
			{Label: "Parking Spots", Path: "/user/spots"},
			{Label: "Profile", Path: "/user/profile"},
		},
		Search: SearchAccount,
		QuickActions: []SearchResult{
			{ID: "user-dashboard", Title: "My Dashboard", Subtitle: "Your parking activity", Category: CategoryActions, Target: "/user/dashboard"},
			{ID: "user-spots", Title: "Available Spots", Subtitle: "Find parking", Category: CategoryActions, Target: "/user/spots"},
			{ID: "user-vehicles", Title: "My Vehicles", Subtitle: "Manage your vehicles", Category: CategoryActions, Target: "/user/vehicles"},
			{ID: "user-reservations", Title: "My Reservations", Subtitle: "View your bookings", Category: CategoryActions, Target: "/user/reservations"},
		},
	},
}

// CapabilityFor returns the capability of a known role.
func CapabilityFor(r Role) (Capability, bool) {
	c, ok := capabilities[r]
	return c, ok
}

// Capabilities lists every role subtree in a stable order.
func Capabilities() []Capability {
	out := make([]Capability, 0, len(capabilityOrder))
	for _, r := range capabilityOrder {
		out = append(out, capabilities[r])
	}
	return out
}

// DefaultRouteFor is where "/" sends an authenticated identity. Anything that
// is not ADMIN or STAFF lands on the user dashboard.
func DefaultRouteFor(r Role) string {
	c, ok := capabilities[r]
	if !ok {
		c = capabilities[RoleUser]
	}
	return c.DefaultRoute()
}

// QuickActionsFor returns a copy of the role's shortcut list; nil for
// unknown roles.
func QuickActionsFor(r Role) []SearchResult {
	c, ok := capabilities[r]
	if !ok {
		return nil
	}
	out := make([]SearchResult, len(c.QuickActions))
	copy(out, c.QuickActions)
	return out
}
