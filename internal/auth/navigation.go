package auth

import "github.com/creditor/creditor_console/internal/identity"

// NavItem is one entry of the console navigation.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

var (
	commonNav = []NavItem{
		{Key: "dashboard", Label: "Dashboard", Path: "/dashboard"},
		{Key: "loans", Label: "Loans", Path: "/loans"},
		{Key: "transactions", Label: "Transactions", Path: "/transactions"},
	}
	adminNav = []NavItem{
		{Key: "users", Label: "Users", Path: "/users"},
		{Key: "customers", Label: "Customers", Path: "/customers"},
		{Key: "employees", Label: "Employees", Path: "/employees"},
	}
	profileNav = NavItem{Key: "profile", Label: "Profile", Path: "/profile"}
)

// Navigation lists the affordances shown to role. Hiding an entry is
// cosmetic; the lending API enforces access itself.
func Navigation(role identity.Role) []NavItem {
	items := append([]NavItem(nil), commonNav...)
	if role == identity.RoleAdmin {
		items = append(items, adminNav...)
	}
	return append(items, profileNav)
}
