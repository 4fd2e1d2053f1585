package http

import "github.com/example/helpdesk/internal/session"

// MenuItem is one entry of the sidebar menu.
type MenuItem struct {
	Label  string
	Path   string
	Active bool
}

// menuFor derives the sidebar from the session: Dashboard only appears once
// logged in, and takes Home's place as the active entry for logged-in users.
func menuFor(sess *session.Session, active string) []MenuItem {
	items := []MenuItem{
		{Label: "Home", Path: "/"},
		{Label: "Login as User", Path: "/login"},
		{Label: "Register", Path: "/register"},
		{Label: "Login as Admin", Path: "/admin/login"},
	}
	if sess != nil {
		items = append(items, MenuItem{Label: "Dashboard", Path: "/dashboard"})
		if active == "/" {
			active = "/dashboard"
		}
	}
	for i := range items {
		items[i].Active = items[i].Path == active
	}
	return items
}
