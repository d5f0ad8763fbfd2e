package navigation

import "github.com/yigit/nhance/internal/app/session"

// Action is what the shell does with a route
type Action string

const (
	// ActionWait renders nothing until the session settles
	ActionWait     Action = "wait"
	ActionRedirect Action = "redirect"
	ActionRender   Action = "render"
)

// Decision is the gate's verdict for one navigation
type Decision struct {
	Action   Action `json:"action"`
	Location string `json:"location,omitempty"`
}

// Gate applies the access rules: public routes always render, protected
// routes wait while the session is undetermined, send anonymous visitors to
// the login page and non-admins away from admin pages.
type Gate struct{}

// Decide returns the decision for route given the session
func (Gate) Decide(state session.State, user *session.User, route Route) Decision {
	if !route.RequiresAuth {
		return Decision{Action: ActionRender}
	}
	if state.Undetermined() {
		return Decision{Action: ActionWait}
	}
	if state != session.Authenticated || user == nil {
		return Decision{Action: ActionRedirect, Location: LoginPath}
	}
	if route.AdminOnly && !user.IsAdmin {
		return Decision{Action: ActionRedirect, Location: HomePath}
	}
	return Decision{Action: ActionRender}
}

// Navigate resolves path and decides in one step
func (g Gate) Navigate(snapshot session.Snapshot, path string) (Match, Decision) {
	m := Resolve(path)
	return m, g.Decide(snapshot.State, snapshot.User, m.Route)
}
