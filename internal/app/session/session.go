// Package session models the client-side view of authentication: a small
// state machine plus an observable tracker that components subscribe to
// instead of reading a global.
package session

import (
	"sync"

	"github.com/yigit/nhance/internal/app/catalog"
)

// State is where the client is in the authentication lifecycle
type State int

const (
	// AnonymousLoading is the initial state while the first session check runs
	AnonymousLoading State = iota
	Anonymous
	// AuthenticatingSession covers a sign-in whose profile lookup is pending
	AuthenticatingSession
	Authenticated
)

func (s State) String() string {
	switch s {
	case AnonymousLoading:
		return "anonymous_loading"
	case Anonymous:
		return "anonymous"
	case AuthenticatingSession:
		return "authenticating_session"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Undetermined reports whether the session may still turn out either way.
// Protected views render nothing in these states.
func (s State) Undetermined() bool {
	return s == AnonymousLoading || s == AuthenticatingSession
}

// User is the signed-in user as the client sees it
type User struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Branch  catalog.Branch `json:"branch"`
	IsAdmin bool           `json:"isAdmin"`
}

// Snapshot is the observable value: state plus the user when Authenticated
type Snapshot struct {
	State State
	User  *User
}

// Listener receives every snapshot after it is applied
type Listener func(Snapshot)

// Tracker holds the current session and notifies subscribers of changes
type Tracker struct {
	mu        sync.RWMutex
	current   Snapshot
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewTracker starts in AnonymousLoading
func NewTracker() *Tracker {
	return &Tracker{
		current:   Snapshot{State: AnonymousLoading},
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns an id for Unsubscribe. l is not called
// with the current value; read Current for that.
func (t *Tracker) Subscribe(l Listener) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.listeners[t.nextID] = l
	t.order = append(t.order, t.nextID)
	return t.nextID
}

// Unsubscribe removes a listener; unknown ids are ignored
func (t *Tracker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[id]; !ok {
		return
	}
	delete(t.listeners, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Current returns the latest snapshot
func (t *Tracker) Current() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// set applies a snapshot and notifies listeners in subscription order,
// outside the lock so listeners may read Current.
func (t *Tracker) set(s Snapshot) {
	if s.State != Authenticated {
		s.User = nil
	}

	t.mu.Lock()
	t.current = s
	listeners := make([]Listener, 0, len(t.order))
	for _, id := range t.order {
		listeners = append(listeners, t.listeners[id])
	}
	t.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}

// Begin restarts the lifecycle, as on process start
func (t *Tracker) Begin() {
	t.set(Snapshot{State: AnonymousLoading})
}

// StartLogin marks a sign-in as in flight
func (t *Tracker) StartLogin() {
	t.set(Snapshot{State: AuthenticatingSession})
}

// Resolve ends a session check or sign-in. A nil user, as after a failed
// profile lookup, leaves the session Anonymous.
func (t *Tracker) Resolve(user *User) {
	if user == nil {
		t.set(Snapshot{State: Anonymous})
		return
	}
	u := *user
	t.set(Snapshot{State: Authenticated, User: &u})
}

// Logout drops the user
func (t *Tracker) Logout() {
	t.set(Snapshot{State: Anonymous})
}
