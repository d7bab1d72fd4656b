package session

import "github.com/creditor/creditor_console/internal/identity"

// State is the lifecycle position of a Manager.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
)

// Snapshot is a consistent view of a manager at one point in time.
type Snapshot struct {
	State State          `json:"state"`
	User  *identity.User `json:"user,omitempty"`
}

// Authenticated reports whether the snapshot carries a live identity.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}
