package session

import "salt_portal/internal/model"

// State is the coarse position in the auth state machine.
type State int

const (
	// StateUnknown covers the initial load and any in-flight transition.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// Snapshot is an immutable copy of the session as seen by readers.
// IsAuthenticated is true iff User and Token are both present.
type Snapshot struct {
	User            *model.User `json:"user,omitempty"`
	Token           string      `json:"-"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	Error           string      `json:"error,omitempty"`
}

// State classifies the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.IsAuthenticated:
		return StateAuthenticated
	case s.IsLoading:
		return StateUnknown
	default:
		return StateAnonymous
	}
}

type actionKind int

const (
	actBegin actionKind = iota
	actAuthenticated
	actUserRefreshed
	actAnonymous
	actError
)

type action struct {
	kind  actionKind
	user  *model.User
	token string
	err   string
}

// reduce is the only place a Snapshot changes. Every branch keeps
// IsAuthenticated equal to (User != nil && Token != "").
func reduce(s Snapshot, a action) Snapshot {
	switch a.kind {
	case actBegin:
		s.IsLoading = true
		s.Error = ""
		return s

	case actAuthenticated:
		if a.user == nil || a.token == "" {
			return Snapshot{Error: msgGeneric}
		}
		u := *a.user
		return Snapshot{User: &u, Token: a.token, IsAuthenticated: true}

	case actUserRefreshed:
		if !s.IsAuthenticated || a.user == nil {
			return s
		}
		u := *a.user
		s.User = &u
		return s

	case actAnonymous:
		return Snapshot{Error: a.err}

	case actError:
		s.IsLoading = false
		s.Error = a.err
		return s
	}
	return s
}
