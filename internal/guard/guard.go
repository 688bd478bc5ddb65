// Package guard decides whether a page may render for a session.
// Evaluate is pure; the gin adapter lives in internal/middleware.
package guard

import (
	"salt_portal/internal/model"
	"salt_portal/internal/session"
)

// Outcome is what the caller should do with the page.
type Outcome int

const (
	// Loading means the session is still resolving; show a placeholder.
	Loading Outcome = iota
	Redirect
	Render
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Reasons are stable labels for logs and metrics.
const (
	ReasonLoading         = "loading"
	ReasonUnauthenticated = "unauthenticated"
	ReasonRole            = "role"
	ReasonOnboarding      = "onboarding"
	ReasonSubscription    = "subscription"
	ReasonAllowed         = "allowed"
)

// Requirement is the access rule for one page.
type Requirement struct {
	AllowedRoles        []model.Role `yaml:"allowedRoles,omitempty" json:"allowedRoles,omitempty"`
	RequireOnboarded    bool         `yaml:"requireOnboarded" json:"requireOnboarded"`
	RequireSubscription bool         `yaml:"requireSubscription" json:"requireSubscription"`
	RedirectTo          string       `yaml:"redirectTo,omitempty" json:"redirectTo,omitempty"`
}

// Allows reports whether role passes the role check. An empty list
// allows everyone.
func (r Requirement) Allows(role model.Role) bool {
	if len(r.AllowedRoles) == 0 {
		return true
	}
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Decision is the result of Evaluate. Target is set only for Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
	Reason  string
}

// Evaluate applies the checks in a fixed order; the first failing
// check decides. Nothing renders while the session is loading.
func Evaluate(s session.Snapshot, req Requirement) Decision {
	if s.IsLoading {
		return Decision{Outcome: Loading, Reason: ReasonLoading}
	}

	if !s.IsAuthenticated || s.User == nil {
		target := req.RedirectTo
		if target == "" {
			target = session.PathHome
		}
		return Decision{Outcome: Redirect, Target: target, Reason: ReasonUnauthenticated}
	}

	user := s.User
	if !req.Allows(user.Role) {
		return Decision{Outcome: Redirect, Target: session.PathUnauthorized, Reason: ReasonRole}
	}

	if req.RequireOnboarded && !user.IsOnboarded {
		return Decision{Outcome: Redirect, Target: session.PathOnboarding, Reason: ReasonOnboarding}
	}

	if req.RequireSubscription && !user.HasAccess() {
		return Decision{Outcome: Redirect, Target: session.PathPlans, Reason: ReasonSubscription}
	}

	return Decision{Outcome: Render, Reason: ReasonAllowed}
}
