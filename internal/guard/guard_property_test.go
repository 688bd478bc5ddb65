package guard

import (
	"testing"

	"pgregory.net/rapid"

	"salt_portal/internal/model"
	"salt_portal/internal/session"
)

func genUser(t *rapid.T) *model.User {
	return &model.User{
		ID:            "u1",
		Role:          rapid.SampledFrom(model.Roles).Draw(t, "role"),
		IsOnboarded:   rapid.Bool().Draw(t, "onboarded"),
		IsSubscribed:  rapid.Bool().Draw(t, "subscribed"),
		IsTrialActive: rapid.Bool().Draw(t, "trial"),
	}
}

func genRequirement(t *rapid.T) Requirement {
	return Requirement{
		AllowedRoles:        rapid.SliceOfNDistinct(rapid.SampledFrom(model.Roles), 0, 3, func(r model.Role) model.Role { return r }).Draw(t, "roles"),
		RequireOnboarded:    rapid.Bool().Draw(t, "requireOnboarded"),
		RequireSubscription: rapid.Bool().Draw(t, "requireSubscription"),
		RedirectTo:          rapid.SampledFrom([]string{"", "/login", "/admin/login"}).Draw(t, "redirectTo"),
	}
}

// A user outside the allowed roles is always sent to the unauthorized
// page, whatever their onboarding or plan status.
func TestEvaluate_RoleCheckComesFirst(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		user := genUser(t)
		req := genRequirement(t)
		d := Evaluate(session.Snapshot{User: user, Token: "tok", IsAuthenticated: true}, req)

		if !req.Allows(user.Role) {
			if d.Outcome != Redirect || d.Target != session.PathUnauthorized {
				t.Fatalf("role %s outside %v got %+v", user.Role, req.AllowedRoles, d)
			}
			return
		}
		if d.Reason == ReasonRole {
			t.Fatalf("allowed role %s rejected: %+v", user.Role, d)
		}
	})
}

func TestEvaluate_RenderMeansEveryCheckPassed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		user := genUser(t)
		req := genRequirement(t)
		d := Evaluate(session.Snapshot{User: user, Token: "tok", IsAuthenticated: true}, req)
		if d.Outcome != Render {
			return
		}
		if !req.Allows(user.Role) ||
			(req.RequireOnboarded && !user.IsOnboarded) ||
			(req.RequireSubscription && !user.IsSubscribed && !user.IsTrialActive) {
			t.Fatalf("rendered %+v for %+v", req, user)
		}
	})
}

func TestEvaluate_LoadingNeverRedirects(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		snap := session.Snapshot{IsLoading: true}
		if rapid.Bool().Draw(t, "withUser") {
			snap.User = genUser(t)
			snap.Token = "tok"
			snap.IsAuthenticated = true
		}
		if d := Evaluate(snap, genRequirement(t)); d.Outcome != Loading || d.Target != "" {
			t.Fatalf("loading snapshot produced %+v", d)
		}
	})
}
