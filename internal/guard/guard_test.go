package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salt_portal/internal/model"
	"salt_portal/internal/session"
)

func signedIn(u model.User) session.Snapshot {
	return session.Snapshot{User: &u, Token: "tok", IsAuthenticated: true}
}

func TestEvaluate(t *testing.T) {
	adminOnly := Requirement{AllowedRoles: []model.Role{model.RoleAdmin}}
	paid := Requirement{RequireOnboarded: true, RequireSubscription: true}

	cases := []struct {
		name string
		snap session.Snapshot
		req  Requirement
		want Decision
	}{
		{
			name: "loading never redirects",
			snap: session.Snapshot{IsLoading: true},
			req:  Requirement{RedirectTo: "/login"},
			want: Decision{Outcome: Loading, Reason: ReasonLoading},
		},
		{
			name: "anonymous goes home by default",
			snap: session.Snapshot{},
			req:  adminOnly,
			want: Decision{Outcome: Redirect, Target: session.PathHome, Reason: ReasonUnauthenticated},
		},
		{
			name: "anonymous honours redirect target",
			snap: session.Snapshot{},
			req:  Requirement{RedirectTo: "/admin/login"},
			want: Decision{Outcome: Redirect, Target: "/admin/login", Reason: ReasonUnauthenticated},
		},
		{
			name: "wrong role blocked before onboarding and subscription",
			snap: signedIn(model.User{Role: model.RoleDistributor, IsOnboarded: true, IsSubscribed: true}),
			req:  Requirement{AllowedRoles: []model.Role{model.RoleAdmin}, RequireOnboarded: true, RequireSubscription: true, RedirectTo: "/admin/login"},
			want: Decision{Outcome: Redirect, Target: session.PathUnauthorized, Reason: ReasonRole},
		},
		{
			name: "onboarding checked before subscription",
			snap: signedIn(model.User{Role: model.RoleLandowner}),
			req:  paid,
			want: Decision{Outcome: Redirect, Target: session.PathOnboarding, Reason: ReasonOnboarding},
		},
		{
			name: "no plan and no trial",
			snap: signedIn(model.User{Role: model.RoleLandowner, IsOnboarded: true}),
			req:  paid,
			want: Decision{Outcome: Redirect, Target: session.PathPlans, Reason: ReasonSubscription},
		},
		{
			name: "trial grants access",
			snap: signedIn(model.User{Role: model.RoleLandowner, IsOnboarded: true, IsTrialActive: true}),
			req:  paid,
			want: Decision{Outcome: Render, Reason: ReasonAllowed},
		},
		{
			name: "no requirements only needs a session",
			snap: signedIn(model.User{Role: model.RoleLaboratory}),
			req:  Requirement{},
			want: Decision{Outcome: Render, Reason: ReasonAllowed},
		},
		{
			name: "authenticated flag without user is treated as anonymous",
			snap: session.Snapshot{IsAuthenticated: true, Token: "tok"},
			req:  Requirement{},
			want: Decision{Outcome: Redirect, Target: session.PathHome, Reason: ReasonUnauthenticated},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.snap, tc.req))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
