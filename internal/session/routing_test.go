package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salt_portal/internal/model"
)

func TestPostVerificationTarget(t *testing.T) {
	cases := []struct {
		name      string
		onboarded bool
		user      *model.User
		want      string
	}{
		{"not onboarded wins over everything", false, &model.User{Role: model.RoleSuperAdmin, IsSubscribed: true}, PathOnboarding},
		{"onboarded without profile", true, nil, PathHome},
		{"lab without plan", true, &model.User{Role: model.RoleLaboratory}, PathPlans},
		{"lab on trial", true, &model.User{Role: model.RoleLaboratory, IsTrialActive: true}, PathLabDashboard},
		{"lab subscribed", true, &model.User{Role: model.RoleLaboratory, IsSubscribed: true}, PathLabDashboard},
		{"landowner on trial", true, &model.User{Role: model.RoleLandowner, IsTrialActive: true}, PathLandownerDashboard},
		{"distributor subscribed", true, &model.User{Role: model.RoleDistributor, IsSubscribed: true}, PathSellerDashboard},
		{"salt society subscribed", true, &model.User{Role: model.RoleSaltSociety, IsSubscribed: true}, PathSaltSocietyDashboard},
		{"landowner without plan", true, &model.User{Role: model.RoleLandowner}, PathPlans},
		{"admin is not exempt", true, &model.User{Role: model.RoleAdmin}, PathPlans},
		{"unknown role with plan goes home", true, &model.User{Role: "FARMER", IsSubscribed: true}, PathHome},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PostVerificationTarget(tc.onboarded, tc.user))
		})
	}
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, PathAdminDashboard, DashboardPath(model.RoleSuperAdmin))
	assert.Equal(t, PathAdminDashboard, DashboardPath(model.RoleAdmin))
	assert.Equal(t, PathSellerDashboard, DashboardPath(model.RoleSeller))
	assert.Equal(t, PathHome, DashboardPath(""))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, msgInFlight, UserMessage(ErrTransitionInFlight))
	assert.Equal(t, msgSignedIn, UserMessage(ErrInvalidState))
	assert.Equal(t, msgSignedOut, UserMessage(ErrSuperseded))
	assert.Equal(t, msgGeneric, UserMessage(assert.AnError))
}
