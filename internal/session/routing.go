package session

import "salt_portal/internal/model"

// Page paths the session and guard redirect to.
const (
	PathHome                 = "/"
	PathOnboarding           = "/onboarding"
	PathPlans                = "/plans"
	PathUnauthorized         = "/unauthorized"
	PathLandownerDashboard   = "/landowner/dashboard"
	PathSellerDashboard      = "/seller/dashboard"
	PathLabDashboard         = "/laboratory/dashboard"
	PathAdminDashboard       = "/admin/dashboard"
	PathSaltSocietyDashboard = "/saltsociety/dashboard"
)

var dashboardPaths = map[model.Role]string{
	model.RoleLandowner:   PathLandownerDashboard,
	model.RoleDistributor: PathSellerDashboard,
	model.RoleSeller:      PathSellerDashboard,
	model.RoleLaboratory:  PathLabDashboard,
	model.RoleSuperAdmin:  PathAdminDashboard,
	model.RoleAdmin:       PathAdminDashboard,
	model.RoleSaltSociety: PathSaltSocietyDashboard,
}

// DashboardPath maps a role to its landing page; unknown roles go home.
func DashboardPath(role model.Role) string {
	if p, ok := dashboardPaths[role]; ok {
		return p
	}
	return PathHome
}

// PostVerificationTarget decides where a freshly verified user lands.
// Order matters: onboarding before the laboratory upsell, before the
// dashboard, before the generic upsell. Admins are not exempt.
func PostVerificationTarget(isOnboarded bool, user *model.User) string {
	if !isOnboarded {
		return PathOnboarding
	}
	if user == nil {
		return PathHome
	}
	// Laboratories on an active trial still reach their dashboard.
	if user.Role == model.RoleLaboratory && !user.IsSubscribed && !user.IsTrialActive {
		return PathPlans
	}
	if user.IsSubscribed || user.IsTrialActive {
		return DashboardPath(user.Role)
	}
	return PathPlans
}
