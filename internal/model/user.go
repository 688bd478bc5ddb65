package model

import "strings"

// Role controls which dashboard and capabilities a user may reach.
type Role string

const (
	RoleSuperAdmin  Role = "SUPERADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleSaltSociety Role = "SALTSOCIETY"
	RoleLandowner   Role = "LANDOWNER"
	RoleDistributor Role = "DISTRIBUTOR"
	RoleLaboratory  Role = "LABORATORY"

	// RoleSeller is still emitted by older backends for distributors.
	RoleSeller Role = "SELLER"
)

// Roles lists the fixed role enumeration.
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleSaltSociety,
	RoleLandowner,
	RoleDistributor,
	RoleLaboratory,
}

// ParseRole normalizes case and surrounding space. Unknown values are
// returned as-is so that routing can fall back to its default.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// IsAdmin reports whether the role belongs to the password-login path.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User represents an authenticated principal.
type User struct {
	ID             string `json:"id" yaml:"id"`
	Email          string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone          string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Role           Role   `json:"role" yaml:"role"`
	IsOnboarded    bool   `json:"isOnboarded" yaml:"isOnboarded"`
	IsSubscribed   bool   `json:"isSubscribed" yaml:"isSubscribed"`
	IsTrialActive  bool   `json:"isTrialActive" yaml:"isTrialActive"`
	TrialStartDate string `json:"trialStartDate,omitempty" yaml:"trialStartDate,omitempty"` // ISO-8601
	TrialEndDate   string `json:"trialEndDate,omitempty" yaml:"trialEndDate,omitempty"`     // ISO-8601
	IsVerified     bool   `json:"isVerified" yaml:"isVerified"`
	CreatedAt      string `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// HasAccess reports whether the user may reach paid areas.
func (u *User) HasAccess() bool {
	return u != nil && (u.IsSubscribed || u.IsTrialActive)
}

// DisplayName is the name when known, otherwise the contact.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.Phone
	}
}

// Identity is the contact used to request and verify an OTP.
// Exactly one of Phone or Email is expected.
type Identity struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// String returns whichever contact is set, phone first.
func (i Identity) String() string {
	if i.Phone != "" {
		return i.Phone
	}
	return i.Email
}

// StoredCredential is what survives a reload.
type StoredCredential struct {
	Token      string `json:"token"`
	CachedUser *User  `json:"cachedUser,omitempty"`
}
