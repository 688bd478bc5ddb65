package normalize

import "salt_portal/internal/model"

var userFields = struct {
	ID, Email, Phone, Name, Role                      []string
	IsOnboarded, IsSubscribed, IsTrialActive          []string
	TrialStartDate, TrialEndDate, IsVerified, Created []string
}{
	ID:             []string{"id", "_id", "userId", "user_id"},
	Email:          []string{"email", "emailAddress", "email_address"},
	Phone:          []string{"phone", "phoneNumber", "phone_number", "mobile"},
	Name:           []string{"name", "fullName", "full_name"},
	Role:           []string{"role", "userRole", "user_role"},
	IsOnboarded:    []string{"isOnboarded", "is_onboarded", "onboarded"},
	IsSubscribed:   []string{"isSubscribed", "is_subscribed", "subscribed"},
	IsTrialActive:  []string{"isTrialActive", "is_trial_active", "trialActive"},
	TrialStartDate: []string{"trialStartDate", "trial_start_date", "trialStartsAt"},
	TrialEndDate:   []string{"trialEndDate", "trial_end_date", "trialEndsAt"},
	IsVerified:     []string{"isVerified", "is_verified", "verified"},
	Created:        []string{"createdAt", "created_at"},
}

// userEnvelope is the list key used by the admin users endpoint.
const userEnvelope = "data"

// FlattenUser returns the nested user object when present, otherwise r.
// List items may arrive as {user: {...}, landOwnerDetails: {...}}.
func FlattenUser(r Record) Record {
	if nested, ok := r.Record("user"); ok {
		return nested
	}
	return r
}

// User parses one user record, flattening first.
func User(r Record) model.User {
	r = FlattenUser(r)
	return model.User{
		ID:             r.String(userFields.ID),
		Email:          r.String(userFields.Email),
		Phone:          r.String(userFields.Phone),
		Name:           r.String(userFields.Name),
		Role:           model.ParseRole(r.String(userFields.Role)),
		IsOnboarded:    r.Bool(false, userFields.IsOnboarded),
		IsSubscribed:   r.Bool(false, userFields.IsSubscribed),
		IsTrialActive:  r.Bool(false, userFields.IsTrialActive),
		TrialStartDate: r.Timestamp(userFields.TrialStartDate),
		TrialEndDate:   r.Timestamp(userFields.TrialEndDate),
		IsVerified:     r.Bool(false, userFields.IsVerified),
		CreatedAt:      r.Timestamp(userFields.Created),
	}
}

// Users unwraps the users list.
func Users(raw []byte) []model.User {
	return mapRecords(Envelope(raw, userEnvelope), User)
}

// Profile parses the profile response {user, landOwnerDetails?, ...}.
// Only the user is consumed. It reports false when no usable identity
// is present.
func Profile(raw []byte) (*model.User, bool) {
	top, ok := DecodeRecord(raw)
	if !ok {
		return nil, false
	}
	if data, ok := top.Record(authEnvelope); ok {
		top = data
	}
	user := User(top)
	if user.ID == "" && user.Email == "" && user.Phone == "" {
		return nil, false
	}
	return &user, true
}
