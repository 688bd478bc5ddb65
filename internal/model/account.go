package model

import "time"

// Account is a user as the reference backend stores it.
type Account struct {
	ID             string
	Phone          string
	Email          string
	Name           string
	PasswordHash   string
	Role           Role
	IsOnboarded    bool
	IsSubscribed   bool
	TrialStartDate *time.Time
	TrialEndDate   *time.Time
	IsVerified     bool
	CreatedAt      time.Time
}

// TrialActive reports whether now falls inside the trial window.
func (a *Account) TrialActive(now time.Time) bool {
	return a.TrialStartDate != nil && a.TrialEndDate != nil &&
		!now.Before(*a.TrialStartDate) && now.Before(*a.TrialEndDate)
}

// User is the account as seen through the profile endpoint.
func (a *Account) User(now time.Time) User {
	u := User{
		ID:            a.ID,
		Email:         a.Email,
		Phone:         a.Phone,
		Name:          a.Name,
		Role:          a.Role,
		IsOnboarded:   a.IsOnboarded,
		IsSubscribed:  a.IsSubscribed,
		IsTrialActive: a.TrialActive(now),
		IsVerified:    a.IsVerified,
		CreatedAt:     isoTime(a.CreatedAt),
	}
	if a.TrialStartDate != nil {
		u.TrialStartDate = isoTime(*a.TrialStartDate)
	}
	if a.TrialEndDate != nil {
		u.TrialEndDate = isoTime(*a.TrialEndDate)
	}
	return u
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
