package model

// OTPRequestResult is the backend's reply to a sign-in request.
type OTPRequestResult struct {
	Message string `json:"message"`
}

// VerifyResult is returned by a successful OTP verification.
type VerifyResult struct {
	AccessToken string `json:"accessToken"`
	IsNewUser   bool   `json:"isNewUser"`
	IsOnboarded bool   `json:"isOnboarded"`
}

// LoginResult is returned by a successful password login.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	User        *User  `json:"user,omitempty"`
}
