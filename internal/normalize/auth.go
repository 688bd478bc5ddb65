package normalize

import "salt_portal/internal/model"

// authEnvelope wraps auth responses on some backend builds.
const authEnvelope = "data"

var authFields = struct {
	Message, AccessToken, IsNewUser, IsOnboarded, User []string
}{
	Message:     []string{"message", "msg"},
	AccessToken: []string{"accessToken", "access_token", "token"},
	IsNewUser:   []string{"isNewUser", "is_new_user", "newUser"},
	IsOnboarded: []string{"isOnboarded", "is_onboarded"},
	User:        []string{"user"},
}

func authRecord(raw []byte) Record {
	top, ok := DecodeRecord(raw)
	if !ok {
		return Record{}
	}
	if data, ok := top.Record(authEnvelope); ok {
		return data
	}
	return top
}

// OTPRequest parses the sign-in reply.
func OTPRequest(raw []byte) model.OTPRequestResult {
	return model.OTPRequestResult{Message: authRecord(raw).String(authFields.Message)}
}

// Verify parses the OTP verification reply. An empty AccessToken means
// the verification did not succeed.
func Verify(raw []byte) model.VerifyResult {
	r := authRecord(raw)
	return model.VerifyResult{
		AccessToken: r.String(authFields.AccessToken),
		IsNewUser:   r.Bool(false, authFields.IsNewUser),
		IsOnboarded: r.Bool(false, authFields.IsOnboarded),
	}
}

// Login parses the password login reply.
func Login(raw []byte) model.LoginResult {
	r := authRecord(raw)
	res := model.LoginResult{AccessToken: r.String(authFields.AccessToken)}
	if u, ok := r.Record(authFields.User...); ok {
		user := User(u)
		res.User = &user
	}
	return res
}

// ErrorMessage extracts a human-readable message from an error body.
func ErrorMessage(raw []byte) string {
	r, ok := DecodeRecord(raw)
	if !ok {
		return ""
	}
	return r.String([]string{"message", "error", "msg", "detail"})
}
