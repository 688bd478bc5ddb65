package gateway

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"salt_portal/internal/model"
)

var validate = validator.New()

// ValidateIdentity requires exactly one of phone (E.164) or email.
func ValidateIdentity(id model.Identity) error {
	phone := strings.TrimSpace(id.Phone)
	email := strings.TrimSpace(id.Email)
	switch {
	case phone == "" && email == "":
		return &ValidationError{Field: "identity", Message: "phone or email is required"}
	case phone != "" && email != "":
		return &ValidationError{Field: "identity", Message: "provide either phone or email, not both"}
	case phone != "":
		if err := validate.Var(phone, "e164"); err != nil {
			return &ValidationError{Field: "phone", Message: "must be in international format, e.g. +94771234567"}
		}
	default:
		if err := validate.Var(email, "email"); err != nil {
			return &ValidationError{Field: "email", Message: "invalid email format"}
		}
	}
	return nil
}

// ValidateRole accepts the OTP sign-in roles. Admin roles use password login.
func ValidateRole(role model.Role) error {
	if !role.Valid() {
		return &ValidationError{Field: "role", Message: "unknown role " + string(role)}
	}
	if role.IsAdmin() {
		return &ValidationError{Field: "role", Message: "administrators sign in with a password"}
	}
	return nil
}

// ValidateCode checks the OTP shape.
func ValidateCode(code string) error {
	if err := validate.Var(code, "required,number,min=4,max=8"); err != nil {
		return &ValidationError{Field: "code", Message: "must be 4 to 8 digits"}
	}
	return nil
}

// ValidatePasswordLogin checks the admin credentials shape.
func ValidatePasswordLogin(email, password string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	if err := validate.Var(password, "required"); err != nil {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

func trimIdentity(id model.Identity) model.Identity {
	return model.Identity{Phone: strings.TrimSpace(id.Phone), Email: strings.TrimSpace(id.Email)}
}
