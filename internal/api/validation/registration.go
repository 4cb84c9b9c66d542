package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/wastelink/wastelink/internal/auth"
	"github.com/wastelink/wastelink/internal/profile"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,19}$`)

// RegistrationRequest mirrors the fields of a role-specific registration form.
type RegistrationRequest struct {
	Role     string
	Name     string
	Phone    string
	Email    string
	Password string
}

// ValidateRegistrationRequest validates a registration form.
func ValidateRegistrationRequest(req RegistrationRequest) []FieldError {
	var errs []FieldError

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if _, err := profile.ParseRole(req.Role); err != nil {
		errs = append(errs, FieldError{Field: "role", Message: fmt.Sprintf("role must be one of: %s", roleList())})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "phone is required"})
	} else if !phoneRegex.MatchString(phone) {
		errs = append(errs, FieldError{Field: "phone", Message: "phone must contain 7-20 digits, optionally starting with +"})
	}

	errs = append(errs, validateEmail(req.Email)...)

	if len(req.Password) < auth.MinPasswordLength {
		errs = append(errs, FieldError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength)})
	}

	return errs
}

// SignInRequest mirrors the fields of the sign-in form.
type SignInRequest struct {
	Email    string
	Password string
}

// ValidateSignInRequest validates a sign-in form.
func ValidateSignInRequest(req SignInRequest) []FieldError {
	errs := validateEmail(req.Email)
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

func validateEmail(email string) []FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []FieldError{{Field: "email", Message: "email is required"}}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []FieldError{{Field: "email", Message: "email must be a valid address"}}
	}
	return nil
}

func roleList() string {
	roles := profile.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
