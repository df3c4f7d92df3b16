// Package policy holds the pure credential-format rules that run before
// any store access. All validators are side-effect free; failures come
// back as ErrInvalidArgument with the first violated rule's reason.
package policy

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

type Policy struct {
	v *validator.Validate
}

func New() *Policy {
	v := validator.New()
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	return &Policy{v: v}
}

func isStrongPassword(pwd string) bool {
	if len(pwd) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

func (p *Policy) ValidateUsername(username string) error {
	if err := p.v.Var(username, "required,handle"); err != nil {
		return customErrors.NewInvalidArgument("username must be 3-50 characters of letters, digits or underscore")
	}
	return nil
}

func (p *Policy) ValidateEmail(email string) error {
	if err := p.v.Var(email, "required,email"); err != nil {
		return customErrors.NewInvalidArgument("email address is not valid")
	}
	return nil
}

// ValidatePassword enforces the strength rule: at least 8 characters
// with one uppercase letter, one lowercase letter and one digit.
func (p *Policy) ValidatePassword(password string) error {
	if err := p.v.Var(password, "required,strongpwd"); err != nil {
		return customErrors.NewInvalidArgument("password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a digit")
	}
	return nil
}

func (p *Policy) PasswordsMatch(password, confirm string) error {
	if password != confirm {
		return customErrors.NewInvalidArgument("passwords do not match")
	}
	return nil
}

// ValidateRegistration checks every registration field and reports the
// first failing rule in the order the fields are presented to the user:
// username, email, password, confirmation, strength.
func (p *Policy) ValidateRegistration(username, email, password, confirm string) error {
	if err := p.ValidateUsername(username); err != nil {
		return err
	}
	if err := p.ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return customErrors.NewInvalidArgument("password is required")
	}
	if err := p.PasswordsMatch(password, confirm); err != nil {
		return err
	}
	return p.ValidatePassword(password)
}
