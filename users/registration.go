package users

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/vinnote-client/internal/errors"
)

// Messages returned by RegistrationForm.Validate, in the order the checks run.
const (
	MsgFillAllFields    = "Fill in all fields."
	MsgInvalidEmail     = "Enter a valid e-mail."
	MsgPasswordTooShort = "Password must be at least 6 characters."
	MsgPasswordMismatch = "Passwords do not match."
)

const MinPasswordLength = 6

// RegistrationForm is the sign-up input collected before any network call is made.
type RegistrationForm struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,contains=@"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"confirmPassword" validate:"required,eqfield=Password"`
	UserType        UserType `json:"userType"`
}

var formValidator = validator.New()

// Normalized trims the name and e-mail and lower-cases the e-mail.
// An empty UserType becomes Enthusiast, the default on the sign-up screen.
func (f RegistrationForm) Normalized() RegistrationForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	if f.UserType == "" {
		f.UserType = Enthusiast
	}
	return f
}

// Validate runs the client-side checks on a normalized copy of the form.
// The returned error wraps errors.ErrInvalidForm and its text is the user facing message.
func (f RegistrationForm) Validate() error {
	n := f.Normalized()
	err := formValidator.Struct(n)
	if err == nil {
		if !n.UserType.Valid() {
			return errors.Wrapf(errors.ErrInvalidForm, "unknown account type %q", n.UserType)
		}
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	return &FormError{Message: firstMessage(verrs)}
}

func firstMessage(verrs validator.ValidationErrors) string {
	failed := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return MsgFillAllFields
		}
		failed[fe.Field()] = fe.Tag()
	}

	switch {
	case failed["Email"] != "":
		return MsgInvalidEmail
	case failed["Password"] != "":
		return MsgPasswordTooShort
	default:
		return MsgPasswordMismatch
	}
}

// FormError is a client-side validation failure.
type FormError struct {
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Unwrap() error {
	return errors.ErrInvalidForm
}
