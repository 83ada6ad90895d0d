package tastings

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/vinnote-client/internal/errors"
)

// Validator checks tastings against the feed schema.
type Validator struct {
	validate *validator.Validate
}

var defaultValidator = NewValidator()

// NewValidator builds a Validator reporting fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	// ISO 8601 timestamps as the server emits them (RFC 3339, any fractional precision).
	_ = v.RegisterValidation("isodatetime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339Nano, fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// Validate checks t and returns a copy with schema defaults applied.
func (v *Validator) Validate(t Tasting) (Tasting, error) {
	if err := v.validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return t, formatValidationErrors(verrs)
		}
		return t, err
	}

	if t.Status == "" {
		t.Status = StatusDraft
	}
	if t.PrivacyLevel == "" {
		t.PrivacyLevel = PrivacyPublic
	}
	return t, nil
}

// ValidateOrRaw returns the validated tasting, or t unchanged when it does not match the schema.
// The feed prefers showing an imperfect item over dropping it.
func (v *Validator) ValidateOrRaw(t Tasting) Tasting {
	validated, err := v.Validate(t)
	if err != nil {
		return t
	}
	return validated
}

// ValidateOrRaw uses the package default Validator.
func ValidateOrRaw(t Tasting) Tasting {
	return defaultValidator.ValidateOrRaw(t)
}

// Validate uses the package default Validator.
func Validate(t Tasting) (Tasting, error) {
	return defaultValidator.Validate(t)
}

// Decode reads one feed item leniently. Fields with an unexpected JSON type are left zero and
// reported in the error, every other field is kept. A nil error means the item decoded cleanly.
func Decode(raw json.RawMessage) (Tasting, error) {
	var t Tasting
	err := json.Unmarshal(raw, &t)
	if err == nil {
		return t, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return t, errors.Wrapf(errors.ErrInvalidPayload, "field %q has JSON type %s", typeErr.Field, typeErr.Value)
	}
	return t, errors.Wrapf(errors.ErrInvalidPayload, "decoding tasting: %v", err)
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		field := err.Field()

		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		case "min", "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, orDefault(err.Param(), "0"))
		case "max":
			message = fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
		case "isodatetime":
			message = fmt.Sprintf("%s must be an ISO 8601 datetime", field)
		default:
			message = fmt.Sprintf("%s failed validation for %s", field, err.Tag())
		}
		messages = append(messages, message)
	}

	return errors.Wrapf(errors.ErrInvalidPayload, "%s", strings.Join(messages, "; "))
}

func orDefault(param, fallback string) string {
	if param == "" {
		return fallback
	}
	return param
}
