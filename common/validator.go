package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormValidator pulls named fields out of a submitted form and accumulates
// every failure instead of stopping at the first one. Callers check
// ErrorCount once all fields have been read.
type FormValidator struct {
	form   url.Values
	errors ValidationErrors
}

func NewFormValidator(form url.Values) *FormValidator {
	return &FormValidator{form: form}
}

// RequiredField returns the raw value of name. A missing or blank value is
// recorded as an error and "" is returned. The value is not trimmed.
func (v *FormValidator) RequiredField(name string) string {
	raw := v.form.Get(name)
	if strings.TrimSpace(raw) == "" {
		v.AddError(name, "is required")
		return ""
	}
	return raw
}

// OptionalField returns the raw value of name and whether it was supplied.
func (v *FormValidator) OptionalField(name string) (string, bool) {
	if !v.form.Has(name) {
		return "", false
	}
	return v.form.Get(name), true
}

func (v *FormValidator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// ValidateStruct runs the validate tags of s and records each failed rule.
func (v *FormValidator) ValidateStruct(s interface{}) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.AddError("request", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		v.AddError(fe.Field(), ruleMessage(fe))
	}
}

func (v *FormValidator) ErrorCount() int {
	return len(v.errors)
}

func (v *FormValidator) Errors() ValidationErrors {
	out := make(ValidationErrors, len(v.errors))
	copy(out, v.errors)
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "alphanum":
		return "may only contain letters and digits"
	case "hexadecimal":
		return "must be hexadecimal"
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// ValidateAndDecode decodes a JSON body into payload and validates it.
func ValidateAndDecode(r *http.Request, payload interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	fv := &FormValidator{}
	fv.ValidateStruct(payload)
	if fv.ErrorCount() > 0 {
		return fv.Errors()
	}
	return nil
}
