package common

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileInput struct {
	UserName string `json:"user_name" validate:"omitempty,max=5,alphanum"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestFormValidator_Fields(t *testing.T) {
	form := url.Values{
		"user_name": {"  alice  "},
		"password":  {" secret "},
		"blank":     {"   "},
		"flag":      {""},
	}
	v := NewFormValidator(form)

	t.Run("required returns raw value", func(t *testing.T) {
		assert.Equal(t, "  alice  ", v.RequiredField("user_name"))
		assert.Equal(t, " secret ", v.RequiredField("password"))
	})

	t.Run("missing and blank required fields are recorded", func(t *testing.T) {
		assert.Equal(t, "", v.RequiredField("email"))
		assert.Equal(t, "", v.RequiredField("blank"))
		assert.Equal(t, 2, v.ErrorCount())
	})

	t.Run("optional fields", func(t *testing.T) {
		val, ok := v.OptionalField("flag")
		assert.True(t, ok)
		assert.Equal(t, "", val)

		_, ok = v.OptionalField("absent")
		assert.False(t, ok)
		assert.Equal(t, 2, v.ErrorCount(), "optional fields never add errors")
	})

	errs := v.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Field: "email", Message: "is required"}, errs[0])
	assert.Equal(t, "blank", errs[1].Field)
}

func TestFormValidator_ValidateStruct(t *testing.T) {
	v := NewFormValidator(nil)
	v.ValidateStruct(&profileInput{UserName: "toolong!", Email: "nope"})

	errs := v.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "user_name", errs[0].Field)
	assert.Equal(t, "must be at most 5 characters", errs[0].Message)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "must be a valid email address", errs[1].Message)

	clean := NewFormValidator(nil)
	clean.ValidateStruct(&profileInput{})
	assert.Zero(t, clean.ErrorCount(), "empty values are left to RequiredField")
}

func TestValidateAndDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader("{"))
		err := ValidateAndDecode(req, &payload{})
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
	})

	t.Run("rule failure", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
		err := ValidateAndDecode(req, &payload{})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "name", verrs[0].Field)
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
		var p payload
		require.NoError(t, ValidateAndDecode(req, &p))
		assert.Equal(t, "x", p.Name)
	})
}
