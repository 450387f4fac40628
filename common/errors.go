package common

import (
	"fmt"
	"strings"
)

// AppError is an error that already knows its HTTP status and public message.
type AppError struct {
	Code    int    `json:"code" xml:"code"`
	Message string `json:"message" xml:"message"`
	Err     error  `json:"-" xml:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError is a single failed input field.
type ValidationError struct {
	Field   string `json:"field" xml:"field"`
	Message string `json:"message" xml:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is the accumulated result of validating one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(e), strings.Join(msgs, "; "))
}
