package errorhandler

import (
	"errors"
	"fmt"
	"go-account-api/common"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typeAError struct{ msg string }

func (e *typeAError) Error() string { return e.msg }

type typeBError struct{ msg string }

func (e *typeBError) Error() string { return e.msg }

func namedType(name string) HandlerType {
	return NewStatusHandlerType(name, http.StatusTeapot, name, false)
}

func TestClassifier_LastMatchWins(t *testing.T) {
	c := NewClassifier(DefaultHandlerType)
	require.NoError(t, c.Register(MatchType[*typeAError](), namedType("H1")))
	require.NoError(t, c.Register(MatchType[*typeBError](), namedType("H2")))
	require.NoError(t, c.Register(MatchType[*typeAError](), namedType("H3")))

	assert.Equal(t, "H3", c.Classify(&typeAError{msg: "a"}).Name)
	assert.Equal(t, "H2", c.Classify(&typeBError{msg: "b"}).Name)
}

func TestClassifier_WrappedErrorMatchesItsBase(t *testing.T) {
	c := NewClassifier(DefaultHandlerType)
	require.NoError(t, c.Register(MatchType[*typeAError](), namedType("A")))

	wrapped := fmt.Errorf("context: %w", &typeAError{msg: "a"})
	assert.Equal(t, "A", c.Classify(wrapped).Name)
}

func TestClassifier_BroaderLaterRegistrationWins(t *testing.T) {
	sentinel := errors.New("sentinel")
	c := NewClassifier(DefaultHandlerType)
	require.NoError(t, c.Register(MatchError(sentinel), namedType("specific")))
	require.NoError(t, c.Register(func(error) bool { return true }, namedType("catch-all")))

	assert.Equal(t, "catch-all", c.Classify(sentinel).Name)
}

func TestClassifier_NoMatchReturnsDefault(t *testing.T) {
	c := NewClassifier(DefaultHandlerType)
	require.NoError(t, c.Register(MatchType[*typeAError](), namedType("A")))

	assert.Equal(t, DefaultHandlerType.Name, c.Classify(errors.New("other")).Name)
}

func TestClassifier_AppErrorStatusSplit(t *testing.T) {
	c := NewClassifier(DefaultHandlerType)
	require.NoError(t, c.Register(MatchType[*common.AppError](), AppErrorHandlerType))
	require.NoError(t, c.Register(MatchServerAppError, ServerAppErrorHandlerType))

	assert.Equal(t, "app_error", c.Classify(common.NewAppError(404, "missing", nil)).Name)
	assert.Equal(t, "app_error_server", c.Classify(common.NewAppError(503, "down", nil)).Name)
}

func TestClassifier_RegisterRejectsInvalid(t *testing.T) {
	c := NewClassifier(DefaultHandlerType)

	assert.Error(t, c.Register(nil, namedType("x")))
	assert.ErrorIs(t, c.Register(MatchType[*typeAError](), HandlerType{Name: "x"}), ErrInvalidHandlerType)
	assert.ErrorIs(t, c.Register(MatchType[*typeAError](), HandlerType{New: namedType("x").New}), ErrInvalidHandlerType)
	assert.Equal(t, DefaultHandlerType.Name, c.Classify(&typeAError{}).Name)
}
