package handler

import (
	"go-account-api/common"
	"go-account-api/errorhandler"
	"go-account-api/repository"
	"go-account-api/service"
	"net/http"

	"github.com/samber/oops"
)

// ErrorResponder renders an error as the response.
type ErrorResponder interface {
	Respond(w http.ResponseWriter, r *http.Request, err error)
}

// AppHandlerFunc is a handler that hands its failures back instead of
// writing them.
type AppHandlerFunc func(w http.ResponseWriter, r *http.Request) error

func ErrorHandlingMiddleware(responder ErrorResponder, next AppHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			responder.Respond(w, r, err)
		}
	}
}

// RecoverMiddleware renders panics through the responder.
func RecoverMiddleware(responder ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = oops.Errorf("panic: %v", rec)
				}
				responder.Respond(w, r, oops.Code("PANIC").Wrap(err))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NotFound and MethodNotAllowed feed router misses into the responder.
func NotFound(responder ErrorResponder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.Respond(w, r, common.NewAppError(http.StatusNotFound, "The page you requested could not be found.", nil))
	}
}

func MethodNotAllowed(responder ErrorResponder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder.Respond(w, r, common.NewAppError(http.StatusMethodNotAllowed, "Method not allowed.", nil))
	}
}

// RegisterErrorHandlers binds the application's errors to handler types.
// Order matters: a later binding wins over an earlier one.
func RegisterErrorHandlers(c *errorhandler.Classifier) error {
	bindings := []struct {
		match   errorhandler.Matcher
		handler errorhandler.HandlerType
	}{
		{errorhandler.MatchType[*common.AppError](), errorhandler.AppErrorHandlerType},
		{errorhandler.MatchServerAppError, errorhandler.ServerAppErrorHandlerType},
		{errorhandler.MatchType[common.ValidationErrors](), errorhandler.ValidationHandlerType},
		{errorhandler.MatchError(service.ErrValidation), errorhandler.ValidationHandlerType},
		{errorhandler.MatchError(repository.ErrNotFound),
			errorhandler.NewStatusHandlerType("not_found", http.StatusNotFound, "The requested resource could not be found.", false)},
		{errorhandler.MatchError(service.ErrUnauthorized),
			errorhandler.NewStatusHandlerType("unauthorized", http.StatusUnauthorized, "You must be logged in to access this resource.", false)},
		{errorhandler.MatchError(service.ErrAccessDenied),
			errorhandler.NewStatusHandlerType("access_denied", http.StatusForbidden, "Access denied.", false)},
		{errorhandler.MatchError(service.ErrInvalidCredentials),
			errorhandler.NewStatusHandlerType("invalid_credentials", http.StatusUnauthorized, "Invalid user name or password.", false)},
		{errorhandler.MatchError(service.ErrAccountInactive),
			errorhandler.NewStatusHandlerType("account_inactive", http.StatusForbidden, "Your account has not been activated yet.", false)},
		{errorhandler.MatchError(service.ErrActivationTokenInvalid),
			errorhandler.NewStatusHandlerType("activation_invalid", http.StatusBadRequest, "The activation token is invalid or has expired.", false)},
		{errorhandler.MatchError(service.ErrDuplicateAccount),
			errorhandler.NewStatusHandlerType("duplicate_account", http.StatusConflict, "That user name or email address is already in use.", false)},
		{errorhandler.MatchError(service.ErrPartialMembership),
			errorhandler.NewStatusHandlerType("partial_membership", http.StatusInternalServerError, "The account was created, but its groups could not be assigned.", true)},
	}
	for _, b := range bindings {
		if err := c.Register(b.match, b.handler); err != nil {
			return err
		}
	}
	return nil
}
