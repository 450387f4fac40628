package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrPasswordMismatch       = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrInvalidGroupList       = fmt.Errorf("%w: group list must contain positive group ids", ErrValidation)
	ErrUnauthorized           = errors.New("authentication required")
	ErrAccessDenied           = errors.New("access denied")
	ErrDuplicateAccount       = errors.New("user name or email address is already in use")
	ErrHashingFailed          = errors.New("could not hash password")
	ErrStorageFailed          = errors.New("account storage failed")
	ErrPartialMembership      = errors.New("account created but group memberships were not assigned")
	ErrInvalidCredentials     = errors.New("invalid user name or password")
	ErrAccountInactive        = errors.New("account has not been activated")
	ErrActivationTokenInvalid = errors.New("activation token is invalid or expired")
)

// PartialMembershipError reports an account that was persisted while its
// group assignment failed. The account is not rolled back.
type PartialMembershipError struct {
	AccountID int
	Err       error
}

func (e *PartialMembershipError) Error() string {
	return fmt.Sprintf("account %d: %s: %v", e.AccountID, ErrPartialMembership, e.Err)
}

func (e *PartialMembershipError) Unwrap() []error {
	return []error{ErrPartialMembership, e.Err}
}

// IsValidationFailure reports whether err is a recoverable input problem.
func IsValidationFailure(err error) bool {
	return errors.Is(err, ErrValidation)
}
