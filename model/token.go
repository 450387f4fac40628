// file: model/token.go

package model

import "time"

// ActivationToken holds the digest of a one-time account activation token.
type ActivationToken struct {
	ID        int       `json:"id"`
	AccountID int       `json:"account_id"`
	TokenHash string    `json:"-"` // The hash is not exposed in JSON responses.
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
