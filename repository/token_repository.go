// file: repository/token_repository.go

package repository

import (
	"context"
	"database/sql"
	"errors"
	"go-account-api/logger"
	"go-account-api/model"

	"github.com/sirupsen/logrus"
)

// TokenRepository stores activation token digests. Writes take the caller's
// transaction so tokens are created and consumed together with the account.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new activation token record.
func (r *TokenRepository) Create(ctx context.Context, tx *sql.Tx, token *model.ActivationToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": token.AccountID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new activation token")

	query := `INSERT INTO activation_tokens (account_id, token_hash, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, query, token.AccountID, token.TokenHash, token.ExpiresAt).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create activation token query")
		return err
	}
	return nil
}

// GetByTokenHashForUpdate locks and returns the token with the given digest.
func (r *TokenRepository) GetByTokenHashForUpdate(ctx context.Context, tx *sql.Tx, tokenHash string) (*model.ActivationToken, error) {
	token := &model.ActivationToken{}
	query := `SELECT id, account_id, token_hash, expires_at, created_at FROM activation_tokens WHERE token_hash = $1 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, tokenHash).Scan(&token.ID, &token.AccountID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).Error("Failed to execute get activation token by hash query")
		return nil, err
	}
	return token, nil
}

// DeleteByAccountID deletes all activation tokens of an account.
func (r *TokenRepository) DeleteByAccountID(ctx context.Context, tx *sql.Tx, accountID int) error {
	log := logger.Log.WithField("account_id", accountID)
	log.Info("Executing query to delete activation tokens for an account")

	_, err := tx.ExecContext(ctx, `DELETE FROM activation_tokens WHERE account_id = $1`, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete activation tokens query")
		return err
	}
	return nil
}
