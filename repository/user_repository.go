package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-account-api/logger"
	"go-account-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// UserRepository is the postgres backed account and group store.
type UserRepository struct {
	DB     *sql.DB
	tokens *TokenRepository
}

func NewUserRepository(db *sql.DB, tokens *TokenRepository) *UserRepository {
	return &UserRepository{DB: db, tokens: tokens}
}

func (r *UserRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var found bool
	if err := r.DB.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// ExistsByUsername compares user names exactly as stored.
func (r *UserRepository) ExistsByUsername(ctx context.Context, userName string) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE user_name = $1)`, userName)
	if err != nil {
		logger.Log.WithError(err).WithField("user_name", userName).Error("Failed to check user name")
	}
	return found, err
}

// ExistsByEmail compares emails exactly as stored.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to check email")
	}
	return found, err
}

func (r *UserRepository) AccountExists(ctx context.Context, id int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id)
}

// InsertAccount inserts the account and, when given, its activation token in
// one transaction. A unique constraint violation is reported as ErrDuplicate.
func (r *UserRepository) InsertAccount(ctx context.Context, account *model.Account, activation *model.ActivationToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_name": account.UserName,
		"active":    account.Active,
	})
	log.Info("Executing query to create a new account")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO accounts (user_name, display_name, email, title, password_hash, active)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		account.UserName, account.DisplayName, account.Email, account.Title, account.PasswordHash, account.Active,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("Account insert rejected by unique constraint")
			return ErrDuplicate
		}
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}

	if activation != nil {
		activation.AccountID = account.ID
		if err := r.tokens.Create(ctx, tx, activation); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// InsertMemberships adds the account to every group in one transaction.
func (r *UserRepository) InsertMemberships(ctx context.Context, accountID int, groupIDs []int) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"group_ids":  groupIDs,
	})
	log.Info("Executing query to add group memberships")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, groupID := range groupIDs {
		_, err := tx.ExecContext(ctx, `INSERT INTO group_memberships (account_id, group_id) VALUES ($1, $2)`, accountID, groupID)
		if err != nil {
			log.WithError(err).WithField("group_id", groupID).Error("Failed to execute add membership query")
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// DefaultGroupIDs lists the groups new self-registered accounts join.
func (r *UserRepository) DefaultGroupIDs(ctx context.Context) ([]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM groups WHERE is_default ORDER BY id`)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute query for default groups")
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (*model.Account, error) {
	acc := &model.Account{}
	query := `SELECT id, user_name, display_name, email, title, password_hash, active, created_at FROM accounts WHERE user_name = $1`
	err := r.DB.QueryRowContext(ctx, query, userName).Scan(
		&acc.ID, &acc.UserName, &acc.DisplayName, &acc.Email, &acc.Title, &acc.PasswordHash, &acc.Active, &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acc, nil
}

// Activate consumes the activation token with the given digest and marks
// its account active. It returns the activated account id.
func (r *UserRepository) Activate(ctx context.Context, tokenHash string, now time.Time) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	token, err := r.tokens.GetByTokenHashForUpdate(ctx, tx, tokenHash)
	if err != nil {
		return 0, err
	}
	if now.After(token.ExpiresAt) {
		return 0, ErrExpired
	}

	log := logger.Log.WithField("account_id", token.AccountID)
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET active = TRUE WHERE id = $1`, token.AccountID); err != nil {
		log.WithError(err).Error("Failed to execute activate account query")
		return 0, err
	}
	if err := r.tokens.DeleteByAccountID(ctx, tx, token.AccountID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not commit transaction: %w", err)
	}
	log.Info("Account activated")
	return token.AccountID, nil
}
