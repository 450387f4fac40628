package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"go-account-api/logger"
	"go-account-api/model"
	"go-account-api/repository"
	"time"

	"github.com/samber/oops"
)

// AccountReader is the persistence the login and activation flows need.
type AccountReader interface {
	GetByUserName(ctx context.Context, userName string) (*model.Account, error)
	Activate(ctx context.Context, tokenHash string, now time.Time) (int, error)
}

// TokenPair is the login response.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthService struct {
	accounts AccountReader
	tokens   *TokenService
	now      func() time.Time
}

func NewAuthService(accounts AccountReader, tokens *TokenService) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, now: time.Now}
}

// ActivationDigest is the stored form of an activation token.
func ActivationDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Login checks credentials and issues an access token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*TokenPair, error) {
	log := logger.Log.WithField("user_name", req.UserName)

	account, err := s.accounts.GetByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Login attempt for unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, oops.Code("ACCOUNT_STORAGE_FAILED").Wrap(fmt.Errorf("%w: %w", ErrStorageFailed, err))
	}

	ok, err := VerifyPassword(req.Password, account.PasswordHash)
	if err != nil {
		log.WithError(err).Error("Stored password hash could not be checked")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn("Login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}

	token, expiresAt, err := s.tokens.Generate(account)
	if err != nil {
		return nil, oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	log.WithField("account_id", account.ID).Info("User logged in")
	return &TokenPair{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// Activate consumes an activation token and returns the activated account id.
func (s *AuthService) Activate(ctx context.Context, token string) (int, error) {
	accountID, err := s.accounts.Activate(ctx, ActivationDigest(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrExpired) {
			return 0, ErrActivationTokenInvalid
		}
		return 0, oops.Code("ACCOUNT_STORAGE_FAILED").Wrap(fmt.Errorf("%w: %w", ErrStorageFailed, err))
	}
	return accountID, nil
}
