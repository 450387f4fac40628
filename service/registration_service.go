package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"go-account-api/config"
	"go-account-api/logger"
	"go-account-api/metrics"
	"go-account-api/model"
	"go-account-api/repository"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

// RootAccountID is the account created during installation.
const RootAccountID = 1

// UserStore is the persistence the registration flow needs.
type UserStore interface {
	ExistsByUsername(ctx context.Context, userName string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AccountExists(ctx context.Context, id int) (bool, error)
	InsertAccount(ctx context.Context, account *model.Account, activation *model.ActivationToken) error
	InsertMemberships(ctx context.Context, accountID int, groupIDs []int) error
	DefaultGroupIDs(ctx context.Context) ([]int, error)
}

// AccountInput is a registration that already passed request validation.
// Every field except the passwords is expected to be trimmed.
type AccountInput struct {
	UserName        string
	DisplayName     string
	Email           string
	Title           string
	Password        string
	PasswordConfirm string
	AdminMode       bool
	SkipActivation  bool
	AddGroups       string
}

// Created describes a persisted account.
type Created struct {
	AccountID          int
	ActivationRequired bool
	GroupIDs           []int
}

type RegistrationService struct {
	store    UserStore
	hasher   PasswordHasher
	policy   config.Registration
	notifier ActivationNotifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewRegistrationService(store UserStore, hasher PasswordHasher, policy config.Registration, notifier ActivationNotifier, m *metrics.Metrics) *RegistrationService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &RegistrationService{
		store:    store,
		hasher:   hasher,
		policy:   policy,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// Policy returns the registration policy the service was built with.
func (s *RegistrationService) Policy() config.Registration {
	return s.policy
}

// RequireActivation is false only for an admin who asked to skip activation.
func (s *RegistrationService) RequireActivation(adminMode, skipActivation bool) bool {
	if adminMode && skipActivation {
		return false
	}
	return s.policy.RequireActivation
}

// RootAccountExists reports whether the installation account is present.
func (s *RegistrationService) RootAccountExists(ctx context.Context) (bool, error) {
	found, err := s.store.AccountExists(ctx, RootAccountID)
	if err != nil {
		return false, oops.Code("ACCOUNT_STORAGE_FAILED").Wrap(fmt.Errorf("%w: %w", ErrStorageFailed, err))
	}
	return found, nil
}

// Create runs the account transaction. Every step is a hard gate; nothing
// is written before the account insert, and a failure after it leaves the
// account in place and returns a *PartialMembershipError.
func (s *RegistrationService) Create(ctx context.Context, in AccountInput) (*Created, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_name":  in.UserName,
		"admin_mode": in.AdminMode,
	})

	requireActivation := s.RequireActivation(in.AdminMode, in.SkipActivation)

	if in.Password != in.PasswordConfirm {
		s.metrics.IncRegistration("validation")
		return nil, ErrPasswordMismatch
	}

	var explicitGroups []int
	if in.AdminMode && in.AddGroups != "" {
		ids, err := ParseGroupIDs(in.AddGroups)
		if err != nil {
			s.metrics.IncRegistration("validation")
			return nil, err
		}
		explicitGroups = ids
	}

	if err := s.checkUnique(ctx, in); err != nil {
		return nil, err
	}

	start := time.Now()
	hash, err := s.hasher.Hash(in.Password)
	s.metrics.ObserveHash(time.Since(start))
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		s.metrics.IncRegistration("hashing_failed")
		return nil, oops.Code("ACCOUNT_HASHING_FAILED").Wrap(fmt.Errorf("%w: %w", ErrHashingFailed, err))
	}

	account := &model.Account{
		UserName:     in.UserName,
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		Title:        in.Title,
		PasswordHash: hash,
		Active:       !requireActivation,
	}

	var activation *model.ActivationToken
	var plainToken string
	if requireActivation {
		plainToken, activation, err = s.newActivationToken()
		if err != nil {
			s.metrics.IncRegistration("storage_failed")
			return nil, err
		}
	}

	if err := s.store.InsertAccount(ctx, account, activation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("Duplicate account rejected at insert")
			s.metrics.IncRegistration("duplicate")
			return nil, oops.Code("ACCOUNT_DUPLICATE").With("user_name", in.UserName).Wrap(ErrDuplicateAccount)
		}
		s.metrics.IncRegistration("storage_failed")
		return nil, oops.Code("ACCOUNT_STORAGE_FAILED").Wrap(fmt.Errorf("%w: %w", ErrStorageFailed, err))
	}
	log = log.WithField("account_id", account.ID)

	if requireActivation {
		if err := s.notifier.NotifyActivation(ctx, account, plainToken); err != nil {
			log.WithError(err).Warn("Failed to deliver activation token")
		}
	}

	groupIDs, err := s.assignGroups(ctx, account.ID, explicitGroups)
	if err != nil {
		log.WithError(err).Error("Account created but group assignment failed")
		s.metrics.IncRegistration("partial_membership")
		return nil, oops.Code("ACCOUNT_PARTIAL_MEMBERSHIP").
			With("account_id", account.ID).
			Wrap(&PartialMembershipError{AccountID: account.ID, Err: err})
	}

	log.Info("Account created")
	s.metrics.IncRegistration("created")
	return &Created{
		AccountID:          account.ID,
		ActivationRequired: requireActivation,
		GroupIDs:           groupIDs,
	}, nil
}

func (s *RegistrationService) checkUnique(ctx context.Context, in AccountInput) error {
	taken, err := s.store.ExistsByUsername(ctx, in.UserName)
	if err == nil && !taken {
		taken, err = s.store.ExistsByEmail(ctx, in.Email)
	}
	if err != nil {
		s.metrics.IncRegistration("storage_failed")
		return oops.Code("ACCOUNT_STORAGE_FAILED").Wrap(fmt.Errorf("%w: %w", ErrStorageFailed, err))
	}
	if taken {
		s.metrics.IncRegistration("duplicate")
		return oops.Code("ACCOUNT_DUPLICATE").With("user_name", in.UserName).Wrap(ErrDuplicateAccount)
	}
	return nil
}

// assignGroups inserts the explicit admin list when given, otherwise the
// configured default groups.
func (s *RegistrationService) assignGroups(ctx context.Context, accountID int, explicit []int) ([]int, error) {
	groupIDs := explicit
	if groupIDs == nil {
		defaults, err := s.store.DefaultGroupIDs(ctx)
		if err != nil {
			return nil, err
		}
		groupIDs = defaults
	}
	if len(groupIDs) == 0 {
		return groupIDs, nil
	}
	if err := s.store.InsertMemberships(ctx, accountID, groupIDs); err != nil {
		return nil, err
	}
	return groupIDs, nil
}

func (s *RegistrationService) newActivationToken() (string, *model.ActivationToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, oops.Code("ACTIVATION_TOKEN_FAILED").Wrap(err)
	}
	token := hex.EncodeToString(buf)
	return token, &model.ActivationToken{
		TokenHash: ActivationDigest(token),
		ExpiresAt: s.now().Add(s.policy.ActivationTTL),
	}, nil
}
