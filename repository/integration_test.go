//go:build integration

package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"go-account-api/common"
	"go-account-api/config"
	"go-account-api/db"
	"go-account-api/model"
	"go-account-api/repository"
	"go-account-api/service"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("accounts_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, db.MigrateUp(connStr))

	database, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestRegistration_ConcurrentDuplicates_Integration(t *testing.T) {
	database := startPostgres(t)
	repo := repository.NewUserRepository(database, repository.NewTokenRepository(database))
	policy := config.Registration{Enabled: true, RequireActivation: false, ActivationTTL: time.Hour}
	svc := service.NewRegistrationService(repo, service.BcryptHasher{Cost: 4}, policy, nil, nil)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(context.Background(), service.AccountInput{
				UserName:        "racer",
				DisplayName:     "Racer",
				Email:           "racer@test.com",
				Title:           "New Member",
				Password:        "password123",
				PasswordConfirm: "password123",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, service.ErrDuplicateAccount)
	}
	assert.Equal(t, 1, succeeded)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM accounts WHERE user_name = 'racer'`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRegistration_DefaultGroupsAndActivation_Integration(t *testing.T) {
	ctx := context.Background()
	database := startPostgres(t)
	repo := repository.NewUserRepository(database, repository.NewTokenRepository(database))
	policy := config.Registration{Enabled: true, RequireActivation: true, ActivationTTL: time.Hour}

	notifier := &capturingNotifier{}
	svc := service.NewRegistrationService(repo, service.BcryptHasher{Cost: 4}, policy, notifier, nil)
	created, err := svc.Create(ctx, service.AccountInput{
		UserName:        "pending",
		DisplayName:     "Pending",
		Email:           "pending@test.com",
		Title:           "New Member",
		Password:        "password123",
		PasswordConfirm: "password123",
	})
	require.NoError(t, err)
	assert.True(t, created.ActivationRequired)
	require.NotEmpty(t, created.GroupIDs)

	var memberships int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM group_memberships WHERE account_id = $1`, created.AccountID).Scan(&memberships))
	assert.Equal(t, len(created.GroupIDs), memberships)

	auth := service.NewAuthService(repo, service.NewTokenService("jwt-secret", time.Hour))
	_, err = auth.Login(ctx, model.LoginRequest{UserName: "pending", Password: "password123"})
	assert.ErrorIs(t, err, service.ErrAccountInactive)

	accountID, err := auth.Activate(ctx, notifier.token)
	require.NoError(t, err)
	assert.Equal(t, created.AccountID, accountID)

	_, err = auth.Activate(ctx, notifier.token)
	assert.ErrorIs(t, err, service.ErrActivationTokenInvalid, "tokens are single use")

	pair, err := auth.Login(ctx, model.LoginRequest{UserName: "pending", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRegistration_UnknownGroupLeavesAccount_Integration(t *testing.T) {
	ctx := context.Background()
	database := startPostgres(t)
	repo := repository.NewUserRepository(database, repository.NewTokenRepository(database))
	svc := service.NewRegistrationService(repo, service.BcryptHasher{Cost: 4}, config.Registration{Enabled: true}, nil, nil)

	_, err := svc.Create(ctx, service.AccountInput{
		UserName:        "orphan",
		DisplayName:     "Orphan",
		Email:           "orphan@test.com",
		Title:           "Editor",
		Password:        "password123",
		PasswordConfirm: "password123",
		AdminMode:       true,
		AddGroups:       "999",
	})
	var partial *service.PartialMembershipError
	require.True(t, errors.As(err, &partial))

	var exists bool
	require.NoError(t, database.QueryRow(`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, partial.AccountID).Scan(&exists))
	assert.True(t, exists, "the account is not rolled back when memberships fail")
}

type capturingNotifier struct {
	token string
}

func (n *capturingNotifier) NotifyActivation(_ context.Context, _ *model.Account, token string) error {
	n.token = token
	return nil
}

func TestSessionRepository_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	repo := repository.NewSessionRepository(client)

	t.Run("captcha digest is single use", func(t *testing.T) {
		digest, err := repo.TakeCaptchaDigest(ctx, "sid-1")
		require.NoError(t, err)
		assert.Empty(t, digest)

		require.NoError(t, repo.SaveCaptchaDigest(ctx, "sid-1", "abc", time.Minute))
		digest, err = repo.TakeCaptchaDigest(ctx, "sid-1")
		require.NoError(t, err)
		assert.Equal(t, "abc", digest)

		digest, err = repo.TakeCaptchaDigest(ctx, "sid-1")
		require.NoError(t, err)
		assert.Empty(t, digest, "a challenge is answered once")
	})

	t.Run("alerts drain once", func(t *testing.T) {
		alerts := []common.Alert{
			{Severity: common.SeverityDanger, Message: "first"},
			{Severity: common.SeveritySuccess, Message: "second"},
		}
		require.NoError(t, repo.PushAlerts(ctx, "sid-2", alerts))

		drained, err := repo.DrainAlerts(ctx, "sid-2")
		require.NoError(t, err)
		assert.Equal(t, alerts, drained)

		drained, err = repo.DrainAlerts(ctx, "sid-2")
		require.NoError(t, err)
		assert.Empty(t, drained)
	})
}
