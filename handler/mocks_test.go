package handler

import (
	"context"
	"go-account-api/common"
	"go-account-api/config"
	"go-account-api/errorhandler"
	"go-account-api/model"
	"go-account-api/service"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) Policy() config.Registration {
	args := m.Called()
	return args.Get(0).(config.Registration)
}

func (m *MockRegistrar) RootAccountExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrar) Create(ctx context.Context, in service.AccountInput) (*service.Created, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Created), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SaveCaptchaDigest(ctx context.Context, sessionID, digest string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, digest, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) TakeCaptchaDigest(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) PushAlerts(ctx context.Context, sessionID string, alerts []common.Alert) error {
	args := m.Called(ctx, sessionID, alerts)
	return args.Error(0)
}

func (m *MockSessionStore) DrainAlerts(ctx context.Context, sessionID string) ([]common.Alert, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.Alert), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, req model.LoginRequest) (*service.TokenPair, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthenticator) Activate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

// staticCSRF accepts exactly one token.
type staticCSRF string

func (s staticCSRF) Verify(_, token string) bool { return token != "" && token == string(s) }

func (s staticCSRF) Token(string) string { return string(s) }

func newTestResponder(t *testing.T) *errorhandler.Responder {
	t.Helper()
	c := errorhandler.NewClassifier(errorhandler.DefaultHandlerType)
	require.NoError(t, RegisterErrorHandlers(c))
	return errorhandler.NewResponder(c, errorhandler.Options{Negotiator: errorhandler.NewAcceptNegotiator()})
}

func withSession(r *http.Request, sid string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionIDKey, sid))
}

func withTestActor(r *http.Request, actor *Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorKey, actor))
}
