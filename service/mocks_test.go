package service

import (
	"context"
	"go-account-api/model"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) ExistsByUsername(ctx context.Context, userName string) (bool, error) {
	args := m.Called(ctx, userName)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) AccountExists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) InsertAccount(ctx context.Context, account *model.Account, activation *model.ActivationToken) error {
	args := m.Called(ctx, account, activation)
	return args.Error(0)
}

func (m *MockUserStore) InsertMemberships(ctx context.Context, accountID int, groupIDs []int) error {
	args := m.Called(ctx, accountID, groupIDs)
	return args.Error(0)
}

func (m *MockUserStore) DefaultGroupIDs(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) GetByUserName(ctx context.Context, userName string) (*model.Account, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountReader) Activate(ctx context.Context, tokenHash string, now time.Time) (int, error) {
	args := m.Called(ctx, tokenHash, now)
	return args.Int(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyActivation(ctx context.Context, account *model.Account, token string) error {
	args := m.Called(ctx, account, token)
	return args.Error(0)
}

// plainHasher avoids paying for a real KDF in unit tests.
type plainHasher struct {
	err error
}

func (h plainHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func (h plainHasher) Verify(password, hash string) (bool, error) {
	return hash == "hashed:"+password, nil
}
