package service

import (
	"context"
	"go-account-api/logger"
	"go-account-api/model"

	"github.com/sirupsen/logrus"
)

// ActivationNotifier delivers an activation token to the account owner.
type ActivationNotifier interface {
	NotifyActivation(ctx context.Context, account *model.Account, token string) error
}

// LogNotifier writes activation tokens to the log. Mail delivery is not
// part of this service.
type LogNotifier struct{}

func (LogNotifier) NotifyActivation(_ context.Context, account *model.Account, token string) error {
	logger.Log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"email":      account.Email,
		"token":      token,
	}).Info("Activation token issued")
	return nil
}
