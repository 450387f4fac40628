package repository

import (
	"context"
	"encoding/json"
	"errors"
	"go-account-api/common"
	"go-account-api/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	captchaKeyPrefix = "session:captcha:"
	alertsKeyPrefix  = "session:alerts:"

	// AlertsTTL bounds how long undelivered flash alerts are kept.
	AlertsTTL = 10 * time.Minute
)

// SessionRepository keeps per-session state in redis: the current captcha
// challenge digest and flash alerts waiting for the next page load.
type SessionRepository struct {
	client redis.Cmdable
}

func NewSessionRepository(client redis.Cmdable) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) SaveCaptchaDigest(ctx context.Context, sessionID, digest string, ttl time.Duration) error {
	return r.client.Set(ctx, captchaKeyPrefix+sessionID, digest, ttl).Err()
}

// TakeCaptchaDigest atomically reads and deletes the challenge digest.
// It returns "" when the session has none.
func (r *SessionRepository) TakeCaptchaDigest(ctx context.Context, sessionID string) (string, error) {
	digest, err := r.client.GetDel(ctx, captchaKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return digest, nil
}

// PushAlerts appends alerts to the session's flash queue.
func (r *SessionRepository) PushAlerts(ctx context.Context, sessionID string, alerts []common.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(alerts))
	for _, a := range alerts {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := alertsKeyPrefix + sessionID
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.Expire(ctx, key, AlertsTTL)
		return nil
	})
	return err
}

// DrainAlerts returns and removes every queued alert for the session.
func (r *SessionRepository) DrainAlerts(ctx context.Context, sessionID string) ([]common.Alert, error) {
	key := alertsKeyPrefix + sessionID

	var lrange *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw := lrange.Val()
	alerts := make([]common.Alert, 0, len(raw))
	for _, item := range raw {
		var a common.Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			logger.Log.WithError(err).Warn("Dropping malformed flash alert")
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
