package handler

import (
	"context"
	"go-account-api/common"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "sid"
	sessionCookieTTL  = 24 * time.Hour
	captchaTTL        = 10 * time.Minute
)

// SessionStore keeps the session scoped state the handlers read and write.
type SessionStore interface {
	SaveCaptchaDigest(ctx context.Context, sessionID, digest string, ttl time.Duration) error
	// TakeCaptchaDigest returns the pending challenge digest and removes it,
	// so each challenge can be answered once.
	TakeCaptchaDigest(ctx context.Context, sessionID string) (string, error)
	PushAlerts(ctx context.Context, sessionID string, alerts []common.Alert) error
	DrainAlerts(ctx context.Context, sessionID string) ([]common.Alert, error)
}

// SessionMiddleware makes sure every request carries a session id cookie
// and exposes the id through the request context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(sessionCookieTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromContext returns the session id, or "" outside SessionMiddleware.
func SessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}
