package handler

import (
	"context"
	"fmt"
	"go-account-api/model"
	"go-account-api/service"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

type contextKey string

const (
	actorKey     contextKey = "actor"
	sessionIDKey contextKey = "sessionID"
)

// Actor is the authenticated caller. SessionID is the token's jti.
type Actor struct {
	UserID    int
	UserName  string
	SessionID string
}

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(token string) (*model.AppClaims, error)
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*Actor)
	return actor, ok && actor != nil
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
		return "", false
	}
	return headerParts[1], true
}

func withActor(r *http.Request, claims *model.AppClaims) *http.Request {
	actor := &Actor{UserID: claims.UserID, UserName: claims.UserName, SessionID: claims.ID}
	return r.WithContext(context.WithValue(r.Context(), actorKey, actor))
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens TokenParser, responder ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				responder.Respond(w, r, service.ErrUnauthorized)
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				responder.Respond(w, r, oops.Code("TOKEN_INVALID").Wrap(fmt.Errorf("%w: %w", service.ErrUnauthorized, err)))
				return
			}

			next.ServeHTTP(w, withActor(r, claims))
		})
	}
}

// OptionalAuth attaches the actor when a valid bearer token is present and
// lets every request through.
func OptionalAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, ok := bearerToken(r); ok {
				if claims, err := tokens.Parse(tokenString); err == nil {
					r = withActor(r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
