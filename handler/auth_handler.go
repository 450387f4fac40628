package handler

import (
	"context"
	"encoding/base64"
	"go-account-api/common"
	"go-account-api/logger"
	"go-account-api/model"
	"go-account-api/service"
	"net/http"

	"github.com/samber/oops"
)

// Authenticator logs users in and activates accounts.
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (*service.TokenPair, error)
	Activate(ctx context.Context, token string) (int, error)
}

// CSRFIssuer hands out CSRF tokens for a session.
type CSRFIssuer interface {
	Token(sessionID string) string
}

type AuthHandler struct {
	auth     Authenticator
	sessions SessionStore
	csrf     CSRFIssuer
}

func NewAuthHandler(auth Authenticator, sessions SessionStore, csrf CSRFIssuer) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, csrf: csrf}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials of an active account for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      model.LoginRequest  true  "Credentials"
// @Success      200          {object}  service.TokenPair
// @Failure      400          {object}  map[string]interface{}
// @Failure      401          {object}  map[string]interface{}
// @Failure      403          {object}  map[string]interface{}
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	pair, err := h.auth.Login(r.Context(), req)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Activate godoc
// @Summary      Activate an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      model.ActivateRequest  true  "Activation token"
// @Success      200    {object}  map[string]int
// @Failure      400    {object}  map[string]interface{}
// @Router       /activate [post]
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) error {
	var req model.ActivateRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	accountID, err := h.auth.Activate(r.Context(), req.Token)
	if err != nil {
		return err
	}
	logger.Log.WithField("account_id", accountID).Info("Account activated through API")
	writeJSON(w, http.StatusOK, map[string]int{"account_id": accountID})
	return nil
}

// CaptchaResponse carries a challenge image; the answer never leaves the server.
type CaptchaResponse struct {
	CaptchaID string `json:"captcha_id"`
	Image     string `json:"image"`
}

// Captcha godoc
// @Summary      Issue a captcha challenge
// @Description  Starts a new challenge for the session, replacing any previous one, and returns it as a PNG data URI.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  handler.CaptchaResponse
// @Router       /captcha [get]
func (h *AuthHandler) Captcha(w http.ResponseWriter, r *http.Request) error {
	sid := SessionIDFromContext(r.Context())
	if sid == "" {
		return common.NewAppError(http.StatusBadRequest, "No session", nil)
	}
	challenge, err := service.NewCaptchaChallenge()
	if err != nil {
		return err
	}
	if err := h.sessions.SaveCaptchaDigest(r.Context(), sid, challenge.Digest, captchaTTL); err != nil {
		return oops.Code("SESSION_STORE_FAILED").Wrap(err)
	}
	writeJSON(w, http.StatusOK, CaptchaResponse{
		CaptchaID: challenge.ID,
		Image:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(challenge.PNG),
	})
	return nil
}

// CSRFToken godoc
// @Summary      Issue a CSRF token
// @Description  Returns the CSRF token admin registrations must carry.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]interface{}
// @Router       /csrf-token [get]
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) error {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		return service.ErrUnauthorized
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": h.csrf.Token(actor.SessionID)})
	return nil
}

// Alerts godoc
// @Summary      Drain flashed alerts
// @Description  Returns and clears the alerts queued for the session.
// @Tags         auth
// @Produce      json
// @Success      200  {array}  common.Alert
// @Router       /alerts [get]
func (h *AuthHandler) Alerts(w http.ResponseWriter, r *http.Request) error {
	alerts := []common.Alert{}
	if sid := SessionIDFromContext(r.Context()); sid != "" {
		drained, err := h.sessions.DrainAlerts(r.Context(), sid)
		if err != nil {
			return oops.Code("SESSION_STORE_FAILED").Wrap(err)
		}
		if drained != nil {
			alerts = drained
		}
	}
	writeJSON(w, http.StatusOK, alerts)
	return nil
}
