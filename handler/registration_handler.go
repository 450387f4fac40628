package handler

import (
	"context"
	"errors"
	"go-account-api/common"
	"go-account-api/config"
	"go-account-api/logger"
	"go-account-api/model"
	"go-account-api/service"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	redirectInstall  = "/install"
	redirectLogin    = "/login"
	redirectAccount  = "/account"
	redirectRegister = "/register"
)

// Registrar creates accounts.
type Registrar interface {
	Policy() config.Registration
	RootAccountExists(ctx context.Context) (bool, error)
	Create(ctx context.Context, in service.AccountInput) (*service.Created, error)
}

// CSRFVerifier checks a CSRF token against a session.
type CSRFVerifier interface {
	Verify(sessionID, token string) bool
}

// CaptchaVerifier checks a captcha answer against the stored digest.
type CaptchaVerifier interface {
	Verify(token, challengeDigest string) bool
}

type RegistrationHandler struct {
	registrar Registrar
	sessions  SessionStore
	csrf      CSRFVerifier
	captcha   CaptchaVerifier
}

func NewRegistrationHandler(registrar Registrar, sessions SessionStore, csrf CSRFVerifier, captcha CaptchaVerifier) *RegistrationHandler {
	return &RegistrationHandler{registrar: registrar, sessions: sessions, csrf: csrf, captcha: captcha}
}

// registration carries the per-request state of one form submission.
type registration struct {
	w      http.ResponseWriter
	r      *http.Request
	async  bool
	alerts *common.AlertSink
}

func (reg *registration) fail(errorCount int, location string) error {
	return reg.finish(model.RegistrationResult{Errors: errorCount}, location)
}

func (reg *registration) finish(result model.RegistrationResult, location string) error {
	if reg.async {
		writeJSON(reg.w, http.StatusOK, result)
		return nil
	}
	http.Redirect(reg.w, reg.r, location, http.StatusSeeOther)
	return nil
}

// Register godoc
// @Summary      Register a new account
// @Description  Self registration (captcha) or admin registration (bearer token and csrf_token). Background callers (ajaxMode=true or X-Requested-With) get a result object, others a redirect.
// @Tags         accounts
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        user_name        formData  string  true   "Login name"
// @Param        display_name     formData  string  true   "Display name"
// @Param        email            formData  string  true   "Email address"
// @Param        title            formData  string  false  "Title (required in admin mode)"
// @Param        password         formData  string  true   "Password"
// @Param        passwordc        formData  string  true   "Password confirmation"
// @Param        admin            formData  bool    false  "Admin mode"
// @Param        add_groups       formData  string  false  "Comma separated group ids (admin mode)"
// @Param        skip_activation  formData  bool    false  "Skip activation (admin mode)"
// @Param        captcha          formData  string  false  "Captcha answer (self registration)"
// @Param        csrf_token       formData  string  false  "CSRF token (admin mode)"
// @Param        ajaxMode         formData  bool    false  "Return a result object instead of redirecting"
// @Success      200  {object}  model.RegistrationResult
// @Success      303
// @Failure      500  {object}  map[string]interface{}
// @Router       /register [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Malformed form body", err)
	}
	ctx := r.Context()
	reg := &registration{w: w, r: r, async: common.IsAsync(r), alerts: common.NewAlertSink()}
	defer func() {
		flashAlerts(r, h.sessions, reg.alerts.Drain())
	}()

	form := r.PostForm
	adminMode := form.Get("admin") == "true"
	actor, authenticated := ActorFromContext(ctx)
	policy := h.registrar.Policy()

	log := logger.Log.WithFields(logrus.Fields{
		"admin_mode": adminMode,
		"async":      reg.async,
	})

	if adminMode {
		if !authenticated {
			reg.alerts.Record(common.SeverityDanger, "You must be logged in to access this resource.")
			return reg.fail(1, redirectLogin)
		}
		log = log.WithField("actor_id", actor.UserID)
		token := strings.TrimSpace(form.Get("csrf_token"))
		if !h.csrf.Verify(actor.SessionID, token) {
			log.Warn("Admin registration rejected: CSRF token mismatch")
			reg.alerts.Record(common.SeverityDanger, "Access denied.")
			return reg.fail(1, redirectRegister)
		}
	} else {
		rootExists, err := h.registrar.RootAccountExists(ctx)
		if err != nil {
			return err
		}
		if !rootExists {
			reg.alerts.Record(common.SeverityDanger, "The root account has not been created yet. Please complete the installation.")
			return reg.fail(1, redirectInstall)
		}
		if !policy.Enabled {
			reg.alerts.Record(common.SeverityDanger, "Account registration is currently disabled.")
			return reg.fail(1, redirectLogin)
		}
		if authenticated {
			reg.alerts.Record(common.SeverityDanger, "You cannot register for an account while logged in. Please log out first.")
			return reg.fail(1, redirectAccount)
		}
	}

	input, errorCount := h.extract(ctx, form, adminMode, policy, reg.alerts)
	if errorCount > 0 {
		log.WithField("error_count", errorCount).Info("Registration rejected")
		return reg.fail(errorCount, redirectRegister)
	}

	created, err := h.registrar.Create(ctx, input)
	if err != nil {
		switch {
		case service.IsValidationFailure(err):
			reg.alerts.Record(common.SeverityDanger, err.Error())
		case errors.Is(err, service.ErrDuplicateAccount):
			reg.alerts.Record(common.SeverityDanger, "That user name or email address is already in use.")
		default:
			return err
		}
		return reg.fail(1, redirectRegister)
	}

	if created.ActivationRequired {
		reg.alerts.Record(common.SeveritySuccess, "You have successfully registered. You will receive an activation token shortly.")
	} else {
		reg.alerts.Record(common.SeveritySuccess, "You have successfully registered. You can now log in.")
	}
	reg.alerts.Record(common.SeveritySuccess, "Account for "+input.UserName+" has been created.")

	return reg.finish(model.RegistrationResult{Successes: 1}, referralPage(r))
}

// extract reads and checks the form fields. Every problem is recorded as an
// alert and counted; nothing stops at the first failure.
func (h *RegistrationHandler) extract(ctx context.Context, form url.Values, adminMode bool, policy config.Registration, alerts *common.AlertSink) (service.AccountInput, int) {
	v := common.NewFormValidator(form)

	req := model.RegistrationRequest{
		UserName:    strings.TrimSpace(v.RequiredField("user_name")),
		DisplayName: strings.TrimSpace(v.RequiredField("display_name")),
		Email:       strings.TrimSpace(v.RequiredField("email")),
		AdminMode:   adminMode,
	}
	if adminMode {
		req.Title = strings.TrimSpace(v.RequiredField("title"))
	} else {
		req.Title = policy.DefaultTitle
	}
	req.Password = v.RequiredField("password")
	req.PasswordConfirm = v.RequiredField("passwordc")

	addGroups, _ := v.OptionalField("add_groups")
	skipActivation, _ := v.OptionalField("skip_activation")
	captcha, _ := v.OptionalField("captcha")
	req.AddGroups = strings.TrimSpace(addGroups)
	req.SkipActivation = skipActivation == "true"
	req.CaptchaToken = captcha

	v.ValidateStruct(req)
	if adminMode && req.AddGroups != "" {
		if _, err := service.ParseGroupIDs(req.AddGroups); err != nil {
			v.AddError("add_groups", "must be a comma separated list of group ids")
		}
	}
	if req.Password != "" && req.PasswordConfirm != "" && req.Password != req.PasswordConfirm {
		v.AddError("passwordc", "does not match password")
	}

	for _, e := range v.Errors() {
		alerts.Record(common.SeverityDanger, e.Error())
	}
	errorCount := v.ErrorCount()

	if !adminMode && !h.captchaValid(ctx, req.CaptchaToken) {
		alerts.Record(common.SeverityDanger, "Failed captcha validation.")
		errorCount++
	}

	return service.AccountInput{
		UserName:        req.UserName,
		DisplayName:     req.DisplayName,
		Email:           req.Email,
		Title:           req.Title,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		AdminMode:       adminMode,
		SkipActivation:  req.SkipActivation,
		AddGroups:       req.AddGroups,
	}, errorCount
}

func (h *RegistrationHandler) captchaValid(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	sid := SessionIDFromContext(ctx)
	if sid == "" {
		return false
	}
	digest, err := h.sessions.TakeCaptchaDigest(ctx, sid)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to read captcha challenge")
		return false
	}
	return h.captcha.Verify(token, digest)
}

// referralPage returns the Referer when it points back at this host.
func referralPage(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "/"
	}
	if u.Host != "" && u.Host != r.Host {
		return "/"
	}
	if u.Path == "" {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
