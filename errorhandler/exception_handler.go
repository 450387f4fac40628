package errorhandler

import (
	"errors"
	"go-account-api/common"
	"net/http"
)

const genericMessage = "Oops, looks like our server might have goofed. If you're an admin, please check the server logs."

// ExceptionHandler renders one class of error. AjaxHandler serves
// background requests, StandardHandler everything else.
type ExceptionHandler interface {
	AjaxHandler(w http.ResponseWriter, r *http.Request, err error)
	StandardHandler(w http.ResponseWriter, r *http.Request, err error)
	LogFlag() bool
}

// AlertPublisher queues user facing alerts for the request's session.
type AlertPublisher interface {
	Publish(r *http.Request, alerts ...common.Alert)
}

// Env is what handlers get to render with.
type Env struct {
	Negotiator ContentNegotiator
	Alerts     AlertPublisher
}

// Reply is the public description of a handled error.
type Reply struct {
	Status   int
	Messages []string
}

// StatusHandler renders a Reply built from the error. It is the building
// block for all registered handler types.
type StatusHandler struct {
	env   Env
	reply func(err error) Reply
	log   bool
}

func (h *StatusHandler) LogFlag() bool {
	return h.log
}

// AjaxHandler queues the messages as alerts and returns a small JSON body.
func (h *StatusHandler) AjaxHandler(w http.ResponseWriter, r *http.Request, err error) {
	reply := h.reply(err)
	h.publish(r, reply)
	writeReply(w, ContentTypeJSON, reply)
}

// StandardHandler queues the messages as alerts and renders an error page
// in the negotiated content type.
func (h *StatusHandler) StandardHandler(w http.ResponseWriter, r *http.Request, err error) {
	reply := h.reply(err)
	h.publish(r, reply)
	contentType := ContentTypeHTML
	if h.env.Negotiator != nil {
		contentType = h.env.Negotiator.Negotiate(r)
	}
	writeReply(w, contentType, reply)
}

func (h *StatusHandler) publish(r *http.Request, reply Reply) {
	if h.env.Alerts == nil {
		return
	}
	alerts := make([]common.Alert, 0, len(reply.Messages))
	for _, msg := range reply.Messages {
		alerts = append(alerts, common.Alert{Severity: common.SeverityDanger, Message: msg})
	}
	h.env.Alerts.Publish(r, alerts...)
}

// NewStatusHandlerType builds a handler type that always answers with status
// and message. An empty message falls back to the status text.
func NewStatusHandlerType(name string, status int, message string, logFlag bool) HandlerType {
	if message == "" {
		message = http.StatusText(status)
	}
	return HandlerType{
		Name: name,
		New: func(env Env) ExceptionHandler {
			return &StatusHandler{
				env: env,
				log: logFlag,
				reply: func(error) Reply {
					return Reply{Status: status, Messages: []string{message}}
				},
			}
		},
	}
}

// NewReplyHandlerType builds a handler type whose reply is derived from the error.
func NewReplyHandlerType(name string, logFlag bool, reply func(err error) Reply) HandlerType {
	return HandlerType{
		Name: name,
		New: func(env Env) ExceptionHandler {
			return &StatusHandler{env: env, log: logFlag, reply: reply}
		},
	}
}

// DefaultHandlerType answers any unclassified error with a generic 500 and logs it.
var DefaultHandlerType = NewStatusHandlerType("default", http.StatusInternalServerError, genericMessage, true)

// AppErrorHandlerType exposes the status and message of a *common.AppError.
var AppErrorHandlerType = NewReplyHandlerType("app_error", false, appErrorReply)

// ServerAppErrorHandlerType is AppErrorHandlerType for 5xx codes, which are logged.
var ServerAppErrorHandlerType = NewReplyHandlerType("app_error_server", true, appErrorReply)

// ValidationHandlerType answers with 400 and one message per failed field.
var ValidationHandlerType = NewReplyHandlerType("validation", false, func(err error) Reply {
	var verrs common.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, v := range verrs {
			msgs = append(msgs, v.Error())
		}
		return Reply{Status: http.StatusBadRequest, Messages: msgs}
	}
	return Reply{Status: http.StatusBadRequest, Messages: []string{err.Error()}}
})

func appErrorReply(err error) Reply {
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		return Reply{Status: http.StatusInternalServerError, Messages: []string{genericMessage}}
	}
	status := appErr.Code
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return Reply{Status: status, Messages: []string{appErr.Message}}
}

// MatchServerAppError matches *common.AppError values with a 5xx code.
func MatchServerAppError(err error) bool {
	var appErr *common.AppError
	return errors.As(err, &appErr) && appErr.Code >= http.StatusInternalServerError
}
