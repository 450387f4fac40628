package errorhandler

import (
	"go-account-api/common"
	"go-account-api/logger"
	"go-account-api/metrics"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Options struct {
	// Debug renders diagnostics instead of classified replies.
	Debug bool
	// DebugAsync extends Debug to background requests, which otherwise get
	// the ajax path.
	DebugAsync bool
	Negotiator ContentNegotiator
	Alerts     AlertPublisher
	Metrics    *metrics.Metrics
}

// Responder turns any error into a response.
type Responder struct {
	classifier *Classifier
	opts       Options
	env        Env
}

func NewResponder(classifier *Classifier, opts Options) *Responder {
	if opts.Negotiator == nil {
		opts.Negotiator = NewAcceptNegotiator()
	}
	return &Responder{
		classifier: classifier,
		opts:       opts,
		env:        Env{Negotiator: opts.Negotiator, Alerts: opts.Alerts},
	}
}

// Respond writes the response for err. It always writes a status and a body.
func (rp *Responder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	async := common.IsAsync(r)
	useStandard := !async || rp.opts.DebugAsync

	log := logger.Log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"async":  async,
	})

	if rp.opts.Debug && useStandard {
		rp.opts.Metrics.IncErrorHandled("debug", "debug")
		log.WithError(err).Error("Unhandled error")
		rp.debugResponse(w, r, err, log)
		return
	}

	handlerType := rp.classifier.Classify(err)
	handler := handlerType.New(rp.env)

	route := "ajax"
	if useStandard {
		route = "standard"
		handler.StandardHandler(w, r, err)
	} else {
		handler.AjaxHandler(w, r, err)
	}
	rp.opts.Metrics.IncErrorHandled(handlerType.Name, route)

	if handler.LogFlag() {
		log.WithError(err).WithField("handler", handlerType.Name).Error("Unhandled error")
	}
}

func (rp *Responder) debugResponse(w http.ResponseWriter, r *http.Request, err error, log *logrus.Entry) {
	contentType := rp.opts.Negotiator.Negotiate(r)
	body, renderErr := RenderDiagnostic(contentType, Diagnose(err))
	if renderErr != nil {
		log.WithError(renderErr).Error("Failed to render debug response")
		writePlain(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(body)
}
