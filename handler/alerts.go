package handler

import (
	"encoding/json"
	"go-account-api/common"
	"go-account-api/logger"
	"net/http"
)

// SessionAlertPublisher flashes alerts into the request's session.
type SessionAlertPublisher struct {
	store SessionStore
}

func NewSessionAlertPublisher(store SessionStore) *SessionAlertPublisher {
	return &SessionAlertPublisher{store: store}
}

func (p *SessionAlertPublisher) Publish(r *http.Request, alerts ...common.Alert) {
	flashAlerts(r, p.store, alerts)
}

func flashAlerts(r *http.Request, store SessionStore, alerts []common.Alert) {
	sid := SessionIDFromContext(r.Context())
	if sid == "" || len(alerts) == 0 || store == nil {
		return
	}
	if err := store.PushAlerts(r.Context(), sid, alerts); err != nil {
		logger.Log.WithError(err).WithField("count", len(alerts)).Warn("Failed to flash alerts to session")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}
