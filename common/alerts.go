package common

// Severity classifies a user facing alert.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Alert is a message queued for the user.
type Alert struct {
	Severity Severity `json:"type"`
	Message  string   `json:"message"`
}

// AlertSink collects alerts for a single request in insertion order.
// It is not safe for concurrent use.
type AlertSink struct {
	alerts []Alert
}

func NewAlertSink() *AlertSink {
	return &AlertSink{}
}

func (s *AlertSink) Record(severity Severity, message string) {
	s.alerts = append(s.alerts, Alert{Severity: severity, Message: message})
}

// Drain returns every recorded alert and empties the sink.
func (s *AlertSink) Drain() []Alert {
	out := s.alerts
	s.alerts = nil
	return out
}

// Count returns how many alerts of the given severity are queued.
func (s *AlertSink) Count(severity Severity) int {
	n := 0
	for _, a := range s.alerts {
		if a.Severity == severity {
			n++
		}
	}
	return n
}
