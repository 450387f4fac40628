package errorhandler

import (
	"net/http"

	"github.com/munnerz/goautoneg"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeXML     = "application/xml"
	ContentTypeTextXML = "text/xml"
	ContentTypeHTML    = "text/html"
)

// ContentNegotiator picks the representation of an error response.
type ContentNegotiator interface {
	Negotiate(r *http.Request) string
}

// AcceptNegotiator chooses among the known error content types from the
// Accept header. A wildcard or an unmatched header yields Default.
type AcceptNegotiator struct {
	Known   []string
	Default string
}

func NewAcceptNegotiator() AcceptNegotiator {
	return AcceptNegotiator{
		Known:   []string{ContentTypeJSON, ContentTypeXML, ContentTypeTextXML, ContentTypeHTML},
		Default: ContentTypeHTML,
	}
}

func (n AcceptNegotiator) Negotiate(r *http.Request) string {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return n.Default
	}

	// Default leads so that */* and matching type wildcards resolve to it.
	alternatives := make([]string, 0, len(n.Known)+1)
	alternatives = append(alternatives, n.Default)
	alternatives = append(alternatives, n.Known...)
	if contentType := goautoneg.Negotiate(accept, alternatives); contentType != "" {
		return contentType
	}
	return n.Default
}
