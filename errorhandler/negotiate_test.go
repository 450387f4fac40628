package errorhandler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptNegotiator(t *testing.T) {
	n := NewAcceptNegotiator()
	tests := []struct {
		accept string
		want   string
	}{
		{accept: "", want: ContentTypeHTML},
		{accept: "application/json", want: ContentTypeJSON},
		{accept: "text/xml", want: ContentTypeTextXML},
		{accept: "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", want: ContentTypeHTML},
		{accept: "application/xml;q=0.5, application/json;q=0.9", want: ContentTypeJSON},
		{accept: "image/png", want: ContentTypeHTML},
		{accept: "*/*", want: ContentTypeHTML},
		{accept: "application/json;q=bogus, text/xml", want: ContentTypeTextXML},
		{accept: "application/*;q=0.9, image/png", want: ContentTypeJSON},
		{accept: "text/*", want: ContentTypeHTML},
		{accept: "image/png, text/xml;q=0.2", want: ContentTypeTextXML},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			assert.Equal(t, tt.want, n.Negotiate(r))
		})
	}
}
