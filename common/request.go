package common

import (
	"net/http"
	"strings"
)

// IsAsync reports whether the caller expects a structured payload rather
// than a redirect: an XMLHttpRequest, or an explicit ajaxMode=true.
func IsAsync(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	if r.Form != nil {
		return r.Form.Get("ajaxMode") == "true"
	}
	return r.URL.Query().Get("ajaxMode") == "true"
}
