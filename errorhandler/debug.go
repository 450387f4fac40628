package errorhandler

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html/template"

	"github.com/samber/oops"
)

var ErrUnsupportedContentType = errors.New("cannot render unknown content type")

// Frame is one error of a wrap chain.
type Frame struct {
	Type    string `json:"type" xml:"type"`
	Message string `json:"message" xml:"message"`
}

// Diagnostic is the debug description of an error.
type Diagnostic struct {
	XMLName    xml.Name `json:"-" xml:"error"`
	Message    string   `json:"message" xml:"message"`
	Chain      []Frame  `json:"exception" xml:"exception"`
	Code       string   `json:"code,omitempty" xml:"code,omitempty"`
	Stacktrace string   `json:"stacktrace,omitempty" xml:"stacktrace,omitempty"`
}

// Diagnose walks the wrap chain of err, depth first through joined errors.
func Diagnose(err error) Diagnostic {
	d := Diagnostic{Message: err.Error()}
	walk(err, func(e error) {
		d.Chain = append(d.Chain, Frame{Type: fmt.Sprintf("%T", e), Message: e.Error()})
	})
	if oopsErr, ok := oops.AsOops(err); ok {
		d.Code = fmt.Sprint(oopsErr.Code())
		d.Stacktrace = oopsErr.Stacktrace()
	}
	return d
}

func walk(err error, visit func(error)) {
	for err != nil {
		visit(err)
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner, visit)
			}
			return
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		default:
			return
		}
	}
}

var debugPage = template.Must(template.New("debug").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Application Error</title></head>
<body>
<h1>Application Error</h1>
<p>The application could not run because of the following error:</p>
<h2>Details</h2>
{{range .Chain}}<div><strong>Type:</strong> {{.Type}}</div>
<div><strong>Message:</strong> {{.Message}}</div>
{{end}}{{if .Code}}<div><strong>Code:</strong> {{.Code}}</div>
{{end}}{{if .Stacktrace}}<h2>Trace</h2>
<pre>{{.Stacktrace}}</pre>
{{end}}</body>
</html>
`))

// RenderDiagnostic encodes d in contentType.
func RenderDiagnostic(contentType string, d Diagnostic) ([]byte, error) {
	switch contentType {
	case ContentTypeJSON:
		return json.MarshalIndent(d, "", "  ")
	case ContentTypeXML, ContentTypeTextXML:
		out, err := xml.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append([]byte(xml.Header), out...), nil
	case ContentTypeHTML:
		var buf bytes.Buffer
		if err := debugPage.Execute(&buf, d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w %s", ErrUnsupportedContentType, contentType)
	}
}
