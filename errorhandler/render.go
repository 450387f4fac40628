package errorhandler

import (
	"encoding/json"
	"encoding/xml"
	"go-account-api/logger"
	"html/template"
	"net/http"
)

type replyBody struct {
	XMLName  xml.Name `json:"-" xml:"error"`
	Status   int      `json:"status" xml:"status"`
	Messages []string `json:"messages" xml:"message"`
}

var replyPage = template.Must(template.New("reply").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Status}} {{.Title}}</title></head>
<body>
<h1>{{.Status}} {{.Title}}</h1>
{{range .Messages}}<p>{{.}}</p>
{{end}}</body>
</html>
`))

func writeReply(w http.ResponseWriter, contentType string, reply Reply) {
	body := replyBody{Status: reply.Status, Messages: reply.Messages}

	switch contentType {
	case ContentTypeJSON:
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.WriteHeader(reply.Status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Log.WithError(err).Error("Failed to encode error response")
		}
	case ContentTypeXML, ContentTypeTextXML:
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(reply.Status)
		if err := xml.NewEncoder(w).Encode(body); err != nil {
			logger.Log.WithError(err).Error("Failed to encode error response")
		}
	case ContentTypeHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(reply.Status)
		data := struct {
			Status   int
			Title    string
			Messages []string
		}{Status: reply.Status, Title: http.StatusText(reply.Status), Messages: reply.Messages}
		if err := replyPage.Execute(w, data); err != nil {
			logger.Log.WithError(err).Error("Failed to render error page")
		}
	default:
		writePlain(w, reply.Status, reply.Messages...)
	}
}

func writePlain(w http.ResponseWriter, status int, lines ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	for _, line := range lines {
		_, _ = w.Write([]byte(line + "\n"))
	}
}
