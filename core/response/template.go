package response

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/noticket/waf/core/handler"
)

var errNilTemplate = errors.New("response: template is nil")

// TemplateWithStatus renders tmpl into a buffer and writes it only when
// execution succeeds, so a failing template never leaves a partial page.
func TemplateWithStatus(tmpl *template.Template, data any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if tmpl == nil {
			return errNilTemplate
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return err
		}
		return write(w, "text/html; charset=utf-8", status, buf.Bytes())
	}
}
