package response

import (
	_ "embed"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/waf"
	"github.com/noticket/waf/pkg/clientip"
)

// Headers set on every blocked response.
const (
	HeaderBlocked = "X-WAF-Blocked"
	HeaderReason  = "X-WAF-Reason"
)

// BlockedCode is the machine-readable code of a blocked JSON response.
const BlockedCode = "waf_blocked"

const (
	maxReasonHeader = 100
	pageTimeFormat  = "2006-01-02 15:04:05"
	defaultReason   = "Security policy violation"
)

//go:embed blocked.html
var blockedHTML string

var blockedPage = template.Must(template.New("blocked").Parse(blockedHTML))

// blockedView holds values that are already HTML-encoded. They are typed
// as template.HTML so the template does not encode them a second time.
type blockedView struct {
	IncidentID template.HTML
	Time       template.HTML
	IP         template.HTML
	Reason     template.HTML
}

// BlockedBody is the JSON body of a blocked response.
type BlockedBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	IncidentID string `json:"incident_id"`
	Reason     string `json:"reason"`
	Timestamp  string `json:"timestamp"`
}

// Blocked renders the fixed 403 page for inc. Clients that accept
// application/json get BlockedBody instead. A nil incident renders a page
// with placeholder values.
func Blocked(inc *waf.Incident) handler.Response {
	if inc == nil {
		inc = &waf.Incident{ID: "UNKNOWN", Time: time.Now()}
	}
	reason := inc.Threat
	if reason == "" {
		reason = defaultReason
	}
	ip := inc.Request.ClientIP
	if ip == "" {
		ip = "Unknown"
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		h := w.Header()
		h.Set(HeaderBlocked, "true")
		h.Set(HeaderReason, reasonHeader(reason))
		h.Set("Cache-Control", "no-store")

		if wantsJSON(r) {
			return JSONWithStatus(BlockedBody{
				Code:       BlockedCode,
				Message:    http.StatusText(http.StatusForbidden),
				IncidentID: inc.ID,
				Reason:     reason,
				Timestamp:  inc.Time.Format(time.RFC3339),
			}, http.StatusForbidden)(w, r)
		}

		view := blockedView{
			IncidentID: template.HTML(waf.ReflectString(inc.ID)),
			Time:       template.HTML(waf.ReflectString(inc.Time.Format(pageTimeFormat))),
			IP:         template.HTML(waf.ReflectString(clientip.Mask(ip))),
			Reason:     template.HTML(waf.ReflectString(reason)),
		}
		if err := TemplateWithStatus(blockedPage, view, http.StatusForbidden)(w, r); err != nil {
			return StringWithStatus(http.StatusText(http.StatusForbidden), http.StatusForbidden)(w, r)
		}
		return nil
	}
}

func wantsJSON(r *http.Request) bool {
	return r != nil && strings.Contains(r.Header.Get("Accept"), "application/json")
}

// reasonHeader truncates s to maxReasonHeader bytes on a rune boundary and
// drops control characters.
func reasonHeader(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) <= maxReasonHeader {
		return s
	}
	cut := maxReasonHeader
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
