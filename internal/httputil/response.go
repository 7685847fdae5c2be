package httputil

import (
	"encoding/json"
	"net/http"

	"tenantnotes/internal/domain"
)

// QuotaDetail is the message FREE tenants see when a create is refused.
const QuotaDetail = "Free plan limit reached. Upgrade to PRO to create more notes."

// QuotaProblemType identifies quota refusals so clients can offer an upgrade
// instead of treating them as a plain 403.
const QuotaProblemType = "urn:tenantnotes:problem:quota-exceeded"

var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.1",
	http.StatusUnauthorized:          "https://datatracker.ietf.org/doc/html/rfc7235#section-3.1",
	http.StatusForbidden:             "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.3",
	http.StatusNotFound:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.4",
	http.StatusConflict:              "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.8",
	http.StatusRequestEntityTooLarge: "https://datatracker.ietf.org/doc/html/rfc7231#section-6.5.11",
	http.StatusTooManyRequests:       "https://datatracker.ietf.org/doc/html/rfc6585#section-4",
	http.StatusInternalServerError:   "https://datatracker.ietf.org/doc/html/rfc7231#section-6.6.1",
}

// Problem is an RFC 7807 error body. Extension members are flattened into
// the top-level object next to the standard ones.
type Problem struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Extensions map[string]any
}

// NewProblem builds the problem for a status, typed by its defining RFC.
func NewProblem(status int, detail string) *Problem {
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	return &Problem{Type: typ, Title: http.StatusText(status), Status: status, Detail: detail}
}

// QuotaProblem describes a refused create with the plan, its limit and the
// current usage, so a client can render the upgrade prompt without a
// second request.
func QuotaProblem(q *domain.QuotaExceededError) *Problem {
	p := NewProblem(http.StatusForbidden, QuotaDetail)
	p.Type = QuotaProblemType
	p.Extensions = map[string]any{
		"code":  "quota_exceeded",
		"plan":  q.Plan,
		"limit": q.Limit,
		"used":  q.Used,
	}
	return p
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(p.Extensions)+4)
	for k, v := range p.Extensions {
		body[k] = v
	}
	body["type"] = p.Type
	body["title"] = p.Title
	body["status"] = p.Status
	if p.Detail != "" {
		body["detail"] = p.Detail
	}
	return json.Marshal(body)
}

// RespondProblem writes p as application/problem+json with p.Status.
func RespondProblem(w http.ResponseWriter, p *Problem) {
	writeBody(w, p.Status, "application/problem+json", p)
}

// RespondError writes a problem response carrying only a detail message.
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondProblem(w, NewProblem(status, detail))
}

// RespondJSON writes data as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	writeBody(w, status, "application/json", data)
}

// writeBody encodes before touching the header, so an unencodable value
// still yields a clean 500 instead of a truncated success.
func writeBody(w http.ResponseWriter, status int, contentType string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(payload)
}
