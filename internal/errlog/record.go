// Package errlog provides the append-only JSONL error telemetry log.
//
// Every platform failure is captured as a Record and appended as one JSON
// line to error.log in the data directory. The log is read back by the
// errors command for diagnosis.
package errlog

import (
	"time"
)

// Error type tags written to Record.ErrorType.
const (
	TypeNetwork        = "network_error"
	TypeAPI            = "api_error"
	TypeAuthentication = "authentication_error"
	TypeParse          = "json_parse_error"
	TypeConfiguration  = "configuration_error"
)

// MaxBodyBytes caps the response body snippet stored with a record.
const MaxBodyBytes = 2048

// Record is one failure, created at the failure site and never mutated after
// it has been appended.
type Record struct {
	PlatformID   string            `json:"platform_id"`
	Operation    string            `json:"operation"`
	User         *string           `json:"user"`
	Timestamp    string            `json:"timestamp"`
	ErrorType    string            `json:"error_type"`
	ErrorMessage string            `json:"error_message"`
	RequestURL   *string           `json:"request_url"`
	StatusCode   *int              `json:"status_code"`
	ResponseBody *string           `json:"response_body"`
	Metadata     map[string]string `json:"metadata"`
}

// now is replaced in tests.
var now = time.Now

// New starts a record for a failed operation on a platform.
func New(platformID, operation string) Record {
	return Record{
		PlatformID: platformID,
		Operation:  operation,
		Timestamp:  now().UTC().Format(time.RFC3339),
		Metadata:   map[string]string{},
	}
}

// WithUser sets the user the operation ran for.
func (r Record) WithUser(user string) Record {
	if user != "" {
		r.User = &user
	}
	return r
}

// WithError sets the error type tag and message.
func (r Record) WithError(errorType, message string) Record {
	r.ErrorType = errorType
	r.ErrorMessage = message
	return r
}

// WithRequest attaches request details. A zero status or empty body is
// recorded as absent.
func (r Record) WithRequest(url string, status int, body string) Record {
	if url != "" {
		r.RequestURL = &url
	}
	if status != 0 {
		r.StatusCode = &status
	}
	if body != "" {
		if len(body) > MaxBodyBytes {
			body = body[:MaxBodyBytes]
		}
		r.ResponseBody = &body
	}
	return r
}

// WithMetadata adds one metadata entry.
func (r Record) WithMetadata(key, value string) Record {
	md := make(map[string]string, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		md[k] = v
	}
	md[key] = value
	r.Metadata = md
	return r
}

// Time parses the record timestamp. The zero time is returned for
// malformed values.
func (r Record) Time() time.Time {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UserOrEmpty returns the user or "".
func (r Record) UserOrEmpty() string {
	if r.User == nil {
		return ""
	}
	return *r.User
}
