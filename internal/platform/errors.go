package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/errlog"
)

// Kind classifies adapter failures.
type Kind int

const (
	KindNetwork Kind = iota
	KindAPI
	KindAuthentication
	KindParse
	KindConfiguration
)

// ErrorType returns the error log tag for the kind.
func (k Kind) ErrorType() string {
	switch k {
	case KindAPI:
		return errlog.TypeAPI
	case KindAuthentication:
		return errlog.TypeAuthentication
	case KindParse:
		return errlog.TypeParse
	case KindConfiguration:
		return errlog.TypeConfiguration
	default:
		return errlog.TypeNetwork
	}
}

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "API error"
	case KindAuthentication:
		return "Authentication error"
	case KindParse:
		return "Data parse error"
	case KindConfiguration:
		return "Configuration error"
	default:
		return "Connection error"
	}
}

// RequestError describes a failed request against a service.
type RequestError struct {
	Kind       Kind
	Service    string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0:
		body := strings.TrimSpace(e.Body)
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return fmt.Sprintf("%s API returned %d: %s", e.Service, e.StatusCode, body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Service, strings.ToLower(e.Kind.String()), e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Service, strings.ToLower(e.Kind.String()))
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusError builds the error for a non-2xx response.
func StatusError(service, url string, status int, body []byte) *RequestError {
	kind := KindAPI
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuthentication
	}
	return &RequestError{Kind: kind, Service: service, URL: url, StatusCode: status, Body: string(body)}
}

// TransportError builds the error for a request that never got a response.
func TransportError(service, url string, err error) *RequestError {
	return &RequestError{Kind: KindNetwork, Service: service, URL: url, Err: err}
}

// ParseError builds the error for an undecodable response body.
func ParseError(service, url string, body []byte, err error) *RequestError {
	return &RequestError{Kind: KindParse, Service: service, URL: url, Body: string(body), Err: err}
}

// ConfigError builds the error for missing or invalid adapter settings.
func ConfigError(service, msg string) *RequestError {
	return &RequestError{Kind: KindConfiguration, Service: service, Err: errors.New(msg)}
}

// KindOf returns the kind of err, defaulting to KindNetwork.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindNetwork
}

// Record builds an error log record for err, filling request details when
// err is a *RequestError.
func Record(platformID, operation, user string, err error) errlog.Record {
	rec := errlog.New(platformID, operation).
		WithUser(user).
		WithError(KindOf(err).ErrorType(), err.Error())
	var re *RequestError
	if errors.As(err, &re) {
		rec = rec.WithRequest(re.URL, re.StatusCode, re.Body)
	}
	return rec
}

// IsTimeout reports whether err is a timeout or deadline expiry.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsRetryable reports whether a failed request is worth retrying: transport
// failures other than cancellation, 429 and 5xx responses.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *RequestError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Kind {
	case KindNetwork:
		return true
	case KindAPI:
		return re.StatusCode == http.StatusTooManyRequests || re.StatusCode >= 500
	default:
		return false
	}
}

// ClassifyConnection turns the outcome of a connection probe into a status:
// success is Connected, authentication failures are Error, timeouts are
// Warning, anything else is Error.
func ClassifyConnection(err error) activity.ConnectionStatus {
	if err == nil {
		return activity.Connected()
	}
	var re *RequestError
	if errors.As(err, &re) {
		switch re.Kind {
		case KindAuthentication:
			return activity.Error("Authentication failed")
		case KindConfiguration:
			return activity.Error(err.Error())
		}
	}
	if IsTimeout(err) {
		return activity.Warning("Connection timeout")
	}
	return activity.Error(fmt.Sprintf("Connection failed: %v", err))
}
