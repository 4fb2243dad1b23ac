package platform

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kain88-de/reviewr/internal/errlog"
)

// loggedError marks an error that has already been appended to the error
// log, so the registry does not record it twice.
type loggedError struct {
	error
}

func (e loggedError) Unwrap() error { return e.error }

// IsLogged reports whether err was returned by Fail.
func IsLogged(err error) bool {
	var le loggedError
	return errors.As(err, &le)
}

// Reporter appends adapter failures to the error log at the failure site.
type Reporter struct {
	PlatformID string
	Errors     *errlog.Log
	Logger     *slog.Logger
}

// Fail records err for operation and returns it marked as logged.
// Cancellation is not a failure and is returned untouched.
// Metadata is given as alternating key, value pairs.
func (r Reporter) Fail(operation, user string, err error, metadata ...string) error {
	if err == nil || IsLogged(err) || errors.Is(err, context.Canceled) {
		return err
	}
	rec := Record(r.PlatformID, operation, user, err)
	for i := 0; i+1 < len(metadata); i += 2 {
		rec = rec.WithMetadata(metadata[i], metadata[i+1])
	}
	if r.Logger != nil {
		r.Logger.Error("platform request failed",
			"platform", r.PlatformID, "operation", operation, "type", rec.ErrorType, "error", err)
	}
	if aerr := r.Errors.Append(rec); aerr != nil && r.Logger != nil {
		r.Logger.Warn("failed to write error log", "error", aerr)
	}
	return loggedError{err}
}
