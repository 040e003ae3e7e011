package api

import "errors"

// Kind classifies a failed call. Only KindUnauthorized has a global
// side effect (cleared credentials, session-expired hook); everything
// else is surfaced to the caller and is terminal for that action — no
// retries anywhere.
type Kind int

const (
	// KindTransport covers network failures and timeouts.
	KindTransport Kind = iota
	// KindUnauthorized means the session itself is invalid (HTTP 401).
	KindUnauthorized
	// KindForbidden is a resource-level permission failure (HTTP 403),
	// distinct from session invalidity.
	KindForbidden
	// KindValidation carries per-field errors from the server.
	KindValidation
	// KindRejected is a business-rule rejection: an envelope with a
	// non-200 code and a user-facing message.
	KindRejected
)

type Error struct {
	Kind    Kind
	Code    int
	Message string
	Fields  map[string][]string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return "request failed"
}

func (e *Error) Unwrap() error { return e.cause }

func IsUnauthorized(err error) bool { return hasKind(err, KindUnauthorized) }
func IsForbidden(err error) bool    { return hasKind(err, KindForbidden) }
func IsTransport(err error) bool    { return hasKind(err, KindTransport) }
func IsValidation(err error) bool   { return hasKind(err, KindValidation) }
func IsRejected(err error) bool     { return hasKind(err, KindRejected) }

func hasKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// UserMessage extracts the text fit for a toast. Transport errors get a
// generic message since the raw error is operator noise, not user help.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind == KindTransport {
			return "network error, please try again"
		}
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
