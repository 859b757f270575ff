// Package apperrors classifies failures of external translation services.
package apperrors

import (
	"context"
	"errors"
	"strings"
)

type Kind string

const (
	KindTransient  Kind = "transient"
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindBadRequest Kind = "bad_request"
)

// Error is a classified failure. SafeMessage is safe to print and log;
// Cause may carry request details and stays internal.
type Error struct {
	Kind        Kind
	SafeMessage string
	Cause       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindTransient:
		return "Translation service is temporarily unavailable."
	case KindRateLimit:
		return "Translation service rate limit exceeded."
	case KindAuth:
		return "Translation service rejected the credentials."
	case KindValidation:
		return "Invalid input or configuration."
	case KindBadRequest:
		return "Translation service rejected the request."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{Kind: kind, SafeMessage: msg, Cause: cause}
}

func Transient(err error) error  { return New(KindTransient, "", err) }
func RateLimit(err error) error  { return New(KindRateLimit, "", err) }
func Auth(err error) error       { return New(KindAuth, "", err) }
func Validation(err error) error { return New(KindValidation, "", err) }
func BadRequest(err error) error { return New(KindBadRequest, "", err) }

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsRetryable reports whether another attempt at the same request may succeed.
func IsRetryable(err error) bool {
	kind, ok := KindOf(err)
	return ok && (kind == KindTransient || kind == KindRateLimit)
}

func IsRateLimit(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindRateLimit
}

// IsService reports whether err is a failure of the translation service
// itself. Unclassified errors count as service errors; cancellation and
// validation errors do not.
func IsService(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	return kind != KindValidation
}
