// Package errs defines the analyzer error taxonomy. Extraction errors are
// advisory (the extractor substitutes estimates instead of failing),
// validation and forecast errors are fatal to their stage, and valuation and
// external-API errors are recovered by the caller with a logged fallback.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind partitions analyzer failures by origin and recovery policy.
type Kind int

const (
	KindExtraction Kind = iota
	KindValidation
	KindForecast
	KindValuation
	KindExternalAPI
)

func (k Kind) String() string {
	switch k {
	case KindExtraction:
		return "EXTRACTION_ERROR"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindForecast:
		return "FORECAST_ERROR"
	case KindValuation:
		return "VALUATION_ERROR"
	case KindExternalAPI:
		return "EXTERNAL_API_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error carries a kind, a human-readable message, and optional structured
// details that survive into API payloads and audit logs.
type Error struct {
	Kind    Kind
	Msg     string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches errors of the same kind, so errors.Is(err, errs.Validation("", nil))
// style checks work through wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Extraction builds an extraction error (malformed or unreadable source text).
func Extraction(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: KindExtraction, Msg: msg, Details: details}
}

// Validation builds a validation error (unusable statement shape; fatal).
func Validation(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Details: details}
}

// Forecast builds a forecast error (insufficient history; fatal).
func Forecast(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: KindForecast, Msg: msg, Details: details}
}

// Valuation builds a valuation error (bad valuation inputs; normally
// recovered by clamping rather than surfaced).
func Valuation(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: KindValuation, Msg: msg, Details: details}
}

// ExternalAPI wraps a collaborator failure (market data, news, LLM); callers
// fall back and continue.
func ExternalAPI(msg string, err error) *Error {
	return &Error{Kind: KindExternalAPI, Msg: msg, Err: err}
}

// IsKind reports whether err is (or wraps) an analyzer error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
