// Package apperr defines the error kinds surfaced to API callers. Every
// failure of an external dependency is translated into exactly one Kind
// with a fixed message; the wrapped error is for server logs only.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	ServiceUnavailable Kind = iota
	Unauthenticated
	Forbidden
	InvalidInput
	Conflict
	NotFound
	RateLimited
	Expired
	UpstreamInvalidResponse
)

var kindNames = map[Kind]string{
	ServiceUnavailable:      "service_unavailable",
	Unauthenticated:         "unauthenticated",
	Forbidden:               "forbidden",
	InvalidInput:            "invalid_input",
	Conflict:                "conflict",
	NotFound:                "not_found",
	RateLimited:             "rate_limited",
	Expired:                 "expired",
	UpstreamInvalidResponse: "upstream_invalid_response",
}

var defaultMessages = map[Kind]string{
	ServiceUnavailable:      "Service temporarily unavailable, please try again",
	Unauthenticated:         "Unauthorized",
	Forbidden:               "Access denied",
	InvalidInput:            "Invalid request",
	Conflict:                "Request conflicts with existing state",
	NotFound:                "Resource not found",
	RateLimited:             "Usage limit reached for this period",
	Expired:                 "Invitation has expired",
	UpstreamInvalidResponse: "The AI service returned an unusable response, please try again",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// HTTPStatus maps a kind to its wire status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case InvalidInput:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case RateLimited:
		return http.StatusTooManyRequests
	case Expired:
		return http.StatusGone
	case UpstreamInvalidResponse:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// Error carries a caller-safe Message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of kind k with the kind's default message.
func New(k Kind, cause error) *Error {
	return &Error{Kind: k, Message: defaultMessages[k], Err: cause}
}

// WithMessage builds an error of kind k with a product-specific message.
func WithMessage(k Kind, msg string, cause error) *Error {
	if msg == "" {
		msg = defaultMessages[k]
	}
	return &Error{Kind: k, Message: msg, Err: cause}
}

// KindOf reports the kind of err. Errors that were never classified are
// treated as ServiceUnavailable.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ServiceUnavailable
}

// Is reports whether err is classified as kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// PublicMessage is the text that may be shown to callers for err.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return defaultMessages[ServiceUnavailable]
}

func Unauthorized(cause error) *Error { return New(Unauthenticated, cause) }
func Denied(msg string) *Error        { return WithMessage(Forbidden, msg, nil) }
func Invalid(msg string) *Error       { return WithMessage(InvalidInput, msg, nil) }
func Unavailable(cause error) *Error  { return New(ServiceUnavailable, cause) }
func Missing(msg string) *Error       { return WithMessage(NotFound, msg, nil) }
func BadUpstream(cause error) *Error  { return New(UpstreamInvalidResponse, cause) }
func Conflicting(msg string) *Error   { return WithMessage(Conflict, msg, nil) }
func Limited(msg string) *Error       { return WithMessage(RateLimited, msg, nil) }
func ExpiredError(cause error) *Error { return New(Expired, cause) }
