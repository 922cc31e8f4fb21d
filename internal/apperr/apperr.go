package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every error the service can surface to a caller or an
// operator. Outbound-call failures are mapped to a Kind at the call site so
// raw transport errors never cross back into business logic.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindUnauthenticated     Kind = "unauthenticated"
	KindNotFound            Kind = "not_found"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindAmountTooLow        Kind = "amount_too_low"
	KindNetworkTimeout      Kind = "network_timeout"
	KindNetworkError        Kind = "network_error"
	KindServiceUnavailable  Kind = "service_unavailable"
	KindRecipientError      Kind = "recipient_error"
	KindLedgerInconsistency Kind = "ledger_inconsistency"
	KindInternal            Kind = "internal_error"
)

// Error carries an error kind alongside a user-facing message. It is the
// result type passed back by value across the retry boundary; the executor
// inspects Retryable before deciding to try again.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, defaulting to internal_error for
// anything that was not classified at its call site.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether an error class is worth another attempt. Only
// transient network and upstream-availability failures qualify; validation
// and funds-related failures never do.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetworkTimeout, KindNetworkError, KindServiceUnavailable:
		return true
	default:
		return false
	}
}

// Status maps an error to the HTTP status its class is reported with.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindAmountTooLow, KindRecipientError:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientBalance:
		return http.StatusBadRequest
	case KindNetworkTimeout, KindNetworkError, KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ProviderInsufficientBalance marks a provider-side shortfall, which reports
// as 503 rather than the caller's own 400.
func ProviderInsufficientBalance(message string) *Error {
	return &Error{Kind: KindInsufficientBalance, Message: message, Err: errServiceSide}
}

var errServiceSide = errors.New("service-side")

// ServiceSide reports whether an insufficient_balance error originated at the
// provider instead of the caller's wallet.
func ServiceSide(err error) bool {
	return errors.Is(err, errServiceSide)
}

// StatusFor resolves the HTTP status including the service-side
// insufficient_balance special case.
func StatusFor(err error) int {
	if Is(err, KindInsufficientBalance) && ServiceSide(err) {
		return http.StatusServiceUnavailable
	}
	return Status(err)
}
