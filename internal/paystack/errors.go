package paystack

import (
	"strings"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
)

// Aliases keep the client readable; every outbound failure leaves this
// package as an apperr kind.
const (
	kindNetworkTimeout     = apperr.KindNetworkTimeout
	kindNetworkError       = apperr.KindNetworkError
	kindServiceUnavailable = apperr.KindServiceUnavailable
)

func wrapKind(kind apperr.Kind, message string, err error) error {
	return apperr.Wrap(kind, message, err)
}

func apperrService(message string) error {
	return apperr.New(apperr.KindServiceUnavailable, message)
}

func apperrInternal(message string, err error) error {
	return apperr.Wrap(apperr.KindInternal, message, err)
}

// providerError maps a provider rejection message to an error kind. Provider
// wording is surfaced in the error so resolvers can apply format fallbacks,
// but handlers keep user-facing messages generic for upstream failures.
func providerError(message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "balance is not enough"):
		return apperr.ProviderInsufficientBalance("provider balance is insufficient for this transfer")
	case strings.Contains(lower, "account number is invalid"),
		strings.Contains(lower, "invalid account"):
		return apperr.New(apperr.KindRecipientError, message)
	default:
		if message == "" {
			message = "payment provider rejected the request"
		}
		return apperr.New(apperr.KindValidation, message)
	}
}

// IsInvalidAccount reports whether the provider rejected the supplied account
// number format. The resolver uses this to decide on a phone-format fallback.
func IsInvalidAccount(err error) bool {
	if !apperr.Is(err, apperr.KindRecipientError) {
		return false
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "account number is invalid") || strings.Contains(lower, "invalid account")
}
