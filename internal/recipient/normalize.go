package recipient

import (
	"strings"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
)

const (
	countryPrefix = "+254"
	localPrefix   = "0"
)

// PhoneForms holds the two representations providers accept. Providers are
// inconsistent about which one they take, so the resolver tries the
// international form first and falls back to the local form once.
type PhoneForms struct {
	International string // +2547XXXXXXXX
	Local         string // 07XXXXXXXX
}

// NormalizePhone strips separators and converts a Kenyan mobile number into
// both international and local forms.
func NormalizePhone(raw string) (PhoneForms, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separator, drop
		default:
			return PhoneForms{}, apperr.Newf(apperr.KindValidation, "phone number contains invalid character %q", r)
		}
	}
	s := b.String()

	var subscriber string // the nine digits after the country/trunk prefix
	switch {
	case strings.HasPrefix(s, countryPrefix):
		subscriber = s[len(countryPrefix):]
	case strings.HasPrefix(s, "254"):
		subscriber = s[3:]
	case strings.HasPrefix(s, localPrefix) && len(s) == 10:
		subscriber = s[1:]
	case len(s) == 9 && (s[0] == '7' || s[0] == '1'):
		subscriber = s
	default:
		return PhoneForms{}, apperr.Newf(apperr.KindValidation, "unrecognized phone number format %q", raw)
	}

	if len(subscriber) != 9 || (subscriber[0] != '7' && subscriber[0] != '1') {
		return PhoneForms{}, apperr.Newf(apperr.KindValidation, "unrecognized phone number format %q", raw)
	}

	return PhoneForms{
		International: countryPrefix + subscriber,
		Local:         localPrefix + subscriber,
	}, nil
}

// channelAliases enumerates the known catalog identifiers per mobile network,
// already in normalized form. Adding a provider means adding a row here, not
// another inline conditional.
var channelAliases = map[string][]string{
	"mpesa":  {"mpesa", "safaricom"},
	"airtel": {"airtel", "airtelmoney"},
}

// normalizeIdentifier lowercases and strips punctuation so catalog entries
// like "M-PESA" and "m_pesa" compare equal.
func normalizeIdentifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchesChannel reports whether a normalized catalog identifier refers to
// the given mobile network.
func matchesChannel(channel string, identifiers ...string) bool {
	aliases, ok := channelAliases[channel]
	if !ok {
		return false
	}
	for _, id := range identifiers {
		norm := normalizeIdentifier(id)
		if norm == "" {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(norm, alias) {
				return true
			}
		}
	}
	return false
}
