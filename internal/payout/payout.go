// Package payout holds the domain vocabulary for external payouts: the
// supported channels, their destination shapes, and the fee schedules.
package payout

import (
	"strings"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
)

// Channel identifies a payout rail.
type Channel string

const (
	ChannelMpesa  Channel = "mpesa"
	ChannelAirtel Channel = "airtel"
	ChannelBank   Channel = "bank"
)

// MobileMoney reports whether the channel pays out to a mobile wallet.
func (c Channel) MobileMoney() bool {
	return c == ChannelMpesa || c == ChannelAirtel
}

// ParseChannel validates a caller-supplied payment method string.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelMpesa:
		return ChannelMpesa, nil
	case ChannelAirtel:
		return ChannelAirtel, nil
	case ChannelBank:
		return ChannelBank, nil
	default:
		return "", apperr.Newf(apperr.KindValidation, "unsupported payment method %q", s)
	}
}

// Destination carries the channel-specific payout target. Exactly one shape
// is populated: phone number for mobile money, account details for bank.
type Destination struct {
	PhoneNumber   string
	AccountNumber string
	BankCode      string
	AccountName   string
}

// ValidateDestination checks the destination fields are complete for the
// declared channel before any field is read downstream.
func ValidateDestination(ch Channel, dest Destination) error {
	if ch.MobileMoney() {
		if strings.TrimSpace(dest.PhoneNumber) == "" {
			return apperr.New(apperr.KindValidation, "phone number is required for mobile money withdrawals")
		}
		return nil
	}
	switch {
	case strings.TrimSpace(dest.AccountNumber) == "":
		return apperr.New(apperr.KindValidation, "account number is required for bank withdrawals")
	case strings.TrimSpace(dest.BankCode) == "":
		return apperr.New(apperr.KindValidation, "bank code is required for bank withdrawals")
	case strings.TrimSpace(dest.AccountName) == "":
		return apperr.New(apperr.KindValidation, "account name is required for bank withdrawals")
	}
	return nil
}

// Summary renders the destination for responses and audit records.
func (d Destination) Summary(ch Channel) string {
	if ch.MobileMoney() {
		return d.PhoneNumber
	}
	return d.AccountNumber + " (" + d.BankCode + ")"
}
