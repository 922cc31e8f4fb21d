// Package recipient normalizes payout destinations and obtains provider-side
// recipient codes, with channel-specific catalog matching and a phone-format
// fallback for providers that reject international numbers.
package recipient

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/paystack"
	"github.com/hanzara/quick-hello-wave/internal/payout"
	"github.com/hanzara/quick-hello-wave/internal/resilience"
)

// Provider is the slice of the payment gateway the resolver needs.
type Provider interface {
	MobileMoneyChannels(ctx context.Context) ([]paystack.ChannelEntry, error)
	CreateRecipient(ctx context.Context, req paystack.RecipientRequest) (string, error)
}

const (
	cachePrefix = "recipient:v1:"
	cacheTTL    = 12 * time.Hour
)

// Resolver turns (channel, destination) into a provider recipient code.
// Creating a remote recipient is a non-destructive side effect, so requests
// aborted later in the pipeline may leave one behind; that is acceptable.
type Resolver struct {
	provider Provider
	cache    *redis.Client // optional; caching is an optimization, never a gate
	logger   *slog.Logger

	callTimeout time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

// NewResolver builds a resolver. cache may be nil.
func NewResolver(provider Provider, cache *redis.Client, logger *slog.Logger, callTimeout time.Duration, maxAttempts int, retryDelay time.Duration) *Resolver {
	return &Resolver{
		provider:    provider,
		cache:       cache,
		logger:      logger.With("component", "recipient_resolver"),
		callTimeout: callTimeout,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// Resolve returns the provider recipient code for the destination, creating
// it remotely if needed. accountName labels the recipient at the provider.
func (r *Resolver) Resolve(ctx context.Context, ch payout.Channel, dest payout.Destination, accountName string) (string, error) {
	if ch.MobileMoney() {
		return r.resolveMobile(ctx, ch, dest.PhoneNumber, accountName)
	}
	return r.resolveBank(ctx, dest)
}

func (r *Resolver) resolveMobile(ctx context.Context, ch payout.Channel, phone, accountName string) (string, error) {
	forms, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}

	cacheKey := cachePrefix + string(ch) + ":" + forms.International
	if code := r.cacheGet(ctx, cacheKey); code != "" {
		return code, nil
	}

	bankCode, err := r.channelCode(ctx, ch)
	if err != nil {
		return "", err
	}

	// International form first; retry once with the local form if the
	// provider rejects the account number format.
	code, err := r.createRecipient(ctx, paystack.RecipientRequest{
		Type:          "mobile_money",
		Name:          accountName,
		AccountNumber: forms.International,
		BankCode:      bankCode,
	})
	if err != nil && paystack.IsInvalidAccount(err) {
		r.logger.Info("provider rejected international phone form, retrying with local form",
			"channel", string(ch))
		code, err = r.createRecipient(ctx, paystack.RecipientRequest{
			Type:          "mobile_money",
			Name:          accountName,
			AccountNumber: forms.Local,
			BankCode:      bankCode,
		})
	}
	if err != nil {
		if paystack.IsInvalidAccount(err) {
			return "", apperr.New(apperr.KindRecipientError, "provider rejected the phone number in both international and local formats")
		}
		return "", err
	}

	r.cacheSet(ctx, cacheKey, code)
	return code, nil
}

func (r *Resolver) resolveBank(ctx context.Context, dest payout.Destination) (string, error) {
	cacheKey := cachePrefix + string(payout.ChannelBank) + ":" + dest.BankCode + ":" + dest.AccountNumber
	if code := r.cacheGet(ctx, cacheKey); code != "" {
		return code, nil
	}

	code, err := r.createRecipient(ctx, paystack.RecipientRequest{
		Type:          "nuban",
		Name:          dest.AccountName,
		AccountNumber: dest.AccountNumber,
		BankCode:      dest.BankCode,
	})
	if err != nil {
		return "", err
	}

	r.cacheSet(ctx, cacheKey, code)
	return code, nil
}

// channelCode finds the provider catalog entry for a mobile network using
// case-insensitive name/slug/code heuristics.
func (r *Resolver) channelCode(ctx context.Context, ch payout.Channel) (string, error) {
	entries, err := resilience.Do(ctx, r.maxAttempts, r.retryDelay, func(ctx context.Context) ([]paystack.ChannelEntry, error) {
		return resilience.WithTimeout(ctx, r.callTimeout, r.provider.MobileMoneyChannels)
	})
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if matchesChannel(string(ch), entry.Name, entry.Slug, entry.Code) {
			return entry.Code, nil
		}
	}
	return "", apperr.Newf(apperr.KindServiceUnavailable, "payout network %s is not available at the provider", ch)
}

// createRecipient is safe to retry: the provider keys recipients by their
// natural (type, account, bank) identity, so replays converge on one code.
func (r *Resolver) createRecipient(ctx context.Context, req paystack.RecipientRequest) (string, error) {
	return resilience.Do(ctx, r.maxAttempts, r.retryDelay, func(ctx context.Context) (string, error) {
		return resilience.WithTimeout(ctx, r.callTimeout, func(ctx context.Context) (string, error) {
			return r.provider.CreateRecipient(ctx, req)
		})
	})
}

func (r *Resolver) cacheGet(ctx context.Context, key string) string {
	if r.cache == nil {
		return ""
	}
	code, err := r.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("recipient cache lookup failed", "error", err)
		}
		return ""
	}
	return code
}

func (r *Resolver) cacheSet(ctx context.Context, key, code string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, code, cacheTTL).Err(); err != nil {
		r.logger.Warn("recipient cache store failed", "error", err)
	}
}
