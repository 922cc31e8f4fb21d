package notification

import (
	"context"
	"log/slog"
)

const (
	// KindPeerCredit notifies a member that funds arrived in their wallet.
	KindPeerCredit = "peer_credit"
	// KindLedgerInconsistency alerts operators that money left the provider
	// without the matching ledger debit. Requires manual reconciliation.
	KindLedgerInconsistency = "ledger_inconsistency"
	// KindRecordWriteFailed alerts operators that an audit record could not
	// be appended for a movement that already happened.
	KindRecordWriteFailed = "record_write_failed"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
	Fields      map[string]string
}

// Notifier delivers notifications to members and the operator channel.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured log. Operator kinds
// are emitted at error level so they page through log-based alerting.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	attrs := []any{"kind", message.Kind, "destination", message.Destination, "body", message.Body}
	for k, v := range message.Fields {
		attrs = append(attrs, k, v)
	}
	switch message.Kind {
	case KindLedgerInconsistency, KindRecordWriteFailed:
		n.logger.Error("operator alert", attrs...)
	default:
		n.logger.Info("notification", attrs...)
	}
	return nil
}
