package paystack

import "encoding/json"

// Currency every wallet and payout in this deployment settles in.
const Currency = "KES"

// envelope is the provider's uniform response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// BalanceEntry is one currency bucket of the provider float balance.
type BalanceEntry struct {
	Currency string `json:"currency"`
	Balance  int64  `json:"balance"`
}

// ChannelEntry is one entry of the provider's payout channel catalog
// (the /bank listing, which also carries mobile money networks).
type ChannelEntry struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Code     string `json:"code"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

// RecipientRequest creates a provider-side payout recipient.
type RecipientRequest struct {
	Type          string `json:"type"` // "mobile_money" or "nuban"
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type recipientData struct {
	RecipientCode string `json:"recipient_code"`
}

// TransferRequest initiates a payout from the provider float balance.
type TransferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
	Currency  string `json:"currency"`
}

// Transfer is the provider's view of an initiated payout.
type Transfer struct {
	ID           int64  `json:"id"`
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
}

type approveRequest struct {
	TransferCode string `json:"transfer_code"`
}
