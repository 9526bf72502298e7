package wallet

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

// PlatformAccount is the wallet account receiving marketplace fees
const PlatformAccount = "platform"

type TransferParams struct {
	FromUserId string          `json:"fromUserId"`
	ToUserId   string          `json:"toUserId"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   domain.Currency `json:"currency"`
	Reference  string          `json:"reference"` // idempotency key on the ledger side
}

// Service is the external wallet ledger
type Service interface {
	HoldFunds(c ctx.Ctx, userId string, amount decimal.Decimal, currency domain.Currency, reference string) error
	ReleaseFunds(c ctx.Ctx, userId string, amount decimal.Decimal, currency domain.Currency, reference string) error
	Transfer(c ctx.Ctx, params TransferParams) error
}
