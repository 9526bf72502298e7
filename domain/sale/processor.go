package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
)

// Settlement is the fee split of one sale price.
// TotalFee = MarketplaceFee + RoyaltyFee and NetAmount = Price - TotalFee.
type Settlement struct {
	Price          decimal.Decimal
	Currency       domain.Currency
	MarketplaceFee decimal.Decimal
	RoyaltyFee     decimal.Decimal
	TotalFee       decimal.Decimal
	NetAmount      decimal.Decimal
}

type RoyaltyShare struct {
	RecipientId string
	Amount      decimal.Decimal
	Percentage  decimal.Decimal
}

type SettleParams struct {
	TokenId      string
	CollectionId string
	ListingId    string
	BidId        string
	OfferId      string
	SellerId     string
	BuyerId      string
	Price        decimal.Decimal
	Currency     domain.Currency
	// nil when the collection charges no royalty
	Royalty  *collection.RoyaltyConfig
	Metadata domain.Metadata
	Now      time.Time
}

// Processor does all money math of a settlement. It holds no state.
type Processor interface {
	ComputeSettlement(price, platformFeeRate, royaltyPercentage decimal.Decimal, currency domain.Currency) (*Settlement, error)
	SplitRoyalty(royaltyFee decimal.Decimal, recipients []collection.Recipient, currency domain.Currency) ([]RoyaltyShare, error)
	// BuildSale returns a PENDING sale and its PENDING royalty rows
	BuildSale(params SettleParams) (*Sale, []*Royalty, error)
}
