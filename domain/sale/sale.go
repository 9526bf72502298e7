package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

type Sale struct {
	Id              string              `json:"id" bson:"id"`
	TokenId         string              `json:"tokenId" bson:"tokenId"`
	CollectionId    string              `json:"collectionId" bson:"collectionId"`
	ListingId       string              `json:"listingId,omitempty" bson:"listingId,omitempty"`
	BidId           string              `json:"bidId,omitempty" bson:"bidId,omitempty"`
	OfferId         string              `json:"offerId,omitempty" bson:"offerId,omitempty"`
	SellerId        string              `json:"sellerId" bson:"sellerId"`
	BuyerId         string              `json:"buyerId" bson:"buyerId"`
	Price           decimal.Decimal     `json:"price" bson:"price"`
	Currency        domain.Currency     `json:"currency" bson:"currency"`
	MarketplaceFee  decimal.Decimal     `json:"marketplaceFee" bson:"marketplaceFee"`
	RoyaltyFee      decimal.Decimal     `json:"royaltyFee" bson:"royaltyFee"`
	TotalFee        decimal.Decimal     `json:"totalFee" bson:"totalFee"`
	NetAmount       decimal.Decimal     `json:"netAmount" bson:"netAmount"`
	Status          Status              `json:"status" bson:"status"`
	TransactionHash *domain.TxHash      `json:"transactionHash,omitempty" bson:"transactionHash,omitempty"`
	BlockNumber     *domain.BlockNumber `json:"blockNumber,omitempty" bson:"blockNumber,omitempty"`
	FailureReason   string              `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	PaidOut         bool                `json:"paidOut" bson:"paidOut"`
	Metadata        domain.Metadata     `json:"metadata" bson:"metadata"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type PatchableSale struct {
	TransactionHash *domain.TxHash      `bson:"transactionHash,omitempty"`
	BlockNumber     *domain.BlockNumber `bson:"blockNumber,omitempty"`
	FailureReason   *string             `bson:"failureReason,omitempty"`
	PaidOut         *bool               `bson:"paidOut,omitempty"`
}

type findAllOptions struct {
	SortBy    *string         `bson:"-"`
	SortDir   *domain.SortDir `bson:"-"`
	Offset    *int32          `bson:"-"`
	Limit     *int32          `bson:"-"`
	SellerId  *string         `bson:"sellerId"`
	BuyerId   *string         `bson:"buyerId"`
	TokenId   *string         `bson:"tokenId"`
	ListingId *string         `bson:"listingId"`
	OfferId   *string         `bson:"offerId"`
	Status    *Status         `bson:"status"`
}

type FindAllOptions func(*findAllOptions) error

func GetFindAllOptions(opts ...FindAllOptions) (findAllOptions, error) {
	res := findAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithSort(sortby string, sortdir domain.SortDir) FindAllOptions {
	return func(options *findAllOptions) error {
		options.SortBy = &sortby
		options.SortDir = &sortdir
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSeller(sellerId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.SellerId = &sellerId
		return nil
	}
}

func WithBuyer(buyerId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.BuyerId = &buyerId
		return nil
	}
}

func WithToken(tokenId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func WithListing(listingId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.ListingId = &listingId
		return nil
	}
}

func WithOffer(offerId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.OfferId = &offerId
		return nil
	}
}

func WithStatus(status Status) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Status = &status
		return nil
	}
}

type Repo interface {
	// Insert returns domain.ErrConflict when a sale already exists for the
	// listing, or for the offer of a listing-free sale
	Insert(c ctx.Ctx, s *Sale) error
	FindOne(c ctx.Ctx, id string) (*Sale, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Sale, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)

	// UpdateStatus moves a sale from `from` to `to` applying patch.
	// from == to only applies the patch. Returns domain.ErrNotFound when the
	// sale is not in `from`.
	UpdateStatus(c ctx.Ctx, id string, from, to Status, patch *PatchableSale) error
}

type UseCase interface {
	Get(c ctx.Ctx, id string) (*Sale, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Sale, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)
	Royalties(c ctx.Ctx, saleId string) ([]*Royalty, error)

	// Confirm marks a PENDING sale COMPLETED with its on-chain reference
	Confirm(c ctx.Ctx, saleId string, txHash domain.TxHash, blockNumber domain.BlockNumber) (*Sale, error)
	// Fail marks a PENDING sale and its royalties FAILED
	Fail(c ctx.Ctx, saleId, reason string) (*Sale, error)
	// Cancel marks a PENDING sale CANCELLED and its royalties FAILED
	Cancel(c ctx.Ctx, saleId, reason string) (*Sale, error)
	// Payout moves the funds of a COMPLETED sale through the wallet
	Payout(c ctx.Ctx, saleId string) (*Sale, error)
}
