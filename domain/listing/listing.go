package listing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/sale"
)

type Kind string

const (
	KindFixedPrice Kind = "FIXED_PRICE"
	KindAuction    Kind = "AUCTION"
	KindBundle     Kind = "BUNDLE"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindFixedPrice, KindAuction, KindBundle:
		return true
	}
	return false
}

// AcceptsBids reports whether bids can be placed on the kind
func (k Kind) AcceptsBids() bool {
	return k == KindAuction || k == KindBundle
}

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSold      Status = "SOLD"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

type Listing struct {
	Id           string           `json:"id" bson:"id"`
	TokenId      string           `json:"tokenId" bson:"tokenId"`
	CollectionId string           `json:"collectionId" bson:"collectionId"`
	SellerId     string           `json:"sellerId" bson:"sellerId"`
	Kind         Kind             `json:"kind" bson:"kind"`
	Price        *decimal.Decimal `json:"price,omitempty" bson:"price,omitempty"`
	Currency     domain.Currency  `json:"currency" bson:"currency"`
	ReservePrice *decimal.Decimal `json:"reservePrice,omitempty" bson:"reservePrice,omitempty"`
	BuyNowPrice  *decimal.Decimal `json:"buyNowPrice,omitempty" bson:"buyNowPrice,omitempty"`
	StartTime    time.Time        `json:"startTime" bson:"startTime"`
	EndTime      *time.Time       `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Status       Status           `json:"status" bson:"status"`
	Views        int64            `json:"views" bson:"views"`
	Likes        int64            `json:"likes" bson:"likes"`
	Metadata     domain.Metadata  `json:"metadata" bson:"metadata"`
	Version      int64            `json:"version" bson:"version"`
	CreatedAt    time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// HasEnded reports whether the listing end time lapsed at now
func (l *Listing) HasEnded(now time.Time) bool {
	return l.EndTime != nil && !now.Before(*l.EndTime)
}

// HasStarted reports whether the listing start time is reached at now
func (l *Listing) HasStarted(now time.Time) bool {
	return !now.Before(l.StartTime)
}

type CreateListingParams struct {
	TokenId      string           `json:"tokenId" validate:"required"`
	SellerId     string           `json:"-"`
	Kind         Kind             `json:"kind" validate:"required"`
	Price        *decimal.Decimal `json:"price"`
	Currency     domain.Currency  `json:"currency" validate:"required"`
	ReservePrice *decimal.Decimal `json:"reservePrice"`
	BuyNowPrice  *decimal.Decimal `json:"buyNowPrice"`
	StartTime    time.Time        `json:"startTime"` // zero means now
	EndTime      *time.Time       `json:"endTime"`
	Metadata     domain.Metadata  `json:"metadata"`
}

type findAllOptions struct {
	SortBy       *string         `bson:"-"`
	SortDir      *domain.SortDir `bson:"-"`
	Offset       *int32          `bson:"-"`
	Limit        *int32          `bson:"-"`
	EndedBefore  *time.Time      `bson:"-"`
	SellerId     *string         `bson:"sellerId"`
	TokenId      *string         `bson:"tokenId"`
	CollectionId *string         `bson:"collectionId"`
	Kind         *Kind           `bson:"kind"`
	Status       *Status         `bson:"status"`
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

func WithToken(tokenId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.TokenId = &tokenId
		return nil
	}
}

func WithCollection(collectionId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.CollectionId = &collectionId
		return nil
	}
}

func WithKind(kind Kind) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Kind = &kind
		return nil
	}
}

func WithStatus(status Status) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Status = &status
		return nil
	}
}

// WithEndedBefore selects listings whose end time is set and not after t
func WithEndedBefore(t time.Time) FindAllOptions {
	return func(options *findAllOptions) error {
		options.EndedBefore = &t
		return nil
	}
}

type Repo interface {
	Insert(c ctx.Ctx, l *Listing) error
	FindOne(c ctx.Ctx, id string) (*Listing, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)

	// Touch increments the version of an ACTIVE listing still at version.
	// Returns domain.ErrNotFound when nothing matched.
	Touch(c ctx.Ctx, id string, version int64) error

	// UpdateStatus moves an ACTIVE listing still at version to status and
	// increments the version. Returns domain.ErrNotFound when nothing matched.
	UpdateStatus(c ctx.Ctx, id string, version int64, status Status) error

	IncreaseViews(c ctx.Ctx, id string, n int64) error
	IncreaseLikes(c ctx.Ctx, id string, n int64) error
}

type UseCase interface {
	Create(c ctx.Ctx, params CreateListingParams) (*Listing, error)
	Cancel(c ctx.Ctx, listingId, callerId string) (*Listing, error)

	// Accept settles the listing against one of its ACTIVE bids or offers
	Accept(c ctx.Ctx, listingId, bidOrOfferId, callerId string) (*sale.Sale, error)

	// Buy settles a fixed price listing, or an auction at its buy now price
	Buy(c ctx.Ctx, listingId, buyerId string) (*sale.Sale, error)

	// AcceptOffer settles a token or collection offer without a listing
	AcceptOffer(c ctx.Ctx, offerId, tokenId, callerId string) (*sale.Sale, error)

	Get(c ctx.Ctx, id string) (*Listing, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Listing, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)
	RecordView(c ctx.Ctx, id string) error
}
