package bid

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

// Status is shared by bids and offers
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

type Bid struct {
	Id        string          `json:"id" bson:"id"`
	ListingId string          `json:"listingId" bson:"listingId"`
	BidderId  string          `json:"bidderId" bson:"bidderId"`
	Amount    decimal.Decimal `json:"amount" bson:"amount"`
	Currency  domain.Currency `json:"currency" bson:"currency"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	Status    Status          `json:"status" bson:"status"`
	Metadata  domain.Metadata `json:"metadata" bson:"metadata"`
	CreatedAt time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// IsLapsed reports whether the bid's own expiry passed at now
func (b *Bid) IsLapsed(now time.Time) bool {
	return b.ExpiresAt != nil && !now.Before(*b.ExpiresAt)
}

type PlaceBidParams struct {
	ListingId string          `json:"-"`
	BidderId  string          `json:"-"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  domain.Currency `json:"currency"`
	ExpiresAt *time.Time      `json:"expiresAt"`
	Metadata  domain.Metadata `json:"metadata"`
}

type findAllOptions struct {
	SortBy        *string         `bson:"-"`
	SortDir       *domain.SortDir `bson:"-"`
	Offset        *int32          `bson:"-"`
	Limit         *int32          `bson:"-"`
	ExpiresBefore *time.Time      `bson:"-"`
	ExcludeId     *string         `bson:"-"`
	UserId        *string         `bson:"-"`
	ListingId     *string         `bson:"listingId"`
	TokenId       *string         `bson:"tokenId"`
	CollectionId  *string         `bson:"collectionId"`
	Status        *Status         `bson:"status"`
}

// FindAllOptions filters bids and offers. Token and collection only apply to offers.
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

func WithListing(listingId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.ListingId = &listingId
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

// WithUser selects by bidder for bids and by offerer for offers
func WithUser(userId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.UserId = &userId
		return nil
	}
}

func WithStatus(status Status) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Status = &status
		return nil
	}
}

// WithExpiresBefore selects rows whose expiry is set and not after t
func WithExpiresBefore(t time.Time) FindAllOptions {
	return func(options *findAllOptions) error {
		options.ExpiresBefore = &t
		return nil
	}
}

func WithExclude(id string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.ExcludeId = &id
		return nil
	}
}

type BidRepo interface {
	Insert(c ctx.Ctx, b *Bid) error
	FindOne(c ctx.Ctx, id string) (*Bid, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Bid, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)

	// UpdateStatus moves a bid from status `from` to `to`.
	// Returns domain.ErrNotFound when the bid is not in `from`.
	UpdateStatus(c ctx.Ctx, id string, from, to Status) error

	// UpdateStatusAll moves every selected bid to `to` and returns how many moved
	UpdateStatusAll(c ctx.Ctx, to Status, opts ...FindAllOptions) (int64, error)

	// Accept moves a bid to ACCEPTED. An ACTIVE bid always moves, an EXPIRED
	// one only when its expiresAt is after validatedAt, so a sweep landing after
	// validation can not undo an accept made in time.
	// Returns domain.ErrNotFound otherwise.
	Accept(c ctx.Ctx, id string, validatedAt time.Time) error
}
