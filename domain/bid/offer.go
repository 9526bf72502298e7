package bid

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

// Offer targets exactly one of a token, a collection or a listing
type Offer struct {
	Id           string          `json:"id" bson:"id"`
	TokenId      string          `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	CollectionId string          `json:"collectionId,omitempty" bson:"collectionId,omitempty"`
	ListingId    string          `json:"listingId,omitempty" bson:"listingId,omitempty"`
	OffererId    string          `json:"offererId" bson:"offererId"`
	Amount       decimal.Decimal `json:"amount" bson:"amount"`
	Currency     domain.Currency `json:"currency" bson:"currency"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	Status       Status          `json:"status" bson:"status"`
	Metadata     domain.Metadata `json:"metadata" bson:"metadata"`
	CreatedAt    time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (o *Offer) IsLapsed(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}

func (o *Offer) IsListingBound() bool {
	return o.ListingId != ""
}

type PlaceOfferParams struct {
	TokenId      string          `json:"tokenId"`
	CollectionId string          `json:"collectionId"`
	ListingId    string          `json:"listingId"`
	OffererId    string          `json:"-"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     domain.Currency `json:"currency"`
	ExpiresAt    *time.Time      `json:"expiresAt"`
	Metadata     domain.Metadata `json:"metadata"`
}

// targets returns how many of token, collection and listing are set
func (p PlaceOfferParams) targets() int {
	n := 0
	for _, id := range []string{p.TokenId, p.CollectionId, p.ListingId} {
		if id != "" {
			n++
		}
	}
	return n
}

// HasSingleTarget reports whether exactly one target is set
func (p PlaceOfferParams) HasSingleTarget() bool {
	return p.targets() == 1
}

type OfferRepo interface {
	Insert(c ctx.Ctx, o *Offer) error
	FindOne(c ctx.Ctx, id string) (*Offer, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Offer, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)

	// UpdateStatus moves an offer from status `from` to `to`.
	// Returns domain.ErrNotFound when the offer is not in `from`.
	UpdateStatus(c ctx.Ctx, id string, from, to Status) error

	// UpdateStatusAll moves every selected offer to `to` and returns how many moved
	UpdateStatusAll(c ctx.Ctx, to Status, opts ...FindAllOptions) (int64, error)

	// Accept moves a offer to ACCEPTED. An ACTIVE offer always moves, an EXPIRED
	// one only when its expiresAt is after validatedAt, so a sweep landing after
	// validation can not undo an accept made in time.
	// Returns domain.ErrNotFound otherwise.
	Accept(c ctx.Ctx, id string, validatedAt time.Time) error
}

type UseCase interface {
	PlaceBid(c ctx.Ctx, params PlaceBidParams) (*Bid, error)
	CancelBid(c ctx.Ctx, bidId, callerId string) (*Bid, error)
	HighestActiveBid(c ctx.Ctx, listingId string) (*Bid, error)
	GetBid(c ctx.Ctx, id string) (*Bid, error)
	FindBids(c ctx.Ctx, opts ...FindAllOptions) ([]*Bid, error)

	PlaceOffer(c ctx.Ctx, params PlaceOfferParams) (*Offer, error)
	CancelOffer(c ctx.Ctx, offerId, callerId string) (*Offer, error)
	GetOffer(c ctx.Ctx, id string) (*Offer, error)
	FindOffers(c ctx.Ctx, opts ...FindAllOptions) ([]*Offer, error)
}
