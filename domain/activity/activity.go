package activity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

type Type string

const (
	TypeMint     Type = "MINT"
	TypeTransfer Type = "TRANSFER"
	TypeSale     Type = "SALE"
	TypeList     Type = "LIST"
	TypeDelist   Type = "DELIST"
	TypeBid      Type = "BID"
	TypeOffer    Type = "OFFER"
	TypeBurn     Type = "BURN"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeMint, TypeTransfer, TypeSale, TypeList, TypeDelist, TypeBid, TypeOffer, TypeBurn:
		return true
	}
	return false
}

// Activity is an append only market event
type Activity struct {
	Id              string              `json:"id" bson:"id"`
	ExternalId      string              `json:"externalId" bson:"externalId"`
	Type            Type                `json:"type" bson:"type"`
	TokenId         string              `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	CollectionId    string              `json:"collectionId,omitempty" bson:"collectionId,omitempty"`
	ListingId       string              `json:"listingId,omitempty" bson:"listingId,omitempty"`
	FromUserId      string              `json:"fromUserId,omitempty" bson:"fromUserId,omitempty"`
	ToUserId        string              `json:"toUserId,omitempty" bson:"toUserId,omitempty"`
	Price           *decimal.Decimal    `json:"price,omitempty" bson:"price,omitempty"`
	Currency        domain.Currency     `json:"currency,omitempty" bson:"currency,omitempty"`
	TransactionHash *domain.TxHash      `json:"transactionHash,omitempty" bson:"transactionHash,omitempty"`
	BlockNumber     *domain.BlockNumber `json:"blockNumber,omitempty" bson:"blockNumber,omitempty"`
	Metadata        domain.Metadata     `json:"metadata" bson:"metadata"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
}

// ExternalId builds the dedup key of an activity caused by entity id
func ExternalId(typ Type, id string) string {
	return string(typ) + ":" + id
}

type findAllOptions struct {
	Offset       *int32  `bson:"-"`
	Limit        *int32  `bson:"-"`
	Types        []Type  `bson:"-"`
	UserId       *string `bson:"-"`
	TokenId      *string `bson:"tokenId"`
	CollectionId *string `bson:"collectionId"`
	ListingId    *string `bson:"listingId"`
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

func WithPagination(offset int32, limit int32) FindAllOptions {
	return func(opts *findAllOptions) error {
		opts.Offset = &offset
		opts.Limit = &limit
		return nil
	}
}

func WithToken(tokenId string) FindAllOptions {
	return func(opts *findAllOptions) error {
		opts.TokenId = &tokenId
		return nil
	}
}

func WithCollection(collectionId string) FindAllOptions {
	return func(opts *findAllOptions) error {
		opts.CollectionId = &collectionId
		return nil
	}
}

func WithListing(listingId string) FindAllOptions {
	return func(opts *findAllOptions) error {
		opts.ListingId = &listingId
		return nil
	}
}

// WithUser selects activities where the user is either side
func WithUser(userId string) FindAllOptions {
	return func(opts *findAllOptions) error {
		opts.UserId = &userId
		return nil
	}
}

func WithTypes(types ...Type) FindAllOptions {
	return func(opts *findAllOptions) error {
		for _, t := range types {
			if !t.IsValid() {
				return domain.ErrValidation
			}
		}
		opts.Types = types
		return nil
	}
}

type Repo interface {
	// Insert returns domain.ErrConflict on a duplicate external id
	Insert(c ctx.Ctx, a *Activity) error
	// FindAll is ordered newest first
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Activity, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)
}

type UseCase interface {
	// Append stores a, a duplicate external id is a no-op
	Append(c ctx.Ctx, a *Activity) error
	ListByToken(c ctx.Ctx, tokenId string, opts ...FindAllOptions) ([]*Activity, error)
	ListByCollection(c ctx.Ctx, collectionId string, opts ...FindAllOptions) ([]*Activity, error)
	ListByListing(c ctx.Ctx, listingId string, opts ...FindAllOptions) ([]*Activity, error)
	ListByUser(c ctx.Ctx, userId string, opts ...FindAllOptions) ([]*Activity, error)
}
