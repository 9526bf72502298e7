package collection

import (
	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
)

// Token is the registry view of a listed item
type Token struct {
	Id           string `json:"id" bson:"id"`
	CollectionId string `json:"collectionId" bson:"collectionId"`
	OwnerId      string `json:"ownerId" bson:"ownerId"`
	CreatorId    string `json:"creatorId" bson:"creatorId"`
}

type Recipient struct {
	RecipientId string          `json:"recipientId" bson:"recipientId"`
	Share       decimal.Decimal `json:"share" bson:"share"`
}

// RoyaltyConfig is the royalty a collection charges on every sale.
// Percentage is a fraction of the price, e.g. 0.05 for 5%.
type RoyaltyConfig struct {
	CollectionId string          `json:"collectionId" bson:"collectionId"`
	Percentage   decimal.Decimal `json:"percentage" bson:"percentage"`
	Recipients   []Recipient     `json:"recipients" bson:"recipients"`
}

type TokenRepo interface {
	FindOne(c ctx.Ctx, id string) (*Token, error)
	Upsert(c ctx.Ctx, t *Token) error
}

type RoyaltyRepo interface {
	// FindOne returns domain.ErrNotFound when the collection charges no royalty
	FindOne(c ctx.Ctx, collectionId string) (*RoyaltyConfig, error)
	Upsert(c ctx.Ctx, cfg *RoyaltyConfig) error
}

// Registry is the read only token and royalty lookup used by the market
type Registry interface {
	GetToken(c ctx.Ctx, tokenId string) (*Token, error)
	// GetRoyalty returns a zero royalty config when none is registered
	GetRoyalty(c ctx.Ctx, collectionId string) (*RoyaltyConfig, error)
}

// UseCase is the registry plus the writes fed by the indexer
type UseCase interface {
	Registry
	UpsertToken(c ctx.Ctx, t *Token) error
	// SetRoyalty validates and stores cfg, percentage in [0, 1] and positive shares
	SetRoyalty(c ctx.Ctx, cfg *RoyaltyConfig) error
}
