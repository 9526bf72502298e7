package sale

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

type RoyaltyStatus string

const (
	RoyaltyStatusPending RoyaltyStatus = "PENDING"
	RoyaltyStatusPaid    RoyaltyStatus = "PAID"
	RoyaltyStatusFailed  RoyaltyStatus = "FAILED"
)

type Royalty struct {
	Id              string          `json:"id" bson:"id"`
	SaleId          string          `json:"saleId" bson:"saleId"`
	TokenId         string          `json:"tokenId" bson:"tokenId"`
	CollectionId    string          `json:"collectionId" bson:"collectionId"`
	RecipientId     string          `json:"recipientId" bson:"recipientId"`
	Amount          decimal.Decimal `json:"amount" bson:"amount"`
	Percentage      decimal.Decimal `json:"percentage" bson:"percentage"` // share of the royalty fee
	Currency        domain.Currency `json:"currency" bson:"currency"`
	Status          RoyaltyStatus   `json:"status" bson:"status"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	TransactionHash *domain.TxHash  `json:"transactionHash,omitempty" bson:"transactionHash,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

type findRoyaltyOptions struct {
	SaleId      *string        `bson:"saleId"`
	RecipientId *string        `bson:"recipientId"`
	Status      *RoyaltyStatus `bson:"status"`
}

type FindRoyaltyOptions func(*findRoyaltyOptions) error

func GetFindRoyaltyOptions(opts ...FindRoyaltyOptions) (findRoyaltyOptions, error) {
	res := findRoyaltyOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func RoyaltyWithSale(saleId string) FindRoyaltyOptions {
	return func(opts *findRoyaltyOptions) error {
		opts.SaleId = &saleId
		return nil
	}
}

func RoyaltyWithRecipient(recipientId string) FindRoyaltyOptions {
	return func(opts *findRoyaltyOptions) error {
		opts.RecipientId = &recipientId
		return nil
	}
}

func RoyaltyWithStatus(status RoyaltyStatus) FindRoyaltyOptions {
	return func(opts *findRoyaltyOptions) error {
		opts.Status = &status
		return nil
	}
}

type RoyaltyRepo interface {
	InsertMany(c ctx.Ctx, rs []*Royalty) error
	// FindAll is ordered by recipient id
	FindAll(c ctx.Ctx, opts ...FindRoyaltyOptions) ([]*Royalty, error)
	// UpdateStatus moves one royalty from `from` to `to`, returns domain.ErrNotFound on miss
	UpdateStatus(c ctx.Ctx, id string, from, to RoyaltyStatus, paidAt *time.Time) error
	// UpdateStatusBySale moves every royalty of the sale in `from` to `to`
	UpdateStatusBySale(c ctx.Ctx, saleId string, from, to RoyaltyStatus) (int64, error)
}
