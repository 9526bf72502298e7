package favorite

import (
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
)

// Favorite marks a token or a collection, exactly one of them is set
type Favorite struct {
	UserId       string    `json:"userId" bson:"userId"`
	TokenId      string    `json:"tokenId,omitempty" bson:"tokenId,omitempty"`
	CollectionId string    `json:"collectionId,omitempty" bson:"collectionId,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

func (f Favorite) IsValid() bool {
	return f.UserId != "" && (f.TokenId == "") != (f.CollectionId == "")
}

type findAllOptions struct {
	Offset       *int32  `bson:"-"`
	Limit        *int32  `bson:"-"`
	UserId       *string `bson:"userId"`
	TokenId      *string `bson:"tokenId"`
	CollectionId *string `bson:"collectionId"`
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
	return func(options *findAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithUser(userId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.UserId = &userId
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

type Repo interface {
	// Create returns domain.ErrConflict when the favorite exists
	Create(c ctx.Ctx, f Favorite) error
	// Delete returns domain.ErrNotFound when the favorite does not exist
	Delete(c ctx.Ctx, f Favorite) error
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*Favorite, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)
}

type Usecase interface {
	// Add returns how many users favor the target afterwards
	Add(c ctx.Ctx, f Favorite) (int, error)
	Remove(c ctx.Ctx, f Favorite) (int, error)
	ListByUser(c ctx.Ctx, userId string, opts ...FindAllOptions) ([]*Favorite, error)
	IsFavorite(c ctx.Ctx, f Favorite) (bool, error)
}
