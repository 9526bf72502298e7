package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/favorite"
	"github.com/x-xyz/marketengine/service/query"
)

// FavoriteIndexes of domain.TableFavorites
var FavoriteIndexes = []query.Index{
	{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "tokenId", Value: 1}, {Key: "collectionId", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "tokenId", Value: 1}}},
	{Keys: bson.D{{Key: "collectionId", Value: 1}}},
}

type favoriteImpl struct {
	q query.Mongo
}

func NewFavorite(q query.Mongo) favorite.Repo {
	return &favoriteImpl{q}
}

func target(f favorite.Favorite) bson.M {
	sel := bson.M{"userId": f.UserId}
	if f.TokenId != "" {
		sel["tokenId"] = f.TokenId
	} else {
		sel["collectionId"] = f.CollectionId
	}
	return sel
}

func (im *favoriteImpl) Create(c ctx.Ctx, f favorite.Favorite) error {
	if err := im.q.Insert(c, domain.TableFavorites, f); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *favoriteImpl) Delete(c ctx.Ctx, f favorite.Favorite) error {
	if err := im.q.Remove(c, domain.TableFavorites, target(f)); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.Remove failed")
		return err
	}
	return nil
}

func (im *favoriteImpl) FindAll(c ctx.Ctx, optFns ...favorite.FindAllOptions) ([]*favorite.Favorite, error) {
	opts, err := favorite.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("favorite.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit := query.Page(opts.Offset, opts.Limit)
	res := []*favorite.Favorite{}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	} else if err := im.q.Search(c, domain.TableFavorites, offset, limit, "-_id", qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	} else {
		return res, nil
	}
}

func (im *favoriteImpl) Count(c ctx.Ctx, optFns ...favorite.FindAllOptions) (int, error) {
	opts, err := favorite.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("favorite.GetFindAllOptions failed")
		return 0, err
	}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return 0, err
	} else if count, err := im.q.Count(c, domain.TableFavorites, qry); err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	} else {
		return count, nil
	}
}
