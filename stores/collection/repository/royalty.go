package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/service/query"
)

// RoyaltyIndexes of domain.TableRoyaltyConfigs
var RoyaltyIndexes = []query.Index{
	{Keys: bson.D{{Key: "collectionId", Value: 1}}, Unique: true},
}

type royaltyImpl struct {
	q query.Mongo
}

func NewRoyalty(q query.Mongo) collection.RoyaltyRepo {
	return &royaltyImpl{q}
}

func (im *royaltyImpl) FindOne(c ctx.Ctx, collectionId string) (*collection.RoyaltyConfig, error) {
	res := &collection.RoyaltyConfig{}
	if err := im.q.FindOne(c, domain.TableRoyaltyConfigs, bson.M{"collectionId": collectionId}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *royaltyImpl) Upsert(c ctx.Ctx, cfg *collection.RoyaltyConfig) error {
	if err := im.q.Upsert(c, domain.TableRoyaltyConfigs, bson.M{"collectionId": cfg.CollectionId}, cfg); err != nil {
		c.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}
