package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/service/query"
)

// TokenIndexes of domain.TableTokens
var TokenIndexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "collectionId", Value: 1}}},
	{Keys: bson.D{{Key: "ownerId", Value: 1}}},
}

type tokenImpl struct {
	q query.Mongo
}

func NewToken(q query.Mongo) collection.TokenRepo {
	return &tokenImpl{q}
}

func (im *tokenImpl) FindOne(c ctx.Ctx, id string) (*collection.Token, error) {
	res := &collection.Token{}
	if err := im.q.FindOne(c, domain.TableTokens, bson.M{"id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *tokenImpl) Upsert(c ctx.Ctx, t *collection.Token) error {
	if err := im.q.Upsert(c, domain.TableTokens, bson.M{"id": t.Id}, t); err != nil {
		c.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}
