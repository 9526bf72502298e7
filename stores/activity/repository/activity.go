package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/service/query"
)

// Indexes of domain.TableActivities
var Indexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "externalId", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "tokenId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "collectionId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "listingId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "fromUserId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "toUserId", Value: 1}, {Key: "createdAt", Value: -1}}},
}

// newest first, _id keeps insertion order for equal timestamps
var sortFields = []string{"-createdAt", "-_id"}

type impl struct {
	q query.Mongo
}

func New(q query.Mongo) activity.Repo {
	return &impl{q}
}

func (im *impl) Insert(c ctx.Ctx, a *activity.Activity) error {
	if err := im.q.Insert(c, domain.TableActivities, a); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *impl) selector(c ctx.Ctx, optFns []activity.FindAllOptions) (bson.M, error) {
	opts, err := activity.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindAllOptions failed")
		return nil, err
	}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if len(opts.Types) > 0 {
		qry["type"] = bson.M{"$in": opts.Types}
	}
	if opts.UserId != nil {
		qry["$or"] = bson.A{
			bson.M{"fromUserId": *opts.UserId},
			bson.M{"toUserId": *opts.UserId},
		}
	}
	return qry, nil
}

func (im *impl) FindAll(c ctx.Ctx, optFns ...activity.FindAllOptions) ([]*activity.Activity, error) {
	opts, err := activity.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindAllOptions failed")
		return nil, err
	}
	qry, err := im.selector(c, optFns)
	if err != nil {
		return nil, err
	}

	offset, limit := query.Page(opts.Offset, opts.Limit)
	res := []*activity.Activity{}
	if err := im.q.SearchNSorts(c, domain.TableActivities, offset, limit, sortFields, qry, &res); err != nil {
		c.WithField("err", err).Error("q.SearchNSorts failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, optFns ...activity.FindAllOptions) (int, error) {
	qry, err := im.selector(c, optFns)
	if err != nil {
		return 0, err
	}
	n, err := im.q.Count(c, domain.TableActivities, qry)
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return n, nil
}
