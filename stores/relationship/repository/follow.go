package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/follow"
	"github.com/x-xyz/marketengine/service/query"
)

// FollowIndexes of domain.TableCreatorFollows
var FollowIndexes = []query.Index{
	{Keys: bson.D{{Key: "followerId", Value: 1}, {Key: "followingId", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "followingId", Value: 1}}},
}

type followImpl struct {
	q       query.Mongo
	timeNow func() time.Time
}

func NewFollow(q query.Mongo) follow.Repo {
	return &followImpl{q: q, timeNow: time.Now}
}

func (im *followImpl) Upsert(c ctx.Ctx, followerId, followingId string) error {
	selector := bson.M{"followerId": followerId, "followingId": followingId}
	// keep the first follow time on repeated follows
	update := bson.M{"$setOnInsert": bson.M{"createdAt": im.timeNow()}}
	if err := im.q.CustomPatch(c, domain.TableCreatorFollows, selector, update, true); err != nil && err != query.ErrDuplicateKey {
		c.WithField("err", err).Error("upsert follow relation falied")
		return err
	}
	return nil
}

func (im *followImpl) Remove(c ctx.Ctx, followerId, followingId string) error {
	selector := bson.M{"followerId": followerId, "followingId": followingId}
	// ignore ErrNotFound since the relation doesn't exist
	if err := im.q.Remove(c, domain.TableCreatorFollows, selector); err != nil && err != query.ErrNotFound {
		c.WithField("err", err).Error("remove follow relation falied")
		return err
	}
	return nil
}

func (im *followImpl) FindAll(c ctx.Ctx, optFns ...follow.FindAllOptions) ([]*follow.CreatorFollow, error) {
	opts, err := follow.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("follow.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit := query.Page(opts.Offset, opts.Limit)

	sort := "_id"
	if opts.SortBy != nil && opts.SortDir != nil {
		sort = *opts.SortBy
		if *opts.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}

	res := []*follow.CreatorFollow{}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	} else if err := im.q.Search(c, domain.TableCreatorFollows, offset, limit, sort, qry, &res); err != nil {
		c.WithField("err", err).Error("q.Search failed")
		return nil, err
	} else {
		return res, nil
	}
}

func (im *followImpl) Count(c ctx.Ctx, optFns ...follow.FindAllOptions) (int, error) {
	opts, err := follow.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("follow.GetFindAllOptions failed")
		return 0, err
	}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return 0, err
	} else if count, err := im.q.Count(c, domain.TableCreatorFollows, qry); err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	} else {
		return count, nil
	}
}

func (im *followImpl) FindOne(c ctx.Ctx, followerId, followingId string) (*follow.CreatorFollow, error) {
	res := &follow.CreatorFollow{}
	selector := bson.M{"followerId": followerId, "followingId": followingId}

	if err := im.q.FindOne(c, domain.TableCreatorFollows, selector, res); err != nil && err != query.ErrNotFound {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	} else {
		return res, nil
	}
}
