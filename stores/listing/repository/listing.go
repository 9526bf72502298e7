package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/service/query"
)

// Indexes of domain.TableListings
var Indexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endTime", Value: 1}}},
	{Keys: bson.D{{Key: "tokenId", Value: 1}, {Key: "status", Value: 1}}},
	{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "collectionId", Value: 1}, {Key: "createdAt", Value: -1}}},
}

type impl struct {
	q       query.Mongo
	timeNow func() time.Time
}

func New(q query.Mongo) listing.Repo {
	return &impl{q: q, timeNow: time.Now}
}

func (im *impl) Insert(c ctx.Ctx, l *listing.Listing) error {
	if err := im.q.Insert(c, domain.TableListings, l); err != nil {
		if err == query.ErrDuplicateKey {
			return domain.ErrConflict
		}
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *impl) FindOne(c ctx.Ctx, id string) (*listing.Listing, error) {
	res := &listing.Listing{}
	if err := im.q.FindOne(c, domain.TableListings, bson.M{"id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) selector(c ctx.Ctx, optFns []listing.FindAllOptions) (bson.M, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return nil, err
	}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if opts.EndedBefore != nil {
		qry["endTime"] = bson.M{"$lte": *opts.EndedBefore}
	}
	return qry, nil
}

func (im *impl) FindAll(c ctx.Ctx, optFns ...listing.FindAllOptions) ([]*listing.Listing, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("listing.GetFindAllOptions failed")
		return nil, err
	}
	qry, err := im.selector(c, optFns)
	if err != nil {
		return nil, err
	}

	offset, limit := query.Page(opts.Offset, opts.Limit)
	res := []*listing.Listing{}
	if err := im.q.SearchNSorts(c, domain.TableListings, offset, limit, query.SortFields(opts.SortBy, opts.SortDir, "createdAt"), qry, &res); err != nil {
		c.WithField("err", err).Error("q.SearchNSorts failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, optFns ...listing.FindAllOptions) (int, error) {
	qry, err := im.selector(c, optFns)
	if err != nil {
		return 0, err
	}
	count, err := im.q.Count(c, domain.TableListings, qry)
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return count, nil
}

func (im *impl) cas(c ctx.Ctx, id string, version int64, set bson.M) error {
	set["updatedAt"] = im.timeNow()
	selector := bson.M{"id": id, "status": listing.StatusActive, "version": version}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if err := im.q.CustomPatch(c, domain.TableListings, selector, update, false); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}

func (im *impl) Touch(c ctx.Ctx, id string, version int64) error {
	return im.cas(c, id, version, bson.M{})
}

func (im *impl) UpdateStatus(c ctx.Ctx, id string, version int64, status listing.Status) error {
	return im.cas(c, id, version, bson.M{"status": status})
}

func (im *impl) IncreaseViews(c ctx.Ctx, id string, n int64) error {
	if err := im.q.CustomPatch(c, domain.TableListings, bson.M{"id": id}, bson.M{"$inc": bson.M{"views": n}}, false); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}

func (im *impl) IncreaseLikes(c ctx.Ctx, id string, n int64) error {
	update := bson.M{"$inc": bson.M{"likes": n}}
	selector := bson.M{"id": id}
	if n < 0 {
		selector["likes"] = bson.M{"$gte": -n}
	}
	err := im.q.CustomPatch(c, domain.TableListings, selector, update, false)
	if err == query.ErrNotFound && n < 0 {
		// fewer likes than requested, floor at zero
		err = im.q.CustomPatch(c, domain.TableListings, bson.M{"id": id}, bson.M{"$set": bson.M{"likes": 0}}, false)
	}
	if err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}
