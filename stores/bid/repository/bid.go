package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/service/query"
)

// BidIndexes of domain.TableBids
var BidIndexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "listingId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
	{Keys: bson.D{{Key: "bidderId", Value: 1}, {Key: "createdAt", Value: -1}}},
}

// selector builds the mongo filter shared by bids and offers, userField is
// the field matched by bid.WithUser
func selector(c ctx.Ctx, optFns []bid.FindAllOptions, userField string) (bson.M, error) {
	opts, err := bid.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("bid.GetFindAllOptions failed")
		return nil, err
	}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	}
	if opts.UserId != nil {
		qry[userField] = *opts.UserId
	}
	if opts.ExcludeId != nil {
		qry["id"] = bson.M{"$ne": *opts.ExcludeId}
	}
	if opts.ExpiresBefore != nil {
		qry["expiresAt"] = bson.M{"$lte": *opts.ExpiresBefore}
	}
	return qry, nil
}

func search(c ctx.Ctx, q query.Mongo, table domain.Table, optFns []bid.FindAllOptions, userField string, res interface{}) error {
	opts, err := bid.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("bid.GetFindAllOptions failed")
		return err
	}
	qry, err := selector(c, optFns, userField)
	if err != nil {
		return err
	}
	offset, limit := query.Page(opts.Offset, opts.Limit)
	if err := q.SearchNSorts(c, table, offset, limit, query.SortFields(opts.SortBy, opts.SortDir, "createdAt"), qry, res); err != nil {
		c.WithField("err", err).Error("q.SearchNSorts failed")
		return err
	}
	return nil
}

func count(c ctx.Ctx, q query.Mongo, table domain.Table, optFns []bid.FindAllOptions, userField string) (int, error) {
	qry, err := selector(c, optFns, userField)
	if err != nil {
		return 0, err
	}
	n, err := q.Count(c, table, qry)
	if err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	}
	return n, nil
}

func updateStatus(c ctx.Ctx, q query.Mongo, table domain.Table, id string, from, to bid.Status, now time.Time) error {
	selector := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": now}}
	if err := q.CustomPatch(c, table, selector, update, false); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}

// accept moves an ACTIVE row, or an EXPIRED one still unexpired at validatedAt, to ACCEPTED
func accept(c ctx.Ctx, q query.Mongo, table domain.Table, id string, validatedAt, now time.Time) error {
	selector := bson.M{
		"id": id,
		"$or": bson.A{
			bson.M{"status": bid.StatusActive},
			bson.M{"status": bid.StatusExpired, "expiresAt": bson.M{"$gt": validatedAt}},
		},
	}
	update := bson.M{"$set": bson.M{"status": bid.StatusAccepted, "updatedAt": now}}
	if err := q.CustomPatch(c, table, selector, update, false); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}

func updateStatusAll(c ctx.Ctx, q query.Mongo, table domain.Table, to bid.Status, optFns []bid.FindAllOptions, userField string, now time.Time) (int64, error) {
	qry, err := selector(c, optFns, userField)
	if err != nil {
		return 0, err
	}
	n, err := q.UpdateMany(c, table, qry, bson.M{"$set": bson.M{"status": to, "updatedAt": now}})
	if err != nil {
		c.WithField("err", err).Error("q.UpdateMany failed")
		return 0, err
	}
	return n, nil
}

type bidImpl struct {
	q       query.Mongo
	timeNow func() time.Time
}

func NewBid(q query.Mongo) bid.BidRepo {
	return &bidImpl{q: q, timeNow: time.Now}
}

func (im *bidImpl) Insert(c ctx.Ctx, b *bid.Bid) error {
	if err := im.q.Insert(c, domain.TableBids, b); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *bidImpl) FindOne(c ctx.Ctx, id string) (*bid.Bid, error) {
	res := &bid.Bid{}
	if err := im.q.FindOne(c, domain.TableBids, bson.M{"id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *bidImpl) FindAll(c ctx.Ctx, opts ...bid.FindAllOptions) ([]*bid.Bid, error) {
	res := []*bid.Bid{}
	if err := search(c, im.q, domain.TableBids, opts, "bidderId", &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (im *bidImpl) Count(c ctx.Ctx, opts ...bid.FindAllOptions) (int, error) {
	return count(c, im.q, domain.TableBids, opts, "bidderId")
}

func (im *bidImpl) UpdateStatus(c ctx.Ctx, id string, from, to bid.Status) error {
	return updateStatus(c, im.q, domain.TableBids, id, from, to, im.timeNow())
}

func (im *bidImpl) UpdateStatusAll(c ctx.Ctx, to bid.Status, opts ...bid.FindAllOptions) (int64, error) {
	return updateStatusAll(c, im.q, domain.TableBids, to, opts, "bidderId", im.timeNow())
}

func (im *bidImpl) Accept(c ctx.Ctx, id string, validatedAt time.Time) error {
	return accept(c, im.q, domain.TableBids, id, validatedAt, im.timeNow())
}
