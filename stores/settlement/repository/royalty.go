package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/sale"
	"github.com/x-xyz/marketengine/service/query"
)

// RoyaltyIndexes of domain.TableRoyalties
var RoyaltyIndexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "saleId", Value: 1}, {Key: "recipientId", Value: 1}}},
	{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "status", Value: 1}}},
}

type royaltyImpl struct {
	q       query.Mongo
	timeNow func() time.Time
}

func NewRoyalty(q query.Mongo) sale.RoyaltyRepo {
	return &royaltyImpl{q: q, timeNow: time.Now}
}

func (im *royaltyImpl) InsertMany(c ctx.Ctx, rs []*sale.Royalty) error {
	if len(rs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(rs))
	for _, r := range rs {
		docs = append(docs, r)
	}
	if err := im.q.InsertMany(c, domain.TableRoyalties, docs); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.InsertMany failed")
		return err
	}
	return nil
}

func (im *royaltyImpl) FindAll(c ctx.Ctx, optFns ...sale.FindRoyaltyOptions) ([]*sale.Royalty, error) {
	opts, err := sale.GetFindRoyaltyOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("sale.GetFindRoyaltyOptions failed")
		return nil, err
	}

	res := []*sale.Royalty{}
	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	} else if err := im.q.SearchNSorts(c, domain.TableRoyalties, 0, 0, []string{"recipientId", "id"}, qry, &res); err != nil {
		c.WithField("err", err).Error("q.SearchNSorts failed")
		return nil, err
	}
	return res, nil
}

func (im *royaltyImpl) UpdateStatus(c ctx.Ctx, id string, from, to sale.RoyaltyStatus, paidAt *time.Time) error {
	set := bson.M{"status": to, "updatedAt": im.timeNow()}
	if paidAt != nil {
		set["paidAt"] = *paidAt
	}
	if err := im.q.CustomPatch(c, domain.TableRoyalties, bson.M{"id": id, "status": from}, bson.M{"$set": set}, false); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}

func (im *royaltyImpl) UpdateStatusBySale(c ctx.Ctx, saleId string, from, to sale.RoyaltyStatus) (int64, error) {
	selector := bson.M{"saleId": saleId, "status": from}
	n, err := im.q.UpdateMany(c, domain.TableRoyalties, selector, bson.M{"$set": bson.M{"status": to, "updatedAt": im.timeNow()}})
	if err != nil {
		c.WithField("err", err).Error("q.UpdateMany failed")
		return 0, err
	}
	return n, nil
}
