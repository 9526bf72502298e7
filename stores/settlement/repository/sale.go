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

// SaleIndexes of domain.TableSales. The partial unique indexes allow at most
// one sale per listing and per accepted offer, and one PENDING sale per token.
var SaleIndexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "listingId", Value: 1}}, Unique: true, Partial: bson.M{"listingId": bson.M{"$exists": true}}},
	{Keys: bson.D{{Key: "offerId", Value: 1}}, Unique: true, Partial: bson.M{"offerId": bson.M{"$exists": true}}},
	{Keys: bson.D{{Key: "tokenId", Value: 1}}, Unique: true, Partial: bson.M{"status": sale.StatusPending}},
	{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "buyerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{Keys: bson.D{{Key: "tokenId", Value: 1}, {Key: "createdAt", Value: -1}}},
}

type saleImpl struct {
	q       query.Mongo
	timeNow func() time.Time
}

func NewSale(q query.Mongo) sale.Repo {
	return &saleImpl{q: q, timeNow: time.Now}
}

func (im *saleImpl) Insert(c ctx.Ctx, s *sale.Sale) error {
	if err := im.q.Insert(c, domain.TableSales, s); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *saleImpl) FindOne(c ctx.Ctx, id string) (*sale.Sale, error) {
	res := &sale.Sale{}
	if err := im.q.FindOne(c, domain.TableSales, bson.M{"id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *saleImpl) FindAll(c ctx.Ctx, optFns ...sale.FindAllOptions) ([]*sale.Sale, error) {
	opts, err := sale.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("sale.GetFindAllOptions failed")
		return nil, err
	}

	offset, limit := query.Page(opts.Offset, opts.Limit)
	res := []*sale.Sale{}
	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	} else if err := im.q.SearchNSorts(c, domain.TableSales, offset, limit, query.SortFields(opts.SortBy, opts.SortDir, "createdAt"), qry, &res); err != nil {
		c.WithField("err", err).Error("q.SearchNSorts failed")
		return nil, err
	}
	return res, nil
}

func (im *saleImpl) Count(c ctx.Ctx, optFns ...sale.FindAllOptions) (int, error) {
	opts, err := sale.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("sale.GetFindAllOptions failed")
		return 0, err
	}

	if qry, err := mongoclient.MakeBsonM(opts); err != nil {
		c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return 0, err
	} else if count, err := im.q.Count(c, domain.TableSales, qry); err != nil {
		c.WithField("err", err).Error("q.Count failed")
		return 0, err
	} else {
		return count, nil
	}
}

func (im *saleImpl) UpdateStatus(c ctx.Ctx, id string, from, to sale.Status, patch *sale.PatchableSale) error {
	set := bson.M{}
	if patch != nil {
		p, err := mongoclient.MakeBsonM(patch)
		if err != nil {
			c.WithField("err", err).Error("mongoclient.MakeBsonM failed")
			return err
		}
		set = p
	}
	set["status"] = to
	set["updatedAt"] = im.timeNow()

	selector := bson.M{"id": id, "status": from}
	if err := im.q.CustomPatch(c, domain.TableSales, selector, bson.M{"$set": set}, false); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.CustomPatch failed")
		return err
	}
	return nil
}
