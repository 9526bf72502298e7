package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/service/query"
)

// OfferIndexes of domain.TableOffers
var OfferIndexes = []query.Index{
	{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
	{Keys: bson.D{{Key: "listingId", Value: 1}, {Key: "status", Value: 1}}},
	{Keys: bson.D{{Key: "tokenId", Value: 1}, {Key: "status", Value: 1}}},
	{Keys: bson.D{{Key: "collectionId", Value: 1}, {Key: "status", Value: 1}}},
	{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
	{Keys: bson.D{{Key: "offererId", Value: 1}, {Key: "createdAt", Value: -1}}},
}

type offerImpl struct {
	q       query.Mongo
	timeNow func() time.Time
}

func NewOffer(q query.Mongo) bid.OfferRepo {
	return &offerImpl{q: q, timeNow: time.Now}
}

func (im *offerImpl) Insert(c ctx.Ctx, o *bid.Offer) error {
	if err := im.q.Insert(c, domain.TableOffers, o); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		c.WithField("err", err).Error("q.Insert failed")
		return err
	}
	return nil
}

func (im *offerImpl) FindOne(c ctx.Ctx, id string) (*bid.Offer, error) {
	res := &bid.Offer{}
	if err := im.q.FindOne(c, domain.TableOffers, bson.M{"id": id}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *offerImpl) FindAll(c ctx.Ctx, opts ...bid.FindAllOptions) ([]*bid.Offer, error) {
	res := []*bid.Offer{}
	if err := search(c, im.q, domain.TableOffers, opts, "offererId", &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (im *offerImpl) Count(c ctx.Ctx, opts ...bid.FindAllOptions) (int, error) {
	return count(c, im.q, domain.TableOffers, opts, "offererId")
}

func (im *offerImpl) UpdateStatus(c ctx.Ctx, id string, from, to bid.Status) error {
	return updateStatus(c, im.q, domain.TableOffers, id, from, to, im.timeNow())
}

func (im *offerImpl) UpdateStatusAll(c ctx.Ctx, to bid.Status, opts ...bid.FindAllOptions) (int64, error) {
	return updateStatusAll(c, im.q, domain.TableOffers, to, opts, "offererId", im.timeNow())
}

func (im *offerImpl) Accept(c ctx.Ctx, id string, validatedAt time.Time) error {
	return accept(c, im.q, domain.TableOffers, id, validatedAt, im.timeNow())
}
