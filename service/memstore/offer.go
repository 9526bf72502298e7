package memstore

import (
	"sort"
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/bid"
)

type offerRepo struct {
	s *Store
}

func (r *offerRepo) Insert(c ctx.Ctx, o *bid.Offer) error {
	defer r.s.lock(c)()
	if _, ok := r.s.offers[o.Id]; ok {
		return domain.ErrConflict
	}
	r.s.offers[o.Id] = *o
	return nil
}

func (r *offerRepo) FindOne(c ctx.Ctx, id string) (*bid.Offer, error) {
	defer r.s.rlock(c)()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

// selectIds returns the ids of matching offers ordered by creation, caller holds the lock
func (r *offerRepo) selectIds(optFns []bid.FindAllOptions, paged bool) ([]string, error) {
	opts, err := bid.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	res := []*bid.Offer{}
	for _, o := range r.s.offers {
		o := o
		switch {
		case opts.ListingId != nil && o.ListingId != *opts.ListingId,
			opts.UserId != nil && o.OffererId != *opts.UserId,
			opts.TokenId != nil && o.TokenId != *opts.TokenId,
			opts.CollectionId != nil && o.CollectionId != *opts.CollectionId,
			opts.Status != nil && o.Status != *opts.Status,
			opts.ExcludeId != nil && o.Id == *opts.ExcludeId,
			opts.ExpiresBefore != nil && (o.ExpiresAt == nil || o.ExpiresAt.After(*opts.ExpiresBefore)):
			continue
		}
		res = append(res, &o)
	}

	dir := direction(opts.SortDir)
	sort.Slice(res, func(i, j int) bool {
		return less(res[i].CreatedAt, res[j].CreatedAt, res[i].Id, res[j].Id, dir)
	})
	start, end := 0, len(res)
	if paged {
		start, end = page(len(res), opts.Offset, opts.Limit)
	}
	ids := make([]string, 0, end-start)
	for _, o := range res[start:end] {
		ids = append(ids, o.Id)
	}
	return ids, nil
}

func (r *offerRepo) FindAll(c ctx.Ctx, opts ...bid.FindAllOptions) ([]*bid.Offer, error) {
	defer r.s.rlock(c)()
	ids, err := r.selectIds(opts, true)
	if err != nil {
		return nil, err
	}
	res := make([]*bid.Offer, 0, len(ids))
	for _, id := range ids {
		o := r.s.offers[id]
		res = append(res, &o)
	}
	return res, nil
}

func (r *offerRepo) Count(c ctx.Ctx, opts ...bid.FindAllOptions) (int, error) {
	defer r.s.rlock(c)()
	ids, err := r.selectIds(opts, false)
	return len(ids), err
}

func (r *offerRepo) UpdateStatus(c ctx.Ctx, id string, from, to bid.Status) error {
	defer r.s.lock(c)()
	o, ok := r.s.offers[id]
	if !ok || o.Status != from {
		return domain.ErrNotFound
	}
	o.Status = to
	o.UpdatedAt = r.s.timeNow()
	r.s.offers[id] = o
	return nil
}

func (r *offerRepo) UpdateStatusAll(c ctx.Ctx, to bid.Status, opts ...bid.FindAllOptions) (int64, error) {
	defer r.s.lock(c)()
	ids, err := r.selectIds(opts, false)
	if err != nil {
		return 0, err
	}
	now := r.s.timeNow()
	n := int64(0)
	for _, id := range ids {
		o := r.s.offers[id]
		if o.Status == to {
			continue
		}
		o.Status = to
		o.UpdatedAt = now
		r.s.offers[id] = o
		n++
	}
	return n, nil
}

func (r *offerRepo) Accept(c ctx.Ctx, id string, validatedAt time.Time) error {
	defer r.s.lock(c)()
	o, ok := r.s.offers[id]
	if !ok || !acceptable(o.Status, o.ExpiresAt, validatedAt) {
		return domain.ErrNotFound
	}
	o.Status = bid.StatusAccepted
	o.UpdatedAt = r.s.timeNow()
	r.s.offers[id] = o
	return nil
}
