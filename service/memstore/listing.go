package memstore

import (
	"sort"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/listing"
)

type listingRepo struct {
	s *Store
}

func (r *listingRepo) Insert(c ctx.Ctx, l *listing.Listing) error {
	defer r.s.lock(c)()
	if _, ok := r.s.listings[l.Id]; ok {
		return domain.ErrConflict
	}
	r.s.listings[l.Id] = *l
	return nil
}

func (r *listingRepo) FindOne(c ctx.Ctx, id string) (*listing.Listing, error) {
	defer r.s.rlock(c)()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *listingRepo) find(c ctx.Ctx, optFns []listing.FindAllOptions, paged bool) ([]*listing.Listing, error) {
	opts, err := listing.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	defer r.s.rlock(c)()
	res := []*listing.Listing{}
	for _, l := range r.s.listings {
		l := l
		switch {
		case opts.SellerId != nil && l.SellerId != *opts.SellerId,
			opts.TokenId != nil && l.TokenId != *opts.TokenId,
			opts.CollectionId != nil && l.CollectionId != *opts.CollectionId,
			opts.Kind != nil && l.Kind != *opts.Kind,
			opts.Status != nil && l.Status != *opts.Status,
			opts.EndedBefore != nil && (l.EndTime == nil || l.EndTime.After(*opts.EndedBefore)):
			continue
		}
		res = append(res, &l)
	}

	dir := direction(opts.SortDir)
	sort.Slice(res, func(i, j int) bool {
		return less(res[i].CreatedAt, res[j].CreatedAt, res[i].Id, res[j].Id, dir)
	})
	if !paged {
		return res, nil
	}
	start, end := page(len(res), opts.Offset, opts.Limit)
	return res[start:end], nil
}

func (r *listingRepo) FindAll(c ctx.Ctx, opts ...listing.FindAllOptions) ([]*listing.Listing, error) {
	return r.find(c, opts, true)
}

func (r *listingRepo) Count(c ctx.Ctx, opts ...listing.FindAllOptions) (int, error) {
	res, err := r.find(c, opts, false)
	return len(res), err
}

func (r *listingRepo) cas(c ctx.Ctx, id string, version int64, apply func(*listing.Listing)) error {
	defer r.s.lock(c)()
	l, ok := r.s.listings[id]
	if !ok || l.Version != version || l.Status != listing.StatusActive {
		return domain.ErrNotFound
	}
	apply(&l)
	l.Version++
	l.UpdatedAt = r.s.timeNow()
	r.s.listings[id] = l
	return nil
}

func (r *listingRepo) Touch(c ctx.Ctx, id string, version int64) error {
	return r.cas(c, id, version, func(*listing.Listing) {})
}

func (r *listingRepo) UpdateStatus(c ctx.Ctx, id string, version int64, status listing.Status) error {
	return r.cas(c, id, version, func(l *listing.Listing) {
		l.Status = status
	})
}

func (r *listingRepo) increase(c ctx.Ctx, id string, apply func(*listing.Listing)) error {
	defer r.s.lock(c)()
	l, ok := r.s.listings[id]
	if !ok {
		return domain.ErrNotFound
	}
	apply(&l)
	r.s.listings[id] = l
	return nil
}

func (r *listingRepo) IncreaseViews(c ctx.Ctx, id string, n int64) error {
	return r.increase(c, id, func(l *listing.Listing) { l.Views += n })
}

func (r *listingRepo) IncreaseLikes(c ctx.Ctx, id string, n int64) error {
	return r.increase(c, id, func(l *listing.Listing) {
		l.Likes += n
		if l.Likes < 0 {
			l.Likes = 0
		}
	})
}
