package memstore

import (
	"sort"
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/bid"
)

type bidRepo struct {
	s *Store
}

func (r *bidRepo) Insert(c ctx.Ctx, b *bid.Bid) error {
	defer r.s.lock(c)()
	if _, ok := r.s.bids[b.Id]; ok {
		return domain.ErrConflict
	}
	r.s.bids[b.Id] = *b
	return nil
}

func (r *bidRepo) FindOne(c ctx.Ctx, id string) (*bid.Bid, error) {
	defer r.s.rlock(c)()
	b, ok := r.s.bids[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

// selectIds returns the ids of matching bids ordered by creation, caller holds the lock
func (r *bidRepo) selectIds(optFns []bid.FindAllOptions, paged bool) ([]string, error) {
	opts, err := bid.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	res := []*bid.Bid{}
	for _, b := range r.s.bids {
		b := b
		switch {
		case opts.ListingId != nil && b.ListingId != *opts.ListingId,
			opts.UserId != nil && b.BidderId != *opts.UserId,
			opts.Status != nil && b.Status != *opts.Status,
			opts.ExcludeId != nil && b.Id == *opts.ExcludeId,
			opts.ExpiresBefore != nil && (b.ExpiresAt == nil || b.ExpiresAt.After(*opts.ExpiresBefore)),
			// bids carry no token or collection
			opts.TokenId != nil, opts.CollectionId != nil:
			continue
		}
		res = append(res, &b)
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
	for _, b := range res[start:end] {
		ids = append(ids, b.Id)
	}
	return ids, nil
}

func (r *bidRepo) FindAll(c ctx.Ctx, opts ...bid.FindAllOptions) ([]*bid.Bid, error) {
	defer r.s.rlock(c)()
	ids, err := r.selectIds(opts, true)
	if err != nil {
		return nil, err
	}
	res := make([]*bid.Bid, 0, len(ids))
	for _, id := range ids {
		b := r.s.bids[id]
		res = append(res, &b)
	}
	return res, nil
}

func (r *bidRepo) Count(c ctx.Ctx, opts ...bid.FindAllOptions) (int, error) {
	defer r.s.rlock(c)()
	ids, err := r.selectIds(opts, false)
	return len(ids), err
}

func (r *bidRepo) UpdateStatus(c ctx.Ctx, id string, from, to bid.Status) error {
	defer r.s.lock(c)()
	b, ok := r.s.bids[id]
	if !ok || b.Status != from {
		return domain.ErrNotFound
	}
	b.Status = to
	b.UpdatedAt = r.s.timeNow()
	r.s.bids[id] = b
	return nil
}

func (r *bidRepo) UpdateStatusAll(c ctx.Ctx, to bid.Status, opts ...bid.FindAllOptions) (int64, error) {
	defer r.s.lock(c)()
	ids, err := r.selectIds(opts, false)
	if err != nil {
		return 0, err
	}
	now := r.s.timeNow()
	n := int64(0)
	for _, id := range ids {
		b := r.s.bids[id]
		if b.Status == to {
			continue
		}
		b.Status = to
		b.UpdatedAt = now
		r.s.bids[id] = b
		n++
	}
	return n, nil
}

// acceptable mirrors the mongo accept guard
func acceptable(status bid.Status, expiresAt *time.Time, validatedAt time.Time) bool {
	switch status {
	case bid.StatusActive:
		return true
	case bid.StatusExpired:
		return expiresAt != nil && expiresAt.After(validatedAt)
	}
	return false
}

func (r *bidRepo) Accept(c ctx.Ctx, id string, validatedAt time.Time) error {
	defer r.s.lock(c)()
	b, ok := r.s.bids[id]
	if !ok || !acceptable(b.Status, b.ExpiresAt, validatedAt) {
		return domain.ErrNotFound
	}
	b.Status = bid.StatusAccepted
	b.UpdatedAt = r.s.timeNow()
	r.s.bids[id] = b
	return nil
}
