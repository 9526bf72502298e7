package memstore

import (
	"sort"
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/sale"
)

type saleRepo struct {
	s *Store
}

func (r *saleRepo) Insert(c ctx.Ctx, sl *sale.Sale) error {
	defer r.s.lock(c)()
	if _, ok := r.s.sales[sl.Id]; ok {
		return domain.ErrConflict
	}
	for _, other := range r.s.sales {
		if sl.ListingId != "" && other.ListingId == sl.ListingId {
			return domain.ErrConflict
		}
		if sl.ListingId == "" && sl.OfferId != "" && other.ListingId == "" && other.OfferId == sl.OfferId {
			return domain.ErrConflict
		}
		if sl.TokenId != "" && other.TokenId == sl.TokenId && sl.Status == sale.StatusPending && other.Status == sale.StatusPending {
			return domain.ErrConflict
		}
	}
	r.s.sales[sl.Id] = *sl
	return nil
}

func (r *saleRepo) FindOne(c ctx.Ctx, id string) (*sale.Sale, error) {
	defer r.s.rlock(c)()
	sl, ok := r.s.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sl, nil
}

func (r *saleRepo) find(c ctx.Ctx, optFns []sale.FindAllOptions, paged bool) ([]*sale.Sale, error) {
	opts, err := sale.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	defer r.s.rlock(c)()
	res := []*sale.Sale{}
	for _, sl := range r.s.sales {
		sl := sl
		switch {
		case opts.SellerId != nil && sl.SellerId != *opts.SellerId,
			opts.BuyerId != nil && sl.BuyerId != *opts.BuyerId,
			opts.TokenId != nil && sl.TokenId != *opts.TokenId,
			opts.ListingId != nil && sl.ListingId != *opts.ListingId,
			opts.OfferId != nil && sl.OfferId != *opts.OfferId,
			opts.Status != nil && sl.Status != *opts.Status:
			continue
		}
		res = append(res, &sl)
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

func (r *saleRepo) FindAll(c ctx.Ctx, opts ...sale.FindAllOptions) ([]*sale.Sale, error) {
	return r.find(c, opts, true)
}

func (r *saleRepo) Count(c ctx.Ctx, opts ...sale.FindAllOptions) (int, error) {
	res, err := r.find(c, opts, false)
	return len(res), err
}

func (r *saleRepo) UpdateStatus(c ctx.Ctx, id string, from, to sale.Status, patch *sale.PatchableSale) error {
	defer r.s.lock(c)()
	sl, ok := r.s.sales[id]
	if !ok || sl.Status != from {
		return domain.ErrNotFound
	}
	sl.Status = to
	if patch != nil {
		if patch.TransactionHash != nil {
			sl.TransactionHash = patch.TransactionHash
		}
		if patch.BlockNumber != nil {
			sl.BlockNumber = patch.BlockNumber
		}
		if patch.FailureReason != nil {
			sl.FailureReason = *patch.FailureReason
		}
		if patch.PaidOut != nil {
			sl.PaidOut = *patch.PaidOut
		}
	}
	sl.UpdatedAt = r.s.timeNow()
	r.s.sales[id] = sl
	return nil
}

type royaltyRepo struct {
	s *Store
}

func (r *royaltyRepo) InsertMany(c ctx.Ctx, rs []*sale.Royalty) error {
	defer r.s.lock(c)()
	for _, ry := range rs {
		if _, ok := r.s.royalties[ry.Id]; ok {
			return domain.ErrConflict
		}
	}
	for _, ry := range rs {
		r.s.royalties[ry.Id] = *ry
	}
	return nil
}

func (r *royaltyRepo) FindAll(c ctx.Ctx, optFns ...sale.FindRoyaltyOptions) ([]*sale.Royalty, error) {
	opts, err := sale.GetFindRoyaltyOptions(optFns...)
	if err != nil {
		return nil, err
	}

	defer r.s.rlock(c)()
	res := []*sale.Royalty{}
	for _, ry := range r.s.royalties {
		ry := ry
		switch {
		case opts.SaleId != nil && ry.SaleId != *opts.SaleId,
			opts.RecipientId != nil && ry.RecipientId != *opts.RecipientId,
			opts.Status != nil && ry.Status != *opts.Status:
			continue
		}
		res = append(res, &ry)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].RecipientId != res[j].RecipientId {
			return res[i].RecipientId < res[j].RecipientId
		}
		return res[i].Id < res[j].Id
	})
	return res, nil
}

func (r *royaltyRepo) UpdateStatus(c ctx.Ctx, id string, from, to sale.RoyaltyStatus, paidAt *time.Time) error {
	defer r.s.lock(c)()
	ry, ok := r.s.royalties[id]
	if !ok || ry.Status != from {
		return domain.ErrNotFound
	}
	ry.Status = to
	if paidAt != nil {
		ry.PaidAt = paidAt
	}
	ry.UpdatedAt = r.s.timeNow()
	r.s.royalties[id] = ry
	return nil
}

func (r *royaltyRepo) UpdateStatusBySale(c ctx.Ctx, saleId string, from, to sale.RoyaltyStatus) (int64, error) {
	defer r.s.lock(c)()
	now := r.s.timeNow()
	n := int64(0)
	for id, ry := range r.s.royalties {
		if ry.SaleId != saleId || ry.Status != from {
			continue
		}
		ry.Status = to
		ry.UpdatedAt = now
		r.s.royalties[id] = ry
		n++
	}
	return n, nil
}
