package memstore

import (
	"sort"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
)

type activityRepo struct {
	s *Store
}

func (r *activityRepo) Insert(c ctx.Ctx, a *activity.Activity) error {
	defer r.s.lock(c)()
	for _, other := range r.s.activities {
		if other.ExternalId == a.ExternalId {
			return domain.ErrConflict
		}
	}
	r.s.activities = append(r.s.activities, *a)
	return nil
}

func (r *activityRepo) find(c ctx.Ctx, optFns []activity.FindAllOptions, paged bool) ([]*activity.Activity, error) {
	opts, err := activity.GetFindAllOptions(optFns...)
	if err != nil {
		return nil, err
	}

	defer r.s.rlock(c)()
	type seqActivity struct {
		seq int
		a   *activity.Activity
	}
	matched := []seqActivity{}
	for i := range r.s.activities {
		a := r.s.activities[i]
		switch {
		case opts.TokenId != nil && a.TokenId != *opts.TokenId,
			opts.CollectionId != nil && a.CollectionId != *opts.CollectionId,
			opts.ListingId != nil && a.ListingId != *opts.ListingId,
			opts.UserId != nil && a.FromUserId != *opts.UserId && a.ToUserId != *opts.UserId,
			len(opts.Types) > 0 && !hasType(opts.Types, a.Type):
			continue
		}
		matched = append(matched, seqActivity{i, &a})
	}

	// newest first, insertion order breaks ties
	sort.Slice(matched, func(i, j int) bool {
		ci, cj := matched[i].a.CreatedAt, matched[j].a.CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return matched[i].seq > matched[j].seq
	})

	start, end := 0, len(matched)
	if paged {
		start, end = page(len(matched), opts.Offset, opts.Limit)
	}
	res := make([]*activity.Activity, 0, end-start)
	for _, m := range matched[start:end] {
		res = append(res, m.a)
	}
	return res, nil
}

func hasType(types []activity.Type, t activity.Type) bool {
	for _, typ := range types {
		if typ == t {
			return true
		}
	}
	return false
}

func (r *activityRepo) FindAll(c ctx.Ctx, opts ...activity.FindAllOptions) ([]*activity.Activity, error) {
	return r.find(c, opts, true)
}

func (r *activityRepo) Count(c ctx.Ctx, opts ...activity.FindAllOptions) (int, error) {
	res, err := r.find(c, opts, false)
	return len(res), err
}
