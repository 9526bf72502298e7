package query

import (
	"github.com/x-xyz/marketengine/domain"
)

// Page converts optional offset/limit into Search arguments, limit 0 means no limit
func Page(offset, limit *int32) (int, int) {
	o, l := 0, 0
	if offset != nil && *offset > 0 {
		o = int(*offset)
	}
	if limit != nil && *limit > 0 {
		l = int(*limit)
	}
	return o, l
}

// SortFields builds SearchNSorts fields ordered by sortBy, `def` when unset,
// with `id` as tie breaker in the same direction
func SortFields(sortBy *string, sortDir *domain.SortDir, def string) []string {
	field := def
	if sortBy != nil && *sortBy != "" {
		field = *sortBy
	}
	pfx := ""
	if sortDir != nil && *sortDir == domain.SortDirDesc {
		pfx = "-"
	}
	return []string{pfx + field, pfx + "id"}
}

// DomainErr translates query errors into their domain counterparts
func DomainErr(err error) error {
	switch err {
	case ErrNotFound:
		return domain.ErrNotFound
	case ErrDuplicateKey:
		return domain.ErrConflict
	}
	return err
}
