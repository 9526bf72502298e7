// Package memstore keeps the market tables in process memory. It implements
// the listing, bid, offer, sale, royalty and activity repositories plus
// domain.Transactor, for tests and single node set ups.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/domain/sale"
)

type txKey struct{}

type tables struct {
	listings   map[string]listing.Listing
	bids       map[string]bid.Bid
	offers     map[string]bid.Offer
	sales      map[string]sale.Sale
	royalties  map[string]sale.Royalty
	activities []activity.Activity
}

func (t *tables) clone() tables {
	res := tables{
		listings:   make(map[string]listing.Listing, len(t.listings)),
		bids:       make(map[string]bid.Bid, len(t.bids)),
		offers:     make(map[string]bid.Offer, len(t.offers)),
		sales:      make(map[string]sale.Sale, len(t.sales)),
		royalties:  make(map[string]sale.Royalty, len(t.royalties)),
		activities: make([]activity.Activity, len(t.activities)),
	}
	for k, v := range t.listings {
		res.listings[k] = v
	}
	for k, v := range t.bids {
		res.bids[k] = v
	}
	for k, v := range t.offers {
		res.offers[k] = v
	}
	for k, v := range t.sales {
		res.sales[k] = v
	}
	for k, v := range t.royalties {
		res.royalties[k] = v
	}
	copy(res.activities, t.activities)
	return res
}

// Store holds every table behind one lock. A transaction holds the write
// lock until it returns, so no reader sees a partial unit.
type Store struct {
	mu sync.RWMutex
	tables
	timeNow func() time.Time
}

func New() *Store {
	return &Store{
		tables: tables{
			listings:  map[string]listing.Listing{},
			bids:      map[string]bid.Bid{},
			offers:    map[string]bid.Offer{},
			sales:     map[string]sale.Sale{},
			royalties: map[string]sale.Royalty{},
		},
		timeNow: time.Now,
	}
}

func (s *Store) Listings() listing.Repo {
	return &listingRepo{s}
}

func (s *Store) Bids() bid.BidRepo {
	return &bidRepo{s}
}

func (s *Store) Offers() bid.OfferRepo {
	return &offerRepo{s}
}

func (s *Store) Sales() sale.Repo {
	return &saleRepo{s}
}

func (s *Store) Royalties() sale.RoyaltyRepo {
	return &royaltyRepo{s}
}

func (s *Store) Activities() activity.Repo {
	return &activityRepo{s}
}

func (s *Store) inTx(c context.Context) bool {
	owner, _ := c.Value(txKey{}).(*Store)
	return owner == s
}

func (s *Store) rlock(c context.Context) func() {
	if s.inTx(c) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock(c context.Context) func() {
	if s.inTx(c) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunWithTransaction runs fn with exclusive access to the store and restores
// every table when fn fails. Nested calls join the outer transaction.
func (s *Store) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	if s.inTx(c) {
		return fn(c)
	}
	if err := c.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.tables.clone()
	committed := false
	defer func() {
		// rollback on error and on panic
		if !committed {
			s.tables = snapshot
		}
	}()

	if err := fn(ctx.From(c, context.WithValue(c, txKey{}, s))); err != nil {
		return err
	}
	committed = true
	return nil
}

func page(n int, offset, limit *int32) (int, int) {
	start, end := 0, n
	if offset != nil && int(*offset) > 0 {
		start = int(*offset)
	}
	if start > n {
		start = n
	}
	if limit != nil && *limit > 0 && start+int(*limit) < end {
		end = start + int(*limit)
	}
	return start, end
}

func direction(sortDir *domain.SortDir) int {
	if sortDir != nil && *sortDir == domain.SortDirDesc {
		return -1
	}
	return 1
}

// less orders by creation time then id, dir < 0 reverses it
func less(ci, cj time.Time, idi, idj string, dir int) bool {
	if !ci.Equal(cj) {
		if dir < 0 {
			return ci.After(cj)
		}
		return ci.Before(cj)
	}
	if dir < 0 {
		return idi > idj
	}
	return idi < idj
}
