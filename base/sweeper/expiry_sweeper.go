package sweeper

import (
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/marketengine/base/backoff"
	bCtx "github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/goroutine"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/expiry"
	"github.com/x-xyz/marketengine/domain/listing"
)

const (
	defaultBatchSize = int32(500)
	defaultWorkers   = 8
)

var met = metrics.New("sweeper")

type ExpirySweeperCfg struct {
	ListingRepo listing.Repo
	BidRepo     bid.BidRepo
	OfferRepo   bid.OfferRepo
	Transactor  domain.Transactor
	Interval    time.Duration
	BatchSize   int32
	Workers     int
}

// Result counts the rows one run moved to EXPIRED
type Result struct {
	Bids     int64
	Offers   int64
	Listings int64
}

// ExpirySweeper periodically expires lapsed bids, offers and listings. It
// never accepts anything on its own.
type ExpirySweeper struct {
	listingRepo listing.Repo
	bidRepo     bid.BidRepo
	offerRepo   bid.OfferRepo
	transactor  domain.Transactor
	interval    time.Duration
	batchSize   int32
	workers     int
	stoppedCh   chan interface{}
	timeNow     func() time.Time
}

func NewExpirySweeper(cfg *ExpirySweeperCfg) *ExpirySweeper {
	s := &ExpirySweeper{
		listingRepo: cfg.ListingRepo,
		bidRepo:     cfg.BidRepo,
		offerRepo:   cfg.OfferRepo,
		transactor:  cfg.Transactor,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		workers:     cfg.Workers,
		stoppedCh:   make(chan interface{}),
		timeNow:     time.Now,
	}
	if s.batchSize <= 0 {
		s.batchSize = defaultBatchSize
	}
	if s.workers <= 0 {
		s.workers = defaultWorkers
	}
	if s.interval <= 0 {
		s.interval = time.Minute
	}
	return s
}

func (s *ExpirySweeper) Start(ctx bCtx.Ctx) {
	goroutine.RecoverableGo(func() {
		s.loop(ctx)
	}, goroutine.WithName("expirySweeper"), goroutine.WithAfterRecovered(func(interface{}, []byte) {
		close(s.stoppedCh)
	}))
}

func (s *ExpirySweeper) Wait() {
	<-s.stoppedCh
}

func (s *ExpirySweeper) loop(ctx bCtx.Ctx) {
	failures := backoff.NewExponential(s.interval, 10*s.interval)
	nextTick := time.Second * 0

	for {
		select {
		case <-ctx.Done():
			close(s.stoppedCh)
			return
		case <-time.After(nextTick):
			res, err := s.RunOnce(ctx)
			if err != nil {
				ctx.WithField("err", err).Error("sweeper.RunOnce failed")
				met.BumpSum("run.err", 1)
				if err := failures.Backoff(ctx); err != nil {
					close(s.stoppedCh)
					return
				}
				nextTick = 0
				continue
			}
			failures.Reset()
			ctx.WithFields(log.Fields{
				"bids":     res.Bids,
				"offers":   res.Offers,
				"listings": res.Listings,
			}).Info("expiry sweep done")
			nextTick = s.interval
		}
	}
}

// RunOnce expires everything lapsed at the current time. Running it again
// with nothing new lapsed changes nothing.
func (s *ExpirySweeper) RunOnce(ctx bCtx.Ctx) (*Result, error) {
	defer met.BumpTime("run.time").End()

	now := s.timeNow()
	res := &Result{}

	var err error
	if res.Bids, err = s.bidRepo.UpdateStatusAll(ctx, bid.StatusExpired, bid.WithStatus(bid.StatusActive), bid.WithExpiresBefore(now)); err != nil {
		ctx.WithField("err", err).Error("bidRepo.UpdateStatusAll failed")
		return nil, err
	}
	if res.Offers, err = s.offerRepo.UpdateStatusAll(ctx, bid.StatusExpired, bid.WithStatus(bid.StatusActive), bid.WithExpiresBefore(now)); err != nil {
		ctx.WithField("err", err).Error("offerRepo.UpdateStatusAll failed")
		return nil, err
	}
	if res.Listings, err = s.expireListings(ctx, now); err != nil {
		ctx.WithField("err", err).Error("expireListings failed")
		return nil, err
	}

	met.BumpSum("bids.expired", float64(res.Bids))
	met.BumpSum("offers.expired", float64(res.Offers))
	met.BumpSum("listings.expired", float64(res.Listings))
	return res, nil
}

// outcome of one listing expiry attempt
type outcome int

const (
	expired outcome = iota
	// gone no longer matches the sweep query
	gone
	// kept still matches, later pages start past it
	kept
)

func (s *ExpirySweeper) expireListings(ctx bCtx.Ctx, now time.Time) (int64, error) {
	total := int64(0)
	offset := int32(0)
	for {
		ls, err := s.listingRepo.FindAll(ctx,
			listing.WithStatus(listing.StatusActive),
			listing.WithEndedBefore(now),
			listing.WithSort("endTime", domain.SortDirAsc),
			listing.WithPagination(offset, s.batchSize),
		)
		if err != nil {
			ctx.WithField("err", err).Error("listingRepo.FindAll failed")
			return total, err
		}
		if len(ls) == 0 {
			return total, nil
		}

		counts, err := s.expireBatch(ctx, ls, now)
		if err != nil {
			return total, err
		}
		total += counts[expired]
		offset += int32(counts[kept])

		if len(ls) < int(s.batchSize) {
			return total, nil
		}
	}
}

func (s *ExpirySweeper) expireBatch(ctx bCtx.Ctx, ls []*listing.Listing, now time.Time) (map[outcome]int64, error) {
	b := goroutines.NewBatch(s.workers, goroutines.WithBatchSize(len(ls)))
	defer b.Close()
	for i := range ls {
		l := ls[i]
		if err := b.Queue(func() (interface{}, error) {
			return s.expireListing(ctx, l, now)
		}); err != nil {
			ctx.WithField("err", err).Error("batch.Queue failed")
			return nil, err
		}
	}
	b.QueueComplete()

	counts := map[outcome]int64{}
	var firstErr error
	for ret := range b.Results() {
		if ret.Error() != nil {
			if firstErr == nil {
				firstErr = ret.Error()
			}
			continue
		}
		counts[ret.Value().(outcome)]++
	}
	return counts, firstErr
}

// expireListing moves one lapsed listing and its open bids and offers to
// EXPIRED. A listing whose version moved under it is reloaded and tried once
// more while it is still ACTIVE and lapsed.
func (s *ExpirySweeper) expireListing(ctx bCtx.Ctx, l *listing.Listing, now time.Time) (outcome, error) {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.transactor.RunWithTransaction(ctx, func(c bCtx.Ctx) error {
			if err := s.listingRepo.UpdateStatus(c, l.Id, l.Version, listing.StatusExpired); err != nil {
				return err
			}
			if _, err := s.bidRepo.UpdateStatusAll(c, bid.StatusExpired, bid.WithListing(l.Id), bid.WithStatus(bid.StatusActive)); err != nil {
				c.WithField("err", err).Error("bidRepo.UpdateStatusAll failed")
				return err
			}
			if _, err := s.offerRepo.UpdateStatusAll(c, bid.StatusExpired, bid.WithListing(l.Id), bid.WithStatus(bid.StatusActive)); err != nil {
				c.WithField("err", err).Error("offerRepo.UpdateStatusAll failed")
				return err
			}
			return nil
		})
		if err == nil {
			return expired, nil
		} else if err != domain.ErrNotFound {
			ctx.WithFields(log.Fields{
				"listingId": l.Id,
				"err":       err,
			}).Error("transactor.RunWithTransaction failed")
			return kept, err
		}

		cur, err := s.listingRepo.FindOne(ctx, l.Id)
		if err == domain.ErrNotFound {
			return gone, nil
		} else if err != nil {
			ctx.WithField("err", err).Error("listingRepo.FindOne failed")
			return kept, err
		}
		if !expiry.ListingLapsed(cur, now) {
			ctx.WithFields(log.Fields{
				"listingId": l.Id,
				"status":    cur.Status,
			}).Info("listing changed concurrently, skipped")
			return gone, nil
		}
		l = cur
	}
	ctx.WithField("listingId", l.Id).Warn("listing kept changing, left for the next run")
	return kept, nil
}
