package sweeper

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/service/memstore"
)

// changingListingRepo applies change once, right after the first page is
// read, as writers racing the sweep would
type changingListingRepo struct {
	listing.Repo
	once   sync.Once
	change func(c ctx.Ctx)
}

func (r *changingListingRepo) FindAll(c ctx.Ctx, opts ...listing.FindAllOptions) ([]*listing.Listing, error) {
	ls, err := r.Repo.FindAll(c, opts...)
	r.once.Do(func() { r.change(c) })
	return ls, err
}

type sweeperSuite struct {
	suite.Suite

	store   *memstore.Store
	sweeper *ExpirySweeper
	now     time.Time
}

func TestSweeperSuite(t *testing.T) {
	suite.Run(t, new(sweeperSuite))
}

func (s *sweeperSuite) SetupTest() {
	s.now = time.Date(2022, 8, 1, 12, 0, 0, 0, time.UTC)
	s.store = memstore.New()
	s.sweeper = NewExpirySweeper(&ExpirySweeperCfg{
		ListingRepo: s.store.Listings(),
		BidRepo:     s.store.Bids(),
		OfferRepo:   s.store.Offers(),
		Transactor:  s.store,
		BatchSize:   2,
		Workers:     2,
	})
	s.sweeper.timeNow = func() time.Time { return s.now }
}

func (s *sweeperSuite) insertListing(id string, end time.Time) {
	price := decimal.NewFromInt(10)
	s.Require().NoError(s.store.Listings().Insert(ctx.Background(), &listing.Listing{
		Id:        id,
		TokenId:   "token-" + id,
		SellerId:  "seller",
		Kind:      listing.KindAuction,
		Price:     &price,
		Currency:  "USDT",
		StartTime: s.now.Add(-time.Hour),
		EndTime:   &end,
		Status:    listing.StatusActive,
		CreatedAt: s.now.Add(-time.Hour),
	}))
}

func (s *sweeperSuite) insertBid(id, listingId string, expiresAt *time.Time) {
	s.Require().NoError(s.store.Bids().Insert(ctx.Background(), &bid.Bid{
		Id:        id,
		ListingId: listingId,
		BidderId:  "bidder",
		Amount:    decimal.NewFromInt(11),
		Currency:  "USDT",
		ExpiresAt: expiresAt,
		Status:    bid.StatusActive,
		CreatedAt: s.now.Add(-time.Minute),
	}))
}

func (s *sweeperSuite) insertOffer(o *bid.Offer) {
	o.OffererId = "offerer"
	o.Amount = decimal.NewFromInt(5)
	o.Currency = "USDT"
	o.Status = bid.StatusActive
	o.CreatedAt = s.now.Add(-time.Minute)
	s.Require().NoError(s.store.Offers().Insert(ctx.Background(), o))
}

func (s *sweeperSuite) listingStatus(id string) listing.Status {
	l, err := s.store.Listings().FindOne(ctx.Background(), id)
	s.Require().NoError(err)
	return l.Status
}

func (s *sweeperSuite) bidStatus(id string) bid.Status {
	b, err := s.store.Bids().FindOne(ctx.Background(), id)
	s.Require().NoError(err)
	return b.Status
}

func (s *sweeperSuite) offerStatus(id string) bid.Status {
	o, err := s.store.Offers().FindOne(ctx.Background(), id)
	s.Require().NoError(err)
	return o.Status
}

func (s *sweeperSuite) TestRunOnce() {
	past := s.now.Add(-time.Second)
	future := s.now.Add(time.Hour)

	// three ended listings span two pages
	s.insertListing("ended-1", past)
	s.insertListing("ended-2", s.now)
	s.insertListing("ended-3", past)
	s.insertListing("open", future)

	s.insertBid("b-ended", "ended-1", nil)
	s.insertBid("b-open", "open", nil)
	s.insertBid("b-lapsed", "open", &past)
	s.insertOffer(&bid.Offer{Id: "o-ended", ListingId: "ended-2"})
	s.insertOffer(&bid.Offer{Id: "o-token", TokenId: "token-ended-1"})
	s.insertOffer(&bid.Offer{Id: "o-lapsed", CollectionId: "collection-1", ExpiresAt: &past})

	res, err := s.sweeper.RunOnce(ctx.Background())
	s.Require().NoError(err)
	s.Equal(&Result{Bids: 1, Offers: 1, Listings: 3}, res)

	s.Equal(listing.StatusExpired, s.listingStatus("ended-1"))
	s.Equal(listing.StatusExpired, s.listingStatus("ended-2"))
	s.Equal(listing.StatusExpired, s.listingStatus("ended-3"))
	s.Equal(listing.StatusActive, s.listingStatus("open"))

	s.Equal(bid.StatusExpired, s.bidStatus("b-ended"))
	s.Equal(bid.StatusActive, s.bidStatus("b-open"))
	s.Equal(bid.StatusExpired, s.bidStatus("b-lapsed"))
	s.Equal(bid.StatusExpired, s.offerStatus("o-ended"))
	s.Equal(bid.StatusActive, s.offerStatus("o-token"), "token offers outlive the listing")
	s.Equal(bid.StatusExpired, s.offerStatus("o-lapsed"))
}

func (s *sweeperSuite) TestRunOnceIsIdempotent() {
	past := s.now.Add(-time.Second)
	s.insertListing("ended", past)
	s.insertBid("b1", "ended", nil)

	_, err := s.sweeper.RunOnce(ctx.Background())
	s.Require().NoError(err)

	l, err := s.store.Listings().FindOne(ctx.Background(), "ended")
	s.Require().NoError(err)

	res, err := s.sweeper.RunOnce(ctx.Background())
	s.Require().NoError(err)
	s.Equal(&Result{}, res)

	again, err := s.store.Listings().FindOne(ctx.Background(), "ended")
	s.Require().NoError(err)
	s.Equal(l.Version, again.Version)
	s.Equal(bid.StatusExpired, s.bidStatus("b1"))
}

func (s *sweeperSuite) TestTerminalRowsUntouched() {
	past := s.now.Add(-time.Second)
	s.insertListing("sold", past)
	c := ctx.Background()
	s.Require().NoError(s.store.Listings().UpdateStatus(c, "sold", 0, listing.StatusSold))
	s.insertBid("b1", "sold", &past)
	s.Require().NoError(s.store.Bids().UpdateStatus(c, "b1", bid.StatusActive, bid.StatusAccepted))

	res, err := s.sweeper.RunOnce(c)
	s.Require().NoError(err)
	s.Equal(&Result{}, res)
	s.Equal(listing.StatusSold, s.listingStatus("sold"))
	s.Equal(bid.StatusAccepted, s.bidStatus("b1"))
}

func (s *sweeperSuite) TestStartStop() {
	s.insertListing("ended", s.now.Add(-time.Second))
	c, cancel := ctx.WithCancel(ctx.Background())
	s.sweeper.interval = time.Hour
	s.sweeper.Start(c)

	s.Eventually(func() bool {
		return s.listingStatus("ended") == listing.StatusExpired
	}, time.Second, 10*time.Millisecond)

	cancel()
	s.sweeper.Wait()
}

func (s *sweeperSuite) TestListingsChangedDuringSweep() {
	s.insertListing("a", s.now.Add(-4*time.Second))
	s.insertListing("b", s.now.Add(-3*time.Second))
	s.insertListing("c", s.now.Add(-2*time.Second))
	s.insertListing("d", s.now.Add(-time.Second))

	s.sweeper.listingRepo = &changingListingRepo{
		Repo: s.store.Listings(),
		change: func(c ctx.Ctx) {
			// a sells and a bid on b bumps its version
			s.Require().NoError(s.store.Listings().UpdateStatus(c, "a", 0, listing.StatusSold))
			s.Require().NoError(s.store.Listings().Touch(c, "b", 0))
		},
	}

	res, err := s.sweeper.RunOnce(ctx.Background())
	s.Require().NoError(err)
	s.Equal(int64(3), res.Listings)
	s.Equal(listing.StatusSold, s.listingStatus("a"))
	s.Equal(listing.StatusExpired, s.listingStatus("b"))
	s.Equal(listing.StatusExpired, s.listingStatus("c"))
	s.Equal(listing.StatusExpired, s.listingStatus("d"))
}
