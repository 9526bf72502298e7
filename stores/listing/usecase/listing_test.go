package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	pricefomatter "github.com/x-xyz/marketengine/base/price_fomatter"
	"github.com/x-xyz/marketengine/base/ptr"
	"github.com/x-xyz/marketengine/base/sweeper"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/collection/mocks"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/domain/sale"
	"github.com/x-xyz/marketengine/service/memstore"
	activityUsecase "github.com/x-xyz/marketengine/stores/activity/usecase"
	settlementUsecase "github.com/x-xyz/marketengine/stores/settlement/usecase"
)

const (
	seller = "seller"
	buyer  = "buyer"
	other  = "other"
)

// racingListingRepo bumps the listing version right before the first status
// update, as a concurrent writer would
type racingListingRepo struct {
	listing.Repo
	raced bool
}

func (r *racingListingRepo) UpdateStatus(c ctx.Ctx, id string, version int64, status listing.Status) error {
	if !r.raced {
		r.raced = true
		if err := r.Repo.Touch(c, id, version); err != nil {
			return err
		}
	}
	return r.Repo.UpdateStatus(c, id, version, status)
}

type listingSuite struct {
	suite.Suite

	store    *memstore.Store
	registry *mocks.Registry
	token    *collection.Token
	royalty  *collection.RoyaltyConfig
	im       *impl
	now      time.Time
}

func TestListingSuite(t *testing.T) {
	suite.Run(t, new(listingSuite))
}

func (s *listingSuite) SetupTest() {
	s.now = time.Date(2022, 8, 1, 12, 0, 0, 0, time.UTC)
	s.store = memstore.New()
	s.token = &collection.Token{
		Id:           "token-1",
		CollectionId: "collection-1",
		OwnerId:      seller,
	}
	s.royalty = &collection.RoyaltyConfig{
		CollectionId: "collection-1",
		Percentage:   decimal.RequireFromString("0.03"),
		Recipients:   []collection.Recipient{{RecipientId: "artist", Share: decimal.NewFromInt(1)}},
	}
	s.registry = &mocks.Registry{}
	s.registry.On("GetToken", mock.Anything, "token-1").Return(s.token, nil)
	s.registry.On("GetToken", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	s.registry.On("GetRoyalty", mock.Anything, "collection-1").Return(s.royalty, nil)

	s.im = s.newUseCase(s.store.Listings())
}

func (s *listingSuite) newUseCase(listingRepo listing.Repo) *impl {
	formatter := pricefomatter.NewPriceFormatter(&pricefomatter.PriceFormatterCfg{
		Precisions: map[string]int32{"USDT": 2},
	})
	im := New(&ListingUseCaseCfg{
		ListingRepo: listingRepo,
		BidRepo:     s.store.Bids(),
		OfferRepo:   s.store.Offers(),
		SaleRepo:    s.store.Sales(),
		RoyaltyRepo: s.store.Royalties(),
		Transactor:  s.store,
		Registry:    s.registry,
		Processor: settlementUsecase.NewProcessor(&settlementUsecase.ProcessorCfg{
			PlatformFeeRate: decimal.RequireFromString("0.02"),
			PriceFormatter:  formatter,
		}),
		ActivityUC:     activityUsecase.New(s.store.Activities()),
		PriceFormatter: formatter,
		RetryDelay:     time.Millisecond,
	}).(*impl)
	im.timeNow = func() time.Time { return s.now }
	return im
}

func (s *listingSuite) createAuction() *listing.Listing {
	l, err := s.im.Create(ctx.Background(), listing.CreateListingParams{
		TokenId:      "token-1",
		SellerId:     seller,
		Kind:         listing.KindAuction,
		Currency:     "usdt",
		ReservePrice: ptr.Decimal(decimal.NewFromInt(10)),
		EndTime:      ptr.Time(s.now.Add(24 * time.Hour)),
	})
	s.Require().NoError(err)
	return l
}

func (s *listingSuite) insertBid(listingId, bidderId, amount string, createdAt time.Time) *bid.Bid {
	b := &bid.Bid{
		Id:        domain.NewId(),
		ListingId: listingId,
		BidderId:  bidderId,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "USDT",
		Status:    bid.StatusActive,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.store.Bids().Insert(ctx.Background(), b))
	return b
}

func (s *listingSuite) insertOffer(o *bid.Offer) *bid.Offer {
	o.Id = domain.NewId()
	o.Currency = "USDT"
	o.Status = bid.StatusActive
	o.CreatedAt = s.now
	s.Require().NoError(s.store.Offers().Insert(ctx.Background(), o))
	return o
}

// sweepingRegistry runs sweep each time a settlement loads royalties, which
// is after validation and before the commit transaction
func (s *listingSuite) sweepingRegistry(sweep func(c ctx.Ctx)) *mocks.Registry {
	registry := &mocks.Registry{}
	registry.On("GetToken", mock.Anything, "token-1").Return(s.token, nil)
	registry.On("GetRoyalty", mock.Anything, "collection-1").Run(func(mock.Arguments) {
		sweep(ctx.Background())
	}).Return(s.royalty, nil)
	return registry
}

// sweepLapsed does what the expiry sweeper does to bids and offers lapsed by
// a clock two minutes ahead
func (s *listingSuite) sweepLapsed(c ctx.Ctx) {
	_, err := s.store.Bids().UpdateStatusAll(c, bid.StatusExpired, bid.WithStatus(bid.StatusActive), bid.WithExpiresBefore(s.now.Add(2*time.Minute)))
	s.Require().NoError(err)
	_, err = s.store.Offers().UpdateStatusAll(c, bid.StatusExpired, bid.WithStatus(bid.StatusActive), bid.WithExpiresBefore(s.now.Add(2*time.Minute)))
	s.Require().NoError(err)
}

func (s *listingSuite) bidStatus(id string) bid.Status {
	b, err := s.store.Bids().FindOne(ctx.Background(), id)
	s.Require().NoError(err)
	return b.Status
}

func (s *listingSuite) offerStatus(id string) bid.Status {
	o, err := s.store.Offers().FindOne(ctx.Background(), id)
	s.Require().NoError(err)
	return o.Status
}

func (s *listingSuite) listingStatus(id string) listing.Status {
	l, err := s.store.Listings().FindOne(ctx.Background(), id)
	s.Require().NoError(err)
	return l.Status
}

func (s *listingSuite) TestCreate() {
	c := ctx.Background()
	l := s.createAuction()
	s.Equal(listing.StatusActive, l.Status)
	s.Equal("collection-1", l.CollectionId)
	s.Equal(domain.Currency("USDT"), l.Currency)
	s.Equal(s.now, l.StartTime)

	acts, err := s.store.Activities().FindAll(c, activity.WithListing(l.Id))
	s.Require().NoError(err)
	s.Require().Len(acts, 1)
	s.Equal(activity.TypeList, acts[0].Type)

	cases := []struct {
		name   string
		params listing.CreateListingParams
		want   error
	}{
		{
			name:   "fixed price without price",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: seller, Kind: listing.KindFixedPrice, Currency: "USDT"},
			want:   domain.ErrValidation,
		},
		{
			name:   "auction without end time",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: seller, Kind: listing.KindAuction, Currency: "USDT"},
			want:   domain.ErrValidation,
		},
		{
			name: "negative reserve",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: seller, Kind: listing.KindAuction, Currency: "USDT",
				EndTime: ptr.Time(s.now.Add(time.Hour)), ReservePrice: ptr.Decimal(decimal.NewFromInt(-1))},
			want: domain.ErrValidation,
		},
		{
			name: "price past currency precision",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: seller, Kind: listing.KindFixedPrice, Currency: "USDT",
				Price: ptr.Decimal(decimal.RequireFromString("1.001"))},
			want: domain.ErrValidation,
		},
		{
			name: "end before start",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: seller, Kind: listing.KindAuction, Currency: "USDT",
				StartTime: s.now.Add(2 * time.Hour), EndTime: ptr.Time(s.now.Add(time.Hour))},
			want: domain.ErrValidation,
		},
		{
			name:   "missing currency",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: seller, Kind: listing.KindFixedPrice, Price: ptr.Decimal(decimal.NewFromInt(1))},
			want:   domain.ErrInvalidCurrency,
		},
		{
			name:   "not the owner",
			params: listing.CreateListingParams{TokenId: "token-1", SellerId: other, Kind: listing.KindFixedPrice, Currency: "USDT", Price: ptr.Decimal(decimal.NewFromInt(1))},
			want:   domain.ErrPermissionDenied,
		},
		{
			name:   "unknown token",
			params: listing.CreateListingParams{TokenId: "missing", SellerId: seller, Kind: listing.KindFixedPrice, Currency: "USDT", Price: ptr.Decimal(decimal.NewFromInt(1))},
			want:   domain.ErrNotFound,
		},
	}
	for _, tc := range cases {
		_, err := s.im.Create(c, tc.params)
		s.ErrorIs(err, tc.want, tc.name)
	}
}

func (s *listingSuite) TestAcceptBid() {
	c := ctx.Background()
	l := s.createAuction()
	low := s.insertBid(l.Id, other, "20", s.now)
	high := s.insertBid(l.Id, buyer, "55", s.now.Add(time.Second))
	offer := s.insertOffer(&bid.Offer{ListingId: l.Id, OffererId: other, Amount: decimal.NewFromInt(30)})

	_, err := s.im.Accept(c, l.Id, high.Id, other)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	sl, err := s.im.Accept(c, l.Id, high.Id, seller)
	s.Require().NoError(err)
	s.Equal(sale.StatusPending, sl.Status)
	s.Equal(high.Id, sl.BidId)
	s.Equal(buyer, sl.BuyerId)
	s.True(decimal.RequireFromString("1.10").Equal(sl.MarketplaceFee))
	s.True(decimal.RequireFromString("1.65").Equal(sl.RoyaltyFee))
	s.True(decimal.RequireFromString("2.75").Equal(sl.TotalFee))
	s.True(decimal.RequireFromString("52.25").Equal(sl.NetAmount))

	s.Equal(listing.StatusSold, s.listingStatus(l.Id))
	s.Equal(bid.StatusAccepted, s.bidStatus(high.Id))
	s.Equal(bid.StatusRejected, s.bidStatus(low.Id))
	s.Equal(bid.StatusRejected, s.offerStatus(offer.Id))

	royalties, err := s.store.Royalties().FindAll(c, sale.RoyaltyWithSale(sl.Id))
	s.Require().NoError(err)
	s.Require().Len(royalties, 1)
	s.True(decimal.RequireFromString("1.65").Equal(royalties[0].Amount))

	acts, err := s.store.Activities().FindAll(c, activity.WithListing(l.Id), activity.WithTypes(activity.TypeSale))
	s.Require().NoError(err)
	s.Len(acts, 1)

	// nothing else can be accepted once sold
	_, err = s.im.Accept(c, l.Id, low.Id, seller)
	s.ErrorIs(err, domain.ErrInvalidState)
	n, err := s.store.Sales().Count(c, sale.WithListing(l.Id))
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *listingSuite) TestAcceptListingOffer() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, other, "20", s.now)
	offer := s.insertOffer(&bid.Offer{ListingId: l.Id, OffererId: buyer, Amount: decimal.NewFromInt(40)})

	sl, err := s.im.Accept(c, l.Id, offer.Id, seller)
	s.Require().NoError(err)
	s.Equal(offer.Id, sl.OfferId)
	s.Equal(l.Id, sl.ListingId)
	s.Equal(bid.StatusAccepted, s.offerStatus(offer.Id))
	s.Equal(bid.StatusRejected, s.bidStatus(b.Id))
}

func (s *listingSuite) TestAcceptUnusableTarget() {
	c := ctx.Background()
	l := s.createAuction()

	lapsed := s.insertBid(l.Id, buyer, "20", s.now)
	s.Require().NoError(s.store.Bids().UpdateStatus(c, lapsed.Id, bid.StatusActive, bid.StatusExpired))
	_, err := s.im.Accept(c, l.Id, lapsed.Id, seller)
	s.ErrorIs(err, domain.ErrExpired)

	pastExpiry := &bid.Bid{
		Id:        domain.NewId(),
		ListingId: l.Id,
		BidderId:  buyer,
		Amount:    decimal.NewFromInt(20),
		Currency:  "USDT",
		ExpiresAt: ptr.Time(s.now.Add(-time.Minute)),
		Status:    bid.StatusActive,
	}
	s.Require().NoError(s.store.Bids().Insert(c, pastExpiry))
	_, err = s.im.Accept(c, l.Id, pastExpiry.Id, seller)
	s.ErrorIs(err, domain.ErrExpired)

	cancelled := s.insertBid(l.Id, buyer, "20", s.now)
	s.Require().NoError(s.store.Bids().UpdateStatus(c, cancelled.Id, bid.StatusActive, bid.StatusCancelled))
	_, err = s.im.Accept(c, l.Id, cancelled.Id, seller)
	s.ErrorIs(err, domain.ErrInvalidState)
	var stateErr *domain.StateError
	s.Require().True(errors.As(err, &stateErr))
	s.Equal("bid", stateErr.Entity)

	otherListing := s.createAuction()
	foreign := s.insertBid(otherListing.Id, buyer, "20", s.now)
	_, err = s.im.Accept(c, l.Id, foreign.Id, seller)
	s.ErrorIs(err, domain.ErrNotFound)

	_, err = s.im.Accept(c, l.Id, domain.NewId(), seller)
	s.ErrorIs(err, domain.ErrNotFound)

	s.Equal(listing.StatusActive, s.listingStatus(l.Id))
}

func (s *listingSuite) TestAcceptEndedListing() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, buyer, "20", s.now)

	s.now = s.now.Add(25 * time.Hour)
	_, err := s.im.Accept(c, l.Id, b.Id, seller)
	s.ErrorIs(err, domain.ErrExpired)
	s.Equal(bid.StatusActive, s.bidStatus(b.Id))
}

func (s *listingSuite) TestConcurrentAccepts() {
	c := ctx.Background()
	l := s.createAuction()
	bids := []*bid.Bid{}
	for i := 0; i < 8; i++ {
		bids = append(bids, s.insertBid(l.Id, buyer, "20", s.now.Add(time.Duration(i)*time.Second)))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, b := range bids {
		b := b
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.im.Accept(c, l.Id, b.Id, seller)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			s.True(errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInvalidState), err.Error())
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	n, err := s.store.Sales().Count(c, sale.WithListing(l.Id))
	s.Require().NoError(err)
	s.Equal(1, n)
	accepted, err := s.store.Bids().Count(c, bid.WithListing(l.Id), bid.WithStatus(bid.StatusAccepted))
	s.Require().NoError(err)
	s.Equal(1, accepted)
	rejected, err := s.store.Bids().Count(c, bid.WithListing(l.Id), bid.WithStatus(bid.StatusRejected))
	s.Require().NoError(err)
	s.Equal(len(bids)-1, rejected)
}

func (s *listingSuite) TestAcceptRetriesConflictOnce() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, buyer, "20", s.now)

	racing := &racingListingRepo{Repo: s.store.Listings()}
	im := s.newUseCase(racing)

	sl, err := im.Accept(c, l.Id, b.Id, seller)
	s.Require().NoError(err)
	s.True(racing.raced)
	s.Equal(b.Id, sl.BidId)
	s.Equal(listing.StatusSold, s.listingStatus(l.Id))
}

func (s *listingSuite) TestCancel() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, buyer, "20", s.now)
	offer := s.insertOffer(&bid.Offer{ListingId: l.Id, OffererId: buyer, Amount: decimal.NewFromInt(15)})
	tokenOffer := s.insertOffer(&bid.Offer{TokenId: "token-1", OffererId: buyer, Amount: decimal.NewFromInt(15)})

	_, err := s.im.Cancel(c, l.Id, other)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	res, err := s.im.Cancel(c, l.Id, seller)
	s.Require().NoError(err)
	s.Equal(listing.StatusCancelled, res.Status)
	s.Equal(bid.StatusRejected, s.bidStatus(b.Id))
	s.Equal(bid.StatusRejected, s.offerStatus(offer.Id))
	s.Equal(bid.StatusActive, s.offerStatus(tokenOffer.Id), "token offers outlive the listing")

	acts, err := s.store.Activities().FindAll(c, activity.WithListing(l.Id), activity.WithTypes(activity.TypeDelist))
	s.Require().NoError(err)
	s.Len(acts, 1)

	_, err = s.im.Cancel(c, l.Id, seller)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *listingSuite) TestCancelSold() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, buyer, "20", s.now)
	_, err := s.im.Accept(c, l.Id, b.Id, seller)
	s.Require().NoError(err)

	_, err = s.im.Cancel(c, l.Id, seller)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(listing.StatusSold, s.listingStatus(l.Id))
}

func (s *listingSuite) TestBuy() {
	c := ctx.Background()
	l, err := s.im.Create(c, listing.CreateListingParams{
		TokenId:  "token-1",
		SellerId: seller,
		Kind:     listing.KindFixedPrice,
		Price:    ptr.Decimal(decimal.NewFromInt(100)),
		Currency: "USDT",
	})
	s.Require().NoError(err)
	offer := s.insertOffer(&bid.Offer{ListingId: l.Id, OffererId: other, Amount: decimal.NewFromInt(80)})

	_, err = s.im.Buy(c, l.Id, seller)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	sl, err := s.im.Buy(c, l.Id, buyer)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(100).Equal(sl.Price))
	s.Empty(sl.BidId)
	s.Empty(sl.OfferId)
	s.Equal(bid.StatusRejected, s.offerStatus(offer.Id))

	_, err = s.im.Buy(c, l.Id, other)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *listingSuite) TestBuyAuctionWithoutBuyNow() {
	l := s.createAuction()
	_, err := s.im.Buy(ctx.Background(), l.Id, buyer)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *listingSuite) TestAcceptCollectionOffer() {
	c := ctx.Background()
	offer := s.insertOffer(&bid.Offer{CollectionId: "collection-1", OffererId: buyer, Amount: decimal.NewFromInt(50)})

	_, err := s.im.AcceptOffer(c, offer.Id, "token-1", other)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	sl, err := s.im.AcceptOffer(c, offer.Id, "token-1", seller)
	s.Require().NoError(err)
	s.Empty(sl.ListingId)
	s.Equal(offer.Id, sl.OfferId)
	s.Equal("token-1", sl.TokenId)
	s.Equal(seller, sl.SellerId)
	s.Equal(bid.StatusAccepted, s.offerStatus(offer.Id))

	acts, err := s.store.Activities().FindAll(c, activity.WithToken("token-1"), activity.WithTypes(activity.TypeSale))
	s.Require().NoError(err)
	s.Len(acts, 1)

	_, err = s.im.AcceptOffer(c, offer.Id, "token-1", seller)
	s.ErrorIs(err, domain.ErrInvalidState)
}

func (s *listingSuite) TestAcceptTokenOfferOnListedToken() {
	c := ctx.Background()
	s.createAuction()
	offer := s.insertOffer(&bid.Offer{TokenId: "token-1", OffererId: buyer, Amount: decimal.NewFromInt(50)})

	_, err := s.im.AcceptOffer(c, offer.Id, "", seller)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(bid.StatusActive, s.offerStatus(offer.Id))
}

func (s *listingSuite) TestRecordView() {
	c := ctx.Background()
	l := s.createAuction()
	s.Require().NoError(s.im.RecordView(c, l.Id))
	s.Require().NoError(s.im.RecordView(c, l.Id))

	res, err := s.im.Get(c, l.Id)
	s.Require().NoError(err)
	s.Equal(int64(2), res.Views)
	s.ErrorIs(s.im.RecordView(c, "missing"), domain.ErrNotFound)
}

func (s *listingSuite) TestAcceptBidSweptAfterValidation() {
	c := ctx.Background()
	l := s.createAuction()
	b := &bid.Bid{
		Id:        domain.NewId(),
		ListingId: l.Id,
		BidderId:  buyer,
		Amount:    decimal.NewFromInt(20),
		Currency:  "USDT",
		ExpiresAt: ptr.Time(s.now.Add(time.Minute)),
		Status:    bid.StatusActive,
		CreatedAt: s.now,
	}
	s.Require().NoError(s.store.Bids().Insert(c, b))
	rival := s.insertBid(l.Id, other, "15", s.now)
	s.im.registry = s.sweepingRegistry(s.sweepLapsed)

	sl, err := s.im.Accept(c, l.Id, b.Id, seller)
	s.Require().NoError(err)
	s.Equal(b.Id, sl.BidId)
	s.Equal(bid.StatusAccepted, s.bidStatus(b.Id))
	s.Equal(bid.StatusRejected, s.bidStatus(rival.Id))
	s.Equal(listing.StatusSold, s.listingStatus(l.Id))
}

func (s *listingSuite) TestAcceptOfferSweptAfterValidation() {
	c := ctx.Background()
	offer := s.insertOffer(&bid.Offer{
		TokenId:   "token-1",
		OffererId: buyer,
		Amount:    decimal.NewFromInt(50),
		ExpiresAt: ptr.Time(s.now.Add(time.Minute)),
	})
	s.im.registry = s.sweepingRegistry(s.sweepLapsed)

	sl, err := s.im.AcceptOffer(c, offer.Id, "", seller)
	s.Require().NoError(err)
	s.Equal(offer.Id, sl.OfferId)
	s.Equal(bid.StatusAccepted, s.offerStatus(offer.Id))
}

func (s *listingSuite) TestSweepExpiresListingBeforeAcceptCommits() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, buyer, "20", s.now)

	// the sweeper runs on the wall clock, long past the auction end
	sw := sweeper.NewExpirySweeper(&sweeper.ExpirySweeperCfg{
		ListingRepo: s.store.Listings(),
		BidRepo:     s.store.Bids(),
		OfferRepo:   s.store.Offers(),
		Transactor:  s.store,
	})
	s.im.registry = s.sweepingRegistry(func(c ctx.Ctx) {
		res, err := sw.RunOnce(c)
		s.Require().NoError(err)
		s.Equal(int64(1), res.Listings)
	})

	_, err := s.im.Accept(c, l.Id, b.Id, seller)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(listing.StatusExpired, s.listingStatus(l.Id))
	s.Equal(bid.StatusExpired, s.bidStatus(b.Id))
	n, err := s.store.Sales().Count(c, sale.WithListing(l.Id))
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *listingSuite) TestSweepAfterAcceptCommits() {
	c := ctx.Background()
	l := s.createAuction()
	b := s.insertBid(l.Id, buyer, "20", s.now)
	_, err := s.im.Accept(c, l.Id, b.Id, seller)
	s.Require().NoError(err)

	sw := sweeper.NewExpirySweeper(&sweeper.ExpirySweeperCfg{
		ListingRepo: s.store.Listings(),
		BidRepo:     s.store.Bids(),
		OfferRepo:   s.store.Offers(),
		Transactor:  s.store,
	})
	res, err := sw.RunOnce(c)
	s.Require().NoError(err)
	s.Equal(&sweeper.Result{}, res)
	s.Equal(listing.StatusSold, s.listingStatus(l.Id))
	s.Equal(bid.StatusAccepted, s.bidStatus(b.Id))
}

func (s *listingSuite) TestAcceptSecondTokenOffer() {
	c := ctx.Background()
	first := s.insertOffer(&bid.Offer{TokenId: "token-1", OffererId: buyer, Amount: decimal.NewFromInt(50)})
	second := s.insertOffer(&bid.Offer{TokenId: "token-1", OffererId: other, Amount: decimal.NewFromInt(60)})

	_, err := s.im.AcceptOffer(c, first.Id, "", seller)
	s.Require().NoError(err)

	// the registry still names the seller as owner until the sale confirms
	_, err = s.im.AcceptOffer(c, second.Id, "", seller)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.Equal(bid.StatusActive, s.offerStatus(second.Id))

	n, err := s.store.Sales().Count(c, sale.WithToken("token-1"))
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *listingSuite) TestAcceptChecksSellerFirst() {
	c := ctx.Background()
	sold := s.createAuction()
	ended := s.createAuction()
	b := s.insertBid(sold.Id, buyer, "20", s.now)
	late := s.insertBid(ended.Id, buyer, "20", s.now)
	_, err := s.im.Accept(c, sold.Id, b.Id, seller)
	s.Require().NoError(err)

	_, err = s.im.Accept(c, sold.Id, b.Id, other)
	s.ErrorIs(err, domain.ErrPermissionDenied)

	s.now = s.now.Add(25 * time.Hour)
	_, err = s.im.Accept(c, ended.Id, late.Id, other)
	s.ErrorIs(err, domain.ErrPermissionDenied)
	_, err = s.im.Accept(c, ended.Id, late.Id, seller)
	s.ErrorIs(err, domain.ErrExpired)
}
