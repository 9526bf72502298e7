package usecase

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/backoff"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	pricefomatter "github.com/x-xyz/marketengine/base/price_fomatter"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/expiry"
	"github.com/x-xyz/marketengine/domain/listing"
)

const defaultRetryDelay = 20 * time.Millisecond

type BidUseCaseCfg struct {
	ListingRepo    listing.Repo
	BidRepo        bid.BidRepo
	OfferRepo      bid.OfferRepo
	Transactor     domain.Transactor
	Registry       collection.Registry
	ActivityUC     activity.UseCase
	PriceFormatter pricefomatter.PriceFormatter
	RetryDelay     time.Duration
}

type impl struct {
	listingRepo    listing.Repo
	bidRepo        bid.BidRepo
	offerRepo      bid.OfferRepo
	transactor     domain.Transactor
	registry       collection.Registry
	activityUC     activity.UseCase
	priceFormatter pricefomatter.PriceFormatter
	retryDelay     time.Duration
	timeNow        func() time.Time
}

func New(cfg *BidUseCaseCfg) bid.UseCase {
	im := &impl{
		listingRepo:    cfg.ListingRepo,
		bidRepo:        cfg.BidRepo,
		offerRepo:      cfg.OfferRepo,
		transactor:     cfg.Transactor,
		registry:       cfg.Registry,
		activityUC:     cfg.ActivityUC,
		priceFormatter: cfg.PriceFormatter,
		retryDelay:     cfg.RetryDelay,
		timeNow:        time.Now,
	}
	if im.retryDelay <= 0 {
		im.retryDelay = defaultRetryDelay
	}
	return im
}

func (im *impl) retryOnConflict(c ctx.Ctx, fn func() error) error {
	b := backoff.NewLinear(im.retryDelay, im.retryDelay)
	return backoff.Retry(c, b, 1, func(err error) bool {
		return errors.Is(err, domain.ErrConflict)
	}, fn)
}

// touchListing bumps the listing version so writers of one listing serialize.
// A miss on a listing still ACTIVE is a conflict.
func (im *impl) touchListing(c ctx.Ctx, l *listing.Listing) error {
	err := im.listingRepo.Touch(c, l.Id, l.Version)
	if err != domain.ErrNotFound {
		return err
	}
	cur, err := im.listingRepo.FindOne(c, l.Id)
	if err != nil {
		return err
	}
	if cur.Status == listing.StatusActive {
		return domain.ErrConflict
	}
	return &domain.StateError{Entity: "listing", Id: l.Id, Status: string(cur.Status)}
}

func (im *impl) validateAmount(amount decimal.Decimal, currency domain.Currency) error {
	if !amount.IsPositive() {
		return xerrors.Errorf("amount %s not positive: %w", amount, domain.ErrValidation)
	}
	if !im.priceFormatter.Fits(amount, currency) {
		return xerrors.Errorf("amount %s exceeds %s precision: %w", amount, currency, domain.ErrValidation)
	}
	return nil
}

// resolveCurrency defaults to the listing currency and rejects any other
func resolveCurrency(requested, listingCurrency domain.Currency) (domain.Currency, error) {
	if requested.IsEmpty() {
		return listingCurrency, nil
	}
	if !requested.Equals(listingCurrency) {
		return "", xerrors.Errorf("currency %s differs from listing currency %s: %w", requested, listingCurrency, domain.ErrValidation)
	}
	return listingCurrency, nil
}

// openListing loads a listing that still takes bids and offers at now
func (im *impl) openListing(c ctx.Ctx, listingId string, now time.Time) (*listing.Listing, error) {
	l, err := im.listingRepo.FindOne(c, listingId)
	if err != nil {
		c.WithFields(log.Fields{
			"listingId": listingId,
			"err":       err,
		}).Error("listingRepo.FindOne failed")
		return nil, err
	}
	if l.Status != listing.StatusActive {
		return nil, &domain.StateError{Entity: "listing", Id: l.Id, Status: string(l.Status)}
	}
	if expiry.ListingLapsed(l, now) {
		return nil, xerrors.Errorf("listing %s ended at %s: %w", l.Id, l.EndTime, domain.ErrExpired)
	}
	return l, nil
}

func (im *impl) PlaceBid(c ctx.Ctx, params bid.PlaceBidParams) (*bid.Bid, error) {
	var res *bid.Bid
	err := im.retryOnConflict(c, func() (err error) {
		res, err = im.placeBid(c, params)
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{
			"listingId": params.ListingId,
			"bidderId":  params.BidderId,
			"err":       err,
		}).Error("bid.PlaceBid failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) placeBid(c ctx.Ctx, params bid.PlaceBidParams) (*bid.Bid, error) {
	now := im.timeNow()
	if params.BidderId == "" {
		return nil, xerrors.Errorf("missing bidder: %w", domain.ErrValidation)
	}
	if !params.Amount.IsPositive() {
		return nil, xerrors.Errorf("amount %s not positive: %w", params.Amount, domain.ErrValidation)
	}
	if !expiry.ValidExpiry(params.ExpiresAt, now) {
		return nil, xerrors.Errorf("expiry %s already passed: %w", params.ExpiresAt, domain.ErrValidation)
	}

	l, err := im.openListing(c, params.ListingId, now)
	if err != nil {
		return nil, err
	}
	if !l.Kind.AcceptsBids() {
		return nil, xerrors.Errorf("%s listing %s takes no bids: %w", l.Kind, l.Id, domain.ErrInvalidState)
	}
	if !l.HasStarted(now) {
		return nil, xerrors.Errorf("listing %s starts at %s: %w", l.Id, l.StartTime, domain.ErrInvalidState)
	}
	if l.SellerId == params.BidderId {
		return nil, xerrors.Errorf("seller can not bid on own listing: %w", domain.ErrPermissionDenied)
	}

	currency, err := resolveCurrency(params.Currency, l.Currency)
	if err != nil {
		return nil, err
	}
	if err := im.validateAmount(params.Amount, currency); err != nil {
		return nil, err
	}

	if l.ReservePrice != nil && params.Amount.LessThan(*l.ReservePrice) {
		tooLow := &domain.BidTooLowError{Reserve: *l.ReservePrice}
		if highest, err := im.highestActiveBid(c, l.Id, now); err == nil {
			tooLow.Highest = &highest.Amount
		} else if err != domain.ErrNotFound {
			return nil, err
		}
		return nil, tooLow
	}

	b := &bid.Bid{
		Id:        domain.NewId(),
		ListingId: l.Id,
		BidderId:  params.BidderId,
		Amount:    params.Amount,
		Currency:  currency,
		ExpiresAt: params.ExpiresAt,
		Status:    bid.StatusActive,
		Metadata:  params.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.touchListing(c, l); err != nil {
			return err
		}
		if err := im.bidRepo.Insert(c, b); err != nil {
			c.WithField("err", err).Error("bidRepo.Insert failed")
			return err
		}
		return im.activityUC.Append(c, &activity.Activity{
			ExternalId:   activity.ExternalId(activity.TypeBid, b.Id),
			Type:         activity.TypeBid,
			TokenId:      l.TokenId,
			CollectionId: l.CollectionId,
			ListingId:    l.Id,
			FromUserId:   b.BidderId,
			ToUserId:     l.SellerId,
			Price:        &b.Amount,
			Currency:     b.Currency,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (im *impl) CancelBid(c ctx.Ctx, bidId, callerId string) (*bid.Bid, error) {
	err := im.retryOnConflict(c, func() error {
		return im.cancelBid(c, bidId, callerId)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"bidId": bidId,
			"err":   err,
		}).Error("bid.CancelBid failed")
		return nil, err
	}
	return im.bidRepo.FindOne(c, bidId)
}

func (im *impl) cancelBid(c ctx.Ctx, bidId, callerId string) error {
	b, err := im.bidRepo.FindOne(c, bidId)
	if err != nil {
		return err
	}
	if b.BidderId != callerId {
		return xerrors.Errorf("%s is not the bidder: %w", callerId, domain.ErrPermissionDenied)
	}
	if b.Status != bid.StatusActive {
		return &domain.StateError{Entity: "bid", Id: b.Id, Status: string(b.Status)}
	}
	l, err := im.listingRepo.FindOne(c, b.ListingId)
	if err != nil {
		return err
	}

	return im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if l.Status == listing.StatusActive {
			if err := im.touchListing(c, l); err != nil {
				return err
			}
		}
		if err := im.bidRepo.UpdateStatus(c, b.Id, bid.StatusActive, bid.StatusCancelled); err == domain.ErrNotFound {
			cur, err := im.bidRepo.FindOne(c, b.Id)
			if err != nil {
				return err
			}
			return &domain.StateError{Entity: "bid", Id: b.Id, Status: string(cur.Status)}
		} else if err != nil {
			c.WithField("err", err).Error("bidRepo.UpdateStatus failed")
			return err
		}
		return nil
	})
}

func (im *impl) highestActiveBid(c ctx.Ctx, listingId string, now time.Time) (*bid.Bid, error) {
	bids, err := im.bidRepo.FindAll(c,
		bid.WithListing(listingId),
		bid.WithStatus(bid.StatusActive),
		bid.WithSort("createdAt", domain.SortDirAsc),
	)
	if err != nil {
		c.WithField("err", err).Error("bidRepo.FindAll failed")
		return nil, err
	}

	var highest *bid.Bid
	for _, b := range bids {
		if !expiry.BidUsable(b, now) {
			continue
		}
		// strictly greater keeps the earliest of equal bids
		if highest == nil || b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}
	if highest == nil {
		return nil, domain.ErrNotFound
	}
	return highest, nil
}

func (im *impl) HighestActiveBid(c ctx.Ctx, listingId string) (*bid.Bid, error) {
	return im.highestActiveBid(c, listingId, im.timeNow())
}

func (im *impl) GetBid(c ctx.Ctx, id string) (*bid.Bid, error) {
	res, err := im.bidRepo.FindOne(c, id)
	if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("bidRepo.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindBids(c ctx.Ctx, opts ...bid.FindAllOptions) ([]*bid.Bid, error) {
	res, err := im.bidRepo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("bidRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}
