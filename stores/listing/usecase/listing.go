package usecase

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/backoff"
	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/metrics"
	pricefomatter "github.com/x-xyz/marketengine/base/price_fomatter"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/domain/sale"
)

const defaultRetryDelay = 20 * time.Millisecond

var met = metrics.New("listing")

type ListingUseCaseCfg struct {
	ListingRepo    listing.Repo
	BidRepo        bid.BidRepo
	OfferRepo      bid.OfferRepo
	SaleRepo       sale.Repo
	RoyaltyRepo    sale.RoyaltyRepo
	Transactor     domain.Transactor
	Registry       collection.Registry
	Processor      sale.Processor
	ActivityUC     activity.UseCase
	PriceFormatter pricefomatter.PriceFormatter
	// delay before the single retry of a conflicting settlement
	RetryDelay time.Duration
}

type impl struct {
	listingRepo    listing.Repo
	bidRepo        bid.BidRepo
	offerRepo      bid.OfferRepo
	saleRepo       sale.Repo
	royaltyRepo    sale.RoyaltyRepo
	transactor     domain.Transactor
	registry       collection.Registry
	processor      sale.Processor
	activityUC     activity.UseCase
	priceFormatter pricefomatter.PriceFormatter
	retryDelay     time.Duration
	timeNow        func() time.Time
}

func New(cfg *ListingUseCaseCfg) listing.UseCase {
	im := &impl{
		listingRepo:    cfg.ListingRepo,
		bidRepo:        cfg.BidRepo,
		offerRepo:      cfg.OfferRepo,
		saleRepo:       cfg.SaleRepo,
		royaltyRepo:    cfg.RoyaltyRepo,
		transactor:     cfg.Transactor,
		registry:       cfg.Registry,
		processor:      cfg.Processor,
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

func (im *impl) validatePrice(name string, price *decimal.Decimal, currency domain.Currency) error {
	if price == nil {
		return nil
	}
	if price.IsNegative() {
		return xerrors.Errorf("negative %s %s: %w", name, price, domain.ErrValidation)
	}
	if !im.priceFormatter.Fits(*price, currency) {
		return xerrors.Errorf("%s %s exceeds %s precision: %w", name, price, currency, domain.ErrValidation)
	}
	return nil
}

func (im *impl) validateCreate(params *listing.CreateListingParams, now time.Time) error {
	if params.SellerId == "" || params.TokenId == "" {
		return xerrors.Errorf("missing seller or token: %w", domain.ErrValidation)
	}
	if !params.Kind.IsValid() {
		return xerrors.Errorf("unknown kind %q: %w", params.Kind, domain.ErrValidation)
	}
	if params.Currency.IsEmpty() {
		return xerrors.Errorf("empty currency: %w", domain.ErrInvalidCurrency)
	}
	params.Currency = params.Currency.Normalize()

	switch params.Kind {
	case listing.KindFixedPrice:
		if params.Price == nil {
			return xerrors.Errorf("fixed price listing without price: %w", domain.ErrValidation)
		}
	case listing.KindAuction:
		if params.EndTime == nil {
			return xerrors.Errorf("auction without end time: %w", domain.ErrValidation)
		}
	}

	for name, price := range map[string]*decimal.Decimal{
		"price":         params.Price,
		"reserve price": params.ReservePrice,
		"buy now price": params.BuyNowPrice,
	} {
		if err := im.validatePrice(name, price, params.Currency); err != nil {
			return err
		}
	}

	if params.StartTime.IsZero() {
		params.StartTime = now
	}
	if params.EndTime != nil && !params.EndTime.After(params.StartTime) {
		return xerrors.Errorf("end time %s not after start time %s: %w", params.EndTime, params.StartTime, domain.ErrValidation)
	}
	if params.EndTime != nil && !params.EndTime.After(now) {
		return xerrors.Errorf("end time %s already passed: %w", params.EndTime, domain.ErrValidation)
	}
	return nil
}

func (im *impl) Create(c ctx.Ctx, params listing.CreateListingParams) (*listing.Listing, error) {
	now := im.timeNow()
	if err := im.validateCreate(&params, now); err != nil {
		c.WithField("err", err).Warn("validateCreate failed")
		return nil, err
	}

	token, err := im.registry.GetToken(c, params.TokenId)
	if err != nil {
		c.WithFields(log.Fields{
			"tokenId": params.TokenId,
			"err":     err,
		}).Error("registry.GetToken failed")
		return nil, err
	}
	if token.OwnerId != params.SellerId {
		return nil, xerrors.Errorf("token %s not owned by %s: %w", token.Id, params.SellerId, domain.ErrPermissionDenied)
	}

	l := &listing.Listing{
		Id:           domain.NewId(),
		TokenId:      token.Id,
		CollectionId: token.CollectionId,
		SellerId:     params.SellerId,
		Kind:         params.Kind,
		Price:        params.Price,
		Currency:     params.Currency,
		ReservePrice: params.ReservePrice,
		BuyNowPrice:  params.BuyNowPrice,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
		Status:       listing.StatusActive,
		Metadata:     params.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.listingRepo.Insert(c, l); err != nil {
			c.WithField("err", err).Error("listingRepo.Insert failed")
			return err
		}
		return im.activityUC.Append(c, &activity.Activity{
			ExternalId:   activity.ExternalId(activity.TypeList, l.Id),
			Type:         activity.TypeList,
			TokenId:      l.TokenId,
			CollectionId: l.CollectionId,
			ListingId:    l.Id,
			FromUserId:   l.SellerId,
			Price:        l.Price,
			Currency:     l.Currency,
			CreatedAt:    now,
		})
	})
	if err != nil {
		c.WithField("err", err).Error("transactor.RunWithTransaction failed")
		return nil, err
	}
	return l, nil
}

// listingMiss explains a failed compare-and-swap on the listing
func (im *impl) listingMiss(c ctx.Ctx, id string) error {
	l, err := im.listingRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if l.Status == listing.StatusActive {
		return domain.ErrConflict
	}
	return &domain.StateError{Entity: "listing", Id: id, Status: string(l.Status)}
}

func (im *impl) retryOnConflict(c ctx.Ctx, fn func() error) error {
	b := backoff.NewLinear(im.retryDelay, im.retryDelay)
	return backoff.Retry(c, b, 1, func(err error) bool {
		return errors.Is(err, domain.ErrConflict)
	}, fn)
}

func (im *impl) Cancel(c ctx.Ctx, listingId, callerId string) (*listing.Listing, error) {
	err := im.retryOnConflict(c, func() error {
		return im.cancel(c, listingId, callerId)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"listingId": listingId,
			"err":       err,
		}).Error("listing.Cancel failed")
		return nil, err
	}
	return im.listingRepo.FindOne(c, listingId)
}

func (im *impl) cancel(c ctx.Ctx, listingId, callerId string) error {
	l, err := im.listingRepo.FindOne(c, listingId)
	if err != nil {
		return err
	}
	if l.SellerId != callerId {
		return xerrors.Errorf("%s is not the seller: %w", callerId, domain.ErrPermissionDenied)
	}
	if l.Status != listing.StatusActive {
		return &domain.StateError{Entity: "listing", Id: l.Id, Status: string(l.Status)}
	}

	now := im.timeNow()
	return im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if err := im.listingRepo.UpdateStatus(c, l.Id, l.Version, listing.StatusCancelled); err == domain.ErrNotFound {
			return im.listingMiss(c, l.Id)
		} else if err != nil {
			c.WithField("err", err).Error("listingRepo.UpdateStatus failed")
			return err
		}
		if err := im.rejectSiblings(c, l.Id, "", ""); err != nil {
			return err
		}
		return im.activityUC.Append(c, &activity.Activity{
			ExternalId:   activity.ExternalId(activity.TypeDelist, l.Id),
			Type:         activity.TypeDelist,
			TokenId:      l.TokenId,
			CollectionId: l.CollectionId,
			ListingId:    l.Id,
			FromUserId:   l.SellerId,
			CreatedAt:    now,
		})
	})
}

// rejectSiblings rejects every ACTIVE bid and listing bound offer except the accepted ones
func (im *impl) rejectSiblings(c ctx.Ctx, listingId, acceptedBidId, acceptedOfferId string) error {
	bidOpts := []bid.FindAllOptions{bid.WithListing(listingId), bid.WithStatus(bid.StatusActive)}
	if acceptedBidId != "" {
		bidOpts = append(bidOpts, bid.WithExclude(acceptedBidId))
	}
	if _, err := im.bidRepo.UpdateStatusAll(c, bid.StatusRejected, bidOpts...); err != nil {
		c.WithField("err", err).Error("bidRepo.UpdateStatusAll failed")
		return err
	}

	offerOpts := []bid.FindAllOptions{bid.WithListing(listingId), bid.WithStatus(bid.StatusActive)}
	if acceptedOfferId != "" {
		offerOpts = append(offerOpts, bid.WithExclude(acceptedOfferId))
	}
	if _, err := im.offerRepo.UpdateStatusAll(c, bid.StatusRejected, offerOpts...); err != nil {
		c.WithField("err", err).Error("offerRepo.UpdateStatusAll failed")
		return err
	}
	return nil
}

func (im *impl) Get(c ctx.Ctx, id string) (*listing.Listing, error) {
	res, err := im.listingRepo.FindOne(c, id)
	if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("listingRepo.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...listing.FindAllOptions) ([]*listing.Listing, error) {
	res, err := im.listingRepo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("listingRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, opts ...listing.FindAllOptions) (int, error) {
	res, err := im.listingRepo.Count(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("listingRepo.Count failed")
		return 0, err
	}
	return res, nil
}

func (im *impl) RecordView(c ctx.Ctx, id string) error {
	if err := im.listingRepo.IncreaseViews(c, id, 1); err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("listingRepo.IncreaseViews failed")
		return err
	}
	return nil
}
