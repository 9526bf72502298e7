package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/expiry"
	"github.com/x-xyz/marketengine/domain/listing"
)

func (im *impl) PlaceOffer(c ctx.Ctx, params bid.PlaceOfferParams) (*bid.Offer, error) {
	var res *bid.Offer
	err := im.retryOnConflict(c, func() (err error) {
		res, err = im.placeOffer(c, params)
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{
			"offererId": params.OffererId,
			"err":       err,
		}).Error("bid.PlaceOffer failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) placeOffer(c ctx.Ctx, params bid.PlaceOfferParams) (*bid.Offer, error) {
	now := im.timeNow()
	if params.OffererId == "" {
		return nil, xerrors.Errorf("missing offerer: %w", domain.ErrValidation)
	}
	if !params.HasSingleTarget() {
		return nil, xerrors.Errorf("offer needs exactly one of token, collection or listing: %w", domain.ErrValidation)
	}
	if !params.Amount.IsPositive() {
		return nil, xerrors.Errorf("amount %s not positive: %w", params.Amount, domain.ErrValidation)
	}
	if !expiry.ValidExpiry(params.ExpiresAt, now) {
		return nil, xerrors.Errorf("expiry %s already passed: %w", params.ExpiresAt, domain.ErrValidation)
	}

	o := &bid.Offer{
		Id:           domain.NewId(),
		TokenId:      params.TokenId,
		CollectionId: params.CollectionId,
		ListingId:    params.ListingId,
		OffererId:    params.OffererId,
		Amount:       params.Amount,
		ExpiresAt:    params.ExpiresAt,
		Status:       bid.StatusActive,
		Metadata:     params.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	act := &activity.Activity{
		ExternalId:   activity.ExternalId(activity.TypeOffer, o.Id),
		Type:         activity.TypeOffer,
		TokenId:      o.TokenId,
		CollectionId: o.CollectionId,
		ListingId:    o.ListingId,
		FromUserId:   o.OffererId,
		Price:        &o.Amount,
		CreatedAt:    now,
	}

	var l *listing.Listing
	if o.IsListingBound() {
		var err error
		if l, err = im.openListing(c, o.ListingId, now); err != nil {
			return nil, err
		}
		if l.SellerId == o.OffererId {
			return nil, xerrors.Errorf("seller can not offer on own listing: %w", domain.ErrPermissionDenied)
		}
		if o.Currency, err = resolveCurrency(params.Currency, l.Currency); err != nil {
			return nil, err
		}
		act.TokenId, act.CollectionId, act.ToUserId = l.TokenId, l.CollectionId, l.SellerId
	} else {
		if params.Currency.IsEmpty() {
			return nil, xerrors.Errorf("offer without currency: %w", domain.ErrValidation)
		}
		o.Currency = params.Currency.Normalize()
		if o.TokenId != "" {
			token, err := im.registry.GetToken(c, o.TokenId)
			if err != nil {
				c.WithField("err", err).Error("registry.GetToken failed")
				return nil, err
			}
			if token.OwnerId == o.OffererId {
				return nil, xerrors.Errorf("owner can not offer on own token: %w", domain.ErrValidation)
			}
			act.CollectionId, act.ToUserId = token.CollectionId, token.OwnerId
		}
	}
	act.Currency = o.Currency

	if err := im.validateAmount(o.Amount, o.Currency); err != nil {
		return nil, err
	}

	err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if l != nil {
			if err := im.touchListing(c, l); err != nil {
				return err
			}
		}
		if err := im.offerRepo.Insert(c, o); err != nil {
			c.WithField("err", err).Error("offerRepo.Insert failed")
			return err
		}
		return im.activityUC.Append(c, act)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (im *impl) CancelOffer(c ctx.Ctx, offerId, callerId string) (*bid.Offer, error) {
	err := im.retryOnConflict(c, func() error {
		return im.cancelOffer(c, offerId, callerId)
	})
	if err != nil {
		c.WithFields(log.Fields{
			"offerId": offerId,
			"err":     err,
		}).Error("bid.CancelOffer failed")
		return nil, err
	}
	return im.offerRepo.FindOne(c, offerId)
}

func (im *impl) cancelOffer(c ctx.Ctx, offerId, callerId string) error {
	o, err := im.offerRepo.FindOne(c, offerId)
	if err != nil {
		return err
	}
	if o.OffererId != callerId {
		return xerrors.Errorf("%s is not the offerer: %w", callerId, domain.ErrPermissionDenied)
	}
	if o.Status != bid.StatusActive {
		return &domain.StateError{Entity: "offer", Id: o.Id, Status: string(o.Status)}
	}

	var l *listing.Listing
	if o.IsListingBound() {
		if l, err = im.listingRepo.FindOne(c, o.ListingId); err != nil {
			return err
		}
	}

	return im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if l != nil && l.Status == listing.StatusActive {
			if err := im.touchListing(c, l); err != nil {
				return err
			}
		}
		if err := im.offerRepo.UpdateStatus(c, o.Id, bid.StatusActive, bid.StatusCancelled); err == domain.ErrNotFound {
			cur, err := im.offerRepo.FindOne(c, o.Id)
			if err != nil {
				return err
			}
			return &domain.StateError{Entity: "offer", Id: o.Id, Status: string(cur.Status)}
		} else if err != nil {
			c.WithField("err", err).Error("offerRepo.UpdateStatus failed")
			return err
		}
		return nil
	})
}

func (im *impl) GetOffer(c ctx.Ctx, id string) (*bid.Offer, error) {
	res, err := im.offerRepo.FindOne(c, id)
	if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("offerRepo.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindOffers(c ctx.Ctx, opts ...bid.FindAllOptions) ([]*bid.Offer, error) {
	res, err := im.offerRepo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("offerRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}
