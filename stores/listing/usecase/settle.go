package usecase

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/expiry"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/domain/sale"
)

// deal is one validated settlement waiting to be committed
type deal struct {
	listing      *listing.Listing
	bidId        string
	offerId      string
	tokenId      string
	collectionId string
	sellerId     string
	buyerId      string
	price        decimal.Decimal
	currency     domain.Currency
	metadata     domain.Metadata
}

// externalId keys the SALE activity, one per listing or per listing-free offer
func (d *deal) externalId() string {
	if d.listing != nil {
		return activity.ExternalId(activity.TypeSale, d.listing.Id)
	}
	return activity.ExternalId(activity.TypeSale, d.offerId)
}

func (im *impl) Accept(c ctx.Ctx, listingId, bidOrOfferId, callerId string) (*sale.Sale, error) {
	var res *sale.Sale
	err := im.retryOnConflict(c, func() (err error) {
		res, err = im.accept(c, listingId, bidOrOfferId, callerId)
		return err
	})
	im.bumpOutcome("accept", err)
	if err != nil {
		c.WithFields(log.Fields{
			"listingId": listingId,
			"targetId":  bidOrOfferId,
			"err":       err,
		}).Error("listing.Accept failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Buy(c ctx.Ctx, listingId, buyerId string) (*sale.Sale, error) {
	var res *sale.Sale
	err := im.retryOnConflict(c, func() (err error) {
		res, err = im.buy(c, listingId, buyerId)
		return err
	})
	im.bumpOutcome("buy", err)
	if err != nil {
		c.WithFields(log.Fields{
			"listingId": listingId,
			"err":       err,
		}).Error("listing.Buy failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) AcceptOffer(c ctx.Ctx, offerId, tokenId, callerId string) (*sale.Sale, error) {
	o, err := im.offerRepo.FindOne(c, offerId)
	if err != nil {
		c.WithField("err", err).Error("offerRepo.FindOne failed")
		return nil, err
	}
	if o.IsListingBound() {
		return im.Accept(c, o.ListingId, offerId, callerId)
	}

	res, err := im.acceptOffer(c, o, tokenId, callerId)
	im.bumpOutcome("acceptOffer", err)
	if err != nil {
		c.WithFields(log.Fields{
			"offerId": offerId,
			"tokenId": tokenId,
			"err":     err,
		}).Error("listing.AcceptOffer failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) bumpOutcome(op string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConflict):
		outcome = "conflict"
	case errors.Is(err, domain.ErrInvalidState):
		outcome = "invalid_state"
	case errors.Is(err, domain.ErrExpired):
		outcome = "expired"
	default:
		outcome = "error"
	}
	met.BumpSum(op+".count", 1, "outcome", outcome)
}

// settleable checks an ACTIVE listing can still be settled at now
func settleable(l *listing.Listing, now time.Time) error {
	if l.Status != listing.StatusActive {
		return &domain.StateError{Entity: "listing", Id: l.Id, Status: string(l.Status)}
	}
	if expiry.ListingLapsed(l, now) {
		return xerrors.Errorf("listing %s ended at %s: %w", l.Id, l.EndTime, domain.ErrExpired)
	}
	return nil
}

func (im *impl) accept(c ctx.Ctx, listingId, targetId, callerId string) (*sale.Sale, error) {
	now := im.timeNow()
	l, err := im.listingRepo.FindOne(c, listingId)
	if err != nil {
		return nil, err
	}
	if l.SellerId != callerId {
		return nil, xerrors.Errorf("%s is not the seller: %w", callerId, domain.ErrPermissionDenied)
	}
	if err := settleable(l, now); err != nil {
		return nil, err
	}

	d := &deal{
		listing:      l,
		tokenId:      l.TokenId,
		collectionId: l.CollectionId,
		sellerId:     l.SellerId,
		currency:     l.Currency,
	}

	if b, err := im.bidRepo.FindOne(c, targetId); err == nil {
		if b.ListingId != l.Id {
			return nil, xerrors.Errorf("bid %s not on listing %s: %w", b.Id, l.Id, domain.ErrNotFound)
		}
		if expiry.BidLapsed(b, now) {
			return nil, xerrors.Errorf("bid %s: %w", b.Id, domain.ErrExpired)
		}
		if b.Status != bid.StatusActive {
			return nil, &domain.StateError{Entity: "bid", Id: b.Id, Status: string(b.Status)}
		}
		d.bidId, d.buyerId, d.price, d.metadata = b.Id, b.BidderId, b.Amount, b.Metadata
	} else if err != domain.ErrNotFound {
		c.WithField("err", err).Error("bidRepo.FindOne failed")
		return nil, err
	} else {
		o, err := im.offerRepo.FindOne(c, targetId)
		if err != nil {
			return nil, err
		}
		if o.ListingId != l.Id {
			return nil, xerrors.Errorf("offer %s not on listing %s: %w", o.Id, l.Id, domain.ErrNotFound)
		}
		if expiry.OfferLapsed(o, now) {
			return nil, xerrors.Errorf("offer %s: %w", o.Id, domain.ErrExpired)
		}
		if o.Status != bid.StatusActive {
			return nil, &domain.StateError{Entity: "offer", Id: o.Id, Status: string(o.Status)}
		}
		d.offerId, d.buyerId, d.price, d.metadata = o.Id, o.OffererId, o.Amount, o.Metadata
	}

	return im.commit(c, d, now)
}

func (im *impl) buy(c ctx.Ctx, listingId, buyerId string) (*sale.Sale, error) {
	now := im.timeNow()
	l, err := im.listingRepo.FindOne(c, listingId)
	if err != nil {
		return nil, err
	}
	if buyerId == "" || l.SellerId == buyerId {
		return nil, xerrors.Errorf("seller can not buy own listing: %w", domain.ErrPermissionDenied)
	}
	if err := settleable(l, now); err != nil {
		return nil, err
	}
	if !l.HasStarted(now) {
		return nil, xerrors.Errorf("listing %s starts at %s: %w", l.Id, l.StartTime, domain.ErrInvalidState)
	}

	var price *decimal.Decimal
	if l.Kind == listing.KindFixedPrice {
		price = l.Price
	} else {
		price = l.BuyNowPrice
	}
	if price == nil {
		return nil, xerrors.Errorf("listing %s has no buy now price: %w", l.Id, domain.ErrInvalidState)
	}

	return im.commit(c, &deal{
		listing:      l,
		tokenId:      l.TokenId,
		collectionId: l.CollectionId,
		sellerId:     l.SellerId,
		buyerId:      buyerId,
		price:        *price,
		currency:     l.Currency,
	}, now)
}

func (im *impl) acceptOffer(c ctx.Ctx, o *bid.Offer, tokenId, callerId string) (*sale.Sale, error) {
	now := im.timeNow()
	if expiry.OfferLapsed(o, now) {
		return nil, xerrors.Errorf("offer %s: %w", o.Id, domain.ErrExpired)
	}
	if o.Status != bid.StatusActive {
		return nil, &domain.StateError{Entity: "offer", Id: o.Id, Status: string(o.Status)}
	}

	if tokenId == "" {
		tokenId = o.TokenId
	}
	if o.TokenId != "" && o.TokenId != tokenId {
		return nil, xerrors.Errorf("offer %s is for token %s: %w", o.Id, o.TokenId, domain.ErrValidation)
	}
	token, err := im.registry.GetToken(c, tokenId)
	if err != nil {
		c.WithField("err", err).Error("registry.GetToken failed")
		return nil, err
	}
	if o.CollectionId != "" && token.CollectionId != o.CollectionId {
		return nil, xerrors.Errorf("token %s not in collection %s: %w", token.Id, o.CollectionId, domain.ErrValidation)
	}
	if token.OwnerId != callerId {
		return nil, xerrors.Errorf("%s does not own token %s: %w", callerId, token.Id, domain.ErrPermissionDenied)
	}
	if o.OffererId == callerId {
		return nil, xerrors.Errorf("owner can not accept own offer: %w", domain.ErrValidation)
	}

	// a listed token is settled through its listing
	if n, err := im.listingRepo.Count(c, listing.WithToken(token.Id), listing.WithStatus(listing.StatusActive)); err != nil {
		c.WithField("err", err).Error("listingRepo.Count failed")
		return nil, err
	} else if n > 0 {
		return nil, xerrors.Errorf("token %s has an active listing: %w", token.Id, domain.ErrInvalidState)
	}

	return im.commit(c, &deal{
		offerId:      o.Id,
		tokenId:      token.Id,
		collectionId: token.CollectionId,
		sellerId:     token.OwnerId,
		buyerId:      o.OffererId,
		price:        o.Amount,
		currency:     o.Currency,
		metadata:     o.Metadata,
	}, now)
}

// commit settles d in one transaction. The listing compare-and-swap comes
// first so concurrent settlements of one listing serialize on it. Bid and
// offer expiry is judged at now, the validation instant, not at commit.
func (im *impl) commit(c ctx.Ctx, d *deal, now time.Time) (*sale.Sale, error) {
	royalty, err := im.registry.GetRoyalty(c, d.collectionId)
	if err != nil {
		c.WithField("err", err).Error("registry.GetRoyalty failed")
		return nil, err
	}

	params := sale.SettleParams{
		TokenId:      d.tokenId,
		CollectionId: d.collectionId,
		BidId:        d.bidId,
		OfferId:      d.offerId,
		SellerId:     d.sellerId,
		BuyerId:      d.buyerId,
		Price:        d.price,
		Currency:     d.currency,
		Royalty:      royalty,
		Metadata:     d.metadata,
		Now:          now,
	}
	if d.listing != nil {
		params.ListingId = d.listing.Id
	}
	s, royalties, err := im.processor.BuildSale(params)
	if err != nil {
		c.WithField("err", err).Error("processor.BuildSale failed")
		return nil, err
	}

	err = im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		if d.listing != nil {
			if err := im.listingRepo.UpdateStatus(c, d.listing.Id, d.listing.Version, listing.StatusSold); err == domain.ErrNotFound {
				return im.listingMiss(c, d.listing.Id)
			} else if err != nil {
				c.WithField("err", err).Error("listingRepo.UpdateStatus failed")
				return err
			}
		}

		if d.bidId != "" {
			if err := im.bidRepo.Accept(c, d.bidId, now); err == domain.ErrNotFound {
				return im.bidMiss(c, d.bidId)
			} else if err != nil {
				c.WithField("err", err).Error("bidRepo.Accept failed")
				return err
			}
		}
		if d.offerId != "" {
			if err := im.offerRepo.Accept(c, d.offerId, now); err == domain.ErrNotFound {
				return im.offerMiss(c, d.offerId)
			} else if err != nil {
				c.WithField("err", err).Error("offerRepo.Accept failed")
				return err
			}
		}

		if d.listing != nil {
			if err := im.rejectSiblings(c, d.listing.Id, d.bidId, d.offerId); err != nil {
				return err
			}
		}

		// the token changes hands once per settlement until the pending sale resolves
		if n, err := im.saleRepo.Count(c, sale.WithToken(d.tokenId), sale.WithStatus(sale.StatusPending)); err != nil {
			c.WithField("err", err).Error("saleRepo.Count failed")
			return err
		} else if n > 0 {
			return xerrors.Errorf("token %s has a pending sale: %w", d.tokenId, domain.ErrInvalidState)
		}

		if err := im.saleRepo.Insert(c, s); err != nil {
			c.WithField("err", err).Error("saleRepo.Insert failed")
			return err
		}
		if len(royalties) > 0 {
			if err := im.royaltyRepo.InsertMany(c, royalties); err != nil {
				c.WithField("err", err).Error("royaltyRepo.InsertMany failed")
				return err
			}
		}

		return im.activityUC.Append(c, &activity.Activity{
			ExternalId:   d.externalId(),
			Type:         activity.TypeSale,
			TokenId:      s.TokenId,
			CollectionId: s.CollectionId,
			ListingId:    s.ListingId,
			FromUserId:   s.SellerId,
			ToUserId:     s.BuyerId,
			Price:        &s.Price,
			Currency:     s.Currency,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// bidMiss explains a failed guard on the accepted bid
func (im *impl) bidMiss(c ctx.Ctx, id string) error {
	b, err := im.bidRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if b.Status == bid.StatusExpired {
		return xerrors.Errorf("bid %s: %w", id, domain.ErrExpired)
	}
	return &domain.StateError{Entity: "bid", Id: id, Status: string(b.Status)}
}

// offerMiss explains a failed guard on the accepted offer
func (im *impl) offerMiss(c ctx.Ctx, id string) error {
	o, err := im.offerRepo.FindOne(c, id)
	if err != nil {
		return err
	}
	if o.Status == bid.StatusExpired {
		return xerrors.Errorf("offer %s: %w", id, domain.ErrExpired)
	}
	return &domain.StateError{Entity: "offer", Id: id, Status: string(o.Status)}
}
