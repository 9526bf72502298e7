package usecase

import (
	"fmt"
	"time"

	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/base/ptr"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/sale"
	"github.com/x-xyz/marketengine/domain/wallet"
)

type SaleUseCaseCfg struct {
	SaleRepo    sale.Repo
	RoyaltyRepo sale.RoyaltyRepo
	Transactor  domain.Transactor
	ActivityUC  activity.UseCase
	Wallet      wallet.Service
}

type impl struct {
	saleRepo    sale.Repo
	royaltyRepo sale.RoyaltyRepo
	transactor  domain.Transactor
	activityUC  activity.UseCase
	wallet      wallet.Service
	timeNow     func() time.Time
}

func New(cfg *SaleUseCaseCfg) sale.UseCase {
	return &impl{
		saleRepo:    cfg.SaleRepo,
		royaltyRepo: cfg.RoyaltyRepo,
		transactor:  cfg.Transactor,
		activityUC:  cfg.ActivityUC,
		wallet:      cfg.Wallet,
		timeNow:     time.Now,
	}
}

func (im *impl) Get(c ctx.Ctx, id string) (*sale.Sale, error) {
	res, err := im.saleRepo.FindOne(c, id)
	if err != nil {
		c.WithFields(log.Fields{
			"id":  id,
			"err": err,
		}).Error("saleRepo.FindOne failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) FindAll(c ctx.Ctx, opts ...sale.FindAllOptions) ([]*sale.Sale, error) {
	res, err := im.saleRepo.FindAll(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("saleRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) Count(c ctx.Ctx, opts ...sale.FindAllOptions) (int, error) {
	res, err := im.saleRepo.Count(c, opts...)
	if err != nil {
		c.WithField("err", err).Error("saleRepo.Count failed")
		return 0, err
	}
	return res, nil
}

func (im *impl) Royalties(c ctx.Ctx, saleId string) ([]*sale.Royalty, error) {
	res, err := im.royaltyRepo.FindAll(c, sale.RoyaltyWithSale(saleId))
	if err != nil {
		c.WithFields(log.Fields{
			"saleId": saleId,
			"err":    err,
		}).Error("royaltyRepo.FindAll failed")
		return nil, err
	}
	return res, nil
}

// stateError explains a guard miss on the sale
func (im *impl) stateError(c ctx.Ctx, saleId string) error {
	s, err := im.saleRepo.FindOne(c, saleId)
	if err != nil {
		return err
	}
	return &domain.StateError{Entity: "sale", Id: saleId, Status: string(s.Status)}
}

func (im *impl) Confirm(c ctx.Ctx, saleId string, txHash domain.TxHash, blockNumber domain.BlockNumber) (*sale.Sale, error) {
	if txHash == "" {
		return nil, xerrors.Errorf("empty transaction hash: %w", domain.ErrValidation)
	}

	now := im.timeNow()
	err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		patch := &sale.PatchableSale{TransactionHash: &txHash, BlockNumber: &blockNumber}
		if err := im.saleRepo.UpdateStatus(c, saleId, sale.StatusPending, sale.StatusCompleted, patch); err == domain.ErrNotFound {
			return im.stateError(c, saleId)
		} else if err != nil {
			c.WithField("err", err).Error("saleRepo.UpdateStatus failed")
			return err
		}

		s, err := im.saleRepo.FindOne(c, saleId)
		if err != nil {
			c.WithField("err", err).Error("saleRepo.FindOne failed")
			return err
		}
		return im.activityUC.Append(c, &activity.Activity{
			Id:              domain.NewId(),
			ExternalId:      activity.ExternalId(activity.TypeTransfer, s.Id),
			Type:            activity.TypeTransfer,
			TokenId:         s.TokenId,
			CollectionId:    s.CollectionId,
			ListingId:       s.ListingId,
			FromUserId:      s.SellerId,
			ToUserId:        s.BuyerId,
			Price:           ptr.Decimal(s.Price),
			Currency:        s.Currency,
			TransactionHash: &txHash,
			BlockNumber:     &blockNumber,
			CreatedAt:       now,
		})
	})
	if err != nil {
		c.WithFields(log.Fields{
			"saleId": saleId,
			"txHash": txHash,
			"err":    err,
		}).Error("sale.Confirm failed")
		return nil, err
	}
	return im.saleRepo.FindOne(c, saleId)
}

func (im *impl) Fail(c ctx.Ctx, saleId, reason string) (*sale.Sale, error) {
	return im.abort(c, saleId, sale.StatusFailed, reason)
}

func (im *impl) Cancel(c ctx.Ctx, saleId, reason string) (*sale.Sale, error) {
	return im.abort(c, saleId, sale.StatusCancelled, reason)
}

// abort closes a PENDING sale without settlement, its royalties are never paid
func (im *impl) abort(c ctx.Ctx, saleId string, to sale.Status, reason string) (*sale.Sale, error) {
	err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		patch := &sale.PatchableSale{FailureReason: &reason}
		if err := im.saleRepo.UpdateStatus(c, saleId, sale.StatusPending, to, patch); err == domain.ErrNotFound {
			return im.stateError(c, saleId)
		} else if err != nil {
			c.WithField("err", err).Error("saleRepo.UpdateStatus failed")
			return err
		}
		if _, err := im.royaltyRepo.UpdateStatusBySale(c, saleId, sale.RoyaltyStatusPending, sale.RoyaltyStatusFailed); err != nil {
			c.WithField("err", err).Error("royaltyRepo.UpdateStatusBySale failed")
			return err
		}
		return nil
	})
	if err != nil {
		c.WithFields(log.Fields{
			"saleId": saleId,
			"to":     to,
			"err":    err,
		}).Error("sale.abort failed")
		return nil, err
	}
	return im.saleRepo.FindOne(c, saleId)
}

func (im *impl) transfer(c ctx.Ctx, params wallet.TransferParams) error {
	if !params.Amount.IsPositive() {
		return nil
	}
	if err := im.wallet.Transfer(c, params); err != nil {
		c.WithFields(log.Fields{
			"reference": params.Reference,
			"err":       err,
		}).Error("wallet.Transfer failed")
		return xerrors.Errorf("transfer %s: %v: %w", params.Reference, err, domain.ErrDependencyFailure)
	}
	return nil
}

// Payout moves the buyer's funds to the seller, the royalty recipients and
// the platform. Every transfer carries a stable reference so a retried payout
// does not pay twice.
func (im *impl) Payout(c ctx.Ctx, saleId string) (*sale.Sale, error) {
	s, err := im.saleRepo.FindOne(c, saleId)
	if err != nil {
		c.WithField("err", err).Error("saleRepo.FindOne failed")
		return nil, err
	}
	if s.Status != sale.StatusCompleted {
		return nil, &domain.StateError{Entity: "sale", Id: saleId, Status: string(s.Status)}
	}
	if s.PaidOut {
		return s, nil
	}

	royalties, err := im.royaltyRepo.FindAll(c, sale.RoyaltyWithSale(saleId), sale.RoyaltyWithStatus(sale.RoyaltyStatusPending))
	if err != nil {
		c.WithField("err", err).Error("royaltyRepo.FindAll failed")
		return nil, err
	}

	if err := im.transfer(c, wallet.TransferParams{
		FromUserId: s.BuyerId,
		ToUserId:   s.SellerId,
		Amount:     s.NetAmount,
		Currency:   s.Currency,
		Reference:  fmt.Sprintf("sale:%s:net", s.Id),
	}); err != nil {
		return nil, err
	}
	if err := im.transfer(c, wallet.TransferParams{
		FromUserId: s.BuyerId,
		ToUserId:   wallet.PlatformAccount,
		Amount:     s.MarketplaceFee,
		Currency:   s.Currency,
		Reference:  fmt.Sprintf("sale:%s:fee", s.Id),
	}); err != nil {
		return nil, err
	}

	for _, r := range royalties {
		if err := im.transfer(c, wallet.TransferParams{
			FromUserId: s.BuyerId,
			ToUserId:   r.RecipientId,
			Amount:     r.Amount,
			Currency:   r.Currency,
			Reference:  fmt.Sprintf("royalty:%s", r.Id),
		}); err != nil {
			return nil, err
		}
		if err := im.royaltyRepo.UpdateStatus(c, r.Id, sale.RoyaltyStatusPending, sale.RoyaltyStatusPaid, ptr.Time(im.timeNow())); err != nil && err != domain.ErrNotFound {
			c.WithFields(log.Fields{
				"royaltyId": r.Id,
				"err":       err,
			}).Error("royaltyRepo.UpdateStatus failed")
			return nil, err
		}
	}

	patch := &sale.PatchableSale{PaidOut: ptr.Bool(true)}
	if err := im.saleRepo.UpdateStatus(c, saleId, sale.StatusCompleted, sale.StatusCompleted, patch); err != nil {
		c.WithField("err", err).Error("saleRepo.UpdateStatus failed")
		return nil, err
	}
	return im.saleRepo.FindOne(c, saleId)
}
