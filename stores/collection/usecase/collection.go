package usecase

import (
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/service/cache"
)

var one = decimal.NewFromInt(1)

type RegistryCfg struct {
	TokenRepo   collection.TokenRepo
	RoyaltyRepo collection.RoyaltyRepo

	// optional, reads go straight to the repos when nil
	TokenCache   cache.Service
	RoyaltyCache cache.Service
}

type impl struct {
	tokenRepo    collection.TokenRepo
	royaltyRepo  collection.RoyaltyRepo
	tokenCache   cache.Service
	royaltyCache cache.Service
}

func New(cfg *RegistryCfg) collection.UseCase {
	return &impl{
		tokenRepo:    cfg.TokenRepo,
		royaltyRepo:  cfg.RoyaltyRepo,
		tokenCache:   cfg.TokenCache,
		royaltyCache: cfg.RoyaltyCache,
	}
}

func (im *impl) GetToken(c ctx.Ctx, tokenId string) (*collection.Token, error) {
	if im.tokenCache == nil {
		return im.tokenRepo.FindOne(c, tokenId)
	}

	res := &collection.Token{}
	getter := func() (interface{}, error) {
		return im.tokenRepo.FindOne(c, tokenId)
	}
	if err := im.tokenCache.GetByFunc(c, tokenId, res, getter); err != nil {
		if err != domain.ErrNotFound {
			c.WithField("err", err).WithField("tokenId", tokenId).Error("tokenCache.GetByFunc failed")
		}
		return nil, err
	}
	return res, nil
}

func (im *impl) findRoyalty(c ctx.Ctx, collectionId string) (*collection.RoyaltyConfig, error) {
	cfg, err := im.royaltyRepo.FindOne(c, collectionId)
	if err == domain.ErrNotFound {
		return &collection.RoyaltyConfig{CollectionId: collectionId}, nil
	} else if err != nil {
		c.WithField("err", err).Error("royaltyRepo.FindOne failed")
		return nil, err
	}
	return cfg, nil
}

func (im *impl) GetRoyalty(c ctx.Ctx, collectionId string) (*collection.RoyaltyConfig, error) {
	if im.royaltyCache == nil {
		return im.findRoyalty(c, collectionId)
	}

	res := &collection.RoyaltyConfig{}
	getter := func() (interface{}, error) {
		return im.findRoyalty(c, collectionId)
	}
	if err := im.royaltyCache.GetByFunc(c, collectionId, res, getter); err != nil {
		c.WithField("err", err).WithField("collectionId", collectionId).Error("royaltyCache.GetByFunc failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) UpsertToken(c ctx.Ctx, t *collection.Token) error {
	if t.Id == "" || t.CollectionId == "" || t.OwnerId == "" {
		return xerrors.Errorf("token id, collection and owner are required: %w", domain.ErrValidation)
	}
	if err := im.tokenRepo.Upsert(c, t); err != nil {
		c.WithField("err", err).Error("tokenRepo.Upsert failed")
		return err
	}
	if im.tokenCache != nil {
		if err := im.tokenCache.Del(c, t.Id); err != nil {
			c.WithField("err", err).Warn("tokenCache.Del failed")
		}
	}
	return nil
}

func validateRoyalty(cfg *collection.RoyaltyConfig) error {
	if cfg.CollectionId == "" {
		return xerrors.Errorf("collection id is required: %w", domain.ErrValidation)
	}
	if cfg.Percentage.IsNegative() || cfg.Percentage.GreaterThan(one) {
		return xerrors.Errorf("royalty percentage %s out of range: %w", cfg.Percentage, domain.ErrValidation)
	}
	if cfg.Percentage.IsPositive() && len(cfg.Recipients) == 0 {
		return xerrors.Errorf("royalty without recipients: %w", domain.ErrValidation)
	}
	seen := map[string]bool{}
	for _, r := range cfg.Recipients {
		if r.RecipientId == "" || !r.Share.IsPositive() {
			return xerrors.Errorf("bad royalty recipient %q: %w", r.RecipientId, domain.ErrValidation)
		}
		if seen[r.RecipientId] {
			return xerrors.Errorf("duplicated royalty recipient %q: %w", r.RecipientId, domain.ErrValidation)
		}
		seen[r.RecipientId] = true
	}
	return nil
}

func (im *impl) SetRoyalty(c ctx.Ctx, cfg *collection.RoyaltyConfig) error {
	if err := validateRoyalty(cfg); err != nil {
		return err
	}
	if err := im.royaltyRepo.Upsert(c, cfg); err != nil {
		c.WithField("err", err).Error("royaltyRepo.Upsert failed")
		return err
	}
	if im.royaltyCache != nil {
		if err := im.royaltyCache.Del(c, cfg.CollectionId); err != nil {
			c.WithField("err", err).Warn("royaltyCache.Del failed")
		}
	}
	return nil
}
