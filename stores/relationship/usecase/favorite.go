package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/favorite"
	"github.com/x-xyz/marketengine/domain/listing"
)

type FavoriteUseCaseCfg struct {
	FavoriteRepo favorite.Repo
	// optional, likes of the token's ACTIVE listings follow its favorites
	ListingRepo listing.Repo
}

type favoriteImpl struct {
	favorite favorite.Repo
	listing  listing.Repo
}

func NewFavorite(cfg *FavoriteUseCaseCfg) favorite.Usecase {
	return &favoriteImpl{
		favorite: cfg.FavoriteRepo,
		listing:  cfg.ListingRepo,
	}
}

func targetOpt(f favorite.Favorite) favorite.FindAllOptions {
	if f.TokenId != "" {
		return favorite.WithToken(f.TokenId)
	}
	return favorite.WithCollection(f.CollectionId)
}

func (im *favoriteImpl) count(c ctx.Ctx, f favorite.Favorite) (int, error) {
	n, err := im.favorite.Count(c, targetOpt(f))
	if err != nil {
		c.WithField("err", err).Error("favorite.Count failed")
		return 0, err
	}
	return n, nil
}

// bumpLikes moves the like counter of the token's ACTIVE listings. Failures
// are logged only, the counter is informational.
func (im *favoriteImpl) bumpLikes(c ctx.Ctx, tokenId string, n int64) {
	if im.listing == nil || tokenId == "" {
		return
	}
	ls, err := im.listing.FindAll(c, listing.WithToken(tokenId), listing.WithStatus(listing.StatusActive))
	if err != nil {
		c.WithField("err", err).Warn("listing.FindAll failed")
		return
	}
	for _, l := range ls {
		if err := im.listing.IncreaseLikes(c, l.Id, n); err != nil {
			c.WithFields(log.Fields{
				"err":       err,
				"listingId": l.Id,
			}).Warn("listing.IncreaseLikes failed")
		}
	}
}

func (im *favoriteImpl) Add(c ctx.Ctx, f favorite.Favorite) (int, error) {
	if !f.IsValid() {
		return 0, xerrors.Errorf("favorite needs a user and one target: %w", domain.ErrValidation)
	}
	if err := im.favorite.Create(c, f); err == nil {
		im.bumpLikes(c, f.TokenId, 1)
	} else if err != domain.ErrConflict {
		c.WithField("err", err).Error("favorite.Create failed")
		return 0, err
	}
	return im.count(c, f)
}

func (im *favoriteImpl) Remove(c ctx.Ctx, f favorite.Favorite) (int, error) {
	if !f.IsValid() {
		return 0, xerrors.Errorf("favorite needs a user and one target: %w", domain.ErrValidation)
	}
	if err := im.favorite.Delete(c, f); err == nil {
		im.bumpLikes(c, f.TokenId, -1)
	} else if err != domain.ErrNotFound {
		c.WithField("err", err).Error("favorite.Delete failed")
		return 0, err
	}
	return im.count(c, f)
}

func (im *favoriteImpl) ListByUser(c ctx.Ctx, userId string, opts ...favorite.FindAllOptions) ([]*favorite.Favorite, error) {
	res, err := im.favorite.FindAll(c, append(opts, favorite.WithUser(userId))...)
	if err != nil {
		c.WithField("err", err).Error("favorite.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *favoriteImpl) IsFavorite(c ctx.Ctx, f favorite.Favorite) (bool, error) {
	if !f.IsValid() {
		return false, xerrors.Errorf("favorite needs a user and one target: %w", domain.ErrValidation)
	}
	n, err := im.favorite.Count(c, favorite.WithUser(f.UserId), targetOpt(f))
	if err != nil {
		c.WithField("err", err).Error("favorite.Count failed")
		return false, err
	}
	return n > 0, nil
}
