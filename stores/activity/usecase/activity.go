package usecase

import (
	"errors"

	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
)

const maxPageSize = 100

type impl struct {
	repo activity.Repo
}

func New(repo activity.Repo) activity.UseCase {
	return &impl{repo}
}

func (im *impl) Append(c ctx.Ctx, a *activity.Activity) error {
	if a.ExternalId == "" || !a.Type.IsValid() {
		return xerrors.Errorf("activity %q of type %q: %w", a.ExternalId, a.Type, domain.ErrValidation)
	}
	if a.Id == "" {
		a.Id = domain.NewId()
	}

	if err := im.repo.Insert(c, a); errors.Is(err, domain.ErrConflict) {
		// recorded already
		c.WithField("externalId", a.ExternalId).Info("duplicate activity ignored")
		return nil
	} else if err != nil {
		c.WithFields(log.Fields{
			"externalId": a.ExternalId,
			"err":        err,
		}).Error("repo.Insert failed")
		return err
	}
	return nil
}

func (im *impl) list(c ctx.Ctx, by activity.FindAllOptions, opts []activity.FindAllOptions) ([]*activity.Activity, error) {
	optFns := append([]activity.FindAllOptions{activity.WithPagination(0, maxPageSize)}, opts...)
	optFns = append(optFns, by)

	parsed, err := activity.GetFindAllOptions(optFns...)
	if err != nil {
		c.WithField("err", err).Error("activity.GetFindAllOptions failed")
		return nil, err
	}
	// oversized pages are capped
	if parsed.Limit == nil || *parsed.Limit <= 0 || *parsed.Limit > maxPageSize {
		offset := int32(0)
		if parsed.Offset != nil {
			offset = *parsed.Offset
		}
		optFns = append(optFns, activity.WithPagination(offset, maxPageSize))
	}

	res, err := im.repo.FindAll(c, optFns...)
	if err != nil {
		c.WithField("err", err).Error("repo.FindAll failed")
		return nil, err
	}
	return res, nil
}

func (im *impl) ListByToken(c ctx.Ctx, tokenId string, opts ...activity.FindAllOptions) ([]*activity.Activity, error) {
	return im.list(c, activity.WithToken(tokenId), opts)
}

func (im *impl) ListByCollection(c ctx.Ctx, collectionId string, opts ...activity.FindAllOptions) ([]*activity.Activity, error) {
	return im.list(c, activity.WithCollection(collectionId), opts)
}

func (im *impl) ListByListing(c ctx.Ctx, listingId string, opts ...activity.FindAllOptions) ([]*activity.Activity, error) {
	return im.list(c, activity.WithListing(listingId), opts)
}

func (im *impl) ListByUser(c ctx.Ctx, userId string, opts ...activity.FindAllOptions) ([]*activity.Activity, error) {
	return im.list(c, activity.WithUser(userId), opts)
}
