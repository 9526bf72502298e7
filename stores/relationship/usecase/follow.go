package usecase

import (
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/follow"
)

// at most this many ids are returned by GetFollowers and GetFollowings
const maxRelations = 5000

type followImpl struct {
	follow follow.Repo
}

func NewFollow(follow follow.Repo) follow.Usecase {
	return &followImpl{follow}
}

func (im *followImpl) Follow(c ctx.Ctx, followerId, followingId string) error {
	if followerId == "" || followingId == "" {
		return xerrors.Errorf("follower and following are required: %w", domain.ErrValidation)
	}
	if followerId == followingId {
		return xerrors.Errorf("%s cannot follow itself: %w", followerId, domain.ErrValidation)
	}
	if err := im.follow.Upsert(c, followerId, followingId); err != nil {
		c.WithField("err", err).Error("follow.Upsert failed")
		return err
	}
	return nil
}

func (im *followImpl) Unfollow(c ctx.Ctx, followerId, followingId string) error {
	if err := im.follow.Remove(c, followerId, followingId); err != nil {
		c.WithField("err", err).Error("follow.Remove failed")
		return err
	}
	return nil
}

func (im *followImpl) GetFollowers(c ctx.Ctx, userId string) ([]string, error) {
	if res, err := im.follow.FindAll(c, follow.WithFollowing(userId), follow.WithPagination(0, maxRelations)); err != nil {
		c.WithField("err", err).Error("follow.FindAll failed")
		return nil, err
	} else {
		ids := []string{}
		for _, f := range res {
			ids = append(ids, f.FollowerId)
		}
		return ids, nil
	}
}

func (im *followImpl) GetFollowerCount(c ctx.Ctx, userId string) (int, error) {
	if res, err := im.follow.Count(c, follow.WithFollowing(userId)); err != nil {
		c.WithField("err", err).Error("follow.Count failed")
		return 0, err
	} else {
		return res, nil
	}
}

func (im *followImpl) GetFollowings(c ctx.Ctx, userId string) ([]string, error) {
	if res, err := im.follow.FindAll(c, follow.WithFollower(userId), follow.WithPagination(0, maxRelations)); err != nil {
		c.WithField("err", err).Error("follow.FindAll failed")
		return nil, err
	} else {
		ids := []string{}
		for _, f := range res {
			ids = append(ids, f.FollowingId)
		}
		return ids, nil
	}
}

func (im *followImpl) GetFollowingCount(c ctx.Ctx, userId string) (int, error) {
	if res, err := im.follow.Count(c, follow.WithFollower(userId)); err != nil {
		c.WithField("err", err).Error("follow.Count failed")
		return 0, err
	} else {
		return res, nil
	}
}

func (im *followImpl) IsFollowing(c ctx.Ctx, followerId, followingId string) (bool, error) {
	if res, err := im.follow.FindOne(c, followerId, followingId); err != nil {
		return false, err
	} else {
		return res != nil, nil
	}
}
