package follow

import (
	"time"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
)

// CreatorFollow records that FollowerId follows the creator FollowingId
type CreatorFollow struct {
	FollowerId  string    `json:"followerId" bson:"followerId"`
	FollowingId string    `json:"followingId" bson:"followingId"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type findAllOptions struct {
	SortBy      *string         `bson:"-"`
	SortDir     *domain.SortDir `bson:"-"`
	Offset      *int32          `bson:"-"`
	Limit       *int32          `bson:"-"`
	FollowerId  *string         `bson:"followerId"`
	FollowingId *string         `bson:"followingId"`
}

type FindAllOptions func(*findAllOptions) error

func GetFindAllOptions(opts ...FindAllOptions) (findAllOptions, error) {
	res := findAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithSort(sortby string, sortdir domain.SortDir) FindAllOptions {
	return func(options *findAllOptions) error {
		options.SortBy = &sortby
		options.SortDir = &sortdir
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptions {
	return func(options *findAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithFollower(followerId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.FollowerId = &followerId
		return nil
	}
}

func WithFollowing(followingId string) FindAllOptions {
	return func(options *findAllOptions) error {
		options.FollowingId = &followingId
		return nil
	}
}

type Repo interface {
	Upsert(c ctx.Ctx, followerId, followingId string) error
	Remove(c ctx.Ctx, followerId, followingId string) error
	FindAll(c ctx.Ctx, opts ...FindAllOptions) ([]*CreatorFollow, error)
	Count(c ctx.Ctx, opts ...FindAllOptions) (int, error)
	// return nil if not found
	FindOne(c ctx.Ctx, followerId, followingId string) (*CreatorFollow, error)
}

type Usecase interface {
	Follow(c ctx.Ctx, followerId, followingId string) error
	Unfollow(c ctx.Ctx, followerId, followingId string) error
	GetFollowers(c ctx.Ctx, userId string) ([]string, error)
	GetFollowerCount(c ctx.Ctx, userId string) (int, error)
	GetFollowings(c ctx.Ctx, userId string) ([]string, error)
	GetFollowingCount(c ctx.Ctx, userId string) (int, error)
	IsFollowing(c ctx.Ctx, followerId, followingId string) (bool, error)
}
