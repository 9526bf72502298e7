package usecase

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/follow"
	"github.com/x-xyz/marketengine/domain/follow/mocks"
)

type followSuite struct {
	suite.Suite

	repo *mocks.Repo
	im   follow.Usecase
}

func TestFollowSuite(t *testing.T) {
	suite.Run(t, new(followSuite))
}

func (s *followSuite) SetupTest() {
	s.repo = &mocks.Repo{}
	s.im = NewFollow(s.repo)
}

func (s *followSuite) TestFollow() {
	s.repo.On("Upsert", mock.Anything, "alice", "artist").Return(nil).Once()
	s.NoError(s.im.Follow(mockCtx, "alice", "artist"))

	s.ErrorIs(s.im.Follow(mockCtx, "alice", "alice"), domain.ErrValidation)
	s.ErrorIs(s.im.Follow(mockCtx, "", "artist"), domain.ErrValidation)
	s.repo.AssertNumberOfCalls(s.T(), "Upsert", 1)
}

func (s *followSuite) TestUnfollow() {
	s.repo.On("Remove", mock.Anything, "alice", "artist").Return(nil).Once()
	s.NoError(s.im.Unfollow(mockCtx, "alice", "artist"))
}

func (s *followSuite) TestFollowersAndFollowings() {
	s.repo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).Return([]*follow.CreatorFollow{
		{FollowerId: "alice", FollowingId: "artist"},
		{FollowerId: "bob", FollowingId: "artist"},
	}, nil).Once()
	s.repo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).Return([]*follow.CreatorFollow{
		{FollowerId: "alice", FollowingId: "artist"},
	}, nil).Once()
	s.repo.On("Count", mock.Anything, mock.Anything).Return(2, nil).Once()

	followers, err := s.im.GetFollowers(mockCtx, "artist")
	s.Require().NoError(err)
	s.Equal([]string{"alice", "bob"}, followers)

	followings, err := s.im.GetFollowings(mockCtx, "alice")
	s.Require().NoError(err)
	s.Equal([]string{"artist"}, followings)

	n, err := s.im.GetFollowerCount(mockCtx, "artist")
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *followSuite) TestIsFollowing() {
	s.repo.On("FindOne", mock.Anything, "alice", "artist").Return(&follow.CreatorFollow{FollowerId: "alice", FollowingId: "artist"}, nil).Once()
	s.repo.On("FindOne", mock.Anything, "bob", "artist").Return(nil, nil).Once()

	ok, err := s.im.IsFollowing(mockCtx, "alice", "artist")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.im.IsFollowing(mockCtx, "bob", "artist")
	s.Require().NoError(err)
	s.False(ok)
}
