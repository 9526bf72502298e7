package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/favorite"
	"github.com/x-xyz/marketengine/domain/favorite/mocks"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/service/memstore"
)

var mockCtx = ctx.Background()

type favoriteSuite struct {
	suite.Suite

	repo     *mocks.Repo
	listings listing.Repo
	im       favorite.Usecase
}

func TestFavoriteSuite(t *testing.T) {
	suite.Run(t, new(favoriteSuite))
}

func (s *favoriteSuite) SetupTest() {
	s.repo = &mocks.Repo{}
	s.listings = memstore.New().Listings()
	s.Require().NoError(s.listings.Insert(mockCtx, &listing.Listing{
		Id:        "l1",
		TokenId:   "token-1",
		SellerId:  "seller",
		Kind:      listing.KindFixedPrice,
		Currency:  "USDT",
		Status:    listing.StatusActive,
		CreatedAt: time.Now(),
	}))
	s.im = NewFavorite(&FavoriteUseCaseCfg{
		FavoriteRepo: s.repo,
		ListingRepo:  s.listings,
	})
}

func (s *favoriteSuite) likes() int64 {
	l, err := s.listings.FindOne(mockCtx, "l1")
	s.Require().NoError(err)
	return l.Likes
}

func (s *favoriteSuite) TestAddRemove() {
	f := favorite.Favorite{UserId: "alice", TokenId: "token-1"}
	s.repo.On("Create", mock.Anything, f).Return(nil).Once()
	s.repo.On("Create", mock.Anything, f).Return(domain.ErrConflict).Once()
	s.repo.On("Delete", mock.Anything, f).Return(nil).Once()
	s.repo.On("Delete", mock.Anything, f).Return(domain.ErrNotFound).Once()
	s.repo.On("Count", mock.Anything, mock.Anything).Return(1, nil).Twice()
	s.repo.On("Count", mock.Anything, mock.Anything).Return(0, nil).Twice()

	n, err := s.im.Add(mockCtx, f)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(int64(1), s.likes())

	// adding twice is a no-op
	n, err = s.im.Add(mockCtx, f)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(int64(1), s.likes())

	n, err = s.im.Remove(mockCtx, f)
	s.Require().NoError(err)
	s.Equal(0, n)
	s.Equal(int64(0), s.likes())

	_, err = s.im.Remove(mockCtx, f)
	s.Require().NoError(err)
	s.Equal(int64(0), s.likes())
	s.repo.AssertExpectations(s.T())
}

func (s *favoriteSuite) TestCollectionFavoriteKeepsLikes() {
	f := favorite.Favorite{UserId: "alice", CollectionId: "collection-1"}
	s.repo.On("Create", mock.Anything, f).Return(nil).Once()
	s.repo.On("Count", mock.Anything, mock.Anything).Return(3, nil).Once()

	n, err := s.im.Add(mockCtx, f)
	s.Require().NoError(err)
	s.Equal(3, n)
	s.Equal(int64(0), s.likes())
}

func (s *favoriteSuite) TestInvalid() {
	for _, f := range []favorite.Favorite{
		{TokenId: "token-1"},
		{UserId: "alice"},
		{UserId: "alice", TokenId: "token-1", CollectionId: "collection-1"},
	} {
		_, err := s.im.Add(mockCtx, f)
		s.ErrorIs(err, domain.ErrValidation)
		_, err = s.im.Remove(mockCtx, f)
		s.ErrorIs(err, domain.ErrValidation)
		_, err = s.im.IsFavorite(mockCtx, f)
		s.ErrorIs(err, domain.ErrValidation)
	}
	s.repo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *favoriteSuite) TestStoreFailure() {
	errBoom := errors.New("boom")
	f := favorite.Favorite{UserId: "alice", TokenId: "token-1"}
	s.repo.On("Create", mock.Anything, f).Return(errBoom).Once()

	_, err := s.im.Add(mockCtx, f)
	s.Equal(errBoom, err)
	s.Equal(int64(0), s.likes())
}

func (s *favoriteSuite) TestIsFavoriteAndList() {
	f := favorite.Favorite{UserId: "alice", TokenId: "token-1"}
	s.repo.On("Count", mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Once()
	s.repo.On("FindAll", mock.Anything, mock.Anything, mock.Anything).Return([]*favorite.Favorite{&f}, nil).Once()

	ok, err := s.im.IsFavorite(mockCtx, f)
	s.Require().NoError(err)
	s.True(ok)

	res, err := s.im.ListByUser(mockCtx, "alice", favorite.WithPagination(0, 10))
	s.Require().NoError(err)
	s.Equal([]*favorite.Favorite{&f}, res)
}
