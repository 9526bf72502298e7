package repository

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/database/mongoclient"
	"github.com/x-xyz/marketengine/base/ptr"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/listing"
	"github.com/x-xyz/marketengine/service/query"
)

type listingRepoSuite struct {
	suite.Suite

	client *mongoclient.Client
	repo   listing.Repo
	now    time.Time
}

func TestListingRepoSuite(t *testing.T) {
	suite.Run(t, new(listingRepoSuite))
}

func (s *listingRepoSuite) SetupSuite() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		s.T().Skip("MONGO_URI not set")
	}
	s.client = mongoclient.MustConnectMongoClient(uri, "admin", "testdb", false, true, 1)
}

func (s *listingRepoSuite) SetupTest() {
	c := ctx.Background()
	s.Require().NoError(s.client.Database(s.client.DbName).Collection(string(domain.TableListings)).Drop(c))
	q := query.New(s.client, false)
	s.Require().NoError(q.EnsureIndexes(c, domain.TableListings, Indexes))
	s.repo = New(q)
	s.now = time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)
}

func (s *listingRepoSuite) insert(id string, end *time.Time) {
	s.Require().NoError(s.repo.Insert(ctx.Background(), &listing.Listing{
		Id:        id,
		TokenId:   "token-" + id,
		SellerId:  "seller",
		Kind:      listing.KindAuction,
		Price:     ptr.DecimalFromString("1.5"),
		Currency:  "USDT",
		StartTime: s.now,
		EndTime:   end,
		Status:    listing.StatusActive,
		CreatedAt: s.now,
	}))
}

func (s *listingRepoSuite) TestInsertFindOne() {
	c := ctx.Background()
	s.insert("l1", nil)
	s.Equal(domain.ErrConflict, s.repo.Insert(c, &listing.Listing{Id: "l1"}))

	l, err := s.repo.FindOne(c, "l1")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("1.5").Equal(*l.Price))
	s.Equal(listing.StatusActive, l.Status)

	_, err = s.repo.FindOne(c, "missing")
	s.Equal(domain.ErrNotFound, err)
}

func (s *listingRepoSuite) TestCompareAndSwap() {
	c := ctx.Background()
	s.insert("l1", nil)

	s.NoError(s.repo.Touch(c, "l1", 0))
	s.Equal(domain.ErrNotFound, s.repo.Touch(c, "l1", 0))
	s.NoError(s.repo.UpdateStatus(c, "l1", 1, listing.StatusSold))
	s.Equal(domain.ErrNotFound, s.repo.UpdateStatus(c, "l1", 2, listing.StatusCancelled))

	l, err := s.repo.FindOne(c, "l1")
	s.Require().NoError(err)
	s.Equal(listing.StatusSold, l.Status)
	s.Equal(int64(2), l.Version)
}

func (s *listingRepoSuite) TestFindEnded() {
	c := ctx.Background()
	s.insert("ended", ptr.Time(s.now.Add(-time.Minute)))
	s.insert("open", ptr.Time(s.now.Add(time.Minute)))
	s.insert("forever", nil)

	res, err := s.repo.FindAll(c, listing.WithStatus(listing.StatusActive), listing.WithEndedBefore(s.now))
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal("ended", res[0].Id)

	n, err := s.repo.Count(c, listing.WithSeller("seller"))
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *listingRepoSuite) TestLikesFloorAtZero() {
	c := ctx.Background()
	s.insert("l1", nil)

	s.NoError(s.repo.IncreaseLikes(c, "l1", 1))
	s.NoError(s.repo.IncreaseLikes(c, "l1", -2))
	s.NoError(s.repo.IncreaseViews(c, "l1", 3))

	l, err := s.repo.FindOne(c, "l1")
	s.Require().NoError(err)
	s.Equal(int64(0), l.Likes)
	s.Equal(int64(3), l.Views)
	s.Equal(domain.ErrNotFound, s.repo.IncreaseViews(c, "missing", 1))
}
