package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/activity"
	"github.com/x-xyz/marketengine/domain/activity/mocks"
	"github.com/x-xyz/marketengine/service/memstore"
)

type activitySuite struct {
	suite.Suite

	uc activity.UseCase
}

func TestActivitySuite(t *testing.T) {
	suite.Run(t, new(activitySuite))
}

func (s *activitySuite) SetupTest() {
	s.uc = New(memstore.New().Activities())
}

func (s *activitySuite) TestAppendIsIdempotent() {
	c := ctx.Background()
	a := &activity.Activity{ExternalId: "SALE:s1", Type: activity.TypeSale, TokenId: "t1", CreatedAt: time.Now()}
	s.Require().NoError(s.uc.Append(c, a))
	s.NotEmpty(a.Id)
	s.Require().NoError(s.uc.Append(c, &activity.Activity{ExternalId: "SALE:s1", Type: activity.TypeSale, TokenId: "t1"}))

	res, err := s.uc.ListByToken(c, "t1")
	s.Require().NoError(err)
	s.Len(res, 1)
}

func (s *activitySuite) TestAppendInvalid() {
	c := ctx.Background()
	s.ErrorIs(s.uc.Append(c, &activity.Activity{Type: activity.TypeSale}), domain.ErrValidation)
	s.ErrorIs(s.uc.Append(c, &activity.Activity{ExternalId: "X:1", Type: "UNKNOWN"}), domain.ErrValidation)
}

func (s *activitySuite) TestListings() {
	c := ctx.Background()
	now := time.Now()
	for i, typ := range []activity.Type{activity.TypeList, activity.TypeBid, activity.TypeSale} {
		s.Require().NoError(s.uc.Append(c, &activity.Activity{
			ExternalId:   activity.ExternalId(typ, "x"),
			Type:         typ,
			ListingId:    "l1",
			CollectionId: "c1",
			FromUserId:   "u1",
			CreatedAt:    now.Add(time.Duration(i) * time.Minute),
		}))
	}

	res, err := s.uc.ListByListing(c, "l1")
	s.Require().NoError(err)
	s.Require().Len(res, 3)
	s.Equal(activity.TypeSale, res[0].Type)

	res, err = s.uc.ListByCollection(c, "c1", activity.WithPagination(1, 1))
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal(activity.TypeBid, res[0].Type)

	res, err = s.uc.ListByUser(c, "u1", activity.WithTypes(activity.TypeList))
	s.Require().NoError(err)
	s.Require().Len(res, 1)

	_, err = s.uc.ListByUser(c, "u1", activity.WithTypes("NOPE"))
	s.ErrorIs(err, domain.ErrValidation)
}

func TestAppendSurfacesStoreErrors(t *testing.T) {
	repo := &mocks.Repo{}
	repo.On("Insert", mock.Anything, mock.Anything).Return(domain.ErrDependencyFailure).Once()

	err := New(repo).Append(ctx.Background(), &activity.Activity{ExternalId: "BID:1", Type: activity.TypeBid})
	if err != domain.ErrDependencyFailure {
		t.Fatalf("unexpected err %v", err)
	}
	repo.AssertExpectations(t)
}
