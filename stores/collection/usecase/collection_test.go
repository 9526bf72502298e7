package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/collection/mocks"
	"github.com/x-xyz/marketengine/domain/keys"
	"github.com/x-xyz/marketengine/service/cache"
	"github.com/x-xyz/marketengine/service/cache/provider/primitive"
)

var mockCtx = ctx.Background()

type registrySuite struct {
	suite.Suite

	tokenRepo   *mocks.TokenRepo
	royaltyRepo *mocks.RoyaltyRepo
	im          collection.UseCase
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(registrySuite))
}

func (s *registrySuite) SetupTest() {
	s.tokenRepo = &mocks.TokenRepo{}
	s.royaltyRepo = &mocks.RoyaltyRepo{}
	s.im = New(&RegistryCfg{
		TokenRepo:   s.tokenRepo,
		RoyaltyRepo: s.royaltyRepo,
		TokenCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxRegistryToken,
			Cache: primitive.NewPrimitive("token", 1),
		}),
		RoyaltyCache: cache.New(cache.ServiceConfig{
			Ttl:   time.Minute,
			Pfx:   keys.PfxRegistryRoyalty,
			Cache: primitive.NewPrimitive("royalty", 1),
		}),
	})
}

func (s *registrySuite) TestGetTokenCached() {
	token := &collection.Token{Id: "token-1", CollectionId: "collection-1", OwnerId: "alice"}
	s.tokenRepo.On("FindOne", mock.Anything, "token-1").Return(token, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := s.im.GetToken(mockCtx, "token-1")
		s.Require().NoError(err)
		s.Equal(token, got)
	}
	s.tokenRepo.AssertNumberOfCalls(s.T(), "FindOne", 1)
}

func (s *registrySuite) TestGetTokenNotFound() {
	s.tokenRepo.On("FindOne", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := s.im.GetToken(mockCtx, "missing")
	s.Equal(domain.ErrNotFound, err)
}

func (s *registrySuite) TestUpsertTokenInvalidates() {
	old := &collection.Token{Id: "token-1", CollectionId: "collection-1", OwnerId: "alice"}
	moved := &collection.Token{Id: "token-1", CollectionId: "collection-1", OwnerId: "bob"}
	s.tokenRepo.On("FindOne", mock.Anything, "token-1").Return(old, nil).Once()
	s.tokenRepo.On("Upsert", mock.Anything, moved).Return(nil).Once()
	s.tokenRepo.On("FindOne", mock.Anything, "token-1").Return(moved, nil).Once()

	got, err := s.im.GetToken(mockCtx, "token-1")
	s.Require().NoError(err)
	s.Equal("alice", got.OwnerId)

	s.Require().NoError(s.im.UpsertToken(mockCtx, moved))
	got, err = s.im.GetToken(mockCtx, "token-1")
	s.Require().NoError(err)
	s.Equal("bob", got.OwnerId)

	s.ErrorIs(s.im.UpsertToken(mockCtx, &collection.Token{Id: "token-2"}), domain.ErrValidation)
}

func (s *registrySuite) TestGetRoyaltyDefaultsToZero() {
	s.royaltyRepo.On("FindOne", mock.Anything, "collection-2").Return(nil, domain.ErrNotFound).Once()

	for i := 0; i < 2; i++ {
		got, err := s.im.GetRoyalty(mockCtx, "collection-2")
		s.Require().NoError(err)
		s.Equal("collection-2", got.CollectionId)
		s.True(got.Percentage.IsZero())
		s.Empty(got.Recipients)
	}
	s.royaltyRepo.AssertNumberOfCalls(s.T(), "FindOne", 1)
}

func (s *registrySuite) TestGetRoyaltyFailure() {
	errBoom := errors.New("boom")
	s.royaltyRepo.On("FindOne", mock.Anything, "collection-3").Return(nil, errBoom)

	_, err := s.im.GetRoyalty(mockCtx, "collection-3")
	s.Equal(errBoom, err)
}

func (s *registrySuite) TestSetRoyalty() {
	valid := &collection.RoyaltyConfig{
		CollectionId: "collection-1",
		Percentage:   decimal.RequireFromString("0.03"),
		Recipients: []collection.Recipient{
			{RecipientId: "artist", Share: decimal.NewFromInt(2)},
			{RecipientId: "label", Share: decimal.NewFromInt(1)},
		},
	}
	s.royaltyRepo.On("Upsert", mock.Anything, valid).Return(nil).Once()
	s.NoError(s.im.SetRoyalty(mockCtx, valid))

	tests := []struct {
		desc string
		cfg  collection.RoyaltyConfig
	}{
		{"no collection", collection.RoyaltyConfig{}},
		{"negative", collection.RoyaltyConfig{CollectionId: "c", Percentage: decimal.RequireFromString("-0.1")}},
		{"above one", collection.RoyaltyConfig{CollectionId: "c", Percentage: decimal.RequireFromString("1.01")}},
		{"no recipients", collection.RoyaltyConfig{CollectionId: "c", Percentage: decimal.RequireFromString("0.1")}},
		{"zero share", collection.RoyaltyConfig{CollectionId: "c", Percentage: decimal.RequireFromString("0.1"), Recipients: []collection.Recipient{{RecipientId: "a"}}}},
		{"duplicated", collection.RoyaltyConfig{CollectionId: "c", Percentage: decimal.RequireFromString("0.1"), Recipients: []collection.Recipient{
			{RecipientId: "a", Share: decimal.NewFromInt(1)},
			{RecipientId: "a", Share: decimal.NewFromInt(1)},
		}}},
	}
	for _, tt := range tests {
		cfg := tt.cfg
		s.ErrorIs(s.im.SetRoyalty(mockCtx, &cfg), domain.ErrValidation, tt.desc)
	}
	s.royaltyRepo.AssertNumberOfCalls(s.T(), "Upsert", 1)
}
