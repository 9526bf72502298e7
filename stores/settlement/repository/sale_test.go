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
	"github.com/x-xyz/marketengine/domain/sale"
	"github.com/x-xyz/marketengine/service/query"
)

type saleRepoSuite struct {
	suite.Suite

	client    *mongoclient.Client
	sales     sale.Repo
	royalties sale.RoyaltyRepo
	now       time.Time
}

func TestSaleRepoSuite(t *testing.T) {
	suite.Run(t, new(saleRepoSuite))
}

func (s *saleRepoSuite) SetupSuite() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		s.T().Skip("MONGO_URI not set")
	}
	s.client = mongoclient.MustConnectMongoClient(uri, "admin", "testdb", false, true, 1)
}

func (s *saleRepoSuite) SetupTest() {
	c := ctx.Background()
	db := s.client.Database(s.client.DbName)
	s.Require().NoError(db.Collection(string(domain.TableSales)).Drop(c))
	s.Require().NoError(db.Collection(string(domain.TableRoyalties)).Drop(c))

	q := query.New(s.client, false)
	s.Require().NoError(q.EnsureIndexes(c, domain.TableSales, SaleIndexes))
	s.Require().NoError(q.EnsureIndexes(c, domain.TableRoyalties, RoyaltyIndexes))
	s.sales = NewSale(q)
	s.royalties = NewRoyalty(q)
	s.now = time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)
}

func (s *saleRepoSuite) newSale(id, listingId, offerId string) *sale.Sale {
	return &sale.Sale{
		Id:             id,
		TokenId:        "token-1",
		ListingId:      listingId,
		OfferId:        offerId,
		SellerId:       "seller",
		BuyerId:        "buyer",
		Price:          decimal.RequireFromString("55"),
		Currency:       "USDT",
		MarketplaceFee: decimal.RequireFromString("1.1"),
		RoyaltyFee:     decimal.RequireFromString("1.65"),
		TotalFee:       decimal.RequireFromString("2.75"),
		NetAmount:      decimal.RequireFromString("52.25"),
		Status:         sale.StatusPending,
		CreatedAt:      s.now,
	}
}

func (s *saleRepoSuite) TestOneSalePerListingAndOffer() {
	c := ctx.Background()
	s.Require().NoError(s.sales.Insert(c, s.newSale("s1", "l1", "")))
	s.Equal(domain.ErrConflict, s.sales.Insert(c, s.newSale("s2", "l1", "")))

	byOffer := s.newSale("s3", "", "o1")
	byOffer.TokenId = "token-2"
	s.Require().NoError(s.sales.Insert(c, byOffer))
	byOffer.Id = "s4"
	s.Equal(domain.ErrConflict, s.sales.Insert(c, byOffer))

	n, err := s.sales.Count(c, sale.WithSeller("seller"))
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *saleRepoSuite) TestOnePendingSalePerToken() {
	c := ctx.Background()
	s.Require().NoError(s.sales.Insert(c, s.newSale("s1", "", "o1")))
	s.Equal(domain.ErrConflict, s.sales.Insert(c, s.newSale("s2", "", "o2")))

	s.Require().NoError(s.sales.UpdateStatus(c, "s1", sale.StatusPending, sale.StatusCompleted, nil))
	s.NoError(s.sales.Insert(c, s.newSale("s2", "", "o2")))
}

func (s *saleRepoSuite) TestUpdateStatusWithPatch() {
	c := ctx.Background()
	s.Require().NoError(s.sales.Insert(c, s.newSale("s1", "l1", "")))

	hash := domain.TxHash("0xabc")
	block := domain.BlockNumber(12)
	s.NoError(s.sales.UpdateStatus(c, "s1", sale.StatusPending, sale.StatusCompleted, &sale.PatchableSale{TransactionHash: &hash, BlockNumber: &block}))
	s.Equal(domain.ErrNotFound, s.sales.UpdateStatus(c, "s1", sale.StatusPending, sale.StatusFailed, nil))

	got, err := s.sales.FindOne(c, "s1")
	s.Require().NoError(err)
	s.Equal(sale.StatusCompleted, got.Status)
	s.Equal(hash, *got.TransactionHash)
	s.Equal(block, *got.BlockNumber)
	s.True(decimal.RequireFromString("52.25").Equal(got.NetAmount))
}

func (s *saleRepoSuite) TestRoyalties() {
	c := ctx.Background()
	s.Require().NoError(s.royalties.InsertMany(c, []*sale.Royalty{
		{Id: "r2", SaleId: "s1", RecipientId: "label", Amount: decimal.RequireFromString("0.55"), Status: sale.RoyaltyStatusPending},
		{Id: "r1", SaleId: "s1", RecipientId: "artist", Amount: decimal.RequireFromString("1.1"), Status: sale.RoyaltyStatusPending},
	}))

	rs, err := s.royalties.FindAll(c, sale.RoyaltyWithSale("s1"))
	s.Require().NoError(err)
	s.Require().Len(rs, 2)
	s.Equal("artist", rs[0].RecipientId)

	s.NoError(s.royalties.UpdateStatus(c, "r1", sale.RoyaltyStatusPending, sale.RoyaltyStatusPaid, ptr.Time(s.now)))
	n, err := s.royalties.UpdateStatusBySale(c, "s1", sale.RoyaltyStatusPending, sale.RoyaltyStatusFailed)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}
