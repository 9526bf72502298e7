package usecase

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	pricefomatter "github.com/x-xyz/marketengine/base/price_fomatter"
	"github.com/x-xyz/marketengine/domain"
	"github.com/x-xyz/marketengine/domain/collection"
	"github.com/x-xyz/marketengine/domain/sale"
)

var one = decimal.NewFromInt(1)

type ProcessorCfg struct {
	PlatformFeeRate decimal.Decimal
	PriceFormatter  pricefomatter.PriceFormatter
}

type processor struct {
	platformFeeRate decimal.Decimal
	priceFormatter  pricefomatter.PriceFormatter
}

func NewProcessor(cfg *ProcessorCfg) sale.Processor {
	return &processor{
		platformFeeRate: cfg.PlatformFeeRate,
		priceFormatter:  cfg.PriceFormatter,
	}
}

func isRate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(one)
}

func (p *processor) ComputeSettlement(price, platformFeeRate, royaltyPercentage decimal.Decimal, currency domain.Currency) (*sale.Settlement, error) {
	if currency.IsEmpty() {
		return nil, xerrors.Errorf("empty currency: %w", domain.ErrInvalidCurrency)
	}
	if price.IsNegative() {
		return nil, xerrors.Errorf("negative price %s: %w", price, domain.ErrValidation)
	}
	if !isRate(platformFeeRate) || !isRate(royaltyPercentage) {
		return nil, xerrors.Errorf("fee rate %s or royalty %s out of [0, 1]: %w", platformFeeRate, royaltyPercentage, domain.ErrValidation)
	}

	marketplaceFee := p.priceFormatter.Round(price.Mul(platformFeeRate), currency)
	royaltyFee := p.priceFormatter.Round(price.Mul(royaltyPercentage), currency)

	// fees never exceed the price, the marketplace gives way first
	if marketplaceFee.Add(royaltyFee).GreaterThan(price) {
		marketplaceFee = decimal.Max(decimal.Zero, price.Sub(royaltyFee))
		if royaltyFee.GreaterThan(price) {
			royaltyFee = price
		}
	}

	totalFee := marketplaceFee.Add(royaltyFee)
	return &sale.Settlement{
		Price:          price,
		Currency:       currency,
		MarketplaceFee: marketplaceFee,
		RoyaltyFee:     royaltyFee,
		TotalFee:       totalFee,
		NetAmount:      price.Sub(totalFee),
	}, nil
}

func (p *processor) SplitRoyalty(royaltyFee decimal.Decimal, recipients []collection.Recipient, currency domain.Currency) ([]sale.RoyaltyShare, error) {
	if royaltyFee.IsZero() || len(recipients) == 0 {
		return []sale.RoyaltyShare{}, nil
	}

	sorted := make([]collection.Recipient, len(recipients))
	copy(sorted, recipients)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecipientId < sorted[j].RecipientId
	})

	totalShare := decimal.Zero
	for _, r := range sorted {
		if r.RecipientId == "" || !r.Share.IsPositive() {
			return nil, xerrors.Errorf("invalid royalty recipient %q share %s: %w", r.RecipientId, r.Share, domain.ErrValidation)
		}
		totalShare = totalShare.Add(r.Share)
	}

	res := make([]sale.RoyaltyShare, 0, len(sorted))
	allocated := decimal.Zero
	for _, r := range sorted {
		percentage := r.Share.Div(totalShare)
		amount := p.priceFormatter.Truncate(royaltyFee.Mul(r.Share).Div(totalShare), currency)
		allocated = allocated.Add(amount)
		res = append(res, sale.RoyaltyShare{
			RecipientId: r.RecipientId,
			Amount:      amount,
			Percentage:  percentage,
		})
	}
	res[0].Amount = res[0].Amount.Add(royaltyFee.Sub(allocated))
	return res, nil
}

func (p *processor) BuildSale(params sale.SettleParams) (*sale.Sale, []*sale.Royalty, error) {
	royaltyPercentage := decimal.Zero
	recipients := []collection.Recipient{}
	if params.Royalty != nil {
		royaltyPercentage = params.Royalty.Percentage
		recipients = params.Royalty.Recipients
	}

	settlement, err := p.ComputeSettlement(params.Price, p.platformFeeRate, royaltyPercentage, params.Currency)
	if err != nil {
		return nil, nil, err
	}
	shares, err := p.SplitRoyalty(settlement.RoyaltyFee, recipients, params.Currency)
	if err != nil {
		return nil, nil, err
	}

	s := &sale.Sale{
		Id:             domain.NewId(),
		TokenId:        params.TokenId,
		CollectionId:   params.CollectionId,
		ListingId:      params.ListingId,
		BidId:          params.BidId,
		OfferId:        params.OfferId,
		SellerId:       params.SellerId,
		BuyerId:        params.BuyerId,
		Price:          settlement.Price,
		Currency:       settlement.Currency,
		MarketplaceFee: settlement.MarketplaceFee,
		RoyaltyFee:     settlement.RoyaltyFee,
		TotalFee:       settlement.TotalFee,
		NetAmount:      settlement.NetAmount,
		Status:         sale.StatusPending,
		Metadata:       params.Metadata,
		CreatedAt:      params.Now,
		UpdatedAt:      params.Now,
	}

	royalties := make([]*sale.Royalty, 0, len(shares))
	for _, share := range shares {
		royalties = append(royalties, &sale.Royalty{
			Id:           domain.NewId(),
			SaleId:       s.Id,
			TokenId:      params.TokenId,
			CollectionId: params.CollectionId,
			RecipientId:  share.RecipientId,
			Amount:       share.Amount,
			Percentage:   share.Percentage,
			Currency:     params.Currency,
			Status:       sale.RoyaltyStatusPending,
			CreatedAt:    params.Now,
			UpdatedAt:    params.Now,
		})
	}
	return s, royalties, nil
}
