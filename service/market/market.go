package market

import (
	"context"

	"lendledger/core"
	"lendledger/internal/rates"
	"lendledger/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type marketService struct {
	marketStore core.IMarketStore
	rateStore   core.IRateStore
	snapshotz   core.ISnapshotService
	oraclez     core.IPriceOracleService
	protocolStore core.IProtocolStore
}

// New new market service
func New(
	marketStore core.IMarketStore,
	protocolStore core.IProtocolStore,
	rateStore core.IRateStore,
	snapshotz core.ISnapshotService,
	oraclez core.IPriceOracleService,
) core.IMarketService {
	return &marketService{
		marketStore:   marketStore,
		protocolStore: protocolStore,
		rateStore:     rateStore,
		snapshotz:     snapshotz,
		oraclez:       oraclez,
	}
}

// UpdateMarketAndProtocolData refreshes market valuations, persists the
// market and re-sums the protocol aggregates over every market. Runs
// last in the per-event sequence so the rollup always sees the final
// market state.
func (s *marketService) UpdateMarketAndProtocolData(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol) error {
	log := logger.FromContext(ctx).WithField("market", market.MarketID)

	// price events drive the market prices; the oracle service only
	// bootstraps a market that has never been priced
	if market.LoanPriceUSD.IsZero() {
		if price, err := s.oraclez.GetPrice(ctx, market.LoanAssetID); err != nil {
			return err
		} else if price.IsPositive() {
			market.LoanPriceUSD = price
		}
	}
	if market.CollateralPriceUSD.IsZero() {
		if price, err := s.oraclez.GetPrice(ctx, market.CollateralAssetID); err != nil {
			return err
		} else if price.IsPositive() {
			market.CollateralPriceUSD = price
		}
	}

	supplyUSD := market.LoanAmountUSD(market.TotalSupply)
	borrowUSD := market.LoanAmountUSD(market.TotalBorrow)
	collateralUSD := market.CollateralAmountUSD(market.TotalCollateral)

	market.TotalDepositBalanceUSD = supplyUSD.Add(collateralUSD)
	market.TotalBorrowBalanceUSD = borrowUSD
	market.TotalValueLockedUSD = market.TotalDepositBalanceUSD.Sub(borrowUSD)
	market.UtilizationRate = rates.UtilizationRate(market.TotalSupply, market.TotalBorrow)
	market.LastUpdate = event.Timestamp
	market.BlockNumber = event.BlockNumber

	if err := s.marketStore.Update(ctx, tx, market); err != nil {
		log.WithError(err).Errorln("marketStore.Update")
		return err
	}

	markets, err := s.marketStore.All(ctx)
	if err != nil {
		return err
	}

	// the list read returns committed rows only; splice in the market
	// mutated by this event so the re-sum sees its final state
	found := false
	for i, m := range markets {
		if m.MarketID == market.MarketID {
			markets[i] = market
			found = true
			break
		}
	}
	if !found {
		markets = append(markets, market)
	}

	protocol.TotalValueLockedUSD = decimal.Zero
	protocol.TotalDepositBalanceUSD = decimal.Zero
	protocol.TotalBorrowBalanceUSD = decimal.Zero
	protocol.CumulativeDepositUSD = decimal.Zero
	protocol.CumulativeBorrowUSD = decimal.Zero
	protocol.CumulativeLiquidateUSD = decimal.Zero
	protocol.CumulativeSupplySideRevenueUSD = decimal.Zero
	protocol.CumulativeProtocolSideRevenueUSD = decimal.Zero
	protocol.CumulativeTotalRevenueUSD = decimal.Zero
	protocol.CumulativePositionCount = 0
	protocol.OpenPositionCount = 0
	protocol.TotalPoolCount = int64(len(markets))

	for _, m := range markets {
		protocol.TotalValueLockedUSD = protocol.TotalValueLockedUSD.Add(m.TotalValueLockedUSD)
		protocol.TotalDepositBalanceUSD = protocol.TotalDepositBalanceUSD.Add(m.TotalDepositBalanceUSD)
		protocol.TotalBorrowBalanceUSD = protocol.TotalBorrowBalanceUSD.Add(m.TotalBorrowBalanceUSD)
		protocol.CumulativeDepositUSD = protocol.CumulativeDepositUSD.Add(m.CumulativeDepositUSD)
		protocol.CumulativeBorrowUSD = protocol.CumulativeBorrowUSD.Add(m.CumulativeBorrowUSD)
		protocol.CumulativeLiquidateUSD = protocol.CumulativeLiquidateUSD.Add(m.CumulativeLiquidateUSD)
		protocol.CumulativeSupplySideRevenueUSD = protocol.CumulativeSupplySideRevenueUSD.Add(m.CumulativeSupplySideRevenueUSD)
		protocol.CumulativeProtocolSideRevenueUSD = protocol.CumulativeProtocolSideRevenueUSD.Add(m.CumulativeProtocolSideRevenueUSD)
		protocol.CumulativeTotalRevenueUSD = protocol.CumulativeTotalRevenueUSD.Add(m.CumulativeTotalRevenueUSD)
		protocol.CumulativePositionCount += m.PositionCount
		protocol.OpenPositionCount += m.OpenPositionCount
	}

	if err := s.protocolStore.Update(ctx, tx, protocol); err != nil {
		return err
	}

	return s.snapshotz.SyncFinancials(ctx, tx, event, protocol)
}

// AccrueInterest folds accrued interest into the pool totals and splits
// the earned value between suppliers and the protocol by the market fee.
func (s *marketService) AccrueInterest(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol) error {
	interest := event.Interest
	if !interest.IsPositive() {
		return nil
	}

	elapsed := int64(0)
	if !market.LastUpdate.IsZero() && event.Timestamp.After(market.LastUpdate) {
		elapsed = event.Timestamp.Unix() - market.LastUpdate.Unix()
	}

	market.TotalSupply = market.TotalSupply.Add(interest)
	market.TotalBorrow = market.TotalBorrow.Add(interest)
	market.Interest = market.Interest.Add(interest)
	if event.FeeShares.IsPositive() {
		market.TotalSupplyShares = market.TotalSupplyShares.Add(event.FeeShares)
	}

	interestUSD := market.LoanAmountUSD(interest)
	protocolSide := interestUSD.Mul(market.Fee)
	supplySide := interestUSD.Sub(protocolSide)

	market.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD.Add(protocolSide)
	market.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD.Add(supplySide)
	market.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD.Add(interestUSD)

	market.UtilizationRate = rates.UtilizationRate(market.TotalSupply, market.TotalBorrow)
	if apr := rates.BorrowAPR(interest, market.TotalBorrow, elapsed); apr.IsPositive() {
		market.BorrowRate = apr
	}
	market.SupplyRate = rates.SupplyAPR(market.BorrowRate, market.UtilizationRate, market.Fee)

	if err := s.saveRates(ctx, tx, event, market); err != nil {
		return err
	}

	return s.snapshotz.UpdateRevenue(ctx, tx, event, market, protocol, protocolSide, supplySide)
}

// saveRates maintains the live per-market rate rows
func (s *marketService) saveRates(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market) error {
	lender := &core.InterestRate{
		RateID:      id.Composite(market.MarketID, string(core.RateSideLender)),
		MarketID:    market.MarketID,
		Side:        core.RateSideLender,
		Rate:        market.SupplyRate,
		BlockNumber: event.BlockNumber,
		Timestamp:   event.Timestamp,
	}
	if err := s.rateStore.Save(ctx, tx, lender); err != nil {
		return err
	}

	borrower := &core.InterestRate{
		RateID:      id.Composite(market.MarketID, string(core.RateSideBorrower)),
		MarketID:    market.MarketID,
		Side:        core.RateSideBorrower,
		Rate:        market.BorrowRate,
		BlockNumber: event.BlockNumber,
		Timestamp:   event.Timestamp,
	}
	return s.rateStore.Save(ctx, tx, borrower)
}
