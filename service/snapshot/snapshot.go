package snapshot

import (
	"strconv"

	"context"

	"lendledger/core"
	"lendledger/pkg/id"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// marker intervals
const (
	intervalCumulative = "cum"
	intervalDayPrefix  = "d"
	intervalHourPrefix = "h"
)

type snapshotService struct {
	snapshotStore core.ISnapshotStore
	protocolStore core.IProtocolStore
	rateStore     core.IRateStore
}

// New new snapshot service
func New(
	snapshotStore core.ISnapshotStore,
	protocolStore core.IProtocolStore,
	rateStore core.IRateStore,
) core.ISnapshotService {
	return &snapshotService{
		snapshotStore: snapshotStore,
		protocolStore: protocolStore,
		rateStore:     rateStore,
	}
}

func (s *snapshotService) UpdateTransactionData(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, action core.ActionType, amount, amountUSD decimal.Decimal) error {
	hourly, err := s.marketHourly(ctx, tx, event, market)
	if err != nil {
		return err
	}
	daily, err := s.marketDaily(ctx, tx, event, market)
	if err != nil {
		return err
	}

	switch action {
	case core.ActionTypeSupply, core.ActionTypeSupplyCollateral:
		hourly.HourlyDepositUSD = hourly.HourlyDepositUSD.Add(amountUSD)
		daily.DailyDepositUSD = daily.DailyDepositUSD.Add(amountUSD)
		daily.DailyNativeDeposit = daily.DailyNativeDeposit.Add(amount)
		daily.DailyDepositCount++
	case core.ActionTypeWithdraw, core.ActionTypeWithdrawCollateral:
		hourly.HourlyWithdrawUSD = hourly.HourlyWithdrawUSD.Add(amountUSD)
		daily.DailyWithdrawUSD = daily.DailyWithdrawUSD.Add(amountUSD)
		daily.DailyNativeWithdraw = daily.DailyNativeWithdraw.Add(amount)
		daily.DailyWithdrawCount++
	case core.ActionTypeBorrow:
		hourly.HourlyBorrowUSD = hourly.HourlyBorrowUSD.Add(amountUSD)
		daily.DailyBorrowUSD = daily.DailyBorrowUSD.Add(amountUSD)
		daily.DailyNativeBorrow = daily.DailyNativeBorrow.Add(amount)
		daily.DailyBorrowCount++
	case core.ActionTypeRepay:
		hourly.HourlyRepayUSD = hourly.HourlyRepayUSD.Add(amountUSD)
		daily.DailyRepayUSD = daily.DailyRepayUSD.Add(amountUSD)
		daily.DailyNativeRepay = daily.DailyNativeRepay.Add(amount)
		daily.DailyRepayCount++
	case core.ActionTypeLiquidate:
		hourly.HourlyLiquidateUSD = hourly.HourlyLiquidateUSD.Add(amountUSD)
		daily.DailyLiquidateUSD = daily.DailyLiquidateUSD.Add(amountUSD)
		daily.DailyNativeLiquidate = daily.DailyNativeLiquidate.Add(amount)
		daily.DailyLiquidateCount++
	case core.ActionTypeTransfer:
		hourly.HourlyTransferUSD = hourly.HourlyTransferUSD.Add(amountUSD)
		daily.DailyTransferUSD = daily.DailyTransferUSD.Add(amountUSD)
		daily.DailyNativeTransfer = daily.DailyNativeTransfer.Add(amount)
		daily.DailyTransferCount++
	case core.ActionTypeFlashloan:
		hourly.HourlyFlashloanUSD = hourly.HourlyFlashloanUSD.Add(amountUSD)
		daily.DailyFlashloanUSD = daily.DailyFlashloanUSD.Add(amountUSD)
		daily.DailyNativeFlashloan = daily.DailyNativeFlashloan.Add(amount)
		daily.DailyFlashloanCount++
	}

	if err := s.snapshotStore.SaveMarketHourly(ctx, tx, hourly); err != nil {
		return err
	}
	if err := s.snapshotStore.SaveMarketDaily(ctx, tx, daily); err != nil {
		return err
	}

	financials, err := s.financialsDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	switch action {
	case core.ActionTypeSupply, core.ActionTypeSupplyCollateral:
		financials.DailyDepositUSD = financials.DailyDepositUSD.Add(amountUSD)
	case core.ActionTypeWithdraw, core.ActionTypeWithdrawCollateral:
		financials.DailyWithdrawUSD = financials.DailyWithdrawUSD.Add(amountUSD)
	case core.ActionTypeBorrow:
		financials.DailyBorrowUSD = financials.DailyBorrowUSD.Add(amountUSD)
	case core.ActionTypeRepay:
		financials.DailyRepayUSD = financials.DailyRepayUSD.Add(amountUSD)
	case core.ActionTypeLiquidate:
		financials.DailyLiquidateUSD = financials.DailyLiquidateUSD.Add(amountUSD)
	case core.ActionTypeTransfer:
		financials.DailyTransferUSD = financials.DailyTransferUSD.Add(amountUSD)
	case core.ActionTypeFlashloan:
		financials.DailyFlashloanUSD = financials.DailyFlashloanUSD.Add(amountUSD)
	}
	if err := s.snapshotStore.SaveFinancialsDaily(ctx, tx, financials); err != nil {
		return err
	}

	usageDaily, err := s.usageDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	usageHourly, err := s.usageHourly(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	usageDaily.DailyTransactionCount++
	usageHourly.HourlyTransactionCount++
	switch action {
	case core.ActionTypeSupply, core.ActionTypeSupplyCollateral:
		usageDaily.DailyDepositCount++
		usageHourly.HourlyDepositCount++
	case core.ActionTypeWithdraw, core.ActionTypeWithdrawCollateral:
		usageDaily.DailyWithdrawCount++
		usageHourly.HourlyWithdrawCount++
	case core.ActionTypeBorrow:
		usageDaily.DailyBorrowCount++
		usageHourly.HourlyBorrowCount++
	case core.ActionTypeRepay:
		usageDaily.DailyRepayCount++
		usageHourly.HourlyRepayCount++
	case core.ActionTypeLiquidate:
		usageDaily.DailyLiquidateCount++
		usageHourly.HourlyLiquidateCount++
	case core.ActionTypeTransfer:
		usageDaily.DailyTransferCount++
	case core.ActionTypeFlashloan:
		usageDaily.DailyFlashloanCount++
		usageHourly.HourlyFlashloanCount++
	}
	if err := s.snapshotStore.SaveUsageDaily(ctx, tx, usageDaily); err != nil {
		return err
	}
	return s.snapshotStore.SaveUsageHourly(ctx, tx, usageHourly)
}

func (s *snapshotService) UpdateUsageData(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, action core.ActionType, actor string) error {
	day := intervalDayPrefix + strconv.FormatInt(event.DayBucket(), 10)
	hour := intervalHourPrefix + strconv.FormatInt(event.HourBucket(), 10)

	usageDaily, err := s.usageDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	usageHourly, err := s.usageHourly(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	marketDaily, err := s.marketDaily(ctx, tx, event, market)
	if err != nil {
		return err
	}

	// protocol scope
	if hit, err := s.touch(ctx, tx, actor, intervalCumulative); err != nil {
		return err
	} else if hit {
		protocol.CumulativeUniqueUsers++
	}
	if hit, err := s.touch(ctx, tx, actor, day); err != nil {
		return err
	} else if hit {
		usageDaily.DailyActiveUsers++
	}
	if hit, err := s.touch(ctx, tx, actor, hour); err != nil {
		return err
	} else if hit {
		usageHourly.HourlyActiveUsers++
	}

	// market scope
	if hit, err := s.touch(ctx, tx, actor, market.MarketID, intervalCumulative); err != nil {
		return err
	} else if hit {
		market.CumulativeUniqueUsers++
	}
	if hit, err := s.touch(ctx, tx, actor, market.MarketID, day); err != nil {
		return err
	} else if hit {
		marketDaily.DailyActiveUsers++
	}

	switch action {
	case core.ActionTypeSupply, core.ActionTypeSupplyCollateral:
		if hit, err := s.touch(ctx, tx, actor, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			protocol.CumulativeUniqueDepositors++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			market.CumulativeUniqueDepositors++
		}
		if hit, err := s.touch(ctx, tx, actor, action.String(), day); err != nil {
			return err
		} else if hit {
			usageDaily.DailyActiveDepositors++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), day); err != nil {
			return err
		} else if hit {
			marketDaily.DailyActiveDepositors++
		}
	case core.ActionTypeBorrow:
		if hit, err := s.touch(ctx, tx, actor, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			protocol.CumulativeUniqueBorrowers++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			market.CumulativeUniqueBorrowers++
		}
		if hit, err := s.touch(ctx, tx, actor, action.String(), day); err != nil {
			return err
		} else if hit {
			usageDaily.DailyActiveBorrowers++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), day); err != nil {
			return err
		} else if hit {
			marketDaily.DailyActiveBorrowers++
		}
	case core.ActionTypeLiquidate:
		if hit, err := s.touch(ctx, tx, actor, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			protocol.CumulativeUniqueLiquidators++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			market.CumulativeUniqueLiquidators++
		}
		if hit, err := s.touch(ctx, tx, actor, action.String(), day); err != nil {
			return err
		} else if hit {
			usageDaily.DailyActiveLiquidators++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), day); err != nil {
			return err
		} else if hit {
			marketDaily.DailyActiveLiquidators++
		}
	case core.ActionTypeTransfer:
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			market.CumulativeUniqueTransferrers++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), day); err != nil {
			return err
		} else if hit {
			marketDaily.DailyActiveTransferrers++
		}
	case core.ActionTypeFlashloan:
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), intervalCumulative); err != nil {
			return err
		} else if hit {
			market.CumulativeUniqueFlashloaners++
		}
		if hit, err := s.touch(ctx, tx, actor, market.MarketID, action.String(), day); err != nil {
			return err
		} else if hit {
			marketDaily.DailyActiveFlashloaners++
		}
	}

	s.copyUsageDaily(usageDaily, protocol)
	s.copyUsageHourly(usageHourly, protocol)
	if err := s.snapshotStore.SaveUsageDaily(ctx, tx, usageDaily); err != nil {
		return err
	}
	if err := s.snapshotStore.SaveUsageHourly(ctx, tx, usageHourly); err != nil {
		return err
	}
	return s.snapshotStore.SaveMarketDaily(ctx, tx, marketDaily)
}

func (s *snapshotService) MarkLiquidatee(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, actor string) error {
	day := intervalDayPrefix + strconv.FormatInt(event.DayBucket(), 10)
	const kind = "liquidated"

	usageDaily, err := s.usageDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	marketDaily, err := s.marketDaily(ctx, tx, event, market)
	if err != nil {
		return err
	}

	if hit, err := s.touch(ctx, tx, actor, kind, intervalCumulative); err != nil {
		return err
	} else if hit {
		protocol.CumulativeUniqueLiquidatees++
	}
	if hit, err := s.touch(ctx, tx, actor, market.MarketID, kind, intervalCumulative); err != nil {
		return err
	} else if hit {
		market.CumulativeUniqueLiquidatees++
	}
	if hit, err := s.touch(ctx, tx, actor, kind, day); err != nil {
		return err
	} else if hit {
		usageDaily.DailyActiveLiquidatees++
	}
	if hit, err := s.touch(ctx, tx, actor, market.MarketID, kind, day); err != nil {
		return err
	} else if hit {
		marketDaily.DailyActiveLiquidatees++
	}

	s.copyUsageDaily(usageDaily, protocol)
	if err := s.snapshotStore.SaveUsageDaily(ctx, tx, usageDaily); err != nil {
		return err
	}
	return s.snapshotStore.SaveMarketDaily(ctx, tx, marketDaily)
}

func (s *snapshotService) UpdateRevenue(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, protocolDelta, supplyDelta decimal.Decimal) error {
	totalDelta := protocolDelta.Add(supplyDelta)

	hourly, err := s.marketHourly(ctx, tx, event, market)
	if err != nil {
		return err
	}
	hourly.HourlyProtocolSideRevenueUSD = hourly.HourlyProtocolSideRevenueUSD.Add(protocolDelta)
	hourly.HourlySupplySideRevenueUSD = hourly.HourlySupplySideRevenueUSD.Add(supplyDelta)
	hourly.HourlyTotalRevenueUSD = hourly.HourlyTotalRevenueUSD.Add(totalDelta)
	if err := s.snapshotStore.SaveMarketHourly(ctx, tx, hourly); err != nil {
		return err
	}

	daily, err := s.marketDaily(ctx, tx, event, market)
	if err != nil {
		return err
	}
	daily.DailyProtocolSideRevenueUSD = daily.DailyProtocolSideRevenueUSD.Add(protocolDelta)
	daily.DailySupplySideRevenueUSD = daily.DailySupplySideRevenueUSD.Add(supplyDelta)
	daily.DailyTotalRevenueUSD = daily.DailyTotalRevenueUSD.Add(totalDelta)
	if err := s.snapshotStore.SaveMarketDaily(ctx, tx, daily); err != nil {
		return err
	}

	financials, err := s.financialsDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	financials.DailyProtocolSideRevenueUSD = financials.DailyProtocolSideRevenueUSD.Add(protocolDelta)
	financials.DailySupplySideRevenueUSD = financials.DailySupplySideRevenueUSD.Add(supplyDelta)
	financials.DailyTotalRevenueUSD = financials.DailyTotalRevenueUSD.Add(totalDelta)
	return s.snapshotStore.SaveFinancialsDaily(ctx, tx, financials)
}

func (s *snapshotService) AddDailyActivePosition(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, side core.PositionSide) error {
	daily, err := s.marketDaily(ctx, tx, event, market)
	if err != nil {
		return err
	}
	switch side {
	case core.PositionSideSupplier:
		daily.DailyActiveLendingPositionCount++
	case core.PositionSideBorrower:
		daily.DailyActiveBorrowingPositionCount++
	}
	if err := s.snapshotStore.SaveMarketDaily(ctx, tx, daily); err != nil {
		return err
	}

	protocol, err := s.protocolStore.Get(ctx)
	if err != nil {
		return err
	}
	usageDaily, err := s.usageDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}
	usageDaily.DailyActivePositions++
	return s.snapshotStore.SaveUsageDaily(ctx, tx, usageDaily)
}

// SyncFinancials rewrites the day's financials row with the protocol
// state left by the end-of-event rollup, so the snapshot never trails
// the live aggregates within a bucket.
func (s *snapshotService) SyncFinancials(ctx context.Context, tx *db.DB, event *core.Event, protocol *core.Protocol) error {
	financials, err := s.financialsDaily(ctx, tx, event, protocol)
	if err != nil {
		return err
	}

	return s.snapshotStore.SaveFinancialsDaily(ctx, tx, financials)
}

func (s *snapshotService) touch(ctx context.Context, tx *db.DB, parts ...string) (bool, error) {
	return s.snapshotStore.TouchActivity(ctx, tx, id.Composite(parts...))
}

// marketHourly loads or creates the market's hour bucket row and copies
// the live cumulative state onto it.
func (s *snapshotService) marketHourly(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market) (*core.MarketHourlySnapshot, error) {
	bucket := event.HourBucket()
	snapshotID := id.Bucketed(id.Composite(market.MarketID, intervalHourPrefix), bucket)

	snap, err := s.snapshotStore.FindMarketHourly(ctx, tx, snapshotID)
	if gorm.IsRecordNotFoundError(err) {
		snap = &core.MarketHourlySnapshot{
			SnapshotID: snapshotID,
			MarketID:   market.MarketID,
			Hours:      bucket,
		}
		if err := s.snapshotRates(ctx, tx, event, market, intervalHourPrefix, bucket); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	snap.TotalValueLockedUSD = market.TotalValueLockedUSD
	snap.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD
	snap.TotalBorrowBalanceUSD = market.TotalBorrowBalanceUSD
	snap.CumulativeDepositUSD = market.CumulativeDepositUSD
	snap.CumulativeBorrowUSD = market.CumulativeBorrowUSD
	snap.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD
	snap.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD
	snap.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD
	snap.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD
	snap.BlockNumber = event.BlockNumber
	snap.Timestamp = event.Timestamp
	return snap, nil
}

func (s *snapshotService) marketDaily(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market) (*core.MarketDailySnapshot, error) {
	bucket := event.DayBucket()
	snapshotID := id.Bucketed(id.Composite(market.MarketID, intervalDayPrefix), bucket)

	snap, err := s.snapshotStore.FindMarketDaily(ctx, tx, snapshotID)
	if gorm.IsRecordNotFoundError(err) {
		snap = &core.MarketDailySnapshot{
			SnapshotID: snapshotID,
			MarketID:   market.MarketID,
			Days:       bucket,
		}
		if err := s.snapshotRates(ctx, tx, event, market, intervalDayPrefix, bucket); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	snap.TotalValueLockedUSD = market.TotalValueLockedUSD
	snap.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD
	snap.TotalBorrowBalanceUSD = market.TotalBorrowBalanceUSD
	snap.CumulativeDepositUSD = market.CumulativeDepositUSD
	snap.CumulativeBorrowUSD = market.CumulativeBorrowUSD
	snap.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD
	snap.CumulativeFlashloanUSD = market.CumulativeFlashloanUSD
	snap.CumulativeTransferUSD = market.CumulativeTransferUSD
	snap.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD
	snap.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD
	snap.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD
	snap.PositionCount = market.PositionCount
	snap.OpenPositionCount = market.OpenPositionCount
	snap.ClosedPositionCount = market.ClosedPositionCount
	snap.LendingPositionCount = market.LendingPositionCount
	snap.BorrowingPositionCount = market.BorrowingPositionCount
	snap.BlockNumber = event.BlockNumber
	snap.Timestamp = event.Timestamp
	return snap, nil
}

func (s *snapshotService) financialsDaily(ctx context.Context, tx *db.DB, event *core.Event, protocol *core.Protocol) (*core.FinancialsDailySnapshot, error) {
	bucket := event.DayBucket()
	snapshotID := id.Bucketed(intervalDayPrefix, bucket)

	snap, err := s.snapshotStore.FindFinancialsDaily(ctx, tx, snapshotID)
	if gorm.IsRecordNotFoundError(err) {
		snap = &core.FinancialsDailySnapshot{
			SnapshotID: snapshotID,
			Days:       bucket,
		}
	} else if err != nil {
		return nil, err
	}

	snap.TotalValueLockedUSD = protocol.TotalValueLockedUSD
	snap.TotalDepositBalanceUSD = protocol.TotalDepositBalanceUSD
	snap.TotalBorrowBalanceUSD = protocol.TotalBorrowBalanceUSD
	snap.CumulativeDepositUSD = protocol.CumulativeDepositUSD
	snap.CumulativeBorrowUSD = protocol.CumulativeBorrowUSD
	snap.CumulativeLiquidateUSD = protocol.CumulativeLiquidateUSD
	snap.CumulativeSupplySideRevenueUSD = protocol.CumulativeSupplySideRevenueUSD
	snap.CumulativeProtocolSideRevenueUSD = protocol.CumulativeProtocolSideRevenueUSD
	snap.CumulativeTotalRevenueUSD = protocol.CumulativeTotalRevenueUSD
	snap.BlockNumber = event.BlockNumber
	snap.Timestamp = event.Timestamp
	return snap, nil
}

func (s *snapshotService) usageDaily(ctx context.Context, tx *db.DB, event *core.Event, protocol *core.Protocol) (*core.UsageDailySnapshot, error) {
	bucket := event.DayBucket()
	snapshotID := id.Bucketed("usage-"+intervalDayPrefix, bucket)

	snap, err := s.snapshotStore.FindUsageDaily(ctx, tx, snapshotID)
	if gorm.IsRecordNotFoundError(err) {
		snap = &core.UsageDailySnapshot{
			SnapshotID: snapshotID,
			Days:       bucket,
		}
	} else if err != nil {
		return nil, err
	}

	s.copyUsageDaily(snap, protocol)
	snap.BlockNumber = event.BlockNumber
	snap.Timestamp = event.Timestamp
	return snap, nil
}

func (s *snapshotService) usageHourly(ctx context.Context, tx *db.DB, event *core.Event, protocol *core.Protocol) (*core.UsageHourlySnapshot, error) {
	bucket := event.HourBucket()
	snapshotID := id.Bucketed("usage-"+intervalHourPrefix, bucket)

	snap, err := s.snapshotStore.FindUsageHourly(ctx, tx, snapshotID)
	if gorm.IsRecordNotFoundError(err) {
		snap = &core.UsageHourlySnapshot{
			SnapshotID: snapshotID,
			Hours:      bucket,
		}
	} else if err != nil {
		return nil, err
	}

	s.copyUsageHourly(snap, protocol)
	snap.BlockNumber = event.BlockNumber
	snap.Timestamp = event.Timestamp
	return snap, nil
}

func (s *snapshotService) copyUsageDaily(snap *core.UsageDailySnapshot, protocol *core.Protocol) {
	snap.CumulativeUniqueUsers = protocol.CumulativeUniqueUsers
	snap.CumulativeUniqueDepositors = protocol.CumulativeUniqueDepositors
	snap.CumulativeUniqueBorrowers = protocol.CumulativeUniqueBorrowers
	snap.CumulativeUniqueLiquidators = protocol.CumulativeUniqueLiquidators
	snap.CumulativeUniqueLiquidatees = protocol.CumulativeUniqueLiquidatees
	snap.CumulativePositionCount = protocol.CumulativePositionCount
	snap.OpenPositionCount = protocol.OpenPositionCount
	snap.TotalPoolCount = protocol.TotalPoolCount
}

func (s *snapshotService) copyUsageHourly(snap *core.UsageHourlySnapshot, protocol *core.Protocol) {
	snap.CumulativeUniqueUsers = protocol.CumulativeUniqueUsers
}

// snapshotRates freezes the market's live rates under bucket-suffixed
// ids when a new bucket row opens.
func (s *snapshotService) snapshotRates(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, interval string, bucket int64) error {
	lender := &core.InterestRate{
		RateID:      id.Bucketed(id.Composite(market.MarketID, string(core.RateSideLender), interval), bucket),
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
		RateID:      id.Bucketed(id.Composite(market.MarketID, string(core.RateSideBorrower), interval), bucket),
		MarketID:    market.MarketID,
		Side:        core.RateSideBorrower,
		Rate:        market.BorrowRate,
		BlockNumber: event.BlockNumber,
		Timestamp:   event.Timestamp,
	}
	return s.rateStore.Save(ctx, tx, borrower)
}
