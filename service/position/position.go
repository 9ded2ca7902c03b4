package position

import (
	"context"
	"strconv"

	"lendledger/core"
	"lendledger/pkg/id"
	"lendledger/pkg/sharemath"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type positionService struct {
	positionStore core.IPositionStore
	accountStore  core.IAccountStore
	snapshotz     core.ISnapshotService
}

// New new position service
func New(
	positionStore core.IPositionStore,
	accountStore core.IAccountStore,
	snapshotz core.ISnapshotService,
) core.IPositionService {
	return &positionService{
		positionStore: positionStore,
		accountStore:  accountStore,
		snapshotz:     snapshotz,
	}
}

func (s *positionService) AddSupply(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, shares, amount decimal.Decimal) (*core.Position, error) {
	return s.add(ctx, tx, event, market, account, core.PositionSideSupplier, shares, amount)
}

func (s *positionService) ReduceSupply(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, shares, amount decimal.Decimal) (*core.Position, error) {
	return s.reduce(ctx, tx, event, market, account, core.PositionSideSupplier, shares, amount)
}

func (s *positionService) AddBorrow(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, shares, amount decimal.Decimal) (*core.Position, error) {
	return s.add(ctx, tx, event, market, account, core.PositionSideBorrower, shares, amount)
}

func (s *positionService) ReduceBorrow(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, shares, amount decimal.Decimal) (*core.Position, error) {
	return s.reduce(ctx, tx, event, market, account, core.PositionSideBorrower, shares, amount)
}

func (s *positionService) AddCollateral(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, amount decimal.Decimal) (*core.Position, error) {
	return s.add(ctx, tx, event, market, account, core.PositionSideCollateral, decimal.Zero, amount)
}

func (s *positionService) ReduceCollateral(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, amount decimal.Decimal) (*core.Position, error) {
	return s.reduce(ctx, tx, event, market, account, core.PositionSideCollateral, decimal.Zero, amount)
}

func (s *positionService) Active(ctx context.Context, account string, marketID string, side core.PositionSide) (*core.Position, error) {
	counterKey := id.Composite(account, marketID, string(side))
	counter, err := s.positionStore.FindCounter(ctx, counterKey)
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	position, err := s.positionStore.Find(ctx, id.Versioned(counterKey, counter.NextInstance))
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if position.Closed {
		return nil, nil
	}

	return position, nil
}

func (s *positionService) add(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, side core.PositionSide, shares, amount decimal.Decimal) (*core.Position, error) {
	counter, err := s.counter(ctx, tx, account.Address, market.MarketID, side)
	if err != nil {
		return nil, err
	}

	positionID := id.Versioned(counter.CounterKey, counter.NextInstance)
	position, err := s.positionStore.Find(ctx, positionID)
	opened := false
	if gorm.IsRecordNotFoundError(err) {
		position = &core.Position{
			PositionID:   positionID,
			AccountID:    account.Address,
			MarketID:     market.MarketID,
			Side:         side,
			InstanceNo:   counter.NextInstance,
			IsCollateral: side == core.PositionSideCollateral,
			OpenedAt:     event.Timestamp,
			OpenedBlock:  event.BlockNumber,
			OpenedTxHash: event.TxHash,
		}
		opened = true
	} else if err != nil {
		return nil, err
	}

	position.Shares = position.Shares.Add(shares)
	position.Principal = position.Principal.Add(amount)
	s.refreshBalance(position, market, amount)
	s.countAction(position, event.Action, true)

	if opened {
		if err := s.positionStore.Save(ctx, tx, position); err != nil {
			return nil, err
		}
		s.countOpen(market, account, side)
		if err := s.accountStore.Update(ctx, tx, account); err != nil {
			return nil, err
		}
	} else {
		if err := s.positionStore.Update(ctx, tx, position); err != nil {
			return nil, err
		}
	}

	if err := s.finish(ctx, tx, event, market, position, counter); err != nil {
		return nil, err
	}

	return position, nil
}

func (s *positionService) reduce(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, account *core.Account, side core.PositionSide, shares, amount decimal.Decimal) (*core.Position, error) {
	counterKey := id.Composite(account.Address, market.MarketID, string(side))
	counter, err := s.positionStore.FindCounter(ctx, counterKey)
	if gorm.IsRecordNotFoundError(err) {
		return nil, core.ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}

	position, err := s.positionStore.Find(ctx, id.Versioned(counterKey, counter.NextInstance))
	if gorm.IsRecordNotFoundError(err) {
		return nil, core.ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}
	if position.Closed {
		return nil, core.ErrPositionNotFound
	}

	if side == core.PositionSideCollateral {
		if amount.GreaterThan(position.Balance) {
			return nil, core.ErrInsufficientCollateral
		}
	} else if shares.GreaterThan(position.Shares) {
		return nil, core.ErrInsufficientShares
	}

	position.Shares = position.Shares.Sub(shares)
	position.Principal = position.Principal.Sub(amount)
	s.refreshBalance(position, market, amount.Neg())
	s.countAction(position, event.Action, false)

	drained := position.Shares.IsZero()
	if side == core.PositionSideCollateral {
		drained = position.Balance.IsZero()
	}
	if drained {
		position.Balance = decimal.Zero
		position.Closed = true
		position.ClosedAt.Time = event.Timestamp
		position.ClosedAt.Valid = true
		position.ClosedBlock = event.BlockNumber
		position.ClosedTxHash = event.TxHash

		counter.NextInstance++

		market.OpenPositionCount--
		market.ClosedPositionCount++
		account.OpenPositionCount--
		account.ClosedPositionCount++
		if err := s.accountStore.Update(ctx, tx, account); err != nil {
			return nil, err
		}
	}

	if err := s.positionStore.Update(ctx, tx, position); err != nil {
		return nil, err
	}

	if err := s.finish(ctx, tx, event, market, position, counter); err != nil {
		return nil, err
	}

	return position, nil
}

// counter loads the instance counter for the triple, creating it on
// first touch.
func (s *positionService) counter(ctx context.Context, tx *db.DB, account, marketID string, side core.PositionSide) (*core.PositionCounter, error) {
	counterKey := id.Composite(account, marketID, string(side))
	counter, err := s.positionStore.FindCounter(ctx, counterKey)
	if gorm.IsRecordNotFoundError(err) {
		counter = &core.PositionCounter{CounterKey: counterKey}
		if err := s.positionStore.SaveCounter(ctx, tx, counter); err != nil {
			return nil, err
		}
		return counter, nil
	}
	if err != nil {
		return nil, err
	}

	return counter, nil
}

// refreshBalance rederives the claim from shares and pool totals.
// Supply claims round down, borrow obligations round up, collateral is
// tracked directly in assets.
func (s *positionService) refreshBalance(position *core.Position, market *core.Market, amountDelta decimal.Decimal) {
	switch position.Side {
	case core.PositionSideSupplier:
		position.Balance = sharemath.ToAssetsDown(position.Shares, market.TotalSupply, market.TotalSupplyShares)
	case core.PositionSideBorrower:
		position.Balance = sharemath.ToAssetsUp(position.Shares, market.TotalBorrow, market.TotalBorrowShares)
	case core.PositionSideCollateral:
		position.Balance = position.Balance.Add(amountDelta)
	}
}

func (s *positionService) countAction(position *core.Position, action core.ActionType, adding bool) {
	switch action {
	case core.ActionTypeSupply, core.ActionTypeSupplyCollateral:
		position.DepositCount++
	case core.ActionTypeWithdraw, core.ActionTypeWithdrawCollateral:
		position.WithdrawCount++
	case core.ActionTypeBorrow:
		position.BorrowCount++
	case core.ActionTypeRepay:
		position.RepayCount++
	case core.ActionTypeLiquidate:
		position.LiquidationCount++
	case core.ActionTypeTransfer:
		if adding {
			position.ReceivedCount++
		} else {
			position.TransferredCount++
		}
	}
}

func (s *positionService) countOpen(market *core.Market, account *core.Account, side core.PositionSide) {
	market.PositionCount++
	market.OpenPositionCount++
	switch side {
	case core.PositionSideSupplier:
		market.LendingPositionCount++
	case core.PositionSideBorrower:
		market.BorrowingPositionCount++
	case core.PositionSideCollateral:
		market.CollateralPositionCount++
	}

	account.PositionCount++
	account.OpenPositionCount++
}

// finish stamps the shared post-write bookkeeping: position snapshot,
// daily-active marking and the counter row.
func (s *positionService) finish(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, position *core.Position, counter *core.PositionCounter) error {
	snapshot := &core.PositionSnapshot{
		SnapshotID:  id.Composite(position.PositionID, event.TxHash, strconv.Itoa(event.LogIndex)),
		PositionID:  position.PositionID,
		AccountID:   position.AccountID,
		Balance:     position.Balance,
		Shares:      position.Shares,
		Principal:   position.Principal,
		BlockNumber: event.BlockNumber,
		LogIndex:    event.LogIndex,
		TxHash:      event.TxHash,
		Timestamp:   event.Timestamp,
	}
	switch position.Side {
	case core.PositionSideCollateral:
		snapshot.BalanceUSD = market.CollateralAmountUSD(position.Balance)
	default:
		snapshot.BalanceUSD = market.LoanAmountUSD(position.Balance)
	}
	if err := s.positionStore.CreateSnapshot(ctx, tx, snapshot); err != nil {
		return err
	}

	if position.Side != core.PositionSideCollateral {
		lastDay := counter.LastActiveAt.Unix() / 86400
		if counter.LastActiveAt.IsZero() || lastDay != event.DayBucket() {
			if err := s.snapshotz.AddDailyActivePosition(ctx, tx, event, market, position.Side); err != nil {
				return err
			}
		}
	}
	counter.LastActiveAt = event.Timestamp

	return s.positionStore.UpdateCounter(ctx, tx, counter)
}
