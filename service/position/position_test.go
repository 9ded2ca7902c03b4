package position

import (
	"context"
	"testing"
	"time"

	"lendledger/core"
	"lendledger/pkg/id"
	"lendledger/pkg/sharemath"
	snapshotservice "lendledger/service/snapshot"
	"lendledger/store/mem"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (core.IPositionService, *mem.Positions, *mem.Accounts) {
	t.Helper()

	positions := mem.NewPositions()
	accounts := mem.NewAccounts()
	snapshotz := snapshotservice.New(mem.NewSnapshots(), mem.NewProtocols(), mem.NewRates())
	return New(positions, accounts, snapshotz), positions, accounts
}

func testMarket() *core.Market {
	return &core.Market{
		MarketID:           "m1",
		LoanAssetID:        "loan",
		CollateralAssetID:  "col",
		LoanDecimals:       6,
		CollateralDecimals: 6,
		LoanPriceUSD:       decimal.NewFromInt(1),
		CollateralPriceUSD: decimal.NewFromInt(2),
	}
}

func supplyEvent(txHash string, ts time.Time) *core.Event {
	return &core.Event{
		Action:    core.ActionTypeSupply,
		MarketID:  "m1",
		AccountID: "alice",
		TxHash:    txHash,
		Timestamp: ts,
	}
}

func TestPositionLifecycle(t *testing.T) {
	service, positions, _ := newTestService(t)
	ctx := context.Background()
	market := testMarket()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	account := &core.Account{Address: "alice"}
	shares := decimal.New(1, 12)
	amount := decimal.New(1, 6)

	market.TotalSupply = amount
	market.TotalSupplyShares = shares

	position, err := service.AddSupply(ctx, nil, supplyEvent("tx-1", ts), market, account, shares, amount)
	require.NoError(t, err)
	require.EqualValues(t, 0, position.InstanceNo)
	require.True(t, position.Shares.Equal(shares))
	require.True(t, position.Balance.Equal(amount))
	require.EqualValues(t, 1, market.OpenPositionCount)
	require.EqualValues(t, 1, account.OpenPositionCount)

	active, err := service.Active(ctx, "alice", "m1", core.PositionSideSupplier)
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, position.PositionID, active.PositionID)

	withdrawEvent := supplyEvent("tx-2", ts.Add(time.Minute))
	withdrawEvent.Action = core.ActionTypeWithdraw
	market.TotalSupply = decimal.Zero
	market.TotalSupplyShares = decimal.Zero
	position, err = service.ReduceSupply(ctx, nil, withdrawEvent, market, account, shares, amount)
	require.NoError(t, err)
	require.True(t, position.Closed)
	require.True(t, position.Balance.IsZero())
	require.EqualValues(t, 0, market.OpenPositionCount)
	require.EqualValues(t, 1, market.ClosedPositionCount)
	require.EqualValues(t, 1, account.ClosedPositionCount)

	active, err = service.Active(ctx, "alice", "m1", core.PositionSideSupplier)
	require.NoError(t, err)
	require.Nil(t, active)

	// the next touch opens a fresh instance, the closed one stays history
	market.TotalSupply = amount
	market.TotalSupplyShares = shares
	reopened, err := service.AddSupply(ctx, nil, supplyEvent("tx-3", ts.Add(2*time.Minute)), market, account, shares, amount)
	require.NoError(t, err)
	require.EqualValues(t, 1, reopened.InstanceNo)
	require.NotEqual(t, position.PositionID, reopened.PositionID)
	require.EqualValues(t, 2, market.PositionCount)

	closed, err := positions.Find(ctx, id.Versioned(id.Composite("alice", "m1", string(core.PositionSideSupplier)), 0))
	require.NoError(t, err)
	require.True(t, closed.Closed)
}

func TestReduceMissingPosition(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	market := testMarket()
	account := &core.Account{Address: "alice"}

	event := supplyEvent("tx-1", time.Now())
	event.Action = core.ActionTypeWithdraw
	_, err := service.ReduceSupply(ctx, nil, event, market, account, decimal.New(1, 6), decimal.New(1, 0))
	require.ErrorIs(t, err, core.ErrPositionNotFound)
}

func TestReduceInsufficientShares(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	market := testMarket()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	account := &core.Account{Address: "alice"}

	shares := decimal.New(1, 12)
	amount := decimal.New(1, 6)
	market.TotalSupply = amount
	market.TotalSupplyShares = shares
	_, err := service.AddSupply(ctx, nil, supplyEvent("tx-1", ts), market, account, shares, amount)
	require.NoError(t, err)

	event := supplyEvent("tx-2", ts.Add(time.Minute))
	event.Action = core.ActionTypeWithdraw
	_, err = service.ReduceSupply(ctx, nil, event, market, account, shares.Add(decimal.New(1, 0)), amount)
	require.ErrorIs(t, err, core.ErrInsufficientShares)
}

func TestReduceInsufficientCollateral(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	market := testMarket()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	account := &core.Account{Address: "bob"}

	amount := decimal.New(5, 5)
	event := supplyEvent("tx-1", ts)
	event.AccountID = "bob"
	event.Action = core.ActionTypeSupplyCollateral
	_, err := service.AddCollateral(ctx, nil, event, market, account, amount)
	require.NoError(t, err)

	withdraw := supplyEvent("tx-2", ts.Add(time.Minute))
	withdraw.AccountID = "bob"
	withdraw.Action = core.ActionTypeWithdrawCollateral
	_, err = service.ReduceCollateral(ctx, nil, withdraw, market, account, amount.Add(decimal.New(1, 0)))
	require.ErrorIs(t, err, core.ErrInsufficientCollateral)
}

func TestBorrowBalanceRoundsUp(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	market := testMarket()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	account := &core.Account{Address: "bob"}

	// pool where one share unit is not an exact asset amount
	market.TotalBorrow = decimal.NewFromInt(1000003)
	market.TotalBorrowShares = decimal.New(1, 12)

	event := supplyEvent("tx-1", ts)
	event.AccountID = "bob"
	event.Action = core.ActionTypeBorrow
	shares := decimal.New(3, 11)
	position, err := service.AddBorrow(ctx, nil, event, market, account, shares, decimal.NewFromInt(300000))
	require.NoError(t, err)

	up := sharemath.ToAssetsUp(shares, market.TotalBorrow, market.TotalBorrowShares)
	down := sharemath.ToAssetsDown(shares, market.TotalBorrow, market.TotalBorrowShares)
	require.True(t, position.Balance.Equal(up))
	require.True(t, position.Balance.GreaterThan(down), "borrow balance must round against the borrower")
}
