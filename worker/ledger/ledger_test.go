package ledger

import (
	"context"
	"testing"
	"time"

	"lendledger/core"
	"lendledger/pkg/id"
	"lendledger/pkg/sharemath"
	marketservice "lendledger/service/market"
	positionservice "lendledger/service/position"
	snapshotservice "lendledger/service/snapshot"
	transactionservice "lendledger/service/transaction"
	"lendledger/store/mem"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	prices map[string]decimal.Decimal
}

func (f *fakeOracle) GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	return f.prices[assetID], nil
}

func (f *fakeOracle) PullPrices(ctx context.Context) error {
	return nil
}

type testEnv struct {
	ledger       *Ledger
	markets      *mem.Markets
	protocols    *mem.Protocols
	accounts     *mem.Accounts
	positions    *mem.Positions
	transactions *mem.Transactions
	snapshots    *mem.Snapshots
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	markets := mem.NewMarkets()
	protocols := mem.NewProtocols()
	accounts := mem.NewAccounts()
	positions := mem.NewPositions()
	transactions := mem.NewTransactions()
	snapshots := mem.NewSnapshots()
	prices := mem.NewPrices()
	rateStore := mem.NewRates()
	events := mem.NewEvents()

	oraclez := &fakeOracle{prices: map[string]decimal.Decimal{}}
	snapshotz := snapshotservice.New(snapshots, protocols, rateStore)
	positionz := positionservice.New(positions, accounts, snapshotz)
	transactionz := transactionservice.New(transactions, accounts, snapshotz)
	marketz := marketservice.New(markets, protocols, rateStore, snapshotz, oraclez)

	system := &core.Config{
		App: core.App{
			ProtocolName: "lendledger-test",
			FeeRecipient: "fee-recipient",
		},
	}

	w := New(nil, system, nil, events, markets, accounts, protocols, prices, positionz, transactionz, marketz)
	return &testEnv{
		ledger:       w,
		markets:      markets,
		protocols:    protocols,
		accounts:     accounts,
		positions:    positions,
		transactions: transactions,
		snapshots:    snapshots,
	}
}

var testBase = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func (env *testEnv) apply(t *testing.T, events ...*core.Event) {
	t.Helper()

	ctx := context.Background()
	for _, event := range events {
		require.NoError(t, env.ledger.handleEvent(ctx, nil, event))
	}
}

func (env *testEnv) bootstrapMarket(t *testing.T) {
	t.Helper()

	env.apply(t,
		&core.Event{
			ID:          1,
			Action:      core.ActionTypeCreateMarket,
			MarketID:    "m1",
			TxHash:      "tx-genesis",
			BlockNumber: 100,
			Params:      []byte(`{"loan_asset_id":"loan","collateral_asset_id":"col","loan_decimals":6,"collateral_decimals":6,"lltv":"0.8"}`),
			Timestamp:   testBase,
		},
		&core.Event{
			ID:          2,
			Action:      core.ActionTypeUpdatePrice,
			MarketID:    "m1",
			AssetID:     "loan",
			Price:       decimal.NewFromInt(1),
			TxHash:      "tx-price-loan",
			BlockNumber: 100,
			Timestamp:   testBase,
		},
		&core.Event{
			ID:          3,
			Action:      core.ActionTypeUpdatePrice,
			MarketID:    "m1",
			AssetID:     "col",
			Price:       decimal.NewFromInt(2),
			TxHash:      "tx-price-col",
			BlockNumber: 100,
			Timestamp:   testBase,
		},
	)
}

func TestLedgerLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrapMarket(t)

	supplyAmount := decimal.New(1, 6)
	supplyShares := sharemath.ToSharesDown(supplyAmount, decimal.Zero, decimal.Zero)
	borrowAmount := decimal.New(4, 5)
	borrowShares := sharemath.ToSharesDown(borrowAmount, decimal.Zero, decimal.Zero)
	collateralAmount := decimal.New(5, 5)

	env.apply(t,
		&core.Event{ID: 4, Action: core.ActionTypeSupply, MarketID: "m1", AccountID: "alice", Amount: supplyAmount, Shares: supplyShares, TxHash: "tx-1", BlockNumber: 101, Timestamp: testBase.Add(time.Minute)},
		&core.Event{ID: 5, Action: core.ActionTypeSupplyCollateral, MarketID: "m1", AccountID: "bob", Amount: collateralAmount, TxHash: "tx-2", BlockNumber: 102, Timestamp: testBase.Add(2 * time.Minute)},
		&core.Event{ID: 6, Action: core.ActionTypeBorrow, MarketID: "m1", AccountID: "bob", Amount: borrowAmount, Shares: borrowShares, TxHash: "tx-3", BlockNumber: 103, Timestamp: testBase.Add(3 * time.Minute)},
	)

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalSupply.Equal(supplyAmount))
	require.True(t, market.TotalBorrow.Equal(borrowAmount))
	require.True(t, market.TotalCollateral.Equal(collateralAmount))
	require.EqualValues(t, 3, market.OpenPositionCount)

	// deposit 1.0 usd of loan plus 1.0 usd of collateral, borrow 0.4 usd
	require.True(t, market.CumulativeDepositUSD.Equal(decimal.NewFromInt(2)), market.CumulativeDepositUSD.String())
	require.True(t, market.CumulativeBorrowUSD.Equal(decimal.NewFromFloat(0.4)), market.CumulativeBorrowUSD.String())
	require.True(t, market.TotalValueLockedUSD.Equal(decimal.NewFromFloat(1.6)), market.TotalValueLockedUSD.String())

	repayAmount := sharemath.ToAssetsUp(borrowShares, market.TotalBorrow, market.TotalBorrowShares)
	require.True(t, repayAmount.Equal(borrowAmount))

	env.apply(t,
		&core.Event{ID: 7, Action: core.ActionTypeRepay, MarketID: "m1", AccountID: "bob", Amount: repayAmount, Shares: borrowShares, TxHash: "tx-4", BlockNumber: 104, Timestamp: testBase.Add(4 * time.Minute)},
		&core.Event{ID: 8, Action: core.ActionTypeWithdraw, MarketID: "m1", AccountID: "alice", Amount: supplyAmount, Shares: supplyShares, TxHash: "tx-5", BlockNumber: 105, Timestamp: testBase.Add(5 * time.Minute)},
		&core.Event{ID: 9, Action: core.ActionTypeWithdrawCollateral, MarketID: "m1", AccountID: "bob", Amount: collateralAmount, TxHash: "tx-6", BlockNumber: 106, Timestamp: testBase.Add(6 * time.Minute)},
	)

	market, err = env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalSupply.IsZero())
	require.True(t, market.TotalSupplyShares.IsZero())
	require.True(t, market.TotalBorrow.IsZero())
	require.True(t, market.TotalBorrowShares.IsZero())
	require.True(t, market.TotalCollateral.IsZero())
	require.True(t, market.TotalValueLockedUSD.IsZero())
	require.EqualValues(t, 3, market.PositionCount)
	require.EqualValues(t, 0, market.OpenPositionCount)
	require.EqualValues(t, 3, market.ClosedPositionCount)
	require.EqualValues(t, 6, market.TransactionCount)

	protocol, err := env.protocols.Get(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, protocol.TotalPoolCount)
	require.EqualValues(t, 3, protocol.CumulativePositionCount)
	require.EqualValues(t, 0, protocol.OpenPositionCount)
	require.EqualValues(t, 2, protocol.CumulativeUniqueUsers)
	require.EqualValues(t, 2, protocol.CumulativeUniqueDepositors)
	require.EqualValues(t, 1, protocol.CumulativeUniqueBorrowers)
	require.EqualValues(t, 2, protocol.DepositCount)
	require.EqualValues(t, 2, protocol.WithdrawCount)
	require.True(t, protocol.TotalValueLockedUSD.IsZero())

	// every supplier position instance starts at zero
	position, err := env.positions.Find(ctx, id.Versioned(id.Composite("alice", "m1", string(core.PositionSideSupplier)), 0))
	require.NoError(t, err)
	require.True(t, position.Closed)
	require.True(t, position.Shares.IsZero())
	require.True(t, position.Balance.IsZero())
}

func TestLedgerAccrueInterest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrapMarket(t)

	supplyAmount := decimal.New(1, 6)
	supplyShares := sharemath.ToSharesDown(supplyAmount, decimal.Zero, decimal.Zero)
	borrowAmount := decimal.New(4, 5)
	borrowShares := sharemath.ToSharesDown(borrowAmount, decimal.Zero, decimal.Zero)

	env.apply(t,
		&core.Event{ID: 4, Action: core.ActionTypeSetFee, MarketID: "m1", Fee: decimal.NewFromFloat(0.1), TxHash: "tx-fee", BlockNumber: 101, Timestamp: testBase},
		&core.Event{ID: 5, Action: core.ActionTypeSupply, MarketID: "m1", AccountID: "alice", Amount: supplyAmount, Shares: supplyShares, TxHash: "tx-1", BlockNumber: 102, Timestamp: testBase},
		&core.Event{ID: 6, Action: core.ActionTypeSupplyCollateral, MarketID: "m1", AccountID: "bob", Amount: decimal.New(5, 5), TxHash: "tx-2", BlockNumber: 103, Timestamp: testBase},
		&core.Event{ID: 7, Action: core.ActionTypeBorrow, MarketID: "m1", AccountID: "bob", Amount: borrowAmount, Shares: borrowShares, TxHash: "tx-3", BlockNumber: 104, Timestamp: testBase},
	)

	interest := decimal.NewFromInt(1000)
	feeAssets := interest.Mul(decimal.NewFromFloat(0.1))
	feeShares := sharemath.ToSharesDown(feeAssets, supplyAmount.Add(interest).Sub(feeAssets), supplyShares)

	env.apply(t, &core.Event{
		ID:          8,
		Action:      core.ActionTypeAccrueInterest,
		MarketID:    "m1",
		Interest:    interest,
		FeeShares:   feeShares,
		TxHash:      "tx-accrue",
		BlockNumber: 105,
		Timestamp:   testBase.Add(time.Hour),
	})

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalSupply.Equal(supplyAmount.Add(interest)))
	require.True(t, market.TotalBorrow.Equal(borrowAmount.Add(interest)))
	require.True(t, market.TotalSupplyShares.Equal(supplyShares.Add(feeShares)))
	require.True(t, market.Interest.Equal(interest))

	// 1000 loan units at price 1 with 6 decimals is 0.001 usd
	require.True(t, market.CumulativeTotalRevenueUSD.Equal(decimal.NewFromFloat(0.001)), market.CumulativeTotalRevenueUSD.String())
	require.True(t, market.CumulativeProtocolSideRevenueUSD.Equal(decimal.NewFromFloat(0.0001)), market.CumulativeProtocolSideRevenueUSD.String())
	require.True(t, market.CumulativeSupplySideRevenueUSD.Equal(decimal.NewFromFloat(0.0009)), market.CumulativeSupplySideRevenueUSD.String())
	require.True(t, market.BorrowRate.IsPositive())
	require.True(t, market.SupplyRate.IsPositive())
	require.True(t, market.UtilizationRate.IsPositive())

	protocol, err := env.protocols.Get(ctx)
	require.NoError(t, err)
	require.True(t, protocol.CumulativeTotalRevenueUSD.Equal(decimal.NewFromFloat(0.001)))

	// minted fee shares land in the fee recipient's supply position
	position, err := env.positions.Find(ctx, id.Versioned(id.Composite("fee-recipient", "m1", string(core.PositionSideSupplier)), 0))
	require.NoError(t, err)
	require.True(t, position.Shares.Equal(feeShares))
	require.False(t, position.Closed)
}

func TestLedgerLiquidationWithBadDebt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrapMarket(t)

	supplyAmount := decimal.New(1, 6)
	supplyShares := sharemath.ToSharesDown(supplyAmount, decimal.Zero, decimal.Zero)
	borrowAmount := decimal.New(4, 5)
	borrowShares := sharemath.ToSharesDown(borrowAmount, decimal.Zero, decimal.Zero)
	collateralAmount := decimal.New(5, 5)

	env.apply(t,
		&core.Event{ID: 4, Action: core.ActionTypeSupply, MarketID: "m1", AccountID: "alice", Amount: supplyAmount, Shares: supplyShares, TxHash: "tx-1", BlockNumber: 101, Timestamp: testBase},
		&core.Event{ID: 5, Action: core.ActionTypeSupplyCollateral, MarketID: "m1", AccountID: "bob", Amount: collateralAmount, TxHash: "tx-2", BlockNumber: 102, Timestamp: testBase},
		&core.Event{ID: 6, Action: core.ActionTypeBorrow, MarketID: "m1", AccountID: "bob", Amount: borrowAmount, Shares: borrowShares, TxHash: "tx-3", BlockNumber: 103, Timestamp: testBase},
	)

	repaidAssets := decimal.New(3, 5)
	repaidShares := sharemath.ToSharesDown(repaidAssets, decimal.Zero, decimal.Zero)
	badDebtShares := borrowShares.Sub(repaidShares)
	badDebtAssets := borrowAmount.Sub(repaidAssets)

	env.apply(t, &core.Event{
		ID:            7,
		Action:        core.ActionTypeLiquidate,
		MarketID:      "m1",
		AccountID:     "bob",
		CallerID:      "carol",
		SeizedAssets:  collateralAmount,
		RepaidAssets:  repaidAssets,
		RepaidShares:  repaidShares,
		BadDebtAssets: badDebtAssets,
		BadDebtShares: badDebtShares,
		TxHash:        "tx-liq",
		BlockNumber:   104,
		Timestamp:     testBase.Add(time.Hour),
	})

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalBorrow.IsZero())
	require.True(t, market.TotalBorrowShares.IsZero())
	require.True(t, market.TotalCollateral.IsZero())
	// the shortfall is socialized across suppliers
	require.True(t, market.TotalSupply.Equal(supplyAmount.Sub(badDebtAssets)))
	require.True(t, market.TotalSupplyShares.Equal(supplyShares))
	require.EqualValues(t, 1, market.LiquidationCount)
	// seized collateral: 500000 units at price 2 with 6 decimals
	require.True(t, market.CumulativeLiquidateUSD.Equal(decimal.NewFromInt(1)), market.CumulativeLiquidateUSD.String())

	// both borrower side positions are closed
	borrowPos, err := env.positions.Find(ctx, id.Versioned(id.Composite("bob", "m1", string(core.PositionSideBorrower)), 0))
	require.NoError(t, err)
	require.True(t, borrowPos.Closed)
	collateralPos, err := env.positions.Find(ctx, id.Versioned(id.Composite("bob", "m1", string(core.PositionSideCollateral)), 0))
	require.NoError(t, err)
	require.True(t, collateralPos.Closed)

	badDebts, err := env.transactions.ListBadDebts(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, badDebts, 1)
	require.True(t, badDebts[0].BadDebt.Equal(badDebtAssets))
	require.True(t, badDebts[0].BadDebtUSD.Equal(decimal.NewFromFloat(0.1)), badDebts[0].BadDebtUSD.String())

	carol, err := env.accounts.Find(ctx, "carol")
	require.NoError(t, err)
	require.EqualValues(t, 1, carol.LiquidationCount)
	bob, err := env.accounts.Find(ctx, "bob")
	require.NoError(t, err)
	require.EqualValues(t, 1, bob.LiquidateCount)

	protocol, err := env.protocols.Get(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, protocol.CumulativeUniqueLiquidators)
	require.EqualValues(t, 1, protocol.CumulativeUniqueLiquidatees)
}

func TestLedgerTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrapMarket(t)

	supplyAmount := decimal.New(1, 6)
	supplyShares := sharemath.ToSharesDown(supplyAmount, decimal.Zero, decimal.Zero)

	env.apply(t,
		&core.Event{ID: 4, Action: core.ActionTypeSupply, MarketID: "m1", AccountID: "alice", Amount: supplyAmount, Shares: supplyShares, TxHash: "tx-1", BlockNumber: 101, Timestamp: testBase},
		&core.Event{ID: 5, Action: core.ActionTypeTransfer, MarketID: "m1", AccountID: "alice", CallerID: "bob", Shares: supplyShares, TxHash: "tx-2", BlockNumber: 102, Timestamp: testBase.Add(time.Minute)},
	)

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	// pool totals are untouched by transfers
	require.True(t, market.TotalSupply.Equal(supplyAmount))
	require.True(t, market.TotalSupplyShares.Equal(supplyShares))
	require.EqualValues(t, 1, market.TransferCount)
	require.True(t, market.CumulativeTransferUSD.Equal(decimal.NewFromInt(1)), market.CumulativeTransferUSD.String())

	sender, err := env.positions.Find(ctx, id.Versioned(id.Composite("alice", "m1", string(core.PositionSideSupplier)), 0))
	require.NoError(t, err)
	require.True(t, sender.Closed)
	require.EqualValues(t, 1, sender.TransferredCount)

	receiver, err := env.positions.Find(ctx, id.Versioned(id.Composite("bob", "m1", string(core.PositionSideSupplier)), 0))
	require.NoError(t, err)
	require.False(t, receiver.Closed)
	require.True(t, receiver.Shares.Equal(supplyShares))
	require.True(t, receiver.Balance.Equal(supplyAmount))
	require.EqualValues(t, 1, receiver.ReceivedCount)

	alice, err := env.accounts.Find(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, alice.TransferredCount)
	bob, err := env.accounts.Find(ctx, "bob")
	require.NoError(t, err)
	require.EqualValues(t, 1, bob.ReceivedCount)
}

func TestLedgerFlashloan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrapMarket(t)

	env.apply(t, &core.Event{
		ID:          4,
		Action:      core.ActionTypeFlashloan,
		MarketID:    "m1",
		AccountID:   "alice",
		AssetID:     "loan",
		Amount:      decimal.New(2, 6),
		TxHash:      "tx-flash",
		BlockNumber: 101,
		Timestamp:   testBase,
	})

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalSupply.IsZero())
	require.EqualValues(t, 1, market.FlashloanCount)
	require.True(t, market.CumulativeFlashloanUSD.Equal(decimal.NewFromInt(2)), market.CumulativeFlashloanUSD.String())

	alice, err := env.accounts.Find(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 1, alice.FlashloanCount)
}

func TestLedgerSkipsUnknownMarket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.apply(t, &core.Event{
		ID:          1,
		Action:      core.ActionTypeSupply,
		MarketID:    "missing",
		AccountID:   "alice",
		Amount:      decimal.New(1, 6),
		Shares:      decimal.New(1, 12),
		TxHash:      "tx-1",
		BlockNumber: 101,
		Timestamp:   testBase,
	})

	_, err := env.markets.Find(ctx, "missing")
	require.Error(t, err)
}

func TestLedgerCreateMarketIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.bootstrapMarket(t)

	// a replayed creation leaves the existing market untouched
	env.apply(t, &core.Event{
		ID:          10,
		Action:      core.ActionTypeCreateMarket,
		MarketID:    "m1",
		TxHash:      "tx-genesis",
		BlockNumber: 100,
		Params:      []byte(`{"loan_asset_id":"other","collateral_asset_id":"other","loan_decimals":2,"collateral_decimals":2}`),
		Timestamp:   testBase,
	})

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "loan", market.LoanAssetID)
	require.EqualValues(t, 6, market.LoanDecimals)

	protocol, err := env.protocols.Get(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, protocol.TotalPoolCount)
}
