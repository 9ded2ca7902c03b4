package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lendledger/core"
	"lendledger/pkg/id"
	"lendledger/pkg/sharemath"
	marketservice "lendledger/service/market"
	positionservice "lendledger/service/position"
	snapshotservice "lendledger/service/snapshot"
	transactionservice "lendledger/service/transaction"
	accountstore "lendledger/store/account"
	eventstore "lendledger/store/event"
	marketstore "lendledger/store/market"
	"lendledger/store/mem"
	positionstore "lendledger/store/position"
	pricestore "lendledger/store/price"
	protocolstore "lendledger/store/protocol"
	ratestore "lendledger/store/rate"
	snapshotstore "lendledger/store/snapshot"
	transactionstore "lendledger/store/transaction"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// dbEnv wires the ledger against real sqlite backed stores, so every
// event runs through an actual transaction the way the worker does in
// production.
type dbEnv struct {
	ledger       *Ledger
	database     *db.DB
	properties   *mem.Properties
	events       core.EventStore
	markets      core.IMarketStore
	protocols    core.IProtocolStore
	positions    core.IPositionService
	snapshots    core.ISnapshotStore
	transactions core.ITransactionStore
}

func newDBEnv(t *testing.T) *dbEnv {
	t.Helper()

	database, err := db.Open(db.Config{
		Dialect: "sqlite3",
		Host:    filepath.Join(t.TempDir(), "ledger.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.Migrate(database))

	properties := mem.NewProperties()
	events := eventstore.New(database)
	markets := marketstore.New(database)
	accounts := accountstore.New(database)
	protocols := protocolstore.New(database)
	positions := positionstore.New(database)
	prices := pricestore.New(database)
	rateStore := ratestore.New(database)
	snapshots := snapshotstore.New(database)
	transactions := transactionstore.New(database)

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

	w := New(database, system, properties, events, markets, accounts, protocols, prices, positionz, transactionz, marketz)
	return &dbEnv{
		ledger:       w,
		database:     database,
		properties:   properties,
		events:       events,
		markets:      markets,
		protocols:    protocols,
		positions:    positionz,
		snapshots:    snapshots,
		transactions: transactions,
	}
}

func (env *dbEnv) seed(t *testing.T, events ...*core.Event) {
	t.Helper()

	ctx := context.Background()
	for _, event := range events {
		require.NoError(t, env.events.Create(ctx, event))
	}
}

func (env *dbEnv) seedMarket(t *testing.T) {
	env.seed(t,
		&core.Event{
			Action:      core.ActionTypeCreateMarket,
			MarketID:    "m1",
			TxHash:      "tx-genesis",
			BlockNumber: 100,
			Params:      []byte(`{"loan_asset_id":"loan","collateral_asset_id":"col","loan_decimals":6,"collateral_decimals":6,"lltv":"0.8"}`),
			Timestamp:   testBase,
		},
		&core.Event{
			Action:      core.ActionTypeUpdatePrice,
			MarketID:    "m1",
			AssetID:     "loan",
			Price:       decimal.NewFromInt(1),
			TxHash:      "tx-price-loan",
			BlockNumber: 100,
			Timestamp:   testBase,
		},
		&core.Event{
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

func TestLedgerCommitsDailyCounters(t *testing.T) {
	env := newDBEnv(t)
	ctx := context.Background()

	supplyAmount := decimal.New(1, 6)
	supplyShares := sharemath.ToSharesDown(supplyAmount, decimal.Zero, decimal.Zero)

	env.seedMarket(t)
	env.seed(t, &core.Event{
		Action:      core.ActionTypeSupply,
		MarketID:    "m1",
		AccountID:   "alice",
		Amount:      supplyAmount,
		Shares:      supplyShares,
		TxHash:      "tx-1",
		BlockNumber: 101,
		Timestamp:   testBase.Add(time.Minute),
	})

	require.NoError(t, env.ledger.run(ctx))

	v, err := env.properties.Get(ctx, checkpointKey)
	require.NoError(t, err)
	require.EqualValues(t, 4, v.Int64())

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalSupply.Equal(supplyAmount))
	require.True(t, market.TotalValueLockedUSD.Equal(decimal.NewFromInt(1)), market.TotalValueLockedUSD.String())

	// the protocol row is seeded by migration and re-summed at event end
	protocol, err := env.protocols.Get(ctx)
	require.NoError(t, err)
	require.True(t, protocol.TotalValueLockedUSD.Equal(market.TotalValueLockedUSD), protocol.TotalValueLockedUSD.String())
	require.True(t, protocol.CumulativeDepositUSD.Equal(decimal.NewFromInt(1)), protocol.CumulativeDepositUSD.String())
	require.EqualValues(t, 1, protocol.OpenPositionCount)
	require.EqualValues(t, 1, protocol.CumulativeUniqueUsers)

	// every bucket counter the event touched must survive the commit
	day := testBase.Unix() / 86400
	daily, err := env.snapshots.FindMarketDaily(ctx, nil, id.Bucketed(id.Composite("m1", "d"), day))
	require.NoError(t, err)
	require.EqualValues(t, 1, daily.DailyDepositCount)
	require.EqualValues(t, 1, daily.DailyActiveUsers)
	require.EqualValues(t, 1, daily.DailyActiveDepositors)
	require.EqualValues(t, 1, daily.DailyActiveLendingPositionCount)
	require.True(t, daily.DailyDepositUSD.Equal(decimal.NewFromInt(1)), daily.DailyDepositUSD.String())

	usage, err := env.snapshots.FindUsageDaily(ctx, nil, id.Bucketed("usage-d", day))
	require.NoError(t, err)
	require.EqualValues(t, 1, usage.DailyTransactionCount)
	require.EqualValues(t, 1, usage.DailyDepositCount)
	require.EqualValues(t, 1, usage.DailyActiveUsers)
	require.EqualValues(t, 1, usage.DailyActivePositions)
	require.EqualValues(t, 1, usage.CumulativeUniqueUsers)

	hourly, err := env.snapshots.FindUsageHourly(ctx, nil, id.Bucketed("usage-h", testBase.Unix()/3600))
	require.NoError(t, err)
	require.EqualValues(t, 1, hourly.HourlyTransactionCount)
	require.EqualValues(t, 1, hourly.HourlyActiveUsers)

	// the financials row carries the post-rollup protocol state
	financials, err := env.snapshots.FindFinancialsDaily(ctx, nil, id.Bucketed("d", day))
	require.NoError(t, err)
	require.True(t, financials.TotalValueLockedUSD.Equal(protocol.TotalValueLockedUSD), financials.TotalValueLockedUSD.String())
	require.True(t, financials.DailyDepositUSD.Equal(decimal.NewFromInt(1)), financials.DailyDepositUSD.String())
}

func TestLedgerRunDropsStuckEvent(t *testing.T) {
	env := newDBEnv(t)
	ctx := context.Background()

	supplyAmount := decimal.New(1, 6)
	supplyShares := sharemath.ToSharesDown(supplyAmount, decimal.Zero, decimal.Zero)

	env.seedMarket(t)
	env.seed(t,
		// withdraw against a position that was never opened
		&core.Event{
			Action:      core.ActionTypeWithdraw,
			MarketID:    "m1",
			AccountID:   "alice",
			Amount:      supplyAmount,
			Shares:      supplyShares,
			TxHash:      "tx-bad",
			BlockNumber: 101,
			Timestamp:   testBase.Add(time.Minute),
		},
		&core.Event{
			Action:      core.ActionTypeSupply,
			MarketID:    "m1",
			AccountID:   "alice",
			Amount:      supplyAmount,
			Shares:      supplyShares,
			TxHash:      "tx-good",
			BlockNumber: 102,
			Timestamp:   testBase.Add(2 * time.Minute),
		},
	)

	require.NoError(t, env.ledger.run(ctx))

	// the checkpoint moved past the dropped event and the stream kept going
	v, err := env.properties.Get(ctx, checkpointKey)
	require.NoError(t, err)
	require.EqualValues(t, 5, v.Int64())

	position, err := env.positions.Active(ctx, "alice", "m1", core.PositionSideSupplier)
	require.NoError(t, err)
	require.NotNil(t, position)
	require.True(t, position.Shares.Equal(supplyShares))

	// the failed transaction rolled back without leaving a record
	_, err = env.transactions.Find(ctx, id.EventScoped("tx-bad", 0, int(core.ActionTypeWithdraw)))
	require.Error(t, err)

	market, err := env.markets.Find(ctx, "m1")
	require.NoError(t, err)
	require.True(t, market.TotalSupply.Equal(supplyAmount))
}
