package cmd

import (
	"lendledger/core"
	marketservice "lendledger/service/market"
	oracle "lendledger/service/oracle"
	positionservice "lendledger/service/position"
	snapshotservice "lendledger/service/snapshot"
	transactionservice "lendledger/service/transaction"

	"github.com/fox-one/pkg/store/db"
)

func providePriceOracleService(db *db.DB, priceStore core.IPriceStore) core.IPriceOracleService {
	return oracle.New(&cfg, db, priceStore)
}

func provideSnapshotService(
	snapshotStore core.ISnapshotStore,
	protocolStore core.IProtocolStore,
	rateStore core.IRateStore,
) core.ISnapshotService {
	return snapshotservice.New(snapshotStore, protocolStore, rateStore)
}

func providePositionService(
	positionStore core.IPositionStore,
	accountStore core.IAccountStore,
	snapshotz core.ISnapshotService,
) core.IPositionService {
	return positionservice.New(positionStore, accountStore, snapshotz)
}

func provideTransactionService(
	transactionStore core.ITransactionStore,
	accountStore core.IAccountStore,
	snapshotz core.ISnapshotService,
) core.ITransactionService {
	return transactionservice.New(transactionStore, accountStore, snapshotz)
}

func provideMarketService(
	marketStore core.IMarketStore,
	protocolStore core.IProtocolStore,
	rateStore core.IRateStore,
	snapshotz core.ISnapshotService,
	oraclez core.IPriceOracleService,
) core.IMarketService {
	return marketservice.New(marketStore, protocolStore, rateStore, snapshotz, oraclez)
}
