package cmd

import (
	"lendledger/core"
	accountstore "lendledger/store/account"
	eventstore "lendledger/store/event"
	marketstore "lendledger/store/market"
	positionstore "lendledger/store/position"
	pricestore "lendledger/store/price"
	protocolstore "lendledger/store/protocol"
	ratestore "lendledger/store/rate"
	snapshotstore "lendledger/store/snapshot"
	transactionstore "lendledger/store/transaction"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideEventStore(db *db.DB) core.EventStore {
	return eventstore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return marketstore.New(db)
}

func provideProtocolStore(db *db.DB) core.IProtocolStore {
	return protocolstore.New(db)
}

func provideAccountStore(db *db.DB) core.IAccountStore {
	return accountstore.New(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return positionstore.New(db)
}

func provideTransactionStore(db *db.DB) core.ITransactionStore {
	return transactionstore.New(db)
}

func provideSnapshotStore(db *db.DB) core.ISnapshotStore {
	return snapshotstore.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return pricestore.New(db)
}

func provideRateStore(db *db.DB) core.IRateStore {
	return ratestore.New(db)
}
