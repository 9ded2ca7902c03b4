package transaction

import (
	"context"

	"lendledger/core"
	"lendledger/pkg/id"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type transactionService struct {
	transactionStore core.ITransactionStore
	accountStore     core.IAccountStore
	snapshotz        core.ISnapshotService
}

// New new transaction service
func New(
	transactionStore core.ITransactionStore,
	accountStore core.IAccountStore,
	snapshotz core.ISnapshotService,
) core.ITransactionService {
	return &transactionService{
		transactionStore: transactionStore,
		accountStore:     accountStore,
		snapshotz:        snapshotz,
	}
}

func (s *transactionService) CreateDeposit(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, position *core.Position, isCollateral bool) (*core.Transaction, error) {
	transaction := s.build(event, market, position)
	transaction.IsCollateral = isCollateral
	if isCollateral {
		transaction.AssetID = market.CollateralAssetID
		transaction.AmountUSD = market.CollateralAmountUSD(event.Amount)
	}

	market.CumulativeDepositUSD = market.CumulativeDepositUSD.Add(transaction.AmountUSD)
	market.DepositCount++
	protocol.CumulativeDepositUSD = protocol.CumulativeDepositUSD.Add(transaction.AmountUSD)
	protocol.DepositCount++

	return s.finish(ctx, tx, event, market, protocol, transaction, func(account *core.Account) {
		account.DepositCount++
	})
}

func (s *transactionService) CreateWithdraw(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, position *core.Position, isCollateral bool) (*core.Transaction, error) {
	transaction := s.build(event, market, position)
	transaction.IsCollateral = isCollateral
	if isCollateral {
		transaction.AssetID = market.CollateralAssetID
		transaction.AmountUSD = market.CollateralAmountUSD(event.Amount)
	}

	market.WithdrawCount++
	protocol.WithdrawCount++

	return s.finish(ctx, tx, event, market, protocol, transaction, func(account *core.Account) {
		account.WithdrawCount++
	})
}

func (s *transactionService) CreateBorrow(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, position *core.Position) (*core.Transaction, error) {
	transaction := s.build(event, market, position)

	market.CumulativeBorrowUSD = market.CumulativeBorrowUSD.Add(transaction.AmountUSD)
	market.BorrowCount++
	protocol.CumulativeBorrowUSD = protocol.CumulativeBorrowUSD.Add(transaction.AmountUSD)
	protocol.BorrowCount++

	return s.finish(ctx, tx, event, market, protocol, transaction, func(account *core.Account) {
		account.BorrowCount++
	})
}

func (s *transactionService) CreateRepay(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, position *core.Position) (*core.Transaction, error) {
	transaction := s.build(event, market, position)

	market.RepayCount++
	protocol.RepayCount++

	return s.finish(ctx, tx, event, market, protocol, transaction, func(account *core.Account) {
		account.RepayCount++
	})
}

func (s *transactionService) CreateLiquidate(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, borrowPosition, collateralPosition *core.Position) (*core.Transaction, error) {
	transaction := s.build(event, market, borrowPosition)
	transaction.AssetID = market.CollateralAssetID
	transaction.Amount = event.SeizedAssets
	transaction.AmountUSD = market.CollateralAmountUSD(event.SeizedAssets)
	transaction.Liquidator = event.CallerID
	transaction.Repaid = event.RepaidAssets
	transaction.RepaidUSD = market.LoanAmountUSD(event.RepaidAssets)
	transaction.ProfitUSD = transaction.AmountUSD.Sub(transaction.RepaidUSD)
	transaction.CollateralID = market.CollateralAssetID

	market.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD.Add(transaction.AmountUSD)
	market.LiquidationCount++
	market.TransactionCount++
	protocol.CumulativeLiquidateUSD = protocol.CumulativeLiquidateUSD.Add(transaction.AmountUSD)
	protocol.LiquidationCount++
	protocol.TransactionCount++

	if err := s.transactionStore.Create(ctx, tx, transaction); err != nil {
		return nil, err
	}

	liquidator, err := s.accountStore.FindOrCreate(ctx, tx, event.CallerID)
	if err != nil {
		return nil, err
	}
	liquidator.LiquidationCount++
	if err := s.accountStore.Update(ctx, tx, liquidator); err != nil {
		return nil, err
	}

	liquidatee, err := s.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return nil, err
	}
	liquidatee.LiquidateCount++
	if err := s.accountStore.Update(ctx, tx, liquidatee); err != nil {
		return nil, err
	}

	if err := s.snapshotz.UpdateTransactionData(ctx, tx, event, market, protocol, event.Action, transaction.Amount, transaction.AmountUSD); err != nil {
		return nil, err
	}
	if err := s.snapshotz.UpdateUsageData(ctx, tx, event, market, protocol, core.ActionTypeLiquidate, event.CallerID); err != nil {
		return nil, err
	}
	if err := s.snapshotz.MarkLiquidatee(ctx, tx, event, market, protocol, event.AccountID); err != nil {
		return nil, err
	}

	if event.BadDebtAssets.IsPositive() {
		realization := &core.BadDebtRealization{
			LiquidationID: transaction.TransactionID,
			MarketID:      market.MarketID,
			BadDebt:       event.BadDebtAssets,
			BadDebtUSD:    market.LoanAmountUSD(event.BadDebtAssets),
		}
		if err := s.transactionStore.CreateBadDebt(ctx, tx, realization); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

func (s *transactionService) CreateFlashloan(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol) (*core.Transaction, error) {
	transaction := s.build(event, market, nil)
	if event.AssetID != "" {
		transaction.AssetID = event.AssetID
	}
	transaction.AmountUSD = s.assetAmountUSD(market, transaction.AssetID, event.Amount)

	market.CumulativeFlashloanUSD = market.CumulativeFlashloanUSD.Add(transaction.AmountUSD)
	market.FlashloanCount++
	protocol.FlashloanCount++

	return s.finish(ctx, tx, event, market, protocol, transaction, func(account *core.Account) {
		account.FlashloanCount++
	})
}

func (s *transactionService) CreateTransfer(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, sender, receiver *core.Position) (*core.Transaction, error) {
	transaction := s.build(event, market, sender)
	transaction.Receiver = event.CallerID

	market.CumulativeTransferUSD = market.CumulativeTransferUSD.Add(transaction.AmountUSD)
	market.TransferCount++
	market.TransactionCount++
	protocol.TransferCount++
	protocol.TransactionCount++

	if err := s.transactionStore.Create(ctx, tx, transaction); err != nil {
		return nil, err
	}

	from, err := s.accountStore.FindOrCreate(ctx, tx, event.AccountID)
	if err != nil {
		return nil, err
	}
	from.TransferredCount++
	if err := s.accountStore.Update(ctx, tx, from); err != nil {
		return nil, err
	}

	to, err := s.accountStore.FindOrCreate(ctx, tx, event.CallerID)
	if err != nil {
		return nil, err
	}
	to.ReceivedCount++
	if err := s.accountStore.Update(ctx, tx, to); err != nil {
		return nil, err
	}

	if err := s.snapshotz.UpdateTransactionData(ctx, tx, event, market, protocol, event.Action, transaction.Amount, transaction.AmountUSD); err != nil {
		return nil, err
	}
	if err := s.snapshotz.UpdateUsageData(ctx, tx, event, market, protocol, core.ActionTypeTransfer, event.AccountID); err != nil {
		return nil, err
	}
	// the receiver is an active user without being a transferrer
	if err := s.snapshotz.UpdateUsageData(ctx, tx, event, market, protocol, core.ActionTypeDefault, event.CallerID); err != nil {
		return nil, err
	}

	return transaction, nil
}

// build a transaction row with the loan-asset defaults. Creators adjust
// asset, amounts and extra fields before it is persisted.
func (s *transactionService) build(event *core.Event, market *core.Market, position *core.Position) *core.Transaction {
	transaction := &core.Transaction{
		TransactionID: id.EventScoped(event.TxHash, event.LogIndex, int(event.Action)),
		Action:        event.Action,
		MarketID:      market.MarketID,
		AccountID:     event.AccountID,
		AssetID:       market.LoanAssetID,
		Amount:        event.Amount,
		AmountUSD:     market.LoanAmountUSD(event.Amount),
		Shares:        event.Shares,
		BlockNumber:   event.BlockNumber,
		LogIndex:      event.LogIndex,
		TxHash:        event.TxHash,
		Timestamp:     event.Timestamp,
	}
	if position != nil {
		transaction.PositionID = position.PositionID
	}

	return transaction
}

// finish persists the row, bumps the actor's counters and fans out the
// snapshot updates shared by the single-actor creators.
func (s *transactionService) finish(ctx context.Context, tx *db.DB, event *core.Event, market *core.Market, protocol *core.Protocol, transaction *core.Transaction, count func(*core.Account)) (*core.Transaction, error) {
	market.TransactionCount++
	protocol.TransactionCount++

	if err := s.transactionStore.Create(ctx, tx, transaction); err != nil {
		return nil, err
	}

	account, err := s.accountStore.FindOrCreate(ctx, tx, transaction.AccountID)
	if err != nil {
		return nil, err
	}
	count(account)
	if err := s.accountStore.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := s.snapshotz.UpdateTransactionData(ctx, tx, event, market, protocol, event.Action, transaction.Amount, transaction.AmountUSD); err != nil {
		return nil, err
	}
	if err := s.snapshotz.UpdateUsageData(ctx, tx, event, market, protocol, event.Action, transaction.AccountID); err != nil {
		return nil, err
	}

	return transaction, nil
}

func (s *transactionService) assetAmountUSD(market *core.Market, assetID string, amount decimal.Decimal) decimal.Decimal {
	switch assetID {
	case market.CollateralAssetID:
		return market.CollateralAmountUSD(amount)
	case market.LoanAssetID:
		return market.LoanAmountUSD(amount)
	default:
		return decimal.Zero
	}
}
