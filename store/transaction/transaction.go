package transaction

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type transactionStore struct {
	db *db.DB
}

// New new transaction store
func New(db *db.DB) core.ITransactionStore {
	return &transactionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.AutoMigrate(core.BadDebtRealization{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *transactionStore) Create(ctx context.Context, tx *db.DB, transaction *core.Transaction) error {
	var existing core.Transaction
	err := tx.Update().Where("transaction_id=?", transaction.TransactionID).First(&existing).Error
	if gorm.IsRecordNotFoundError(err) {
		return tx.Update().Create(transaction).Error
	}
	if err != nil {
		return err
	}

	transaction.ID = existing.ID
	return tx.Update().Model(core.Transaction{}).Where("transaction_id=?", transaction.TransactionID).Update(transaction).Error
}

func (s *transactionStore) Find(ctx context.Context, transactionID string) (*core.Transaction, error) {
	var transaction core.Transaction
	if err := s.db.View().Where("transaction_id=?", transactionID).First(&transaction).Error; err != nil {
		return nil, err
	}

	return &transaction, nil
}

func (s *transactionStore) ListByMarket(ctx context.Context, marketID string, limit int) ([]*core.Transaction, error) {
	var transactions []*core.Transaction
	if err := s.db.View().Where("market_id=?", marketID).Order("block_number desc, log_index desc").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, err
	}

	return transactions, nil
}

func (s *transactionStore) ListByAccount(ctx context.Context, account string, limit int) ([]*core.Transaction, error) {
	var transactions []*core.Transaction
	if err := s.db.View().Where("account_id=?", account).Order("block_number desc, log_index desc").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, err
	}

	return transactions, nil
}

func (s *transactionStore) CreateBadDebt(ctx context.Context, tx *db.DB, realization *core.BadDebtRealization) error {
	if err := tx.Update().Where("liquidation_id=?", realization.LiquidationID).FirstOrCreate(realization).Error; err != nil {
		return err
	}
	return nil
}

func (s *transactionStore) ListBadDebts(ctx context.Context, marketID string) ([]*core.BadDebtRealization, error) {
	var realizations []*core.BadDebtRealization
	if err := s.db.View().Where("market_id=?", marketID).Find(&realizations).Error; err != nil {
		return nil, err
	}

	return realizations, nil
}
