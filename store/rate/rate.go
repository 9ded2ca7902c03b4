package rate

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type rateStore struct {
	db *db.DB
}

// New new interest rate store
func New(db *db.DB) core.IRateStore {
	return &rateStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.InterestRate{})
		if err := tx.AutoMigrate(core.InterestRate{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *rateStore) Save(ctx context.Context, tx *db.DB, rate *core.InterestRate) error {
	var existing core.InterestRate
	err := tx.Update().Where("rate_id=?", rate.RateID).First(&existing).Error
	if gorm.IsRecordNotFoundError(err) {
		return tx.Update().Create(rate).Error
	}
	if err != nil {
		return err
	}

	rate.ID = existing.ID
	return tx.Update().Model(core.InterestRate{}).Where("rate_id=?", rate.RateID).Update(rate).Error
}

func (s *rateStore) Find(ctx context.Context, rateID string) (*core.InterestRate, error) {
	var rate core.InterestRate
	if err := s.db.View().Where("rate_id=?", rateID).First(&rate).Error; err != nil {
		return nil, err
	}

	return &rate, nil
}

func (s *rateStore) ListByMarket(ctx context.Context, marketID string, limit int) ([]*core.InterestRate, error) {
	var list []*core.InterestRate
	if err := s.db.View().Where("market_id=?", marketID).Order("block_number desc").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}
