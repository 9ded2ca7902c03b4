package price

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Price{})
		if err := tx.AutoMigrate(core.Price{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *priceStore) Save(ctx context.Context, tx *db.DB, price *core.Price) error {
	var existing core.Price
	err := tx.Update().Where("asset_id=?", price.AssetID).First(&existing).Error
	if gorm.IsRecordNotFoundError(err) {
		return tx.Update().Create(price).Error
	}
	if err != nil {
		return err
	}

	price.ID = existing.ID
	return tx.Update().Model(core.Price{}).Where("asset_id=?", price.AssetID).Update(price).Error
}

func (s *priceStore) Find(ctx context.Context, assetID string) (*core.Price, error) {
	var price core.Price
	if err := s.db.View().Where("asset_id=?", assetID).First(&price).Error; err != nil {
		return nil, err
	}

	return &price, nil
}

func (s *priceStore) All(ctx context.Context) ([]*core.Price, error) {
	var prices []*core.Price
	if err := s.db.View().Find(&prices).Error; err != nil {
		return nil, err
	}

	return prices, nil
}
