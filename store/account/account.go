package account

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
)

type accountStore struct {
	db *db.DB
}

// New new account store
func New(db *db.DB) core.IAccountStore {
	return &accountStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Account{})
		if err := tx.AutoMigrate(core.Account{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *accountStore) FindOrCreate(ctx context.Context, tx *db.DB, address string) (*core.Account, error) {
	account := core.Account{Address: address}
	if err := tx.Update().Where("address=?", address).FirstOrCreate(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *accountStore) Find(ctx context.Context, address string) (*core.Account, error) {
	var account core.Account
	if err := s.db.View().Where("address=?", address).First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *accountStore) Update(ctx context.Context, tx *db.DB, account *core.Account) error {
	version := account.Version
	account.Version++
	if err := tx.Update().Model(core.Account{}).Where("address=? and version=?", account.Address, version).Update(account).Error; err != nil {
		return err
	}

	return nil
}
