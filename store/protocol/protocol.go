package protocol

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type protocolStore struct {
	db *db.DB
}

// New new protocol store
func New(db *db.DB) core.IProtocolStore {
	return &protocolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		if err := db.Update().AutoMigrate(core.Protocol{}).Error; err != nil {
			return err
		}

		// the singleton is seeded here so Get never writes; a create
		// on the read path would escape an open event transaction
		var protocol core.Protocol
		err := db.Update().First(&protocol).Error
		if gorm.IsRecordNotFoundError(err) {
			return db.Update().Create(&core.Protocol{}).Error
		}

		return err
	})
}

func (s *protocolStore) Get(ctx context.Context) (*core.Protocol, error) {
	var protocol core.Protocol
	if err := s.db.View().First(&protocol).Error; err != nil {
		return nil, err
	}

	return &protocol, nil
}

func (s *protocolStore) Update(ctx context.Context, tx *db.DB, protocol *core.Protocol) error {
	version := protocol.Version
	protocol.Version++
	if err := tx.Update().Model(core.Protocol{}).Where("id=? and version=?", protocol.ID, version).Update(protocol).Error; err != nil {
		return err
	}

	return nil
}
