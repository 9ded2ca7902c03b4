package position

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}
		if err := tx.AutoMigrate(core.PositionCounter{}).Error; err != nil {
			return err
		}
		if err := tx.AutoMigrate(core.PositionSnapshot{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) FindCounter(ctx context.Context, counterKey string) (*core.PositionCounter, error) {
	var counter core.PositionCounter
	if err := s.db.View().Where("counter_key=?", counterKey).First(&counter).Error; err != nil {
		return nil, err
	}

	return &counter, nil
}

func (s *positionStore) SaveCounter(ctx context.Context, tx *db.DB, counter *core.PositionCounter) error {
	if err := tx.Update().Where("counter_key=?", counter.CounterKey).FirstOrCreate(counter).Error; err != nil {
		return err
	}
	return nil
}

func (s *positionStore) UpdateCounter(ctx context.Context, tx *db.DB, counter *core.PositionCounter) error {
	version := counter.Version
	counter.Version++
	if err := tx.Update().Model(core.PositionCounter{}).Where("counter_key=? and version=?", counter.CounterKey, version).Update(counter).Error; err != nil {
		return err
	}

	return nil
}

func (s *positionStore) Save(ctx context.Context, tx *db.DB, position *core.Position) error {
	if err := tx.Update().Where("position_id=?", position.PositionID).FirstOrCreate(position).Error; err != nil {
		return err
	}
	return nil
}

func (s *positionStore) Find(ctx context.Context, positionID string) (*core.Position, error) {
	var position core.Position
	if err := s.db.View().Where("position_id=?", positionID).First(&position).Error; err != nil {
		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByAccount(ctx context.Context, account string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("account_id=?", account).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) FindByMarket(ctx context.Context, marketID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("market_id=?", marketID).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	version := position.Version
	position.Version++
	if err := tx.Update().Model(core.Position{}).Where("position_id=? and version=?", position.PositionID, version).Update(position).Error; err != nil {
		return err
	}

	return nil
}

func (s *positionStore) CreateSnapshot(ctx context.Context, tx *db.DB, snapshot *core.PositionSnapshot) error {
	if err := tx.Update().Where("snapshot_id=?", snapshot.SnapshotID).FirstOrCreate(snapshot).Error; err != nil {
		return err
	}
	return nil
}

func (s *positionStore) ListSnapshots(ctx context.Context, positionID string, limit int) ([]*core.PositionSnapshot, error) {
	var snapshots []*core.PositionSnapshot
	if err := s.db.View().Where("position_id=?", positionID).Order("block_number desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}
