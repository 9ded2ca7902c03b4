package snapshot

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type snapshotStore struct {
	db *db.DB
}

// New new snapshot store
func New(db *db.DB) core.ISnapshotStore {
	return &snapshotStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		for _, model := range []interface{}{
			core.MarketHourlySnapshot{},
			core.MarketDailySnapshot{},
			core.FinancialsDailySnapshot{},
			core.UsageDailySnapshot{},
			core.UsageHourlySnapshot{},
			core.ActivityMarker{},
		} {
			if err := tx.AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// session routes reads through the open transaction so rows written
// earlier in the same event are visible. The wrapper's read connection
// is never enlisted in a transaction.
func (s *snapshotStore) session(tx *db.DB) *gorm.DB {
	if tx != nil {
		return tx.Update()
	}

	return s.db.View()
}

func (s *snapshotStore) FindMarketHourly(ctx context.Context, tx *db.DB, snapshotID string) (*core.MarketHourlySnapshot, error) {
	var snapshot core.MarketHourlySnapshot
	if err := s.session(tx).Where("snapshot_id=?", snapshotID).First(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *snapshotStore) SaveMarketHourly(ctx context.Context, tx *db.DB, snapshot *core.MarketHourlySnapshot) error {
	return save(tx, core.MarketHourlySnapshot{}, snapshot.SnapshotID, snapshot, snapshot.ID)
}

func (s *snapshotStore) ListMarketHourly(ctx context.Context, marketID string, limit int) ([]*core.MarketHourlySnapshot, error) {
	var snapshots []*core.MarketHourlySnapshot
	if err := s.db.View().Where("market_id=?", marketID).Order("hours desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *snapshotStore) FindMarketDaily(ctx context.Context, tx *db.DB, snapshotID string) (*core.MarketDailySnapshot, error) {
	var snapshot core.MarketDailySnapshot
	if err := s.session(tx).Where("snapshot_id=?", snapshotID).First(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *snapshotStore) SaveMarketDaily(ctx context.Context, tx *db.DB, snapshot *core.MarketDailySnapshot) error {
	return save(tx, core.MarketDailySnapshot{}, snapshot.SnapshotID, snapshot, snapshot.ID)
}

func (s *snapshotStore) ListMarketDaily(ctx context.Context, marketID string, limit int) ([]*core.MarketDailySnapshot, error) {
	var snapshots []*core.MarketDailySnapshot
	if err := s.db.View().Where("market_id=?", marketID).Order("days desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *snapshotStore) FindFinancialsDaily(ctx context.Context, tx *db.DB, snapshotID string) (*core.FinancialsDailySnapshot, error) {
	var snapshot core.FinancialsDailySnapshot
	if err := s.session(tx).Where("snapshot_id=?", snapshotID).First(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *snapshotStore) SaveFinancialsDaily(ctx context.Context, tx *db.DB, snapshot *core.FinancialsDailySnapshot) error {
	return save(tx, core.FinancialsDailySnapshot{}, snapshot.SnapshotID, snapshot, snapshot.ID)
}

func (s *snapshotStore) ListFinancialsDaily(ctx context.Context, limit int) ([]*core.FinancialsDailySnapshot, error) {
	var snapshots []*core.FinancialsDailySnapshot
	if err := s.db.View().Order("days desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *snapshotStore) FindUsageDaily(ctx context.Context, tx *db.DB, snapshotID string) (*core.UsageDailySnapshot, error) {
	var snapshot core.UsageDailySnapshot
	if err := s.session(tx).Where("snapshot_id=?", snapshotID).First(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *snapshotStore) SaveUsageDaily(ctx context.Context, tx *db.DB, snapshot *core.UsageDailySnapshot) error {
	return save(tx, core.UsageDailySnapshot{}, snapshot.SnapshotID, snapshot, snapshot.ID)
}

func (s *snapshotStore) ListUsageDaily(ctx context.Context, limit int) ([]*core.UsageDailySnapshot, error) {
	var snapshots []*core.UsageDailySnapshot
	if err := s.db.View().Order("days desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *snapshotStore) FindUsageHourly(ctx context.Context, tx *db.DB, snapshotID string) (*core.UsageHourlySnapshot, error) {
	var snapshot core.UsageHourlySnapshot
	if err := s.session(tx).Where("snapshot_id=?", snapshotID).First(&snapshot).Error; err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (s *snapshotStore) SaveUsageHourly(ctx context.Context, tx *db.DB, snapshot *core.UsageHourlySnapshot) error {
	return save(tx, core.UsageHourlySnapshot{}, snapshot.SnapshotID, snapshot, snapshot.ID)
}

func (s *snapshotStore) ListUsageHourly(ctx context.Context, limit int) ([]*core.UsageHourlySnapshot, error) {
	var snapshots []*core.UsageHourlySnapshot
	if err := s.db.View().Order("hours desc").Limit(limit).Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *snapshotStore) TouchActivity(ctx context.Context, tx *db.DB, markerKey string) (bool, error) {
	var marker core.ActivityMarker
	err := tx.Update().Where("marker_key=?", markerKey).First(&marker).Error
	if gorm.IsRecordNotFoundError(err) {
		marker.MarkerKey = markerKey
		if err := tx.Update().Create(&marker).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	return false, nil
}

// save upserts by snapshot id. A fresh row is created, an existing one
// is fully overwritten.
func save(tx *db.DB, model interface{}, snapshotID string, snapshot interface{}, rowID uint64) error {
	if rowID > 0 {
		return tx.Update().Model(model).Where("snapshot_id=?", snapshotID).Update(snapshot).Error
	}

	return tx.Update().Where("snapshot_id=?", snapshotID).FirstOrCreate(snapshot).Error
}
