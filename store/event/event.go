package event

import (
	"context"

	"lendledger/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, event *core.Event) error {
	if err := s.db.Update().Create(event).Error; err != nil {
		return err
	}
	return nil
}

func (s *eventStore) Find(ctx context.Context, id uint64) (*core.Event, error) {
	var event core.Event
	if err := s.db.View().Where("id=?", id).First(&event).Error; err != nil {
		return nil, err
	}

	return &event, nil
}

func (s *eventStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().Where("id>?", fromID).Order("id asc").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
