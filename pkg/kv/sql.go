package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a row of the storage_entries table created by the goose migrations.
type Entry struct {
	StorageKey string `gorm:"column:storage_key;primaryKey"`
	Value      string `gorm:"column:value;not null"`
	UpdatedAt  time.Time
}

func (Entry) TableName() string { return "storage_entries" }

// SQL persists values in Postgres or SQLite through gorm. Change notifications
// only reach watchers inside this process.
type SQL struct {
	db  *gorm.DB
	now func() time.Time
	n   notifier
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	entry := Entry{StorageKey: key, Value: value, UpdatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return err
	}
	s.n.notify(Change{Key: key, Origin: OriginFrom(ctx)})
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&Entry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.n.notify(Change{Key: key, Origin: OriginFrom(ctx)})
	}
	return nil
}

// PruneBefore deletes entries not written since cutoff and returns how many went.
func (s *SQL) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("updated_at < ?", cutoff.UTC()).Delete(&Entry{})
	return res.RowsAffected, res.Error
}

func (s *SQL) Watch(_ context.Context, fn func(Change)) (func(), error) {
	return s.n.add(fn), nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
