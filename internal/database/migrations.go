package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// compositeIndexes are lookups AutoMigrate does not derive from struct tags.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	// Overlap checks scan shifts of one date by start time.
	{"sober_bro_shifts", "idx_shifts_date_time_start", "date, time_start"},
	// Upcoming notifications scan by start and end.
	{"sober_bro_shifts", "idx_shifts_window", "time_start, time_end"},
	{"event_attendances", "idx_attendance_help", "event_id, help_flag"},
}

// AddIndexes creates the composite indexes that are missing.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()
	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}

// MigrateDatabase runs AutoMigrate followed by the composite indexes.
func MigrateDatabase(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	return nil
}
