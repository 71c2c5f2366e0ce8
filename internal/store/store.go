// Package store is the gorm-backed persistence gateway of the hub.
package store

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultHistoryLimit = 200

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to postgres or sqlite and runs migrations.
func Open(driver, dsn string) (*Store, error) {
	var dial gorm.Dialector
	switch driver {
	case "postgres":
		dial = postgres.Open(dsn)
	case "sqlite":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// sqlite allows a single writer; one connection avoids SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("store: sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "store").Str("driver", driver).Msg("connected & migrated")
	return s, nil
}

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(
		&Conversation{},
		&Message{},
		&Group{},
		&GroupMember{},
		&GroupMessage{},
	); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
