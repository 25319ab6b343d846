package main

import (
	"fmt"

	"vidtube/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openDB(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set; a Postgres DSN is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrate(db, log); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// migrate runs AutoMigrate model by model so a failure on one table does not
// block the others.
func migrate(db *gorm.DB, log *zap.Logger) error {
	for _, m := range []interface{}{
		&models.User{},
		&models.Video{},
		&models.Comment{},
		&models.Tweet{},
		&models.Playlist{},
		&models.Edge{},
		&models.WatchEvent{},
	} {
		if err := db.AutoMigrate(m); err != nil {
			log.Warn("migration warning", zap.String("model", fmt.Sprintf("%T", m)), zap.Error(err))
		}
	}
	return nil
}
