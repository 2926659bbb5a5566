// Package db contains things related to the relational user store
package db

import (
	"fmt"

	"postframe/queue-api/config"
	"postframe/queue-api/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector

	switch cfg.Database.Type {
	case "postgres":
		dial = postgres.Open(cfg.Database.DSN)
	default:
		dial = sqlite.Open(cfg.Database.DSN)
	}

	db, err := gorm.Open(dial)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", cfg.Database.Type, err)
	}

	err = db.AutoMigrate(model.User{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
