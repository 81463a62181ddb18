// Package database provides storage for the police check post dashboard.
//
// This package includes:
//   - The GORM/PostgreSQL connection shared by the loader and the dashboard
//   - A direct lib/pq connectivity probe used before any bulk load
//   - The stop repository (single insert, bulk append, dropdown values)
//   - The ordered catalog of named aggregation queries and the report query
//
// Data Models:
//
//	The StopRecord model lives in the models_pkg package and is re-exported
//	here as a type alias.
package database

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "police-dashboard/database/models_pkg"
)

// Database holds the GORM database connection.
type Database struct {
	db *gorm.DB
}

// Connect establishes database connection using GORM
func Connect(dsn string) (*Database, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type StopRecord = models.StopRecord
type StopInput = models.StopInput
