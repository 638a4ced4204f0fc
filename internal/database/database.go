package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yuluo11/CET-Smart-Learn/internal/defaults"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.AuthSession{},
		&entities.Word{},
		&entities.UserWord{},
		&entities.Article{},
		&entities.UserMistake{},
		&entities.UserStats{},
		&entities.WritingEssay{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	// Seed the shared word list on first start. Articles and mistakes are not
	// seeded: the fallback article lives in the learning store, and mistakes
	// are per-identity rows.
	if err := database.seedWords(); err != nil {
		return nil, fmt.Errorf("failed to seed words: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedWords() error {
	var count int64
	if err := d.DB.Model(&entities.Word{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, word := range defaults.Words() {
		if err := d.DB.Create(&word).Error; err != nil {
			return fmt.Errorf("failed to create word %s: %w", word.Word, err)
		}
	}
	log.Printf("Seeded %d default words", len(defaults.Words()))
	return nil
}
