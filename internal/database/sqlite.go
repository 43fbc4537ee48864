package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cardforge/deck-builder/backend/internal/models"
)

var DB *gorm.DB

// Initialize opens the deck-list database. Only user deck lists live here;
// fetched catalog records stay in memory for the process lifetime and are
// never written to disk.
func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	log.Println("Database connected successfully")

	err = DB.AutoMigrate(&models.Deck{}, &models.DeckEntry{})
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
