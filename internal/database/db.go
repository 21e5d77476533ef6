package database

import (
	"log"

	"e-inventoria-backend/internal/config"
	"e-inventoria-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migration complete.")
}

// Migrate runs the schema migration on the given connection. Split out
// from Init so tests can migrate an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Supplier{},
		&models.Instock{},
		&models.InstockItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Opname{},
		&models.OpnameItem{},
		&models.AuditLog{},
	)
}
