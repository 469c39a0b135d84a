package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"datagate/internal/models"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	sqlDB, _ := gdb.DB()
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}

	log.Println("✅ Database connected successfully")
	return gdb
}

// Migrate runs auto-migration for every entity the service owns.
// Shared with the test helpers so fixtures and production stay in sync.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Schema{},
		&models.Table{},
		&models.Field{},
		&models.AccessRequest{},
		&models.AccessRequestItem{},
		&models.AccessPolicy{},
		&models.Notification{},
		&models.AuditLog{},
	)
}
