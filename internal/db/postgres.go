package db

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

var DB *gorm.DB

func Init() {

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			getEnv("POSTGRES_HOST", "localhost"),
			getEnv("POSTGRES_USER", "chroma"),
			getEnv("POSTGRES_PASSWORD", "chroma"),
			getEnv("POSTGRES_DB", "chroma"),
			getEnv("DB_PORT", "5432"),
		)
	}

	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	log.Println("Database connected and migrated successfully")
}

// Migrate runs automigration for every persisted table. Shared with tests
// so the in-memory schema matches production.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Worker{},
		&models.WorkerProfile{},
		&models.ProductionTask{},
		&models.ProductionLog{},
		&models.SupportTicket{},
		&models.CustomerInteraction{},
	)
}

func SetTestDB(testDB *gorm.DB) {
	DB = testDB
}

func getEnv(key, fallback string) string {

	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return fallback
}
