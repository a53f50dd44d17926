// Seeds the database with the demo catalog, staff accounts and workers.
// Safe to run repeatedly; existing rows are left alone.
package main

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	db.Init()

	categories := seedCategories()
	seedProducts(categories)
	seedStaff()
	seedWorkers()

	log.Println("Seeding complete")
}

func seedCategories() map[string]uint {
	names := []string{"steel", "aluminum", "plastic", "electronic"}
	ids := make(map[string]uint, len(names))

	for _, name := range names {
		var category models.Category
		err := db.DB.Where("name = ?", name).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = models.Category{Name: name}
			if err := db.DB.Create(&category).Error; err != nil {
				log.Fatalf("Failed to seed category %s: %v", name, err)
			}
		} else if err != nil {
			log.Fatalf("Failed to look up category %s: %v", name, err)
		}
		ids[name] = category.ID
	}

	return ids
}

func seedProducts(categories map[string]uint) {
	products := []struct {
		name        string
		description string
		price       float64
		stock       int
		category    string
	}{
		{"Steel Widget Type A", "High-grade steel widget perfect for industrial applications", 89.99, 150, "steel"},
		{"Aluminum Component B", "Lightweight aluminum component with superior durability", 129.99, 85, "aluminum"},
		{"Plastic Assembly C", "Precision-molded plastic assembly for various applications", 45.99, 200, "plastic"},
		{"Electronic Module D", "Advanced electronic module with integrated circuitry", 199.99, 40, "electronic"},
		{"Steel Bracket Set", "Heavy-duty steel brackets for mounting applications", 34.99, 300, "steel"},
		{"Aluminum Heat Sink", "Efficient aluminum heat sink for thermal management", 75.99, 120, "aluminum"},
	}

	for _, p := range products {
		var existing models.Product
		err := db.DB.Where("name = ?", p.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to look up product %s: %v", p.name, err)
		}

		product := models.Product{
			Name:          p.name,
			Description:   p.description,
			Price:         p.price,
			StockQuantity: p.stock,
			CategoryID:    categories[p.category],
		}
		if err := db.DB.Create(&product).Error; err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.name, err)
		}
	}
}

func seedStaff() {
	staff := []struct {
		name  string
		email string
		role  string
	}{
		{"Admin", "admin@chromasupply.com", models.RoleAdmin},
		{"Inventory Manager", "inventory@chromasupply.com", models.RoleInventoryManager},
		{"Customer Service", "service@chromasupply.com", models.RoleCustomerService},
	}

	for _, s := range staff {
		var user models.User
		err := db.DB.Where("email = ?", s.email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash, herr := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
			if herr != nil {
				log.Fatalf("Failed to hash staff password: %v", herr)
			}
			user = models.User{Name: s.name, Email: s.email, PasswordHash: string(hash)}
			if err := db.DB.Create(&user).Error; err != nil {
				log.Fatalf("Failed to seed staff user %s: %v", s.email, err)
			}
		} else if err != nil {
			log.Fatalf("Failed to look up staff user %s: %v", s.email, err)
		}

		var profile models.WorkerProfile
		err = db.DB.Where("user_id = ?", user.ID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.WorkerProfile{
				UserID: user.ID,
				Name:   s.name,
				Email:  s.email,
				Role:   s.role,
			}
			if err := db.DB.Create(&profile).Error; err != nil {
				log.Fatalf("Failed to seed worker profile for %s: %v", s.email, err)
			}
		} else if err != nil {
			log.Fatalf("Failed to look up worker profile for %s: %v", s.email, err)
		}
	}
}

func seedWorkers() {
	workers := []models.Worker{
		{Name: "John Smith", Role: "machinist"},
		{Name: "Sarah Johnson", Role: "assembler"},
		{Name: "Mike Brown", Role: "quality_inspector"},
		{Name: "Lisa Davis", Role: "electronics_technician"},
	}

	for _, w := range workers {
		var existing models.Worker
		err := db.DB.Where("name = ?", w.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to look up worker %s: %v", w.Name, err)
		}
		worker := w
		if err := db.DB.Create(&worker).Error; err != nil {
			log.Fatalf("Failed to seed worker %s: %v", w.Name, err)
		}
	}
}
