package seeders

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"resto-pos/config"
	"resto-pos/models"
	"resto-pos/services"
	"resto-pos/utils"
)

// Seed fills an empty database with dev users, a small menu, discount rules
// and opening stock. Opening stock goes through the ledger service so every
// balance starts with a RESTOCK entry behind it.
func Seed() {
	db := config.DB

	users := []models.User{
		{Username: "admin", Password: hash("admin123"), Role: "admin"},
		{Username: "cashier1", Password: hash("cashier123"), Role: "cashier"},
	}
	for _, user := range users {
		db.Where(models.User{Username: user.Username}).FirstOrCreate(&user)
	}

	products := []struct {
		product models.Product
		stock   int
	}{
		{models.Product{Name: "Chicken Adobo", Description: utils.PtrString("Braised chicken in soy and vinegar"), Category: utils.PtrString("Mains"), Price: 180}, 50},
		{models.Product{Name: "Pork Sinigang", Description: utils.PtrString("Sour tamarind pork stew"), Category: utils.PtrString("Mains"), Price: 220}, 40},
		{models.Product{Name: "Garlic Rice", Category: utils.PtrString("Sides"), Price: 45}, 200},
		{models.Product{Name: "Lumpia Shanghai", Description: utils.PtrString("Fried spring rolls, 6 pcs"), Category: utils.PtrString("Starters"), Price: 120}, 80},
		{models.Product{Name: "Halo-Halo", Description: utils.PtrString("Shaved ice dessert"), Category: utils.PtrString("Desserts"), Price: 150}, 30},
		{models.Product{Name: "Iced Tea", Category: utils.PtrString("Drinks"), Price: 60}, 150},
		{models.Product{Name: "San Miguel Beer", Category: utils.PtrString("Drinks"), Price: 90}, 120},
	}

	stock := services.NewStockService(db)
	for _, seed := range products {
		product := seed.product
		result := db.Where(models.Product{Name: product.Name}).FirstOrCreate(&product)
		if result.Error != nil {
			log.Println("seed product:", result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			continue // already seeded, keep its ledger
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := stock.Append(tx, product.ID, models.TxnRestock, seed.stock, "seeder", "opening stock")
			return err
		})
		if err != nil {
			log.Println("seed opening stock:", err)
		}
	}

	rules := []models.DiscountRule{
		{Code: "SENIOR", Percentage: 20, Active: true},
		{Code: "PWD", Percentage: 20, Active: true},
		{Code: "EMPLOYEE", Percentage: 10, Active: true},
		{Code: "PROMO5", Percentage: 5, Active: false},
	}
	for _, rule := range rules {
		db.Where(models.DiscountRule{Code: rule.Code}).FirstOrCreate(&rule)
	}

	fmt.Println("Seeding done: 2 users, 7 products with opening stock, 4 discount rules")
}

func hash(password string) string {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash seed password: ", err)
	}
	return string(bytes)
}
