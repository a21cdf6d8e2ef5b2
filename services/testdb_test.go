package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resto-pos/config"
	"resto-pos/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()

	product := models.Product{Name: name, Price: price, Active: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	if stock > 0 {
		service := NewStockService(db)
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := service.Append(tx, product.ID, models.TxnRestock, stock, "test", "opening stock")
			return err
		})
		if err != nil {
			t.Fatalf("seed opening stock: %v", err)
		}
	}
	return product
}

func seedDiscountRule(t *testing.T, db *gorm.DB, code string, pct float64, active bool) {
	t.Helper()

	rule := models.DiscountRule{Code: code, Percentage: pct, Active: active}
	if err := db.Create(&rule).Error; err != nil {
		t.Fatalf("seed discount rule: %v", err)
	}
}
