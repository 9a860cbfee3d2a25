package main

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/shopdeskgo/internal/config"
	"github.com/xelth-com/shopdeskgo/internal/database"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type demoSupply struct {
	name  string
	unit  string
	price string // empty means unpriced
}

type demoRecipeLine struct {
	supply   string
	quantity string
}

var demoSupplies = []demoSupply{
	{"Soy wax", "oz", "0.50"},
	{"Cotton wick", "pcs", "0.10"},
	{"Amber jar 8oz", "pcs", "1.20"},
	{"Lavender oil", "oz", "1.80"},
	{"Kraft label", "pcs", ""},
}

var demoProducts = map[string][]demoRecipeLine{
	"Lavender Candle 8oz": {
		{"Soy wax", "8"},
		{"Cotton wick", "1"},
		{"Amber jar 8oz", "1"},
		{"Lavender oil", "0.5"},
		{"Kraft label", "1"},
	},
	"Travel Tin Candle": {
		{"Soy wax", "4"},
		{"Cotton wick", "1"},
		{"Lavender oil", "0.25"},
	},
}

func main() {
	fmt.Println("🌱 ShopDesk Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("🔨 Running database migrations...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		category := models.ProductCategory{Name: "Candles", Description: "Hand-poured soy candles"}
		if err := tx.Where(models.ProductCategory{Name: category.Name}).FirstOrCreate(&category).Error; err != nil {
			return err
		}

		supplyIDs := make(map[string]string, len(demoSupplies))
		for _, s := range demoSupplies {
			supply := models.Supply{Name: s.name, Unit: s.unit}
			if s.price != "" {
				price := decimal.RequireFromString(s.price)
				supply.Price = &price
			}
			if err := tx.Where(models.Supply{Name: s.name}).FirstOrCreate(&supply).Error; err != nil {
				return err
			}
			supplyIDs[s.name] = supply.ID
			fmt.Printf("  🧴 Supply %-16s %s\n", s.name, priceLabel(supply.Price))
		}

		for name, recipe := range demoProducts {
			product := models.Product{Name: name, CategoryID: category.ID}
			if err := tx.Where(models.Product{Name: name}).FirstOrCreate(&product).Error; err != nil {
				return err
			}
			for _, line := range recipe {
				ps := models.ProductSupply{
					ProductID: product.ID,
					SupplyID:  supplyIDs[line.supply],
					Quantity:  decimal.RequireFromString(line.quantity),
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ps).Error; err != nil {
					return err
				}
			}
			fmt.Printf("  🕯️  Product %s (%s) with %d supplies\n", name, product.ID, len(recipe))
		}
		return nil
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	fmt.Println("✅ Demo data ready. Try POST /api/production/calculate with one of the product ids above.")
}

func priceLabel(p *decimal.Decimal) string {
	if p == nil {
		return "(not priced)"
	}
	return "$" + p.StringFixed(2)
}
