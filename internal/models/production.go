package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductCategory groups products
type ProductCategory struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ProductCategory) TableName() string { return "product_categories" }

func (c *ProductCategory) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// Product is a manufacturable good composed of supplies
type Product struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CategoryID string `gorm:"type:uuid;not null;index" json:"categoryId"`
	Name       string `gorm:"size:255;not null" json:"name"`

	Category *ProductCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

// Supply is a raw material with an optional unit price
type Supply struct {
	ID     string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name   string           `gorm:"size:255;not null" json:"name"`
	Unit   string           `gorm:"size:50" json:"unit"`
	Price  *decimal.Decimal `gorm:"type:numeric(12,4);check:price IS NULL OR price >= 0" json:"price,omitempty"`
	Vendor string           `gorm:"size:255" json:"vendor,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Supply) TableName() string { return "supplies" }

func (s *Supply) BeforeCreate(tx *gorm.DB) error {
	s.ID = ensureID(s.ID)
	return nil
}

// ProductSupply is one bill-of-materials line: Quantity units of Supply per single Product
type ProductSupply struct {
	ID        string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProductID string          `gorm:"type:uuid;not null;uniqueIndex:idx_product_supply" json:"productId"`
	SupplyID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_product_supply" json:"supplyId"`
	Quantity  decimal.Decimal `gorm:"type:numeric(12,4);not null;check:quantity > 0" json:"quantity"`
	Unit      string          `gorm:"size:50" json:"unit"`

	Supply *Supply `gorm:"foreignKey:SupplyID" json:"supply,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ProductSupply) TableName() string { return "product_supplies" }

func (ps *ProductSupply) BeforeCreate(tx *gorm.DB) error {
	ps.ID = ensureID(ps.ID)
	return nil
}

// BatchStatus is the lifecycle of a production run
type BatchStatus string

const (
	BatchPlanned    BatchStatus = "planned"
	BatchInProgress BatchStatus = "in_progress"
	BatchCompleted  BatchStatus = "completed"
)

// SupplyLine is one computed material requirement of a batch
type SupplyLine struct {
	SupplyID     string          `json:"supplyId"`
	SupplyName   string          `json:"supplyName"`
	UnitAmount   decimal.Decimal `json:"unitAmount"`
	Unit         string          `json:"unit"`
	TotalNeeded  decimal.Decimal `json:"totalNeeded"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	Priced       bool            `json:"priced"`
	TotalCost    decimal.Decimal `json:"totalCost"`
}

// ProductionBatch is a planned or executed production run.
// CalculatedSupplies is the cost-of-record snapshot taken at creation.
type ProductionBatch struct {
	ID                 string                          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ProductID          string                          `gorm:"type:uuid;not null;index" json:"productId"`
	BatchSize          int                             `gorm:"not null;check:batch_size > 0" json:"batchSize"`
	CalculatedSupplies datatypes.JSONSlice[SupplyLine] `json:"calculatedSupplies"`
	Status             BatchStatus                     `gorm:"size:20;not null;default:'planned';index" json:"status"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ProductionBatch) TableName() string { return "production_batches" }

func (b *ProductionBatch) BeforeCreate(tx *gorm.DB) error {
	b.ID = ensureID(b.ID)
	return nil
}
