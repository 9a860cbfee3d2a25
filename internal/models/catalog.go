package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultLowStockThreshold applies to fragrances created from marketplace listings
const DefaultLowStockThreshold = 10

// ListingStatus mirrors the marketplace-side state of a listing
type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingInactive ListingStatus = "inactive"
	ListingDraft    ListingStatus = "draft"
	ListingSold     ListingStatus = "sold"
)

// Fragrance is a sellable scent/SKU mastered locally
type Fragrance struct {
	ID                string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SKU               string          `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Name              string          `gorm:"size:255;not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	Price             decimal.Decimal `gorm:"type:numeric(12,4)" json:"price"`
	CurrentStock      int             `gorm:"not null;default:0;check:current_stock >= 0" json:"currentStock"`
	LowStockThreshold int             `gorm:"default:10" json:"lowStockThreshold"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Fragrance) TableName() string { return "fragrances" }

func (f *Fragrance) BeforeCreate(tx *gorm.DB) error {
	f.ID = ensureID(f.ID)
	return nil
}

// IsLowStock reports whether stock dropped to or below the threshold
func (f *Fragrance) IsLowStock() bool {
	return f.CurrentStock <= f.LowStockThreshold
}

// Listing is a marketplace-side publication of a Fragrance, keyed by ExternalID
type Listing struct {
	ID           string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FragranceID  string          `gorm:"type:uuid;not null;index" json:"fragranceId"`
	PlatformID   string          `gorm:"type:uuid;index" json:"platformId"`
	Title        string          `gorm:"size:255" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(12,4)" json:"price"`
	Quantity     int             `json:"quantity"`
	Status       ListingStatus   `gorm:"size:20;default:'draft'" json:"status"`
	ExternalID   string          `gorm:"column:etsy_listing_id;size:50;uniqueIndex" json:"externalId"`
	URL          string          `gorm:"type:text" json:"url"`
	LastSyncedAt *time.Time      `json:"lastSyncedAt,omitempty"`

	Fragrance *Fragrance `gorm:"foreignKey:FragranceID" json:"fragrance,omitempty"`

	// No UpdatedAt: a re-sync of unchanged data must leave the row untouched apart from LastSyncedAt
	CreatedAt time.Time `json:"createdAt"`
}

func (Listing) TableName() string { return "listings" }

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	l.ID = ensureID(l.ID)
	return nil
}
