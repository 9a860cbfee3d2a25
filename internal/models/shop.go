package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShopConnection links one marketplace shop to one local user.
// At most one active row exists per (user_id, shop_id).
type ShopConnection struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_connection_user_shop" json:"userId"`
	ShopID       string     `gorm:"size:50;not null;uniqueIndex:idx_connection_user_shop" json:"shopId"`
	ShopName     string     `gorm:"size:255" json:"shopName"`
	AccessToken  string     `gorm:"type:text" json:"-"`
	RefreshToken string     `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	IsActive     bool       `gorm:"default:true;index" json:"isActive"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ShopConnection) TableName() string { return "etsy_connections" }

func (c *ShopConnection) BeforeCreate(tx *gorm.DB) error {
	c.ID = ensureID(c.ID)
	return nil
}

// Expired reports whether the access token is no longer usable at now
func (c *ShopConnection) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Platform groups listings by marketplace type (e.g. "etsy")
type Platform struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Type        string `gorm:"size:50;uniqueIndex;not null" json:"type"`
	APIEndpoint string `gorm:"size:255" json:"apiEndpoint"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Platform) TableName() string { return "platforms" }

func (p *Platform) BeforeCreate(tx *gorm.DB) error {
	p.ID = ensureID(p.ID)
	return nil
}

func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
