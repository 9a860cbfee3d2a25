// Package store is the persistence gateway: narrow per-consumer interfaces
// and one gorm-backed implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/xelth-com/shopdeskgo/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrStaleStatus is returned by conditional updates whose precondition no longer holds
	ErrStaleStatus = errors.New("row status changed concurrently")
)

// UserStore persists local accounts
type UserStore interface {
	CreateUser(ctx context.Context, u *models.UserAuth) error
	FindUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// ConnectionStore persists marketplace shop connections
type ConnectionStore interface {
	GetConnection(ctx context.Context, id string) (*models.ShopConnection, error)
	FindActiveConnection(ctx context.Context, userID, shopID string) (*models.ShopConnection, error)
	ListConnections(ctx context.Context, userID string) ([]models.ShopConnection, error)
	ListActiveConnections(ctx context.Context) ([]models.ShopConnection, error)
	// UpsertConnection inserts or updates the row keyed by (UserID, ShopID) and
	// fills conn.ID with the stored row id.
	UpsertConnection(ctx context.Context, conn *models.ShopConnection) error
	UpdateConnectionTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
	TouchConnectionSync(ctx context.Context, id string, at time.Time) error
	DeactivateConnection(ctx context.Context, id string) error
}

// CatalogStore persists fragrances, platforms and listings
type CatalogStore interface {
	FindFragranceBySKU(ctx context.Context, sku string) (*models.Fragrance, error)
	CreateFragrance(ctx context.Context, f *models.Fragrance) error
	// GetOrCreatePlatform returns the platform with p.Type, inserting p if absent
	GetOrCreatePlatform(ctx context.Context, p *models.Platform) (*models.Platform, error)
	// UpsertListing inserts or updates the row keyed by ExternalID
	UpsertListing(ctx context.Context, l *models.Listing) error
}

// ProductionStore persists bills of materials and production batches
type ProductionStore interface {
	// ListProductSupplies returns the BOM lines of a product with Supply loaded
	ListProductSupplies(ctx context.Context, productID string) ([]models.ProductSupply, error)
	CreateBatch(ctx context.Context, b *models.ProductionBatch) error
	GetBatch(ctx context.Context, id string) (*models.ProductionBatch, error)
	ListBatches(ctx context.Context) ([]models.ProductionBatch, error)
	// UpdateBatchStatus moves a batch from one status to another, failing with
	// ErrStaleStatus when the row is no longer in from.
	UpdateBatchStatus(ctx context.Context, id string, from, to models.BatchStatus) error
}

// PlanStore persists generated business plans
type PlanStore interface {
	SavePlan(ctx context.Context, plan *models.Plan, todos []models.TodoTask) error
}
