package etsy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/metrics"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/store"
)

// ListingSummary describes one successfully synced listing
type ListingSummary struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// SyncResult is returned by SyncShop
type SyncResult struct {
	SyncedCount int              `json:"syncedCount"`
	Listings    []ListingSummary `json:"listings"`
}

// SyncService reconciles active marketplace listings into local fragrances
// and listings, on demand or from a background loop.
type SyncService struct {
	connector *Connector
	catalog   store.CatalogStore
	interval  time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewSyncService creates a new synchronization service.
// interval <= 0 disables the background loop.
func NewSyncService(connector *Connector, catalog store.CatalogStore, interval time.Duration) *SyncService {
	return &SyncService{
		connector: connector,
		catalog:   catalog,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

// SyncUserShop syncs the caller's active connection for shopID
func (s *SyncService) SyncUserShop(ctx context.Context, userID, shopID string) (*SyncResult, error) {
	conn, err := s.connector.ActiveConnection(ctx, userID, shopID)
	if err != nil {
		return nil, err
	}
	return s.SyncShop(ctx, conn)
}

// SyncShop pulls one page of active listings for conn and upserts them.
// A failing listing is logged and skipped; it never aborts the run.
func (s *SyncService) SyncShop(ctx context.Context, conn *models.ShopConnection) (*SyncResult, error) {
	result, err := s.syncShop(ctx, conn)
	metrics.SyncRuns.WithLabelValues(PlatformType, metrics.Result(err)).Inc()
	return result, err
}

func (s *SyncService) syncShop(ctx context.Context, conn *models.ShopConnection) (*SyncResult, error) {
	accessToken, err := s.connector.EnsureFreshToken(ctx, conn)
	if err != nil {
		return nil, err
	}

	listings, err := s.connector.client.GetActiveListings(ctx, accessToken, conn.ShopID)
	if err != nil {
		logger.Error(ctx).Err(err).Str("shop_id", conn.ShopID).Msg("❌ Failed to fetch Etsy listings")
		return nil, err
	}

	platform, err := s.catalog.GetOrCreatePlatform(ctx, &models.Platform{
		Name:        PlatformName,
		Type:        PlatformType,
		APIEndpoint: PlatformEndpoint,
		IsActive:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve platform: %w", err)
	}

	result := &SyncResult{Listings: make([]ListingSummary, 0, len(listings))}
	for _, l := range listings {
		summary, err := s.syncListing(ctx, platform.ID, l)
		metrics.SyncedListings.WithLabelValues(PlatformType, metrics.Result(err)).Inc()
		if err != nil {
			logger.Warn(ctx).Err(err).Int64("listing_id", l.ListingID).Msg("⚠️ Skipping Etsy listing")
			continue
		}
		result.Listings = append(result.Listings, *summary)
	}
	result.SyncedCount = len(result.Listings)

	syncedAt := s.connector.now()
	if err := s.connector.store.TouchConnectionSync(ctx, conn.ID, syncedAt); err != nil {
		logger.Warn(ctx).Err(err).Str("connection_id", conn.ID).Msg("⚠️ Failed to update last sync time")
	} else {
		conn.LastSyncAt = &syncedAt
	}

	logger.Info(ctx).
		Str("shop_id", conn.ShopID).
		Int("synced", result.SyncedCount).
		Int("received", len(listings)).
		Msg("✅ Etsy: Synced listings")
	return result, nil
}

func (s *SyncService) syncListing(ctx context.Context, platformID string, l Listing) (*ListingSummary, error) {
	price, err := l.Price.Decimal()
	if err != nil {
		return nil, err
	}
	sku := strconv.FormatInt(l.ListingID, 10)

	fragrance, err := s.catalog.FindFragranceBySKU(ctx, sku)
	if errors.Is(err, store.ErrNotFound) {
		fragrance = &models.Fragrance{
			SKU:               sku,
			Name:              l.Title,
			Description:       l.Description,
			Price:             price,
			CurrentStock:      max(l.Quantity, 0),
			LowStockThreshold: models.DefaultLowStockThreshold,
		}
		err = s.catalog.CreateFragrance(ctx, fragrance)
	}
	if err != nil {
		return nil, fmt.Errorf("fragrance %s: %w", sku, err)
	}

	status := models.ListingInactive
	if l.State == "active" {
		status = models.ListingActive
	}
	now := s.connector.now()

	listing := &models.Listing{
		FragranceID:  fragrance.ID,
		PlatformID:   platformID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        price,
		Quantity:     l.Quantity,
		Status:       status,
		ExternalID:   sku,
		URL:          l.URL,
		LastSyncedAt: &now,
	}
	if err := s.catalog.UpsertListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("listing %s: %w", sku, err)
	}

	return &ListingSummary{ID: l.ListingID, Title: l.Title, Price: price}, nil
}

// Start begins the background synchronization loop
func (s *SyncService) Start() {
	if s.interval <= 0 {
		logger.Logger.Info().Msg("Etsy Sync disabled: ETSY_SYNC_INTERVAL not set")
		return
	}

	go func() {
		logger.Logger.Info().Dur("interval", s.interval).Msg("📡 Etsy Sync Service started")

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runFullSync()
			case <-s.stop:
				logger.Logger.Info().Msg("🛑 Etsy Sync Service stopped")
				return
			}
		}
	}()
}

// Stop halts the service
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// runFullSync syncs every active connection in turn
func (s *SyncService) runFullSync() {
	ctx := context.Background()
	logger.Info(ctx).Msg("🔄 Etsy: Starting full sync...")

	conns, err := s.connector.store.ListActiveConnections(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("❌ Etsy Sync Error (Connections)")
		return
	}

	for i := range conns {
		if _, err := s.SyncShop(ctx, &conns[i]); err != nil {
			logger.Error(ctx).Err(err).Str("shop_id", conns[i].ShopID).Msg("❌ Etsy Sync Error (Shop)")
		}
	}

	logger.Info(ctx).Int("connections", len(conns)).Msg("✅ Etsy: Full sync completed")
}
