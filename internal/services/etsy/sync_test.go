package etsy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/shopdeskgo/internal/models"
)

func TestMoneyDecimal(t *testing.T) {
	tests := []struct {
		amount  int64
		divisor int64
		want    string
	}{
		{2499, 100, "24.99"},
		{1500, 100, "15"},
		{7, 1, "7"},
		{12345, 1000, "12.345"},
		{0, 100, "0"},
	}

	for _, tt := range tests {
		m := Money{Amount: decimal.NewFromInt(tt.amount), Divisor: tt.divisor}
		got, err := m.Decimal()
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%d/%d = %s", tt.amount, tt.divisor, got)
	}

	_, err := Money{Amount: decimal.NewFromInt(10), Divisor: 0}.Decimal()
	assert.Error(t, err)
}

func TestSyncShopCreatesFragrancesAndListings(t *testing.T) {
	fx := newFixture(t)
	conn := fx.connected(testNow.Add(time.Hour))
	fx.provider.setListings(
		listingJSON(1001, "Lavender", 2499, 100, 12),
		listingJSON(1002, "Cedar", 1800, 100, 3),
	)

	result, err := fx.sync.SyncShop(context.Background(), conn)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SyncedCount)
	require.Len(t, result.Listings, 2)
	assert.Equal(t, int64(1001), result.Listings[0].ID)
	assert.Equal(t, "24.99", result.Listings[0].Price.String())

	lavender := fx.mem.Fragrances["1001"]
	require.NotNil(t, lavender)
	assert.Equal(t, "Lavender", lavender.Name)
	assert.Equal(t, "24.99", lavender.Price.String())
	assert.Equal(t, 12, lavender.CurrentStock)
	assert.Equal(t, models.DefaultLowStockThreshold, lavender.LowStockThreshold)

	listing := fx.mem.Listings["1001"]
	require.NotNil(t, listing)
	assert.Equal(t, lavender.ID, listing.FragranceID)
	assert.Equal(t, models.ListingActive, listing.Status)
	assert.Equal(t, "https://www.etsy.com/listing/Lavender", listing.URL)
	require.NotNil(t, listing.LastSyncedAt)
	assert.Equal(t, testNow, *listing.LastSyncedAt)

	require.Len(t, fx.mem.Platforms, 1)
	assert.Equal(t, fx.mem.Platforms[PlatformType].ID, listing.PlatformID)

	require.NotNil(t, fx.mem.Connections[conn.ID].LastSyncAt)
}

func TestSyncShopIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	conn := fx.connected(testNow.Add(24 * time.Hour))
	fx.provider.setListings(
		listingJSON(1001, "Lavender", 2499, 100, 12),
		listingJSON(1002, "Cedar", 1800, 100, 3),
	)
	ctx := context.Background()

	_, err := fx.sync.SyncShop(ctx, conn)
	require.NoError(t, err)
	firstListings := snapshotListings(fx)
	firstFragrances := snapshotFragrances(fx)

	fx.now = fx.now.Add(10 * time.Minute)
	_, err = fx.sync.SyncShop(ctx, conn)
	require.NoError(t, err)

	assert.Equal(t, firstFragrances, snapshotFragrances(fx))
	assert.Equal(t, firstListings, snapshotListings(fx))
	assert.Equal(t, fx.now, *fx.mem.Listings["1001"].LastSyncedAt)
}

func TestSyncShopUpdatesChangedPrice(t *testing.T) {
	fx := newFixture(t)
	conn := fx.connected(testNow.Add(time.Hour))
	ctx := context.Background()

	fx.provider.setListings(listingJSON(1001, "Lavender", 2499, 100, 12))
	_, err := fx.sync.SyncShop(ctx, conn)
	require.NoError(t, err)
	before := *fx.mem.Listings["1001"]

	fx.provider.setListings(listingJSON(1001, "Lavender", 2699, 100, 12))
	_, err = fx.sync.SyncShop(ctx, conn)
	require.NoError(t, err)
	after := *fx.mem.Listings["1001"]

	assert.Equal(t, "26.99", after.Price.String())
	after.Price = before.Price
	after.LastSyncedAt = before.LastSyncedAt
	assert.Equal(t, before, after)
}

func TestSyncShopIsolatesFailingListings(t *testing.T) {
	fx := newFixture(t)
	conn := fx.connected(testNow.Add(time.Hour))
	fx.mem.FailListing["1003"] = errors.New("constraint violation")
	fx.provider.setListings(
		listingJSON(1001, "Lavender", 2499, 100, 12),
		listingJSON(1002, "Broken", 1000, 0, 1),
		listingJSON(1003, "Rejected", 1000, 100, 1),
		listingJSON(1004, "Cedar", 1800, 100, 3),
	)

	result, err := fx.sync.SyncShop(context.Background(), conn)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SyncedCount)
	assert.Contains(t, fx.mem.Listings, "1001")
	assert.Contains(t, fx.mem.Listings, "1004")
	assert.NotContains(t, fx.mem.Listings, "1002")
	assert.NotContains(t, fx.mem.Listings, "1003")
}

func TestSyncShopRefreshesExpiredToken(t *testing.T) {
	fx := newFixture(t)
	conn := fx.connected(testNow.Add(-time.Minute))
	fx.provider.setListings(listingJSON(1001, "Lavender", 2499, 100, 12))

	result, err := fx.sync.SyncShop(context.Background(), conn)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SyncedCount)
	assert.Equal(t, int32(1), fx.provider.refreshCalls.Load())
	assert.Equal(t, "T2", fx.mem.Connections[conn.ID].AccessToken)
}

func TestSyncShopPropagatesRefreshError(t *testing.T) {
	fx := newFixture(t)
	fx.provider.failRefresh = true
	conn := fx.connected(testNow.Add(-time.Minute))

	_, err := fx.sync.SyncShop(context.Background(), conn)
	assert.True(t, IsTokenRefresh(err))
	assert.Empty(t, fx.mem.Listings)
}

func TestSyncShopProviderFailure(t *testing.T) {
	fx := newFixture(t)
	conn := fx.connected(testNow.Add(time.Hour))
	conn.AccessToken = "revoked"

	_, err := fx.sync.SyncShop(context.Background(), conn)
	require.Error(t, err)

	var fetchErr *ProviderFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 401, fetchErr.StatusCode)
	assert.Equal(t, "listings", fetchErr.Resource)
}

func TestSyncUserShopWithoutConnection(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.sync.SyncUserShop(context.Background(), "user-1", "555")
	assert.ErrorIs(t, err, ErrNoActiveConnection)
}

func snapshotListings(fx *fixture) map[string]models.Listing {
	out := make(map[string]models.Listing)
	for k, v := range fx.mem.Listings {
		l := *v
		l.LastSyncedAt = nil
		out[k] = l
	}
	return out
}

func snapshotFragrances(fx *fixture) map[string]models.Fragrance {
	out := make(map[string]models.Fragrance)
	for k, v := range fx.mem.Fragrances {
		out[k] = *v
	}
	return out
}
