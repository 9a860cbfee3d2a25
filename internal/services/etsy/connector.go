package etsy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/metrics"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/store"
)

// Connector establishes and maintains shop connections over the
// authorization-code grant.
//
// Connection lifecycle:
//
//	Disconnected -> BeginConnect -> AwaitingCallback
//	AwaitingCallback -> CompleteConnect(code) -> Connected
//	Connected -> EnsureFreshToken (expired) -> Connected | error
//	Connected -> Disconnect -> Disconnected
type Connector struct {
	client *Client
	store  store.ConnectionStore
	locks  *keyedMutex
	now    func() time.Time
}

// NewConnector creates a connector backed by the given client and store
func NewConnector(client *Client, conns store.ConnectionStore) *Connector {
	return &Connector{
		client: client,
		store:  conns,
		locks:  newKeyedMutex(),
		now:    time.Now,
	}
}

// WithClock replaces the time source, mainly for tests
func (c *Connector) WithClock(now func() time.Time) *Connector {
	c.now = now
	return c
}

// BeginConnect returns the authorization URL the user must visit.
// The user id is embedded as state and verified on callback.
func (c *Connector) BeginConnect(userID, callerOrigin string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	return c.client.AuthCodeURL(userID, callerOrigin), nil
}

// CompleteConnect exchanges the callback code for tokens, fetches the shop
// profile and upserts the connection keyed by (userID, shopID).
func (c *Connector) CompleteConnect(ctx context.Context, userID, code, state, callerOrigin string) (*models.ShopConnection, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if state != "" && state != userID {
		return nil, ErrStateMismatch
	}

	tok, err := c.client.Exchange(ctx, code, callerOrigin)
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("response", retrieveErrorBody(err)).
			Msg("❌ Etsy token exchange failed")
		return nil, &TokenExchangeError{err: err}
	}

	shop, err := c.client.GetShop(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	now := c.now()
	conn := &models.ShopConnection{
		UserID:       userID,
		ShopID:       strconv.FormatInt(shop.ShopID, 10),
		ShopName:     shop.ShopName,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.ExpiresAt(now),
		IsActive:     true,
		LastSyncAt:   &now,
	}
	if err := c.store.UpsertConnection(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to store connection: %w", err)
	}

	logger.Info(ctx).
		Str("user_id", userID).
		Str("shop_id", conn.ShopID).
		Str("shop_name", conn.ShopName).
		Msg("🔗 Etsy shop connected")
	return conn, nil
}

// EnsureFreshToken returns a usable access token for conn. While the token
// is still valid no network call is made. Once expired, exactly one refresh
// grant is performed and the new tokens are persisted and copied into conn.
// On refresh failure the stored row is left untouched.
func (c *Connector) EnsureFreshToken(ctx context.Context, conn *models.ShopConnection) (string, error) {
	if !conn.Expired(c.now()) {
		return conn.AccessToken, nil
	}

	unlock := c.locks.Lock(conn.ID)
	defer unlock()

	// Another caller may have refreshed while we waited for the lock
	current, err := c.store.GetConnection(ctx, conn.ID)
	switch {
	case err == nil:
		if !current.Expired(c.now()) {
			*conn = *current
			return conn.AccessToken, nil
		}
	case errors.Is(err, store.ErrNotFound):
		current = conn
	default:
		return "", fmt.Errorf("failed to reload connection: %w", err)
	}

	tok, err := c.client.Refresh(ctx, current.RefreshToken)
	metrics.TokenRefreshes.WithLabelValues(PlatformType, metrics.Result(err)).Inc()
	if err != nil {
		logger.Error(ctx).
			Err(err).
			Str("connection_id", conn.ID).
			Str("response", retrieveErrorBody(err)).
			Msg("❌ Etsy token refresh failed")
		return "", &TokenRefreshError{err: err}
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		refreshToken = current.RefreshToken
	}
	expiresAt := tok.ExpiresAt(c.now())

	conn.AccessToken = tok.AccessToken
	conn.RefreshToken = refreshToken
	conn.ExpiresAt = expiresAt

	// The old refresh token is already spent; the caller keeps the new pair
	// even when the row cannot be updated.
	if err := c.store.UpdateConnectionTokens(ctx, conn.ID, tok.AccessToken, refreshToken, expiresAt); err != nil {
		logger.Error(ctx).
			Err(err).
			Str("connection_id", conn.ID).
			Time("expires_at", expiresAt).
			Msg("❌ Etsy token refreshed but not persisted, reconnect may be required")
		return conn.AccessToken, nil
	}

	logger.Debug(ctx).Str("connection_id", conn.ID).Time("expires_at", expiresAt).Msg("🔄 Etsy token refreshed")
	return conn.AccessToken, nil
}

// ActiveConnection returns the caller's active connection for shopID
func (c *Connector) ActiveConnection(ctx context.Context, userID, shopID string) (*models.ShopConnection, error) {
	conn, err := c.store.FindActiveConnection(ctx, userID, shopID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoActiveConnection
	}
	return conn, err
}

// Connections lists every connection owned by userID
func (c *Connector) Connections(ctx context.Context, userID string) ([]models.ShopConnection, error) {
	return c.store.ListConnections(ctx, userID)
}

// Disconnect deactivates a connection owned by userID. Tokens are kept
// on the row and are not revoked with the provider.
func (c *Connector) Disconnect(ctx context.Context, userID, connectionID string) error {
	conn, err := c.store.GetConnection(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveConnection
		}
		return err
	}
	if conn.UserID != userID {
		return ErrNoActiveConnection
	}
	if err := c.store.DeactivateConnection(ctx, connectionID); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	logger.Info(ctx).Str("connection_id", connectionID).Msg("🔌 Etsy shop disconnected")
	return nil
}
