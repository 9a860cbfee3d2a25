package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements every gateway interface on top of gorm
type Store struct {
	db     *gorm.DB
	cipher *utils.TokenCipher
}

var (
	_ UserStore       = (*Store)(nil)
	_ ConnectionStore = (*Store)(nil)
	_ CatalogStore    = (*Store)(nil)
	_ ProductionStore = (*Store)(nil)
	_ PlanStore       = (*Store)(nil)
)

// New creates a gorm-backed store. cipher may be nil.
func New(db *gorm.DB, cipher *utils.TokenCipher) *Store {
	return &Store{db: db, cipher: cipher}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *models.UserAuth) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	var user models.UserAuth
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.UserAuth{}).Where("id = ?", id).Update("last_login", at).Error
}

// --- connections ---

func (s *Store) openConnection(c *models.ShopConnection) error {
	var err error
	if c.AccessToken, err = s.cipher.Open(c.AccessToken); err != nil {
		return fmt.Errorf("access token: %w", err)
	}
	if c.RefreshToken, err = s.cipher.Open(c.RefreshToken); err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	return nil
}

func (s *Store) GetConnection(ctx context.Context, id string) (*models.ShopConnection, error) {
	var conn models.ShopConnection
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&conn).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.openConnection(&conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Store) FindActiveConnection(ctx context.Context, userID, shopID string) (*models.ShopConnection, error) {
	var conn models.ShopConnection
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND shop_id = ? AND is_active = ?", userID, shopID, true).
		First(&conn).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.openConnection(&conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Store) ListConnections(ctx context.Context, userID string) ([]models.ShopConnection, error) {
	var conns []models.ShopConnection
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (s *Store) ListActiveConnections(ctx context.Context) ([]models.ShopConnection, error) {
	var conns []models.ShopConnection
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&conns).Error; err != nil {
		return nil, err
	}
	for i := range conns {
		if err := s.openConnection(&conns[i]); err != nil {
			return nil, err
		}
	}
	return conns, nil
}

func (s *Store) UpsertConnection(ctx context.Context, conn *models.ShopConnection) error {
	row := *conn
	var err error
	if row.AccessToken, err = s.cipher.Seal(conn.AccessToken); err != nil {
		return err
	}
	if row.RefreshToken, err = s.cipher.Seal(conn.RefreshToken); err != nil {
		return err
	}

	tx := s.db.WithContext(ctx)
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop_name", "access_token", "refresh_token", "expires_at", "is_active", "last_sync_at", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	var stored models.ShopConnection
	if err := tx.Where("user_id = ? AND shop_id = ?", conn.UserID, conn.ShopID).First(&stored).Error; err != nil {
		return notFound(err)
	}
	conn.ID = stored.ID
	conn.CreatedAt = stored.CreatedAt
	conn.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) UpdateConnectionTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	sealedAccess, err := s.cipher.Seal(accessToken)
	if err != nil {
		return err
	}
	sealedRefresh, err := s.cipher.Seal(refreshToken)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.ShopConnection{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token":  sealedAccess,
		"refresh_token": sealedRefresh,
		"expires_at":    expiresAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchConnectionSync(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.ShopConnection{}).Where("id = ?", id).Update("last_sync_at", at).Error
}

func (s *Store) DeactivateConnection(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.ShopConnection{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- catalog ---

func (s *Store) FindFragranceBySKU(ctx context.Context, sku string) (*models.Fragrance, error) {
	var f models.Fragrance
	if err := s.db.WithContext(ctx).Where("sku = ?", sku).First(&f).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) CreateFragrance(ctx context.Context, f *models.Fragrance) error {
	return s.db.WithContext(ctx).Create(f).Error
}

func (s *Store) GetOrCreatePlatform(ctx context.Context, p *models.Platform) (*models.Platform, error) {
	var platform models.Platform
	err := s.db.WithContext(ctx).
		Where(models.Platform{Type: p.Type}).
		Attrs(models.Platform{Name: p.Name, APIEndpoint: p.APIEndpoint, IsActive: true}).
		FirstOrCreate(&platform).Error
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

func (s *Store) UpsertListing(ctx context.Context, l *models.Listing) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "etsy_listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fragrance_id", "platform_id", "title", "description", "price", "quantity", "status", "url", "last_synced_at",
		}),
	}).Create(l).Error
}

// --- production ---

func (s *Store) ListProductSupplies(ctx context.Context, productID string) ([]models.ProductSupply, error) {
	var lines []models.ProductSupply
	err := s.db.WithContext(ctx).
		Preload("Supply").
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Store) CreateBatch(ctx context.Context, b *models.ProductionBatch) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (s *Store) GetBatch(ctx context.Context, id string) (*models.ProductionBatch, error) {
	var b models.ProductionBatch
	if err := s.db.WithContext(ctx).Preload("Product").Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *Store) ListBatches(ctx context.Context) ([]models.ProductionBatch, error) {
	var batches []models.ProductionBatch
	if err := s.db.WithContext(ctx).Preload("Product.Category").Order("created_at DESC").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (s *Store) UpdateBatchStatus(ctx context.Context, id string, from, to models.BatchStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.ProductionBatch{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetBatch(ctx, id); err != nil {
			return err
		}
		return ErrStaleStatus
	}
	return nil
}

// --- plans ---

func (s *Store) SavePlan(ctx context.Context, plan *models.Plan, todos []models.TodoTask) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Tasks are inserted with the plan through the association
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("failed to save plan: %w", err)
		}
		if len(todos) > 0 {
			if err := tx.Create(&todos).Error; err != nil {
				return fmt.Errorf("failed to save todo tasks: %w", err)
			}
		}
		return nil
	})
}
