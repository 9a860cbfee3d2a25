// Package storetest provides an in-memory persistence gateway for tests.
//
// Usage:
//
//	mem := storetest.New()
//	mem.AddSupply(models.Supply{ID: "wax", Name: "Soy wax", Unit: "oz", Price: &price})
//	mem.AddProductSupply(models.ProductSupply{ProductID: "candle", SupplyID: "wax", Quantity: decimal.NewFromInt(2)})
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/store"
)

// Memory is a thread-safe in-memory implementation of every store interface
type Memory struct {
	mu     sync.Mutex
	nextID int

	Users           map[string]*models.UserAuth // by email
	Connections     map[string]*models.ShopConnection
	Platforms       map[string]*models.Platform  // by type
	Fragrances      map[string]*models.Fragrance // by sku
	Listings        map[string]*models.Listing   // by external id
	Supplies        map[string]*models.Supply
	ProductSupplies []models.ProductSupply
	Batches         map[string]*models.ProductionBatch
	Plans           []models.Plan
	Todos           []models.TodoTask

	// FailListing makes UpsertListing fail for the given external ids
	FailListing map[string]error
	// TokenUpdates counts UpdateConnectionTokens calls
	TokenUpdates int
}

var (
	_ store.UserStore       = (*Memory)(nil)
	_ store.ConnectionStore = (*Memory)(nil)
	_ store.CatalogStore    = (*Memory)(nil)
	_ store.ProductionStore = (*Memory)(nil)
	_ store.PlanStore       = (*Memory)(nil)
)

// New creates an empty in-memory store
func New() *Memory {
	return &Memory{
		Users:       make(map[string]*models.UserAuth),
		Connections: make(map[string]*models.ShopConnection),
		Platforms:   make(map[string]*models.Platform),
		Fragrances:  make(map[string]*models.Fragrance),
		Listings:    make(map[string]*models.Listing),
		Supplies:    make(map[string]*models.Supply),
		Batches:     make(map[string]*models.ProductionBatch),
		FailListing: make(map[string]error),
	}
}

// id returns a sequential uuid, so sorting by id keeps insertion order
func (m *Memory) id() string {
	m.nextID++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.nextID)
}

// AddSupply registers a supply
func (m *Memory) AddSupply(s models.Supply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Supplies[s.ID] = &s
}

// AddProductSupply registers a BOM line
func (m *Memory) AddProductSupply(ps models.ProductSupply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ps.ID == "" {
		ps.ID = m.id()
	}
	m.ProductSupplies = append(m.ProductSupplies, ps)
}

// AddConnection stores a connection as-is
func (m *Memory) AddConnection(c models.ShopConnection) *models.ShopConnection {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = m.id()
	}
	m.Connections[c.ID] = &c
	cp := c
	return &cp
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, u *models.UserAuth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Users[u.Email]; exists {
		return fmt.Errorf("duplicate email %s", u.Email)
	}
	if u.ID == "" {
		u.ID = m.id()
	}
	cp := *u
	m.Users[u.Email] = &cp
	return nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (*models.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) TouchLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID == id {
			u.LastLogin = &at
			return nil
		}
	}
	return store.ErrNotFound
}

// --- connections ---

func (m *Memory) GetConnection(_ context.Context, id string) (*models.ShopConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Connections[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) FindActiveConnection(_ context.Context, userID, shopID string) (*models.ShopConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Connections {
		if c.UserID == userID && c.ShopID == shopID && c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListConnections(_ context.Context, userID string) ([]models.ShopConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ShopConnection
	for _, c := range m.Connections {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListActiveConnections(_ context.Context) ([]models.ShopConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ShopConnection
	for _, c := range m.Connections {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpsertConnection(_ context.Context, conn *models.ShopConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Connections {
		if c.UserID == conn.UserID && c.ShopID == conn.ShopID {
			conn.ID = c.ID
			cp := *conn
			m.Connections[c.ID] = &cp
			return nil
		}
	}
	if conn.ID == "" {
		conn.ID = m.id()
	}
	cp := *conn
	m.Connections[conn.ID] = &cp
	return nil
}

func (m *Memory) UpdateConnectionTokens(_ context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Connections[id]
	if !ok {
		return store.ErrNotFound
	}
	m.TokenUpdates++
	c.AccessToken = accessToken
	c.RefreshToken = refreshToken
	c.ExpiresAt = expiresAt
	return nil
}

func (m *Memory) TouchConnectionSync(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Connections[id]
	if !ok {
		return store.ErrNotFound
	}
	c.LastSyncAt = &at
	return nil
}

func (m *Memory) DeactivateConnection(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Connections[id]
	if !ok {
		return store.ErrNotFound
	}
	c.IsActive = false
	return nil
}

// --- catalog ---

func (m *Memory) FindFragranceBySKU(_ context.Context, sku string) (*models.Fragrance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Fragrances[sku]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *Memory) CreateFragrance(_ context.Context, f *models.Fragrance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Fragrances[f.SKU]; exists {
		return fmt.Errorf("duplicate sku %s", f.SKU)
	}
	if f.ID == "" {
		f.ID = m.id()
	}
	cp := *f
	m.Fragrances[f.SKU] = &cp
	return nil
}

func (m *Memory) GetOrCreatePlatform(_ context.Context, p *models.Platform) (*models.Platform, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Platforms[p.Type]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *p
	if cp.ID == "" {
		cp.ID = m.id()
	}
	cp.IsActive = true
	m.Platforms[p.Type] = &cp
	out := cp
	return &out, nil
}

func (m *Memory) UpsertListing(_ context.Context, l *models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailListing[l.ExternalID]; err != nil {
		return err
	}
	if existing, ok := m.Listings[l.ExternalID]; ok {
		l.ID = existing.ID
		l.CreatedAt = existing.CreatedAt
	} else if l.ID == "" {
		l.ID = m.id()
	}
	cp := *l
	m.Listings[l.ExternalID] = &cp
	return nil
}

// --- production ---

func (m *Memory) ListProductSupplies(_ context.Context, productID string) ([]models.ProductSupply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ProductSupply
	for _, ps := range m.ProductSupplies {
		if ps.ProductID != productID {
			continue
		}
		if s, ok := m.Supplies[ps.SupplyID]; ok {
			cp := *s
			ps.Supply = &cp
		}
		out = append(out, ps)
	}
	return out, nil
}

func (m *Memory) CreateBatch(_ context.Context, b *models.ProductionBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = m.id()
	}
	cp := *b
	m.Batches[b.ID] = &cp
	return nil
}

func (m *Memory) GetBatch(_ context.Context, id string) (*models.ProductionBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Batches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) ListBatches(_ context.Context) ([]models.ProductionBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ProductionBatch, 0, len(m.Batches))
	for _, b := range m.Batches {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpdateBatchStatus(_ context.Context, id string, from, to models.BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Batches[id]
	if !ok {
		return store.ErrNotFound
	}
	if b.Status != from {
		return store.ErrStaleStatus
	}
	b.Status = to
	return nil
}

// --- plans ---

func (m *Memory) SavePlan(_ context.Context, plan *models.Plan, todos []models.TodoTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == "" {
		plan.ID = m.id()
	}
	for i := range plan.Tasks {
		plan.Tasks[i].PlanID = plan.ID
	}
	m.Plans = append(m.Plans, *plan)
	m.Todos = append(m.Todos, todos...)
	return nil
}
