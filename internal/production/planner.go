// Package production turns per-unit bills of materials into batch material
// requirements and costs, and tracks batches through their lifecycle.
package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoRecipeConfigured = errors.New("no supplies configured for this product")
	ErrInvalidTransition  = errors.New("invalid batch status transition")
)

// transitions lists the only allowed status moves
var transitions = map[models.BatchStatus]models.BatchStatus{
	models.BatchPlanned:    models.BatchInProgress,
	models.BatchInProgress: models.BatchCompleted,
}

// CanTransition reports whether a batch may move from one status to another
func CanTransition(from, to models.BatchStatus) bool {
	next, ok := transitions[from]
	return ok && next == to
}

// BatchSummary is a saved batch with totals read from its snapshot
type BatchSummary struct {
	models.ProductionBatch
	TotalCost   decimal.Decimal `json:"totalCost"`
	CostPerUnit decimal.Decimal `json:"costPerUnit"`
}

// Planner computes and records production batches
type Planner struct {
	store store.ProductionStore
}

// NewPlanner creates a planner backed by the given store
func NewPlanner(s store.ProductionStore) *Planner {
	return &Planner{store: s}
}

// CalculateBatch scales the product's bill of materials to batchSize units.
// Nothing is persisted. Unpriced supplies cost zero but are still listed.
func (p *Planner) CalculateBatch(ctx context.Context, productID string, batchSize int) ([]models.SupplyLine, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product is required", ErrInvalidInput)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be a positive integer", ErrInvalidInput)
	}

	bom, err := p.store.ListProductSupplies(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill of materials: %w", err)
	}
	if len(bom) == 0 {
		return nil, ErrNoRecipeConfigured
	}

	size := decimal.NewFromInt(int64(batchSize))
	lines := make([]models.SupplyLine, 0, len(bom))
	for _, item := range bom {
		if item.Supply == nil {
			return nil, fmt.Errorf("supply %s referenced by product %s does not exist", item.SupplyID, productID)
		}

		line := models.SupplyLine{
			SupplyID:    item.SupplyID,
			SupplyName:  item.Supply.Name,
			UnitAmount:  item.Quantity,
			Unit:        item.Unit,
			TotalNeeded: item.Quantity.Mul(size),
			TotalCost:   decimal.Zero,
		}
		if line.Unit == "" {
			line.Unit = item.Supply.Unit
		}
		if item.Supply.Price != nil {
			line.Priced = true
			line.PricePerUnit = *item.Supply.Price
			line.TotalCost = item.Supply.Price.Mul(item.Quantity).Mul(size)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// SaveBatch records lines verbatim as the snapshot of a new planned batch
func (p *Planner) SaveBatch(ctx context.Context, productID string, batchSize int, lines []models.SupplyLine) (*models.ProductionBatch, error) {
	if productID == "" || batchSize <= 0 {
		return nil, fmt.Errorf("%w: product and a positive batch size are required", ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, ErrNoRecipeConfigured
	}

	snapshot := make([]models.SupplyLine, len(lines))
	copy(snapshot, lines)

	batch := &models.ProductionBatch{
		ProductID:          productID,
		BatchSize:          batchSize,
		CalculatedSupplies: snapshot,
		Status:             models.BatchPlanned,
	}
	if err := p.store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	logger.Info(ctx).
		Str("batch_id", batch.ID).
		Str("product_id", productID).
		Int("batch_size", batchSize).
		Str("total_cost", TotalCost(snapshot).StringFixed(2)).
		Msg("🏭 Production batch planned")
	return batch, nil
}

// PlanBatch calculates and saves a batch in one step
func (p *Planner) PlanBatch(ctx context.Context, productID string, batchSize int) (*models.ProductionBatch, error) {
	lines, err := p.CalculateBatch(ctx, productID, batchSize)
	if err != nil {
		return nil, err
	}
	return p.SaveBatch(ctx, productID, batchSize, lines)
}

// AdvanceStatus moves a batch forward. Only planned -> in_progress and
// in_progress -> completed are accepted.
func (p *Planner) AdvanceStatus(ctx context.Context, batchID string, next models.BatchStatus) (*models.ProductionBatch, error) {
	batch, err := p.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(batch.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, batch.Status, next)
	}

	if err := p.store.UpdateBatchStatus(ctx, batchID, batch.Status, next); err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return nil, fmt.Errorf("%w: batch changed concurrently", ErrInvalidTransition)
		}
		return nil, err
	}
	batch.Status = next

	logger.Info(ctx).Str("batch_id", batchID).Str("status", string(next)).Msg("🏭 Production batch advanced")
	return batch, nil
}

// Batch returns one saved batch
func (p *Planner) Batch(ctx context.Context, id string) (*models.ProductionBatch, error) {
	return p.store.GetBatch(ctx, id)
}

// Batches lists saved batches with totals taken from each snapshot
func (p *Planner) Batches(ctx context.Context) ([]BatchSummary, error) {
	batches, err := p.store.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BatchSummary, 0, len(batches))
	for _, b := range batches {
		out = append(out, Summarize(b))
	}
	return out, nil
}

// Summarize attaches snapshot totals to a batch
func Summarize(b models.ProductionBatch) BatchSummary {
	return BatchSummary{
		ProductionBatch: b,
		TotalCost:       TotalCost(b.CalculatedSupplies),
		CostPerUnit:     CostPerUnit(b.CalculatedSupplies, b.BatchSize),
	}
}

// TotalCost sums the cost of every line
func TotalCost(lines []models.SupplyLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalCost)
	}
	return total
}

// CostPerUnit divides the total cost over batchSize units
func CostPerUnit(lines []models.SupplyLine, batchSize int) decimal.Decimal {
	if batchSize <= 0 {
		return decimal.Zero
	}
	return TotalCost(lines).Div(decimal.NewFromInt(int64(batchSize)))
}
