package handlers

import (
	"fmt"
	"net/http"

	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/production"
	"github.com/xelth-com/shopdeskgo/internal/services/printer"
)

// BatchRequest selects a product and the number of units to produce
type BatchRequest struct {
	ProductID string `json:"productId"`
	BatchSize int    `json:"batchSize"`
}

// StatusRequest carries the next batch status
type StatusRequest struct {
	Status models.BatchStatus `json:"status"`
}

// calculateBatch previews material needs and cost without saving
func (r *Router) calculateBatch(w http.ResponseWriter, req *http.Request) {
	var body BatchRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	lines, err := r.svc.Planner.CalculateBatch(req.Context(), body.ProductID, body.BatchSize)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"supplies":    lines,
		"totalCost":   production.TotalCost(lines),
		"costPerUnit": production.CostPerUnit(lines, body.BatchSize),
	})
}

// listBatches returns saved batches, newest first
func (r *Router) listBatches(w http.ResponseWriter, req *http.Request) {
	batches, err := r.svc.Planner.Batches(req.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batches)
}

// createBatch calculates and saves a planned batch
func (r *Router) createBatch(w http.ResponseWriter, req *http.Request) {
	var body BatchRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	batch, err := r.svc.Planner.PlanBatch(req.Context(), body.ProductID, body.BatchSize)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, production.Summarize(*batch))
}

// getBatch returns one batch with its snapshot totals
func (r *Router) getBatch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondErr(w, err)
		return
	}
	batch, err := r.svc.Planner.Batch(req.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, production.Summarize(*batch))
}

// advanceBatch moves a batch to its next status
func (r *Router) advanceBatch(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondErr(w, err)
		return
	}
	var body StatusRequest
	if err := decodeJSON(w, req, &body); err != nil || body.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	batch, err := r.svc.Planner.AdvanceStatus(req.Context(), id, body.Status)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, production.Summarize(*batch))
}

// batchSheet renders a printable PDF of the batch snapshot
func (r *Router) batchSheet(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		respondErr(w, err)
		return
	}
	batch, err := r.svc.Planner.Batch(req.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}

	productName := ""
	if batch.Product != nil {
		productName = batch.Product.Name
	}

	pdf, err := printer.GenerateBatchSheetPDF(production.Summarize(*batch), productName)
	if err != nil {
		logger.Error(req.Context()).Err(err).Str("batch_id", batch.ID).Msg("❌ Failed to render batch sheet")
		respondError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=batch-%s.pdf", batch.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
