package handlers

import (
	"net/http"

	"github.com/xelth-com/shopdeskgo/internal/ai"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/services/etsy"
)

// EtsyOAuthRequest drives both legs of the OAuth handshake
type EtsyOAuthRequest struct {
	Action string `json:"action"` // "connect" or "callback"
	Code   string `json:"code,omitempty"`
	State  string `json:"state,omitempty"`
}

// EtsySyncRequest selects the shop to sync
type EtsySyncRequest struct {
	ShopID string `json:"shopId"`
}

// AnalyzeListingRequest wraps the listing to analyze
type AnalyzeListingRequest struct {
	ListingData ai.ListingData `json:"listingData"`
}

// etsyOAuth starts or completes a shop connection
func (r *Router) etsyOAuth(w http.ResponseWriter, req *http.Request) {
	if r.svc.Connector == nil {
		respondError(w, http.StatusServiceUnavailable, "Etsy integration is not configured")
		return
	}

	var body EtsyOAuthRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	userID := currentUser(req)
	origin := req.Header.Get("Origin")

	switch body.Action {
	case "connect":
		authURL, err := r.svc.Connector.BeginConnect(userID, origin)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"authUrl": authURL})

	case "callback":
		conn, err := r.svc.Connector.CompleteConnect(req.Context(), userID, body.Code, body.State, origin)
		if err != nil {
			logger.Error(req.Context()).Err(err).Msg("❌ Etsy connection failed")
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"shop": map[string]string{
				"id":   conn.ShopID,
				"name": conn.ShopName,
			},
		})

	default:
		respondError(w, http.StatusBadRequest, "Invalid action")
	}
}

// etsySync pulls active listings of one of the caller's shops
func (r *Router) etsySync(w http.ResponseWriter, req *http.Request) {
	if r.svc.Sync == nil {
		respondError(w, http.StatusServiceUnavailable, "Etsy integration is not configured")
		return
	}

	var body EtsySyncRequest
	if err := decodeJSON(w, req, &body); err != nil || body.ShopID == "" {
		respondError(w, http.StatusBadRequest, "shopId is required")
		return
	}

	result, err := r.svc.Sync.SyncUserShop(req.Context(), currentUser(req), body.ShopID)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*etsy.SyncResult
	}{true, result})
}

// analyzeListing returns an SEO analysis, or {error, rawResponse} inside
// analysis when the model output was not valid JSON
func (r *Router) analyzeListing(w http.ResponseWriter, req *http.Request) {
	if r.svc.AI == nil {
		respondErr(w, ai.ErrNotConfigured)
		return
	}

	var body AnalyzeListingRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := r.svc.AI.AnalyzeListing(req.Context(), body.ListingData)
	if err != nil {
		logger.Error(req.Context()).Err(err).Msg("❌ Listing analysis failed")
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"analysis": result})
}

// generateBusinessPlan returns the plan object itself
func (r *Router) generateBusinessPlan(w http.ResponseWriter, req *http.Request) {
	if r.svc.AI == nil {
		respondPlanError(w, ai.ErrNotConfigured)
		return
	}

	var body ai.PlanRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	plan, err := r.svc.AI.GenerateBusinessPlan(req.Context(), body)
	if err != nil {
		logger.Error(req.Context()).Err(err).Msg("❌ Business plan generation failed")
		respondPlanError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func respondPlanError(w http.ResponseWriter, err error) {
	respondJSON(w, statusFor(err), map[string]string{
		"error":   "Failed to generate business plan",
		"details": err.Error(),
	})
}
