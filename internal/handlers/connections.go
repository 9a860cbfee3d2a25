package handlers

import (
	"net/http"

	"github.com/xelth-com/shopdeskgo/internal/models"
)

// listConnections returns the caller's shop connections, tokens omitted
func (r *Router) listConnections(w http.ResponseWriter, req *http.Request) {
	if r.svc.Connector == nil {
		respondJSON(w, http.StatusOK, []models.ShopConnection{})
		return
	}

	conns, err := r.svc.Connector.Connections(req.Context(), currentUser(req))
	if err != nil {
		respondErr(w, err)
		return
	}
	if conns == nil {
		conns = []models.ShopConnection{}
	}
	respondJSON(w, http.StatusOK, conns)
}

// disconnect deactivates one of the caller's connections
func (r *Router) disconnect(w http.ResponseWriter, req *http.Request) {
	if r.svc.Connector == nil {
		respondError(w, http.StatusServiceUnavailable, "Etsy integration is not configured")
		return
	}

	id, err := pathID(req)
	if err != nil {
		respondErr(w, err)
		return
	}
	if err := r.svc.Connector.Disconnect(req.Context(), currentUser(req), id); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
