package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xelth-com/shopdeskgo/internal/ai"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"gorm.io/datatypes"
)

// SavePlanRequest stores a generated plan and turns the selected tasks into todos
type SavePlanRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	FormData      ai.PlanForm     `json:"formData"`
	Plan          ai.BusinessPlan `json:"plan"`
	SelectedTasks []int           `json:"selectedTasks"`
}

// savePlan persists a plan, its selected tasks and matching todo entries
func (r *Router) savePlan(w http.ResponseWriter, req *http.Request) {
	var body SavePlanRequest
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Title == "" {
		body.Title = body.FormData.Title
	}
	if body.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	fields, err := json.Marshal(body.FormData)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	generated, err := json.Marshal(body.Plan)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan")
		return
	}

	userID := currentUser(req)
	plan := models.Plan{
		UserID:          userID,
		Title:           body.Title,
		Description:     body.Description,
		FieldsData:      datatypes.JSON(fields),
		AIGeneratedPlan: datatypes.JSON(generated),
		Status:          "draft",
	}

	var todos []models.TodoTask
	seen := make(map[int]bool, len(body.SelectedTasks))
	for _, idx := range body.SelectedTasks {
		if idx < 0 || idx >= len(body.Plan.Tasks) {
			respondError(w, http.StatusBadRequest, "selected task index out of range")
			return
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true

		task := body.Plan.Tasks[idx]
		plan.Tasks = append(plan.Tasks, models.PlanTask{
			Title:       task.Title,
			Description: task.Description,
			OrderIndex:  idx,
		})
		todos = append(todos, models.TodoTask{
			UserID:      userID,
			Title:       task.Title,
			Description: task.Description,
		})
	}

	if err := r.svc.Plans.SavePlan(req.Context(), &plan, todos); err != nil {
		logger.Error(req.Context()).Err(err).Msg("❌ Failed to save business plan")
		respondError(w, http.StatusInternalServerError, "Failed to save plan")
		return
	}

	logger.Info(req.Context()).
		Str("plan_id", plan.ID).
		Int("tasks", len(plan.Tasks)).
		Msg("📋 Business plan saved")
	respondJSON(w, http.StatusCreated, plan)
}
