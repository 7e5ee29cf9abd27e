package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"p9e.in/ocpipeline/middleware"
	"p9e.in/ocpipeline/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// SubmittalHandler exposes the submittal workflow over HTTP. It only
// decodes requests, delegates to the workflow and translates errors.
type SubmittalHandler struct {
	workflow *SubmittalWorkflow
}

// NewSubmittalHandler creates a new submittal handler
func NewSubmittalHandler() *SubmittalHandler {
	return &SubmittalHandler{
		workflow: NewSubmittalWorkflow(),
	}
}

// TransitionStatusRequest is the payload for a status change.
type TransitionStatusRequest struct {
	Status   string `json:"status"`
	Comments string `json:"comments"`
}

// CreateSubmittal creates a new submittal with optional line items
func (h *SubmittalHandler) CreateSubmittal(w http.ResponseWriter, r *http.Request) {
	var input CreateSubmittalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}

	claims := middleware.GetClaims(r)
	submittal, err := h.workflow.Create(input, claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Submittal created successfully",
		"submittal": submittal,
	})
}

// GetSubmittal retrieves a submittal with its items and reviews
func (h *SubmittalHandler) GetSubmittal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	submittal, err := h.workflow.Get(id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"submittal": submittal,
		"items":     submittal.Items,
		"reviews":   submittal.Reviews,
	})
}

// ListSubmittals lists submittals with filters and pagination
func (h *SubmittalHandler) ListSubmittals(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, limit = NormalizePagination(page, limit)

	q := ListSubmittalsQuery{
		ProjectID:   r.URL.Query().Get("project_id"),
		Status:      r.URL.Query().Get("status"),
		Type:        r.URL.Query().Get("type"),
		SpecSection: r.URL.Query().Get("spec_section"),
		Priority:    r.URL.Query().Get("priority"),
		AssignedTo:  r.URL.Query().Get("assigned_to"),
		Page:        page,
		Limit:       limit,
		Sort:        r.URL.Query().Get("sort"),
		Order:       r.URL.Query().Get("order"),
	}

	submittals, total, err := h.workflow.List(q)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"submittals": submittals,
		"pagination": map[string]interface{}{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// UpdateSubmittal updates the allow-listed fields of a submittal
func (h *SubmittalHandler) UpdateSubmittal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var input UpdateSubmittalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}

	claims := middleware.GetClaims(r)
	submittal, err := h.workflow.Update(id, input, claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Submittal updated successfully",
		"submittal": submittal,
	})
}

// TransitionSubmittalStatus applies a workflow status change
func (h *SubmittalHandler) TransitionSubmittalStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req TransitionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}

	claims := middleware.GetClaims(r)
	submittal, err := h.workflow.TransitionStatus(id, req.Status, req.Comments, claims.UserID, claims.Role)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Submittal status updated successfully",
		"submittal": submittal,
	})
}

// GetSubmittalReviews returns the review ledger for a submittal
func (h *SubmittalHandler) GetSubmittalReviews(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	reviews, err := h.workflow.ListReviews(id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// DeleteSubmittal hard-deletes a submittal and its items
func (h *SubmittalHandler) DeleteSubmittal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	claims := middleware.GetClaims(r)
	if err := h.workflow.Delete(id, claims.UserID); err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Submittal deleted successfully",
	})
}

// GetSubmittalStats returns submittal counts by status for a project
func (h *SubmittalHandler) GetSubmittalStats(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		utils.WriteError(w, utils.ValidationError("missing_project_id", "project_id query parameter is required"))
		return
	}

	stats, err := h.workflow.Stats(projectID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"project_id":       projectID,
		"counts_by_status": stats,
	})
}

// parseIDParam extracts and validates the {id} path parameter.
func parseIDParam(r *http.Request) (uuid.UUID, error) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		return uuid.Nil, utils.ValidationError("invalid_id", "'%s' is not a valid id", vars["id"])
	}
	return id, nil
}
