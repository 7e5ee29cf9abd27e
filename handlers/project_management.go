package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/middleware"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ProjectHandler handles project management operations
type ProjectHandler struct {
	db *gorm.DB
}

// NewProjectHandler creates a new project handler
func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{
		db: config.DB,
	}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Number               string     `json:"number"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Address              string     `json:"address"`
	OwnerName            string     `json:"owner_name"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	BuyAmericanRequired  bool       `json:"buy_american_required"`
	DavisBaconApplicable bool       `json:"davis_bacon_applicable"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	OwnerName   string     `json:"owner_name"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      string     `json:"status"`
}

// CreateProject creates a new project
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}

	if req.Number == "" || req.Name == "" {
		utils.WriteError(w, utils.ValidationError("missing_required_fields", "number and name are required"))
		return
	}

	claims := middleware.GetClaims(r)

	project := models.Project{
		Number:               req.Number,
		Name:                 req.Name,
		Description:          req.Description,
		Address:              req.Address,
		OwnerName:            req.OwnerName,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Status:               "active",
		BuyAmericanRequired:  req.BuyAmericanRequired,
		DavisBaconApplicable: req.DavisBaconApplicable,
		CreatedBy:            claims.UserID,
	}

	if err := h.db.Create(&project).Error; err != nil {
		if isDuplicateKey(err) {
			utils.WriteError(w, utils.ConflictError("project number '%s' already exists", req.Number))
			return
		}
		log.Printf("❌ Failed to create project: %v", err)
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	log.Printf("✅ Created project: %s (ID: %s)", project.Name, project.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Project created successfully",
		"project": project,
	})
}

// GetProject retrieves a project by ID
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var project models.Project
	if err := h.db.First(&project, "id = ?", vars["id"]).Error; err != nil {
		utils.WriteError(w, utils.NotFoundError("project"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(project)
}

// ListProjects lists all projects with filters
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Project{})

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Find(&projects).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// UpdateProject updates a project
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}

	var project models.Project
	if err := h.db.First(&project, "id = ?", vars["id"]).Error; err != nil {
		utils.WriteError(w, utils.NotFoundError("project"))
		return
	}

	claims := middleware.GetClaims(r)

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Address != "" {
		project.Address = req.Address
	}
	if req.OwnerName != "" {
		project.OwnerName = req.OwnerName
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Status != "" {
		project.Status = req.Status
	}
	project.UpdatedBy = claims.UserID

	if err := h.db.Save(&project).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	log.Printf("✅ Updated project: %s", project.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Project updated successfully",
		"project": project,
	})
}

// DeleteProject deletes a project
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var project models.Project
	if err := h.db.First(&project, "id = ?", vars["id"]).Error; err != nil {
		utils.WriteError(w, utils.NotFoundError("project"))
		return
	}

	if err := h.db.Delete(&project).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	log.Printf("✅ Deleted project: %s", vars["id"])
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Project deleted successfully",
	})
}
