package handlers

import (
	"encoding/json"
	"net/http"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/middleware"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SpecificationHandler manages specification documents and their
// extraction runs. File contents live elsewhere; only references are
// stored here.
type SpecificationHandler struct {
	db         *gorm.DB
	extraction *ExtractionService
}

// NewSpecificationHandler creates a new specification handler
func NewSpecificationHandler() *SpecificationHandler {
	return &SpecificationHandler{
		db:         config.DB,
		extraction: NewExtractionService(),
	}
}

// CreateSpecificationRequest registers an uploaded specification document
type CreateSpecificationRequest struct {
	ProjectID    uuid.UUID `json:"project_id"`
	FileName     string    `json:"file_name"`
	FilePath     string    `json:"file_path"`
	FileSize     int64     `json:"file_size"`
	SpecSections []string  `json:"spec_sections"`
}

// CreateSpecification registers a specification document
func (h *SpecificationHandler) CreateSpecification(w http.ResponseWriter, r *http.Request) {
	var req CreateSpecificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}
	if req.ProjectID == uuid.Nil || req.FileName == "" || req.FilePath == "" {
		utils.WriteError(w, utils.ValidationError("missing_required_fields",
			"project_id, file_name and file_path are required"))
		return
	}

	claims := middleware.GetClaims(r)
	doc := models.SpecificationDocument{
		ProjectID:    req.ProjectID,
		FileName:     req.FileName,
		FilePath:     req.FilePath,
		FileSize:     req.FileSize,
		SpecSections: pq.StringArray(req.SpecSections),
		UploadedBy:   claims.UserID,
	}

	if err := h.db.Create(&doc).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Specification document registered",
		"specification": doc,
	})
}

// ListSpecifications lists specification documents for a project
func (h *SpecificationHandler) ListSpecifications(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.SpecificationDocument{})
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var docs []models.SpecificationDocument
	if err := query.Order("created_at DESC").Find(&docs).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"specifications": docs,
		"count":          len(docs),
	})
}

// GetSpecification returns one document with its extraction runs
func (h *SpecificationHandler) GetSpecification(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var doc models.SpecificationDocument
	if err := h.db.
		Preload("Extractions", func(db *gorm.DB) *gorm.DB {
			return db.Order("extracted_at DESC")
		}).
		First(&doc, "id = ?", vars["id"]).Error; err != nil {
		utils.WriteError(w, utils.NotFoundError("specification document"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// ExtractSubmittals runs the extraction provider over a document
func (h *SpecificationHandler) ExtractSubmittals(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	specificationID, err := uuid.Parse(vars["id"])
	if err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_id", "'%s' is not a valid id", vars["id"]))
		return
	}

	claims := middleware.GetClaims(r)
	extraction, err := h.extraction.RunExtraction(specificationID, claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Extraction completed",
		"extraction": extraction,
	})
}

// GetExtraction returns one extraction run with its candidates
func (h *SpecificationHandler) GetExtraction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var extraction models.SpecExtraction
	if err := h.db.First(&extraction, "id = ?", vars["id"]).Error; err != nil {
		utils.WriteError(w, utils.NotFoundError("extraction"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(extraction)
}
