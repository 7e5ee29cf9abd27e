package handlers

import (
	"encoding/json"
	"net/http"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ContractorHandler maintains the vendor directory referenced by
// submittal assignments.
type ContractorHandler struct {
	db *gorm.DB
}

// NewContractorHandler creates a new contractor handler
func NewContractorHandler() *ContractorHandler {
	return &ContractorHandler{
		db: config.DB,
	}
}

// CreateContractorRequest represents the request to create a contractor
type CreateContractorRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Trade       string `json:"trade"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// CreateContractor adds a contractor to the directory
func (h *ContractorHandler) CreateContractor(w http.ResponseWriter, r *http.Request) {
	var req CreateContractorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}
	if req.Name == "" {
		utils.WriteError(w, utils.ValidationError("missing_required_fields", "name is required"))
		return
	}

	contractor := models.Contractor{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Trade:       req.Trade,
		Email:       req.Email,
		Phone:       req.Phone,
		IsActive:    true,
	}
	if err := h.db.Create(&contractor).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Contractor created successfully",
		"contractor": contractor,
	})
}

// ListContractors lists directory entries, optionally by trade
func (h *ContractorHandler) ListContractors(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.Contractor{}).Where("is_active = ?", true)
	if trade := r.URL.Query().Get("trade"); trade != "" {
		query = query.Where("trade = ?", trade)
	}

	var contractors []models.Contractor
	if err := query.Order("name ASC").Find(&contractors).Error; err != nil {
		utils.WriteError(w, utils.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"contractors": contractors,
		"count":       len(contractors),
	})
}

// GetContractor retrieves one contractor
func (h *ContractorHandler) GetContractor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var contractor models.Contractor
	if err := h.db.First(&contractor, "id = ?", vars["id"]).Error; err != nil {
		utils.WriteError(w, utils.NotFoundError("contractor"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contractor)
}
