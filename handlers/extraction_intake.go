package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/middleware"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// SubmittalCandidate is one submittal-shaped proposal from an extraction
// provider (AI or manual), pending human confirmation.
type SubmittalCandidate struct {
	SubmittalNumber string               `json:"submittal_number"`
	SpecSection     string               `json:"spec_section"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Type            string               `json:"type"`
	Priority        string               `json:"priority"`
	ConfidenceScore float64              `json:"confidence_score"` // 0-100
	Items           []SubmittalItemInput `json:"items"`
}

// ExtractionIntake materializes extraction candidates into real
// submittals. All creations of one Ingest call share a transaction.
type ExtractionIntake struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewExtractionIntake creates a new intake instance
func NewExtractionIntake() *ExtractionIntake {
	return &ExtractionIntake{
		db:       config.DB,
		activity: NewActivityRecorder(),
	}
}

// Ingest converts the selected candidates of an extraction into
// submittals. When selected is nil every candidate is materialized.
//
// Re-ingesting an already-converted extraction is not guarded against
// and creates duplicate submittals; adding an idempotency key is a
// product decision, not a bugfix.
func (in *ExtractionIntake) Ingest(specificationID, extractionID uuid.UUID, selected []int, actorID string) ([]models.Submittal, error) {
	var doc models.SpecificationDocument
	if err := in.db.First(&doc, "id = ?", specificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("specification document")
		}
		return nil, utils.InternalError(fmt.Errorf("failed to fetch specification: %w", err))
	}

	var extraction models.SpecExtraction
	if err := in.db.First(&extraction, "id = ?", extractionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("extraction")
		}
		return nil, utils.InternalError(fmt.Errorf("failed to fetch extraction: %w", err))
	}
	if extraction.SpecificationID != doc.ID {
		return nil, utils.ValidationError("extraction_mismatch",
			"extraction %s does not belong to specification %s", extractionID, specificationID)
	}

	var candidates []SubmittalCandidate
	if err := json.Unmarshal(extraction.Candidates, &candidates); err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to decode extraction candidates: %w", err))
	}

	picked, err := selectCandidates(candidates, selected)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, utils.ValidationError("no_candidates", "extraction has no candidates to convert")
	}

	tx := in.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	created := make([]models.Submittal, 0, len(picked))
	for _, candidate := range picked {
		submittal := newSubmittalFromCandidate(doc, candidate, actorID)

		if err := tx.Create(&submittal).Error; err != nil {
			tx.Rollback()
			if isDuplicateKey(err) {
				return nil, utils.ConflictError("submittal number '%s' already exists in this project", submittal.SubmittalNumber)
			}
			return nil, utils.InternalError(fmt.Errorf("failed to create submittal from candidate: %w", err))
		}

		for i, itemInput := range candidate.Items {
			item := newSubmittalItem(submittal.ID, i, itemInput)
			if err := tx.Create(&item).Error; err != nil {
				tx.Rollback()
				return nil, utils.InternalError(fmt.Errorf("failed to create submittal item %d: %w", item.ItemNumber, err))
			}
			submittal.Items = append(submittal.Items, item)
		}

		// Mark the extraction consumed. Single-valued link: with
		// multiple candidates the last created submittal wins.
		if err := tx.Model(&extraction).Updates(map[string]interface{}{
			"status":                    models.ExtractionStatusConverted,
			"converted_to_submittal_id": submittal.ID,
		}).Error; err != nil {
			tx.Rollback()
			return nil, utils.InternalError(fmt.Errorf("failed to mark extraction converted: %w", err))
		}

		created = append(created, submittal)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	in.activity.Record("extraction", extraction.ID, "ingested", actorID, "",
		fmt.Sprintf("%d submittals created from extraction", len(created)))

	log.Printf("✅ Ingested extraction %s: %d submittals created", extraction.ID, len(created))
	return created, nil
}

// selectCandidates applies the positional selection. nil means all.
func selectCandidates(candidates []SubmittalCandidate, selected []int) ([]SubmittalCandidate, error) {
	if selected == nil {
		return candidates, nil
	}
	picked := make([]SubmittalCandidate, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(candidates) {
			return nil, utils.ValidationError("invalid_selection",
				"selected index %d out of range (%d candidates)", idx, len(candidates))
		}
		picked = append(picked, candidates[idx])
	}
	return picked, nil
}

// newSubmittalFromCandidate builds the persisted submittal for one
// candidate, falling back to a generated number when the provider
// omitted one. The AI-<millis> fallback is duplicate-prone by
// construction when two candidates land in the same millisecond.
func newSubmittalFromCandidate(doc models.SpecificationDocument, candidate SubmittalCandidate, actorID string) models.Submittal {
	number := candidate.SubmittalNumber
	if number == "" {
		number = fmt.Sprintf("AI-%d", time.Now().UnixMilli())
	}
	title := candidate.Title
	if title == "" {
		title = fmt.Sprintf("Submittal %s", number)
	}
	specSection := candidate.SpecSection
	if specSection == "" && len(doc.SpecSections) > 0 {
		specSection = doc.SpecSections[0]
	}
	submittalType := candidate.Type
	if !IsValidSubmittalType(submittalType) {
		submittalType = "other"
	}
	priority := candidate.Priority
	if !IsValidSubmittalPriority(priority) {
		priority = "normal"
	}
	confidence := candidate.ConfidenceScore

	return models.Submittal{
		ProjectID:            doc.ProjectID,
		SubmittalNumber:      number,
		SpecSection:          specSection,
		Title:                title,
		Description:          candidate.Description,
		Type:                 submittalType,
		Status:               models.SubmittalStatusNotStarted,
		Priority:             priority,
		SourceType:           models.SourceTypeSpecAI,
		SourceDocumentID:     &doc.ID,
		AIExtracted:          true,
		AIConfidenceScore:    &confidence,
		BuyAmericanRequired:  false,
		DavisBaconApplicable: false,
		CreatedBy:            actorID,
	}
}

// ExtractionIntakeHandler exposes the intake over HTTP.
type ExtractionIntakeHandler struct {
	intake *ExtractionIntake
}

// NewExtractionIntakeHandler creates a new intake handler
func NewExtractionIntakeHandler() *ExtractionIntakeHandler {
	return &ExtractionIntakeHandler{
		intake: NewExtractionIntake(),
	}
}

// CreateSubmittalsRequest is the payload for converting an extraction.
type CreateSubmittalsRequest struct {
	ExtractionID       uuid.UUID `json:"extraction_id"`
	SelectedSubmittals []int     `json:"selected_submittals"`
}

// CreateSubmittalsFromExtraction materializes extraction candidates
func (h *ExtractionIntakeHandler) CreateSubmittalsFromExtraction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	specificationID, err := uuid.Parse(vars["id"])
	if err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_id", "'%s' is not a valid id", vars["id"]))
		return
	}

	var req CreateSubmittalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, utils.ValidationError("invalid_json", "request body is not valid JSON"))
		return
	}
	if req.ExtractionID == uuid.Nil {
		utils.WriteError(w, utils.ValidationError("missing_extraction_id", "extraction_id is required"))
		return
	}

	claims := middleware.GetClaims(r)
	submittals, err := h.intake.Ingest(specificationID, req.ExtractionID, req.SelectedSubmittals, claims.UserID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":    "Submittals created from extraction",
		"submittals": submittals,
		"count":      len(submittals),
	})
}
