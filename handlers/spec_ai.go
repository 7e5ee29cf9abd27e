package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExtractionService is the extraction provider boundary. The current
// implementation is a placeholder that fabricates submittal-shaped
// candidates from the document's spec sections; the contract is only
// "a list of candidates with confidence scores", so a real OCR/LLM
// provider can replace generateCandidates without touching the intake.
type ExtractionService struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewExtractionService creates a new extraction service
func NewExtractionService() *ExtractionService {
	return &ExtractionService{
		db:       config.DB,
		activity: NewActivityRecorder(),
	}
}

// RunExtraction produces an extraction record for a specification
// document and fills it with candidates.
func (es *ExtractionService) RunExtraction(specificationID uuid.UUID, actorID string) (*models.SpecExtraction, error) {
	var doc models.SpecificationDocument
	if err := es.db.First(&doc, "id = ?", specificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("specification document")
		}
		return nil, utils.InternalError(fmt.Errorf("failed to fetch specification: %w", err))
	}

	extraction := models.SpecExtraction{
		SpecificationID: doc.ID,
		Status:          models.ExtractionStatusProcessing,
		Provider:        "mock",
		ExtractedBy:     actorID,
		ExtractedAt:     time.Now(),
	}
	if err := es.db.Create(&extraction).Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to create extraction: %w", err))
	}

	// Placeholder latency standing in for the provider round trip.
	time.Sleep(250 * time.Millisecond)

	candidates := generateCandidates(doc)
	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		es.db.Model(&extraction).Updates(map[string]interface{}{
			"status":        models.ExtractionStatusFailed,
			"error_message": err.Error(),
		})
		return nil, utils.InternalError(fmt.Errorf("failed to encode candidates: %w", err))
	}

	if err := es.db.Model(&extraction).Updates(map[string]interface{}{
		"status":          models.ExtractionStatusCompleted,
		"candidates":      candidatesJSON,
		"candidate_count": len(candidates),
	}).Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to store candidates: %w", err))
	}

	es.activity.Record("extraction", extraction.ID, "created", actorID, "",
		fmt.Sprintf("%d candidates extracted from %s", len(candidates), doc.FileName))

	log.Printf("✅ Extraction %s completed: %d candidates from %s", extraction.ID, len(candidates), doc.FileName)

	extraction.Status = models.ExtractionStatusCompleted
	extraction.Candidates = candidatesJSON
	extraction.CandidateCount = len(candidates)
	return &extraction, nil
}

// generateCandidates fabricates one candidate per spec section. Mock
// data only; confidence is seeded from the section position.
func generateCandidates(doc models.SpecificationDocument) []SubmittalCandidate {
	sections := doc.SpecSections
	if len(sections) == 0 {
		sections = []string{"01 00 00"}
	}

	candidates := make([]SubmittalCandidate, 0, len(sections))
	for i, section := range sections {
		candidates = append(candidates, SubmittalCandidate{
			SpecSection:     section,
			Title:           fmt.Sprintf("Section %s submittal package", section),
			Description:     fmt.Sprintf("Auto-extracted from %s", doc.FileName),
			Type:            guessTypeForSection(section),
			Priority:        "normal",
			ConfidenceScore: 95 - float64(i%5)*5,
			Items: []SubmittalItemInput{
				{
					ItemNumber:             1,
					ProductName:            fmt.Sprintf("Section %s primary product", section),
					Quantity:               1,
					Unit:                   "ls",
					SpecificationReference: section,
				},
			},
		})
	}
	return candidates
}

// guessTypeForSection maps a MasterFormat division to the most likely
// submittal type.
func guessTypeForSection(section string) string {
	division := section
	if idx := strings.IndexByte(section, ' '); idx > 0 {
		division = section[:idx]
	}
	switch division {
	case "03":
		return "mix_design"
	case "05":
		return "shop_drawing"
	case "09":
		return "sample"
	case "01":
		return "certification"
	default:
		return "product_data"
	}
}
