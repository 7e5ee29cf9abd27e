package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// SpecExtraction statuses.
const (
	ExtractionStatusProcessing = "processing"
	ExtractionStatusCompleted  = "completed"
	ExtractionStatusConverted  = "converted"
	ExtractionStatusFailed     = "failed"
)

// SpecificationDocument is an uploaded project specification. How the
// underlying file is stored is out of scope; only the reference is kept.
type SpecificationDocument struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	FileName string `gorm:"size:255;not null" json:"file_name"`
	FilePath string `gorm:"size:500;not null" json:"file_path"`
	FileSize int64  `json:"file_size,omitempty"`

	// Spec sections covered by the document, e.g. ["03 30 00", "05 12 00"]
	SpecSections pq.StringArray `gorm:"type:text[]" json:"spec_sections,omitempty"`

	UploadedBy string    `gorm:"size:255;not null" json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Extractions []SpecExtraction `gorm:"foreignKey:SpecificationID" json:"extractions,omitempty"`
}

// TableName specifies the table name for SpecificationDocument
func (SpecificationDocument) TableName() string {
	return "specification_documents"
}

// SpecExtraction is one extraction run over a specification document:
// a set of candidate submittals pending human confirmation.
type SpecExtraction struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SpecificationID uuid.UUID              `gorm:"type:uuid;not null;index" json:"specification_id"`
	Specification   *SpecificationDocument `gorm:"foreignKey:SpecificationID" json:"specification,omitempty"`

	Status string `gorm:"size:50;not null;default:'processing';index" json:"status"` // processing, completed, converted, failed

	// Candidate submittals proposed by the provider, as returned
	Candidates     datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"candidates"`
	CandidateCount int            `gorm:"default:0" json:"candidate_count"`

	Provider     string `gorm:"size:50;not null;default:'mock'" json:"provider"`
	ErrorMessage string `gorm:"type:text" json:"error_message,omitempty"`

	// Set once the extraction has been materialized into submittals.
	// Single-valued even for multi-candidate runs; the last submittal
	// created by the intake wins. Re-running the intake on a converted
	// extraction is not guarded against and will duplicate submittals.
	ConvertedToSubmittalID *uuid.UUID `gorm:"type:uuid" json:"converted_to_submittal_id,omitempty"`

	ExtractedBy string    `gorm:"size:255;not null" json:"extracted_by"`
	ExtractedAt time.Time `gorm:"not null" json:"extracted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for SpecExtraction
func (SpecExtraction) TableName() string {
	return "spec_extractions"
}
