package models

import (
	"time"

	"github.com/google/uuid"
)

// Submittal statuses. The set is closed; transitions between members are
// currently unrestricted (any status may move to any other).
const (
	SubmittalStatusNotStarted      = "not_started"
	SubmittalStatusInProgress      = "in_progress"
	SubmittalStatusSubmitted       = "submitted"
	SubmittalStatusUnderReview     = "under_review"
	SubmittalStatusApproved        = "approved"
	SubmittalStatusApprovedAsNoted = "approved_as_noted"
	SubmittalStatusReviseResubmit  = "revise_resubmit"
	SubmittalStatusRejected        = "rejected"
	SubmittalStatusForRecordOnly   = "for_record_only"
	SubmittalStatusVoid            = "void"
)

// SubmittalStatuses is the closed set of valid workflow statuses.
var SubmittalStatuses = []string{
	SubmittalStatusNotStarted,
	SubmittalStatusInProgress,
	SubmittalStatusSubmitted,
	SubmittalStatusUnderReview,
	SubmittalStatusApproved,
	SubmittalStatusApprovedAsNoted,
	SubmittalStatusReviseResubmit,
	SubmittalStatusRejected,
	SubmittalStatusForRecordOnly,
	SubmittalStatusVoid,
}

// SubmittalTypes is the closed set of valid submittal types.
var SubmittalTypes = []string{
	"product_data", "shop_drawing", "sample", "mix_design",
	"test_report", "certification", "other",
}

// SubmittalPriorities is the closed set of valid priorities.
var SubmittalPriorities = []string{"low", "normal", "high", "critical"}

// Submittal source types.
const (
	SourceTypeManual = "manual"
	SourceTypeSpecAI = "spec_ai"
)

// Submittal represents a tracked review/approval artifact within a project
// (product data, shop drawing, sample, etc.)
type Submittal struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_submittals_project_number" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	SubmittalNumber string `gorm:"size:100;not null;uniqueIndex:idx_submittals_project_number" json:"submittal_number"`
	SpecSection     string `gorm:"size:50;not null;index" json:"spec_section"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description,omitempty"`
	Type            string `gorm:"size:50;not null;index" json:"type"` // product_data, shop_drawing, sample, mix_design, test_report, certification, other

	// Workflow
	Status   string `gorm:"size:50;not null;default:'not_started';index" json:"status"`
	Priority string `gorm:"size:20;not null;default:'normal';index" json:"priority"` // low, normal, high, critical
	Revision int    `gorm:"not null;default:0" json:"revision"`

	// Scheduling flags
	IsLongLead     bool `gorm:"default:false" json:"is_long_lead"`
	IsCriticalPath bool `gorm:"default:false" json:"is_critical_path"`

	// Provenance
	SourceType        string     `gorm:"size:20;not null;default:'manual'" json:"source_type"` // manual, spec_ai
	SourceDocumentID  *uuid.UUID `gorm:"type:uuid;index" json:"source_document_id,omitempty"`
	AIExtracted       bool       `gorm:"column:ai_extracted;default:false" json:"ai_extracted"`
	AIConfidenceScore *float64   `gorm:"column:ai_confidence_score;type:decimal(5,2)" json:"ai_confidence_score,omitempty"` // 0-100, set only when ai_extracted

	// Lifecycle dates. Set via the general update path, not by status
	// transitions.
	RequiredDate  *time.Time `json:"required_date,omitempty"`
	SubmittedDate *time.Time `json:"submitted_date,omitempty"`
	ReviewedDate  *time.Time `json:"reviewed_date,omitempty"`
	ApprovedDate  *time.Time `json:"approved_date,omitempty"`

	// Compliance flags, fixed at creation
	BuyAmericanRequired  bool `gorm:"default:false" json:"buy_american_required"`
	DavisBaconApplicable bool `gorm:"default:false" json:"davis_bacon_applicable"`

	// Assignment
	AssignedTo            string      `gorm:"size:255;index" json:"assigned_to,omitempty"`
	ReviewerID            string      `gorm:"size:255" json:"reviewer_id,omitempty"`
	ResponsibleContractor *uuid.UUID  `gorm:"type:uuid;index" json:"responsible_contractor,omitempty"`
	Contractor            *Contractor `gorm:"foreignKey:ResponsibleContractor" json:"contractor,omitempty"`

	// Metadata
	CreatedBy string    `gorm:"size:255;not null" json:"created_by"`
	UpdatedBy string    `gorm:"size:255" json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items   []SubmittalItem   `gorm:"foreignKey:SubmittalID" json:"items,omitempty"`
	Reviews []SubmittalReview `gorm:"foreignKey:SubmittalID" json:"reviews,omitempty"`
}

// TableName specifies the table name for Submittal
func (Submittal) TableName() string {
	return "submittals"
}

// SubmittalItem is one product/material line item within a submittal.
// Items are informational only and carry no workflow state of their own.
type SubmittalItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SubmittalID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_submittal_items_number" json:"submittal_id"`
	Submittal   *Submittal `gorm:"foreignKey:SubmittalID" json:"submittal,omitempty"`

	ItemNumber  int    `gorm:"not null;uniqueIndex:idx_submittal_items_number" json:"item_number"`
	ProductName string `gorm:"size:255;not null" json:"product_name"`

	Manufacturer string  `gorm:"size:255" json:"manufacturer,omitempty"`
	ModelNumber  string  `gorm:"size:100" json:"model_number,omitempty"`
	Quantity     float64 `gorm:"type:decimal(15,2);default:0" json:"quantity"`
	Unit         string  `gorm:"size:50" json:"unit,omitempty"`

	SpecificationReference string `gorm:"size:100" json:"specification_reference,omitempty"`
	DrawingReference       string `gorm:"size:100" json:"drawing_reference,omitempty"`
	SubstitutionAllowed    bool   `gorm:"default:true" json:"substitution_allowed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for SubmittalItem
func (SubmittalItem) TableName() string {
	return "submittal_items"
}

// SubmittalReview is one append-only ledger entry for a status-changing
// review action. Rows are never updated or deleted, and they survive
// submittal deletion (no cascade).
type SubmittalReview struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SubmittalID uuid.UUID `gorm:"type:uuid;not null;index" json:"submittal_id"`

	ReviewerID   string `gorm:"size:255;not null" json:"reviewer_id"`
	ReviewerRole string `gorm:"size:100" json:"reviewer_role,omitempty"`
	Action       string `gorm:"size:50;not null" json:"action"` // the status value being recorded
	Comments     string `gorm:"type:text" json:"comments,omitempty"`

	ReviewedAt time.Time `gorm:"not null;index" json:"reviewed_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for SubmittalReview
func (SubmittalReview) TableName() string {
	return "submittal_reviews"
}
