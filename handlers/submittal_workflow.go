package handlers

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"p9e.in/ocpipeline/config"
	"p9e.in/ocpipeline/models"
	"p9e.in/ocpipeline/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmittalWorkflow owns the submittal lifecycle: persistence, status
// transitions and the review ledger. All mutating operations run inside
// a single database transaction.
type SubmittalWorkflow struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// NewSubmittalWorkflow creates a new workflow instance
func NewSubmittalWorkflow() *SubmittalWorkflow {
	return &SubmittalWorkflow{
		db:       config.DB,
		activity: NewActivityRecorder(),
	}
}

// CreateSubmittalInput is the input for creating a submittal, optionally
// with its line items.
type CreateSubmittalInput struct {
	ProjectID       uuid.UUID `json:"project_id"`
	SubmittalNumber string    `json:"submittal_number"`
	SpecSection     string    `json:"spec_section"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	Priority        string    `json:"priority"`

	RequiredDate *time.Time `json:"required_date"`

	BuyAmericanRequired  bool `json:"buy_american_required"`
	DavisBaconApplicable bool `json:"davis_bacon_applicable"`

	AssignedTo            string     `json:"assigned_to"`
	ReviewerID            string     `json:"reviewer_id"`
	ResponsibleContractor *uuid.UUID `json:"responsible_contractor"`

	// Provenance; defaults to manual. The extraction intake overrides these.
	SourceType        string     `json:"source_type"`
	SourceDocumentID  *uuid.UUID `json:"source_document_id"`
	AIExtracted       bool       `json:"ai_extracted"`
	AIConfidenceScore *float64   `json:"ai_confidence_score"`

	Items []SubmittalItemInput `json:"items"`
}

// SubmittalItemInput is one candidate line item.
type SubmittalItemInput struct {
	ItemNumber             int     `json:"item_number"`
	ProductName            string  `json:"product_name"`
	Manufacturer           string  `json:"manufacturer"`
	ModelNumber            string  `json:"model_number"`
	Quantity               float64 `json:"quantity"`
	Unit                   string  `json:"unit"`
	SpecificationReference string  `json:"specification_reference"`
	DrawingReference       string  `json:"drawing_reference"`
	SubstitutionAllowed    *bool   `json:"substitution_allowed"`
}

// UpdateSubmittalInput carries the allow-listed mutable fields. Anything
// else in the request payload is silently ignored.
type UpdateSubmittalInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`

	AssignedTo            *string    `json:"assigned_to"`
	ReviewerID            *string    `json:"reviewer_id"`
	ResponsibleContractor *uuid.UUID `json:"responsible_contractor"`

	RequiredDate  *time.Time `json:"required_date"`
	SubmittedDate *time.Time `json:"submitted_date"`
	ReviewedDate  *time.Time `json:"reviewed_date"`
	ApprovedDate  *time.Time `json:"approved_date"`

	IsLongLead           *bool `json:"is_long_lead"`
	IsCriticalPath       *bool `json:"is_critical_path"`
	BuyAmericanRequired  *bool `json:"buy_american_required"`
	DavisBaconApplicable *bool `json:"davis_bacon_applicable"`
}

// ListSubmittalsQuery is the filter/pagination input for List. Filters
// are combined with AND.
type ListSubmittalsQuery struct {
	ProjectID   string
	Status      string
	Type        string
	SpecSection string
	Priority    string
	AssignedTo  string

	Page  int
	Limit int
	Sort  string
	Order string // asc or desc
}

// IsValidSubmittalStatus reports whether status belongs to the closed set.
func IsValidSubmittalStatus(status string) bool {
	return slices.Contains(models.SubmittalStatuses, status)
}

// IsValidSubmittalType reports whether t belongs to the closed set.
func IsValidSubmittalType(t string) bool {
	return slices.Contains(models.SubmittalTypes, t)
}

// IsValidSubmittalPriority reports whether p belongs to the closed set.
func IsValidSubmittalPriority(p string) bool {
	return slices.Contains(models.SubmittalPriorities, p)
}

// transitionAllowed reports whether a submittal may move from one
// status to another. Any member of the closed set may move to any
// other member, including itself; tightening the graph happens here.
func transitionAllowed(from, to string) bool {
	return IsValidSubmittalStatus(to)
}

// shouldAppendReview reports whether a transition leaves a review
// ledger entry. Comment-less transitions deliberately do not.
func shouldAppendReview(comments string) bool {
	return comments != ""
}

// sortableSubmittalColumns maps sort keys accepted by List to columns.
var sortableSubmittalColumns = map[string]string{
	"submittal_number": "submittal_number",
	"spec_section":     "spec_section",
	"title":            "title",
	"type":             "type",
	"status":           "status",
	"priority":         "priority",
	"required_date":    "required_date",
	"created_at":       "created_at",
	"updated_at":       "updated_at",
}

// Create persists a submittal and its items atomically.
func (wf *SubmittalWorkflow) Create(input CreateSubmittalInput, createdBy string) (*models.Submittal, error) {
	if input.ProjectID == uuid.Nil || input.SubmittalNumber == "" || input.SpecSection == "" ||
		input.Title == "" || input.Type == "" {
		return nil, utils.ValidationError("missing_required_fields",
			"project_id, submittal_number, spec_section, title and type are required")
	}
	if !IsValidSubmittalType(input.Type) {
		return nil, utils.ValidationError("invalid_type", "unknown submittal type '%s'", input.Type)
	}
	if input.Priority == "" {
		input.Priority = "normal"
	}
	if !IsValidSubmittalPriority(input.Priority) {
		return nil, utils.ValidationError("invalid_priority", "unknown priority '%s'", input.Priority)
	}
	sourceType := input.SourceType
	if sourceType == "" {
		sourceType = models.SourceTypeManual
	}
	if sourceType != models.SourceTypeManual && sourceType != models.SourceTypeSpecAI {
		return nil, utils.ValidationError("invalid_source_type", "unknown source type '%s'", sourceType)
	}

	submittal := models.Submittal{
		ProjectID:             input.ProjectID,
		SubmittalNumber:       input.SubmittalNumber,
		SpecSection:           input.SpecSection,
		Title:                 input.Title,
		Description:           input.Description,
		Type:                  input.Type,
		Status:                models.SubmittalStatusNotStarted,
		Priority:              input.Priority,
		RequiredDate:          input.RequiredDate,
		BuyAmericanRequired:   input.BuyAmericanRequired,
		DavisBaconApplicable:  input.DavisBaconApplicable,
		AssignedTo:            input.AssignedTo,
		ReviewerID:            input.ReviewerID,
		ResponsibleContractor: input.ResponsibleContractor,
		SourceType:            sourceType,
		SourceDocumentID:      input.SourceDocumentID,
		AIExtracted:           input.AIExtracted,
		AIConfidenceScore:     input.AIConfidenceScore,
		CreatedBy:             createdBy,
	}

	// High priority marks long-lead procurement; critical marks the
	// project's critical path.
	switch submittal.Priority {
	case "high":
		submittal.IsLongLead = true
	case "critical":
		submittal.IsCriticalPath = true
	}

	tx := wf.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&submittal).Error; err != nil {
		tx.Rollback()
		if isDuplicateKey(err) {
			return nil, utils.ConflictError("submittal number '%s' already exists in this project", input.SubmittalNumber)
		}
		return nil, utils.InternalError(fmt.Errorf("failed to create submittal: %w", err))
	}

	for i, itemInput := range input.Items {
		item := newSubmittalItem(submittal.ID, i, itemInput)
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, utils.InternalError(fmt.Errorf("failed to create submittal item %d: %w", item.ItemNumber, err))
		}
		submittal.Items = append(submittal.Items, item)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	wf.activity.Record("submittal", submittal.ID, "created", createdBy, "",
		fmt.Sprintf("submittal %s created with %d items", submittal.SubmittalNumber, len(submittal.Items)))

	log.Printf("✅ Created submittal: %s (ID: %s, items: %d)", submittal.SubmittalNumber, submittal.ID, len(submittal.Items))
	return &submittal, nil
}

// newSubmittalItem builds the persisted item, numbering it positionally
// when the input omits an item number.
func newSubmittalItem(submittalID uuid.UUID, position int, input SubmittalItemInput) models.SubmittalItem {
	itemNumber := input.ItemNumber
	if itemNumber <= 0 {
		itemNumber = position + 1
	}
	substitutionAllowed := true
	if input.SubstitutionAllowed != nil {
		substitutionAllowed = *input.SubstitutionAllowed
	}
	return models.SubmittalItem{
		SubmittalID:            submittalID,
		ItemNumber:             itemNumber,
		ProductName:            input.ProductName,
		Manufacturer:           input.Manufacturer,
		ModelNumber:            input.ModelNumber,
		Quantity:               input.Quantity,
		Unit:                   input.Unit,
		SpecificationReference: input.SpecificationReference,
		DrawingReference:       input.DrawingReference,
		SubstitutionAllowed:    substitutionAllowed,
	}
}

// Get returns a submittal with its items (item_number asc) and reviews
// (most recent first).
func (wf *SubmittalWorkflow) Get(id uuid.UUID) (*models.Submittal, error) {
	var submittal models.Submittal
	if err := wf.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_number ASC")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviewed_at DESC")
		}).
		Preload("Contractor").
		First(&submittal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("submittal")
		}
		return nil, utils.InternalError(fmt.Errorf("failed to fetch submittal: %w", err))
	}
	return &submittal, nil
}

// List returns the filtered page of submittals plus the total filtered
// count (independent of the pagination window).
func (wf *SubmittalWorkflow) List(q ListSubmittalsQuery) ([]models.Submittal, int64, error) {
	query := wf.db.Model(&models.Submittal{})

	if q.ProjectID != "" {
		query = query.Where("project_id = ?", q.ProjectID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}
	if q.SpecSection != "" {
		query = query.Where("spec_section = ?", q.SpecSection)
	}
	if q.Priority != "" {
		query = query.Where("priority = ?", q.Priority)
	}
	if q.AssignedTo != "" {
		query = query.Where("assigned_to = ?", q.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.InternalError(fmt.Errorf("failed to count submittals: %w", err))
	}

	order, err := submittalOrderClause(q.Sort, q.Order)
	if err != nil {
		return nil, 0, err
	}

	page, limit := NormalizePagination(q.Page, q.Limit)
	var submittals []models.Submittal
	if err := query.
		Order(order).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&submittals).Error; err != nil {
		return nil, 0, utils.InternalError(fmt.Errorf("failed to fetch submittals: %w", err))
	}

	return submittals, total, nil
}

// submittalOrderClause resolves the single-field sort against the
// allow-listed columns.
func submittalOrderClause(sort, order string) (string, error) {
	if sort == "" {
		return "created_at DESC", nil
	}
	column, ok := sortableSubmittalColumns[sort]
	if !ok {
		return "", utils.ValidationError("invalid_sort", "cannot sort by '%s'", sort)
	}
	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}
	return column + " " + direction, nil
}

// NormalizePagination clamps page/limit to sane defaults.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// Update mutates the allow-listed fields only.
func (wf *SubmittalWorkflow) Update(id uuid.UUID, input UpdateSubmittalInput, updatedBy string) (*models.Submittal, error) {
	if input.Priority != nil && !IsValidSubmittalPriority(*input.Priority) {
		return nil, utils.ValidationError("invalid_priority", "unknown priority '%s'", *input.Priority)
	}

	updates := buildSubmittalUpdates(input)
	if len(updates) == 0 {
		return nil, utils.ValidationError("empty_update", "no updatable field present in request")
	}

	var submittal models.Submittal
	if err := wf.db.First(&submittal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("submittal")
		}
		return nil, utils.InternalError(fmt.Errorf("failed to fetch submittal: %w", err))
	}

	updates["updated_by"] = updatedBy
	if err := wf.db.Model(&submittal).Updates(updates).Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to update submittal: %w", err))
	}

	wf.activity.Record("submittal", submittal.ID, "updated", updatedBy, "",
		fmt.Sprintf("submittal %s updated", submittal.SubmittalNumber))

	log.Printf("✅ Updated submittal: %s", submittal.ID)
	return &submittal, nil
}

// buildSubmittalUpdates maps the allow-listed input fields onto columns.
// Nil pointers (fields absent from the payload) are skipped.
func buildSubmittalUpdates(input UpdateSubmittalInput) map[string]interface{} {
	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.AssignedTo != nil {
		updates["assigned_to"] = *input.AssignedTo
	}
	if input.ReviewerID != nil {
		updates["reviewer_id"] = *input.ReviewerID
	}
	if input.ResponsibleContractor != nil {
		updates["responsible_contractor"] = *input.ResponsibleContractor
	}
	if input.RequiredDate != nil {
		updates["required_date"] = *input.RequiredDate
	}
	if input.SubmittedDate != nil {
		updates["submitted_date"] = *input.SubmittedDate
	}
	if input.ReviewedDate != nil {
		updates["reviewed_date"] = *input.ReviewedDate
	}
	if input.ApprovedDate != nil {
		updates["approved_date"] = *input.ApprovedDate
	}
	if input.IsLongLead != nil {
		updates["is_long_lead"] = *input.IsLongLead
	}
	if input.IsCriticalPath != nil {
		updates["is_critical_path"] = *input.IsCriticalPath
	}
	if input.BuyAmericanRequired != nil {
		updates["buy_american_required"] = *input.BuyAmericanRequired
	}
	if input.DavisBaconApplicable != nil {
		updates["davis_bacon_applicable"] = *input.DavisBaconApplicable
	}
	return updates
}

// TransitionStatus applies a status change and, when comments are
// supplied, appends one review ledger entry in the same transaction.
// The status set is closed but transitions between members are not
// restricted. A transition without comments leaves no ledger entry;
// that asymmetry is long-standing behavior the review ledger's
// consumers depend on.
func (wf *SubmittalWorkflow) TransitionStatus(id uuid.UUID, newStatus, comments, actorID, actorRole string) (*models.Submittal, error) {
	if !IsValidSubmittalStatus(newStatus) {
		return nil, utils.ValidationError("invalid_status", "unknown status '%s'", newStatus)
	}

	var submittal models.Submittal
	if err := wf.db.First(&submittal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("submittal")
		}
		return nil, utils.InternalError(fmt.Errorf("failed to fetch submittal: %w", err))
	}

	oldStatus := submittal.Status
	if !transitionAllowed(oldStatus, newStatus) {
		return nil, utils.ValidationError("invalid_transition", "cannot move from '%s' to '%s'", oldStatus, newStatus)
	}

	tx := wf.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Column-scoped update; the rest of the row may have changed since
	// the read above and must not be written back.
	if err := tx.Model(&submittal).Updates(map[string]interface{}{
		"status":     newStatus,
		"updated_by": actorID,
	}).Error; err != nil {
		tx.Rollback()
		return nil, utils.InternalError(fmt.Errorf("failed to update submittal status: %w", err))
	}
	submittal.Status = newStatus
	submittal.UpdatedBy = actorID

	if shouldAppendReview(comments) {
		review := models.SubmittalReview{
			SubmittalID:  submittal.ID,
			ReviewerID:   actorID,
			ReviewerRole: actorRole,
			Action:       newStatus,
			Comments:     comments,
			ReviewedAt:   time.Now(),
		}
		if err := tx.Create(&review).Error; err != nil {
			tx.Rollback()
			return nil, utils.InternalError(fmt.Errorf("failed to create review record: %w", err))
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	wf.activity.Record("submittal", submittal.ID, "status_changed", actorID, "",
		fmt.Sprintf("%s -> %s", oldStatus, newStatus))

	log.Printf("✅ Transitioned submittal %s: %s -> %s (actor: %s)", submittal.ID, oldStatus, newStatus, actorID)
	return &submittal, nil
}

// ListReviews returns the review ledger for a submittal, most recent
// first. The ledger is bounded by one submittal's history, so no
// pagination.
func (wf *SubmittalWorkflow) ListReviews(submittalID uuid.UUID) ([]models.SubmittalReview, error) {
	var count int64
	if err := wf.db.Model(&models.Submittal{}).Where("id = ?", submittalID).Count(&count).Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to check submittal: %w", err))
	}
	if count == 0 {
		return nil, utils.NotFoundError("submittal")
	}

	var reviews []models.SubmittalReview
	if err := wf.db.
		Where("submittal_id = ?", submittalID).
		Order("reviewed_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to fetch reviews: %w", err))
	}
	return reviews, nil
}

// Delete hard-deletes a submittal and its items. Review ledger rows are
// intentionally left in place.
func (wf *SubmittalWorkflow) Delete(id uuid.UUID, deletedBy string) error {
	var submittal models.Submittal
	if err := wf.db.First(&submittal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("submittal")
		}
		return utils.InternalError(fmt.Errorf("failed to fetch submittal: %w", err))
	}

	tx := wf.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("submittal_id = ?", id).Delete(&models.SubmittalItem{}).Error; err != nil {
		tx.Rollback()
		return utils.InternalError(fmt.Errorf("failed to delete submittal items: %w", err))
	}
	if err := tx.Delete(&submittal).Error; err != nil {
		tx.Rollback()
		return utils.InternalError(fmt.Errorf("failed to delete submittal: %w", err))
	}

	if err := tx.Commit().Error; err != nil {
		return utils.InternalError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	wf.activity.Record("submittal", submittal.ID, "deleted", deletedBy, "",
		fmt.Sprintf("submittal %s deleted", submittal.SubmittalNumber))

	log.Printf("✅ Deleted submittal: %s", id)
	return nil
}

// Stats returns submittal counts by status for a project.
func (wf *SubmittalWorkflow) Stats(projectID string) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var results []statusCount
	if err := wf.db.Model(&models.Submittal{}).
		Select("status, count(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Find(&results).Error; err != nil {
		return nil, utils.InternalError(fmt.Errorf("failed to fetch stats: %w", err))
	}

	stats := make(map[string]int64)
	for _, r := range results {
		stats[r.Status] = r.Count
	}
	return stats, nil
}

// isDuplicateKey reports whether err is the store's uniqueness violation.
// The constraint fires at commit time, so concurrent creates with the
// same number resolve to exactly one winner.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
