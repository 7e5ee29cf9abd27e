package models

import (
	"time"

	"github.com/google/uuid"
)

// Project represents a construction project tracked by the pipeline
type Project struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Number string    `gorm:"size:50;uniqueIndex;not null" json:"number"`
	Name   string    `gorm:"size:255;not null" json:"name"`

	Description string `gorm:"type:text" json:"description,omitempty"`
	Address     string `gorm:"size:500" json:"address,omitempty"`
	OwnerName   string `gorm:"size:255" json:"owner_name,omitempty"`

	// Timeline
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Status
	Status string `gorm:"size:50;not null;default:'active';index" json:"status"` // active, on-hold, completed, cancelled

	// Federal compliance defaults inherited by new submittals
	BuyAmericanRequired  bool `gorm:"default:false" json:"buy_american_required"`
	DavisBaconApplicable bool `gorm:"default:false" json:"davis_bacon_applicable"`

	// Metadata
	CreatedBy string    `gorm:"size:255;not null" json:"created_by"`
	UpdatedBy string    `gorm:"size:255" json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Submittals []Submittal `gorm:"foreignKey:ProjectID" json:"submittals,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// Contractor is a vendor directory entry referenced by submittals via
// responsible_contractor. Only the reference is stored; directory
// maintenance is minimal.
type Contractor struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	CompanyName string    `gorm:"size:255" json:"company_name,omitempty"`
	Trade       string    `gorm:"size:100;index" json:"trade,omitempty"`
	Email       string    `gorm:"size:255" json:"email,omitempty"`
	Phone       string    `gorm:"size:50" json:"phone,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Contractor
func (Contractor) TableName() string {
	return "contractors"
}
