package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/ocpipeline/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "10012026_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Project{}, &models.Contractor{},
					&models.Submittal{}, &models.SubmittalItem{}, &models.SubmittalReview{})
			},
		},
		{
			ID: "10012026_add_extraction_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.SpecificationDocument{}, &models.SpecExtraction{})
			},
		},
		{
			ID: "12012026_submittal_constraints",
			Migrate: func(tx *gorm.DB) error {
				// Items die with the parent submittal; reviews deliberately do not.
				if err := tx.Exec(`ALTER TABLE submittal_items
					DROP CONSTRAINT IF EXISTS fk_submittal_items_submittal`).Error; err != nil {
					return err
				}
				if err := tx.Exec(`ALTER TABLE submittal_items
					ADD CONSTRAINT fk_submittal_items_submittal
					FOREIGN KEY (submittal_id) REFERENCES submittals(id) ON DELETE CASCADE`).Error; err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_submittal_reviews_reviewed_at
					ON submittal_reviews(submittal_id, reviewed_at DESC)`).Error
			},
		},
		{
			ID: "20012026_add_activity_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.ActivityLog{})
			},
		},
	})
	return m.Migrate()
}
