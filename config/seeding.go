package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"p9e.in/ocpipeline/models"
)

// SeedDefaultAdmin creates the initial admin account when the users table
// is empty. Password comes from ADMIN_PASSWORD, defaulting for dev only.
func SeedDefaultAdmin() {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("⚠️  Skipping admin seed, cannot count users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	defaultPassword := os.Getenv("ADMIN_PASSWORD")
	if defaultPassword == "" {
		defaultPassword = "changeme123"
		log.Println("⚠️  ADMIN_PASSWORD not set, using development default")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("⚠️  Skipping admin seed, cannot hash password: %v", err)
		return
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@ocpipeline.local",
		PasswordHash: string(passwordHash),
		Role:         "admin",
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("⚠️  Failed to seed default admin: %v", err)
		return
	}
	log.Printf("✅ Seeded default admin user: %s", admin.Email)
}
