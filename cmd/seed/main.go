// Package main seeds the database with the admin account and a small
// demo data set for local development.
package main

import (
	"log"
	"os"

	"bvest/internal/config"
	"bvest/internal/models"
	"bvest/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err == nil {
				sqlDB.Close()
			}
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	admin := ensureUser(adminEmail, adminPassword, "Platform Admin", models.RoleAdmin)
	log.Printf("✅ Admin account ready (id %d)", admin.ID)

	if os.Getenv("SEED_DEMO_DATA") != "true" {
		return
	}

	owner := ensureUser("owner@example.com", "Demo-pass1!", "Amina Mensah", models.RoleBusiness)
	investor := ensureUser("investor@example.com", "Demo-pass1!", "Kofi Asante", models.RoleInvestor)

	ensureClaims(&models.ComplianceClaims{
		UserID:           owner.ID,
		KYCLevel:         models.KYCLevelBasic,
		SanctionsCleared: true,
		AccountStatus:    models.AccountStatusActive,
	})
	ensureClaims(&models.ComplianceClaims{
		UserID:           investor.ID,
		KYCLevel:         models.KYCLevelEnhanced,
		Accredited:       true,
		AMLCleared:       true,
		SanctionsCleared: true,
		SingleTxnLimit:   decimal.NewFromInt(100000),
		DailyLimit:       decimal.NewFromInt(250000),
		AccountStatus:    models.AccountStatusActive,
	})

	seedListings(owner.ID)
	log.Println("✅ Demo data seeded")
}

func ensureUser(email, password, name, role string) *models.User {
	var existing models.User
	if err := repositories.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return &existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	u := models.User{
		Email:        email,
		Password:     string(hashed),
		Name:         name,
		Role:         role,
		Status:       "active",
		TokenVersion: 1,
	}
	if err := repositories.DB.Create(&u).Error; err != nil {
		log.Fatal("Failed to create user:", err)
	}
	return &u
}

func ensureClaims(claims *models.ComplianceClaims) {
	var existing models.ComplianceClaims
	if err := repositories.DB.Where("user_id = ?", claims.UserID).First(&existing).Error; err == nil {
		return
	}
	if err := repositories.DB.Create(claims).Error; err != nil {
		log.Fatal("Failed to create compliance claims:", err)
	}
}

func seedListings(ownerID uint) {
	var count int64
	repositories.DB.Model(&models.BusinessListing{}).Where("owner_id = ?", ownerID).Count(&count)
	if count > 0 {
		return
	}

	demo := []models.BusinessListing{
		{
			OwnerID:             ownerID,
			Industry:            "Agriculture",
			Country:             "Ghana",
			Description:         "Cassava processing plant expanding into neighboring regions.",
			RequestedAmount:     decimal.NewFromInt(75000),
			AcceptedInstruments: models.StringSet{models.InstrumentEquity, models.InstrumentDebt},
			ReadinessScore:      85,
			Visibility:          models.VisibilityPublic,
			Verified:            true,
			Status:              models.ListingStatusPublished,
		},
		{
			OwnerID:             ownerID,
			Industry:            "Logistics",
			Country:             "Kenya",
			Description:         "Last-mile delivery fleet for Nairobi's industrial belt.",
			RequestedAmount:     decimal.NewFromInt(40000),
			AcceptedInstruments: models.StringSet{models.InstrumentRevenueShare},
			ReadinessScore:      65,
			Visibility:          models.VisibilityPublic,
			Status:              models.ListingStatusPublished,
		},
		{
			OwnerID:             ownerID,
			Industry:            "Retail",
			Country:             "Nigeria",
			Description:         "Regional grocery chain preparing its investment paperwork.",
			RequestedAmount:     decimal.NewFromInt(120000),
			AcceptedInstruments: models.StringSet{models.InstrumentEquity},
			ReadinessScore:      45,
			Visibility:          models.VisibilityPublic,
			Status:              models.ListingStatusDraft,
		},
	}
	for i := range demo {
		if err := repositories.DB.Create(&demo[i]).Error; err != nil {
			log.Fatal("Failed to create listing:", err)
		}
	}
}
