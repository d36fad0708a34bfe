package repositories

import (
	"context"
	"errors"
	"fmt"

	"bvest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("investor profile not found")

// InvestorProfileRepository defines preference-vector persistence.
type InvestorProfileRepository interface {
	// GetByInvestorID retrieves the profile for an investor
	GetByInvestorID(ctx context.Context, investorID uint) (*models.InvestorProfile, error)

	// Upsert creates or replaces the profile for an investor
	Upsert(ctx context.Context, profile *models.InvestorProfile) error
}

type investorProfileRepository struct {
	db *gorm.DB
}

// NewInvestorProfileRepository creates a gorm-backed profile repository.
func NewInvestorProfileRepository(db *gorm.DB) InvestorProfileRepository {
	return &investorProfileRepository{db: db}
}

func (r *investorProfileRepository) GetByInvestorID(ctx context.Context, investorID uint) (*models.InvestorProfile, error) {
	var profile models.InvestorProfile
	if err := r.db.WithContext(ctx).First(&profile, "investor_id = ?", investorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return &profile, nil
}

func (r *investorProfileRepository) Upsert(ctx context.Context, profile *models.InvestorProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "investor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preferred_industries", "preferred_countries", "preferred_instruments",
				"min_amount", "max_amount", "risk_tolerance", "updated_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}
