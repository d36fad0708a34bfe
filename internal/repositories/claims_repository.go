package repositories

import (
	"context"
	"errors"
	"fmt"

	"bvest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrClaimsNotFound = errors.New("compliance claims not found")

// ComplianceClaimsRepository reads the verification snapshots written by
// the external identity pipeline. The marketplace never mutates a user's
// verification state itself; Upsert exists for the ingestion webhook and
// for seeding.
type ComplianceClaimsRepository interface {
	// GetClaims retrieves the current snapshot for a user
	GetClaims(ctx context.Context, userID uint) (models.ComplianceClaims, error)

	// Upsert replaces the snapshot for a user
	Upsert(ctx context.Context, claims *models.ComplianceClaims) error
}

type complianceClaimsRepository struct {
	db *gorm.DB
}

// NewComplianceClaimsRepository creates a gorm-backed claims repository.
func NewComplianceClaimsRepository(db *gorm.DB) ComplianceClaimsRepository {
	return &complianceClaimsRepository{db: db}
}

func (r *complianceClaimsRepository) GetClaims(ctx context.Context, userID uint) (models.ComplianceClaims, error) {
	var claims models.ComplianceClaims
	if err := r.db.WithContext(ctx).First(&claims, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComplianceClaims{}, ErrClaimsNotFound
		}
		return models.ComplianceClaims{}, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return claims, nil
}

func (r *complianceClaimsRepository) Upsert(ctx context.Context, claims *models.ComplianceClaims) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(claims).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}
