package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bvest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type pledgeRepository struct {
	db *gorm.DB
}

// NewPledgeRepository creates a gorm-backed PledgeRepository.
func NewPledgeRepository(db *gorm.DB) PledgeRepository {
	return &pledgeRepository{db: db}
}

func (r *pledgeRepository) Create(ctx context.Context, pledge *models.InvestmentPledge) error {
	if err := r.db.WithContext(ctx).Create(pledge).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

func (r *pledgeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvestmentPledge, error) {
	var pledge models.InvestmentPledge
	if err := r.db.WithContext(ctx).First(&pledge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPledgeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return &pledge, nil
}

func (r *pledgeRepository) Save(ctx context.Context, pledge *models.InvestmentPledge) error {
	if err := r.db.WithContext(ctx).Save(pledge).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

func (r *pledgeRepository) AppendAudit(ctx context.Context, entry *models.PledgeAuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

func (r *pledgeRepository) ListAudit(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeAuditEntry, error) {
	var entries []models.PledgeAuditEntry
	err := r.db.WithContext(ctx).
		Where("pledge_id = ?", pledgeID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return entries, nil
}

func (r *pledgeRepository) ListByInvestor(ctx context.Context, investorID uint) ([]models.InvestmentPledge, error) {
	var pledges []models.InvestmentPledge
	err := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at desc").
		Find(&pledges).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return pledges, nil
}

func (r *pledgeRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.InvestmentPledge, error) {
	var pledges []models.InvestmentPledge
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at desc").
		Find(&pledges).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return pledges, nil
}

func (r *pledgeRepository) StalledSettlements(ctx context.Context, cutoff time.Time) ([]models.InvestmentPledge, error) {
	var pledges []models.InvestmentPledge
	err := r.db.WithContext(ctx).
		Where("state = ? AND settling_at < ?", models.PledgeStateSettling, cutoff).
		Order("settling_at asc").
		Find(&pledges).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return pledges, nil
}
