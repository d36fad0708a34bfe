package repositories

import (
	"context"
	"errors"
	"time"

	"bvest/internal/models"

	"github.com/google/uuid"
)

var ErrPledgeNotFound = errors.New("pledge not found")

// PledgeRepository defines pledge persistence operations. Pledges are
// never deleted; terminal states are retained for audit.
type PledgeRepository interface {
	// Create stores a new pledge
	Create(ctx context.Context, pledge *models.InvestmentPledge) error

	// GetByID retrieves a pledge by id
	GetByID(ctx context.Context, id uuid.UUID) (*models.InvestmentPledge, error)

	// Save persists changes to an existing pledge
	Save(ctx context.Context, pledge *models.InvestmentPledge) error

	// AppendAudit appends one immutable audit entry
	AppendAudit(ctx context.Context, entry *models.PledgeAuditEntry) error

	// ListAudit returns the audit trail for a pledge, oldest first
	ListAudit(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeAuditEntry, error)

	// ListByInvestor returns all pledges created by an investor
	ListByInvestor(ctx context.Context, investorID uint) ([]models.InvestmentPledge, error)

	// ListByListing returns all pledges targeting a listing
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.InvestmentPledge, error)

	// StalledSettlements returns pledges that entered settling before
	// the cutoff and have not been finalized
	StalledSettlements(ctx context.Context, cutoff time.Time) ([]models.InvestmentPledge, error)
}
