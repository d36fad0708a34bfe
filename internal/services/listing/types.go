package listing

import (
	"context"

	"bvest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComplianceDeniedError reports a listing creation refused by the
// compliance gate.
type ComplianceDeniedError struct {
	Reason string
}

func (e *ComplianceDeniedError) Error() string {
	return "compliance denied: " + e.Reason
}

// CreateRequest carries the owner-supplied fields of a new listing.
type CreateRequest struct {
	OwnerID             uint
	Industry            string
	Country             string
	Description         string
	RequestedAmount     decimal.Decimal
	AcceptedInstruments []string
	ReadinessScore      int
	Visibility          string
}

// UpdateRequest carries the editable fields of a draft listing. Nil
// pointers leave the current value untouched.
type UpdateRequest struct {
	Industry            *string
	Country             *string
	Description         *string
	RequestedAmount     *decimal.Decimal
	AcceptedInstruments []string
	ReadinessScore      *int
	Visibility          *string
}

// Service manages the listing lifecycle from draft through review to
// the published pool and eventual closing.
type Service interface {
	// Create gates the owner through compliance and stores a draft.
	Create(ctx context.Context, req CreateRequest) (*models.BusinessListing, error)

	// Update edits a draft owned by ownerID.
	Update(ctx context.Context, id uuid.UUID, ownerID uint, req UpdateRequest) (*models.BusinessListing, error)

	// SubmitForReview moves a draft into the review queue.
	SubmitForReview(ctx context.Context, id uuid.UUID, ownerID uint) (*models.BusinessListing, error)

	// Approve publishes a listing under review. Admin only; the caller
	// enforces the role.
	Approve(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error)

	// Reject sends a listing under review back to draft.
	Reject(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error)

	// Close retires a published listing from the investable pool.
	Close(ctx context.Context, id uuid.UUID, ownerID uint) (*models.BusinessListing, error)

	// RecordView bumps the interest counter of a published listing.
	RecordView(ctx context.Context, id uuid.UUID) error

	Get(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error)
	ListMine(ctx context.Context, ownerID uint) ([]models.BusinessListing, error)
}
