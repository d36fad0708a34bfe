package repositories

import (
	"context"
	"errors"

	"bvest/internal/models"

	"github.com/google/uuid"
)

var (
	ErrListingNotFound   = errors.New("listing not found")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// ListingRepository defines listing persistence operations. The
// marketplace depends only on eventual visibility of writes; no
// operation spans more than one listing.
type ListingRepository interface {
	// Create stores a new listing
	Create(ctx context.Context, listing *models.BusinessListing) error

	// GetByID retrieves a listing by id
	GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error)

	// Save persists changes to an existing listing
	Save(ctx context.Context, listing *models.BusinessListing) error

	// ListPublished returns all listings visible to discovery, in
	// stable insertion order
	ListPublished(ctx context.Context) ([]models.BusinessListing, error)

	// ListByOwner returns all listings owned by a business user
	ListByOwner(ctx context.Context, ownerID uint) ([]models.BusinessListing, error)

	// IncrementViews atomically bumps the view counter
	IncrementViews(ctx context.Context, id uuid.UUID) error
}
