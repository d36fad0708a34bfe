package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bvest/internal/models"
	"bvest/internal/repositories/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type listingRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewListingRepository creates a gorm-backed ListingRepository with a
// read-through cache for single-listing lookups. Cache failures degrade
// to database reads.
func NewListingRepository(db *gorm.DB, cacheService *cache.CacheService) ListingRepository {
	return &listingRepository{db: db, cache: cacheService}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.BusinessListing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error) {
	if r.cache != nil {
		if listing, err := r.cache.GetListing(ctx, id); err == nil && listing != nil {
			return listing, nil
		}
	}

	var listing models.BusinessListing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}

	if r.cache != nil {
		if err := r.cache.CacheListing(ctx, &listing); err != nil {
			log.Printf("Failed to cache listing %s: %v", listing.ID, err)
		}
	}
	return &listing, nil
}

func (r *listingRepository) Save(ctx context.Context, listing *models.BusinessListing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidateListing(ctx, listing.ID); err != nil {
			log.Printf("Failed to invalidate listing cache %s: %v", listing.ID, err)
		}
	}
	return nil
}

func (r *listingRepository) ListPublished(ctx context.Context) ([]models.BusinessListing, error) {
	var listings []models.BusinessListing
	err := r.db.WithContext(ctx).
		Where("status = ? AND visibility = ?", models.ListingStatusPublished, models.VisibilityPublic).
		Order("created_at asc").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return listings, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.BusinessListing, error) {
	var listings []models.BusinessListing
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	return listings, nil
}

func (r *listingRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.BusinessListing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	if r.cache != nil {
		if err := r.cache.InvalidateListing(ctx, id); err != nil {
			log.Printf("Failed to invalidate listing cache %s: %v", id, err)
		}
	}
	return nil
}
