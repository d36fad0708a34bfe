package listing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/services/compliance"
	"bvest/internal/services/notification"

	"github.com/google/uuid"
)

type service struct {
	listings   repositories.ListingRepository
	claims     repositories.ComplianceClaimsRepository
	gate       *compliance.Gate
	dispatcher notification.Dispatcher
}

// NewService creates the listing lifecycle service.
func NewService(
	listings repositories.ListingRepository,
	claims repositories.ComplianceClaimsRepository,
	gate *compliance.Gate,
	dispatcher notification.Dispatcher,
) Service {
	if listings == nil {
		panic("listing repository is required")
	}
	if claims == nil {
		panic("claims repository is required")
	}
	if gate == nil {
		panic("compliance gate is required")
	}
	if dispatcher == nil {
		dispatcher = notification.NewLogDispatcher()
	}
	return &service{listings: listings, claims: claims, gate: gate, dispatcher: dispatcher}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*models.BusinessListing, error) {
	if req.Industry == "" || req.Country == "" {
		return nil, ErrMissingField
	}
	if !req.RequestedAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(req.AcceptedInstruments) == 0 {
		return nil, ErrMissingField
	}
	for _, ins := range req.AcceptedInstruments {
		if !models.ValidInstrument(ins) {
			return nil, ErrInvalidInstrument
		}
	}

	claims, err := s.claims.GetClaims(ctx, req.OwnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrClaimsNotFound) {
			// No compliance record means the identity pipeline has not
			// verified this owner yet.
			return nil, &ComplianceDeniedError{Reason: compliance.ReasonKYCRequired}
		}
		return nil, fmt.Errorf("failed to load compliance claims: %w", err)
	}
	decision := s.gate.Authorize(claims, compliance.Request{
		Action: compliance.ActionCreateListing,
		Now:    time.Now(),
	})
	if !decision.Allowed {
		return nil, &ComplianceDeniedError{Reason: decision.Reason}
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return nil, ErrMissingField
	}

	l := &models.BusinessListing{
		OwnerID:             req.OwnerID,
		Industry:            req.Industry,
		Country:             req.Country,
		Description:         req.Description,
		RequestedAmount:     req.RequestedAmount,
		AcceptedInstruments: models.StringSet(req.AcceptedInstruments),
		ReadinessScore:      clampReadiness(req.ReadinessScore),
		Visibility:          visibility,
		Status:              models.ListingStatusDraft,
	}
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return l, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, ownerID uint, req UpdateRequest) (*models.BusinessListing, error) {
	l, err := s.ownedListing(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if l.Status != models.ListingStatusDraft {
		return nil, ErrInvalidListingState
	}

	if req.Industry != nil {
		l.Industry = *req.Industry
	}
	if req.Country != nil {
		l.Country = *req.Country
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.RequestedAmount != nil {
		if !req.RequestedAmount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		l.RequestedAmount = *req.RequestedAmount
	}
	if req.AcceptedInstruments != nil {
		for _, ins := range req.AcceptedInstruments {
			if !models.ValidInstrument(ins) {
				return nil, ErrInvalidInstrument
			}
		}
		l.AcceptedInstruments = models.StringSet(req.AcceptedInstruments)
	}
	if req.ReadinessScore != nil {
		l.ReadinessScore = clampReadiness(*req.ReadinessScore)
	}
	if req.Visibility != nil {
		if *req.Visibility != models.VisibilityPublic && *req.Visibility != models.VisibilityPrivate {
			return nil, ErrMissingField
		}
		l.Visibility = *req.Visibility
	}

	if err := s.listings.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}
	return l, nil
}

func (s *service) SubmitForReview(ctx context.Context, id uuid.UUID, ownerID uint) (*models.BusinessListing, error) {
	l, err := s.ownedListing(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, l, models.ListingStatusDraft, models.ListingStatusPendingReview)
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Private listings never publish; the owner must flip visibility
	// and resubmit.
	if l.Status == models.ListingStatusPendingReview && l.Visibility != models.VisibilityPublic {
		return nil, ErrListingNotPublic
	}
	l, err = s.transition(ctx, l, models.ListingStatusPendingReview, models.ListingStatusPublished)
	if err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, l, "Listing published",
		fmt.Sprintf("Your %s listing is now visible to investors.", l.Industry))
	return l, nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l, err = s.transition(ctx, l, models.ListingStatusPendingReview, models.ListingStatusDraft)
	if err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, l, "Listing needs changes",
		fmt.Sprintf("Your %s listing was returned to draft after review.", l.Industry))
	return l, nil
}

func (s *service) Close(ctx context.Context, id uuid.UUID, ownerID uint) (*models.BusinessListing, error) {
	l, err := s.ownedListing(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, l, models.ListingStatusPublished, models.ListingStatusClosed)
}

func (s *service) RecordView(ctx context.Context, id uuid.UUID) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != models.ListingStatusPublished {
		return nil
	}
	return s.listings.IncrementViews(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	return l, nil
}

func (s *service) ListMine(ctx context.Context, ownerID uint) ([]models.BusinessListing, error) {
	return s.listings.ListByOwner(ctx, ownerID)
}

func (s *service) ownedListing(ctx context.Context, id uuid.UUID, ownerID uint) (*models.BusinessListing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return l, nil
}

func (s *service) transition(ctx context.Context, l *models.BusinessListing, from, to string) (*models.BusinessListing, error) {
	if l.Status != from {
		return nil, ErrInvalidListingState
	}
	l.Status = to
	if err := s.listings.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save listing: %w", err)
	}
	return l, nil
}

func (s *service) notifyOwner(ctx context.Context, l *models.BusinessListing, title, body string) {
	err := s.dispatcher.Dispatch(ctx, models.Notification{
		Event:    models.EventListingStatusChanged,
		UserID:   l.OwnerID,
		Title:    title,
		Body:     body,
		Priority: models.PriorityMedium,
	})
	if err != nil {
		log.Printf("WARNING: listing notification failed for %s: %v", l.ID, err)
	}
}

func clampReadiness(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
