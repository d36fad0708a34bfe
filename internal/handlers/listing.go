package handlers

import (
	"context"
	"errors"

	"bvest/internal/models"
	"bvest/internal/services/listing"
	"bvest/internal/utils/response"
	"bvest/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingHandler struct {
	listingService listing.Service
}

func NewListingHandler(listingService listing.Service) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

type listingInput struct {
	Industry            string          `json:"industry"`
	Country             string          `json:"country"`
	Description         string          `json:"description"`
	RequestedAmount     decimal.Decimal `json:"requested_amount"`
	AcceptedInstruments []string        `json:"accepted_instruments"`
	ReadinessScore      int             `json:"readiness_score"`
	Visibility          string          `json:"visibility"`
}

// CreateListing stores a new draft for the authenticated business owner.
func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	var input listingInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Listing(input.Industry, input.Country, input.Description,
		input.RequestedAmount, input.AcceptedInstruments, input.ReadinessScore)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	l, err := h.listingService.Create(c.Context(), listing.CreateRequest{
		OwnerID:             claims.UserID,
		Industry:            input.Industry,
		Country:             input.Country,
		Description:         input.Description,
		RequestedAmount:     input.RequestedAmount,
		AcceptedInstruments: input.AcceptedInstruments,
		ReadinessScore:      input.ReadinessScore,
		Visibility:          input.Visibility,
	})
	if err != nil {
		return h.listingError(c, err)
	}

	return response.Created(c, "Listing created", l)
}

// UpdateListing edits a draft owned by the caller.
func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing id")
	}

	var input struct {
		Industry            *string          `json:"industry"`
		Country             *string          `json:"country"`
		Description         *string          `json:"description"`
		RequestedAmount     *decimal.Decimal `json:"requested_amount"`
		AcceptedInstruments []string         `json:"accepted_instruments"`
		ReadinessScore      *int             `json:"readiness_score"`
		Visibility          *string          `json:"visibility"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	l, err := h.listingService.Update(c.Context(), id, claims.UserID, listing.UpdateRequest{
		Industry:            input.Industry,
		Country:             input.Country,
		Description:         input.Description,
		RequestedAmount:     input.RequestedAmount,
		AcceptedInstruments: input.AcceptedInstruments,
		ReadinessScore:      input.ReadinessScore,
		Visibility:          input.Visibility,
	})
	if err != nil {
		return h.listingError(c, err)
	}

	return response.Success(c, "Listing updated", l)
}

// SubmitListing queues a draft for admin review.
func (h *ListingHandler) SubmitListing(c *fiber.Ctx) error {
	return h.ownerTransition(c, h.listingService.SubmitForReview, "Listing submitted for review")
}

// CloseListing retires a published listing.
func (h *ListingHandler) CloseListing(c *fiber.Ctx) error {
	return h.ownerTransition(c, h.listingService.Close, "Listing closed")
}

// ApproveListing publishes a listing under review. Admin only.
func (h *ListingHandler) ApproveListing(c *fiber.Ctx) error {
	return h.adminTransition(c, h.listingService.Approve, "Listing published")
}

// RejectListing returns a listing under review to draft. Admin only.
func (h *ListingHandler) RejectListing(c *fiber.Ctx) error {
	return h.adminTransition(c, h.listingService.Reject, "Listing returned to draft")
}

// GetListing returns one listing and counts the view.
func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing id")
	}

	l, err := h.listingService.Get(c.Context(), id)
	if err != nil {
		return h.listingError(c, err)
	}

	// Owners browsing their own listing do not inflate interest.
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if ok && claims.UserID != l.OwnerID {
		if err := h.listingService.RecordView(c.Context(), id); err == nil {
			l.ViewCount++
		}
	}

	return response.Success(c, "OK", l)
}

// ListMyListings returns the caller's listings in every state.
func (h *ListingHandler) ListMyListings(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	listings, err := h.listingService.ListMine(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to load listings")
	}
	return response.Success(c, "OK", listings)
}

func (h *ListingHandler) ownerTransition(
	c *fiber.Ctx,
	fn func(ctx context.Context, id uuid.UUID, ownerID uint) (*models.BusinessListing, error),
	message string,
) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing id")
	}

	l, err := fn(c.Context(), id, claims.UserID)
	if err != nil {
		return h.listingError(c, err)
	}
	return response.Success(c, message, l)
}

func (h *ListingHandler) adminTransition(
	c *fiber.Ctx,
	fn func(ctx context.Context, id uuid.UUID) (*models.BusinessListing, error),
	message string,
) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing id")
	}

	l, err := fn(c.Context(), id)
	if err != nil {
		return h.listingError(c, err)
	}
	return response.Success(c, message, l)
}

func (h *ListingHandler) listingError(c *fiber.Ctx, err error) error {
	var denied *listing.ComplianceDeniedError
	switch {
	case errors.As(err, &denied):
		return response.Denied(c, denied.Reason)
	case errors.Is(err, listing.ErrListingNotFound):
		return response.NotFound(c, "Listing not found")
	case errors.Is(err, listing.ErrNotOwner):
		return response.Error(c, fiber.StatusForbidden, "Not your listing")
	case errors.Is(err, listing.ErrInvalidListingState):
		return response.Conflict(c, "Operation not valid in the listing's current state")
	case errors.Is(err, listing.ErrListingNotPublic):
		return response.Conflict(c, "Only public listings can be published")
	case errors.Is(err, listing.ErrInvalidAmount),
		errors.Is(err, listing.ErrInvalidInstrument),
		errors.Is(err, listing.ErrMissingField):
		return response.BadRequest(c, err.Error())
	default:
		return response.ServerError(c, "Listing operation failed")
	}
}
