package handlers

import (
	"errors"
	"strconv"
	"time"

	"bvest/internal/config"
	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/services/listing"
	"bvest/internal/services/pledge"
	"bvest/internal/utils/response"
	"bvest/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultStalledCutoff is how long a settlement may sit unresolved
// before the reconciliation endpoint reports it.
const defaultStalledCutoff = time.Hour

type PledgeHandler struct {
	pledgeService  pledge.Service
	listingService listing.Service
	pledges        repositories.PledgeRepository
}

func NewPledgeHandler(
	pledgeService pledge.Service,
	listingService listing.Service,
	pledges repositories.PledgeRepository,
) *PledgeHandler {
	return &PledgeHandler{
		pledgeService:  pledgeService,
		listingService: listingService,
		pledges:        pledges,
	}
}

// CreatePledge opens a pledge against a published listing.
func (h *PledgeHandler) CreatePledge(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	var input struct {
		ListingID         string          `json:"listing_id"`
		Amount            decimal.Decimal `json:"amount"`
		Instrument        string          `json:"instrument"`
		ExpectedReturnPct decimal.Decimal `json:"expected_return_pct"`
		DurationMonths    int             `json:"duration_months"`
		Message           string          `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	listingID, err := uuid.Parse(input.ListingID)
	if err != nil {
		return response.BadRequest(c, "Invalid listing id")
	}

	v := validation.New()
	v.Pledge(input.Amount, input.Instrument, input.Message, input.DurationMonths)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	p, err := h.pledgeService.CreatePledge(c.Context(), pledge.CreateRequest{
		InvestorID:        claims.UserID,
		ListingID:         listingID,
		Amount:            input.Amount,
		Instrument:        input.Instrument,
		ExpectedReturnPct: input.ExpectedReturnPct,
		DurationMonths:    input.DurationMonths,
		Message:           input.Message,
	})
	if err != nil {
		return h.pledgeError(c, err)
	}

	return response.Created(c, "Pledge created", p)
}

// GetPledge returns one pledge visible to its investor or the listing
// owner.
func (h *PledgeHandler) GetPledge(c *fiber.Ctx) error {
	_, p, err := h.loadForParty(c)
	if err != nil {
		return err
	}
	return response.Success(c, "OK", p)
}

// GetAuditTrail returns the transition history of a pledge.
func (h *PledgeHandler) GetAuditTrail(c *fiber.Ctx) error {
	_, p, err := h.loadForParty(c)
	if err != nil {
		return err
	}

	trail, err := h.pledgeService.AuditTrail(c.Context(), p.ID)
	if err != nil {
		return response.ServerError(c, "Failed to load audit trail")
	}
	return response.Success(c, "OK", trail)
}

// ListMyPledges returns the caller's pledges as an investor.
func (h *PledgeHandler) ListMyPledges(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	pledges, err := h.pledges.ListByInvestor(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to load pledges")
	}
	return response.Success(c, "OK", pledges)
}

// ListListingPledges returns the pledges against one of the caller's
// listings.
func (h *PledgeHandler) ListListingPledges(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}
	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid listing id")
	}

	l, err := h.listingService.Get(c.Context(), listingID)
	if err != nil {
		return response.NotFound(c, "Listing not found")
	}
	if l.OwnerID != claims.UserID && claims.Role != models.RoleAdmin {
		return response.Error(c, fiber.StatusForbidden, "Not your listing")
	}

	pledges, err := h.pledges.ListByListing(c.Context(), listingID)
	if err != nil {
		return response.ServerError(c, "Failed to load pledges")
	}
	return response.Success(c, "OK", pledges)
}

// DecidePledge applies the owner's accept or reject verdict.
func (h *PledgeHandler) DecidePledge(c *fiber.Ctx) error {
	claims, p, err := h.loadForOwner(c)
	if err != nil {
		return err
	}

	var input struct {
		Decision string `json:"decision"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	decided, err := h.pledgeService.Decide(c.Context(), p.ID, claims.UserID, pledge.OwnerDecision(input.Decision))
	if err != nil {
		return h.pledgeError(c, err)
	}
	return response.Success(c, "Decision recorded", decided)
}

// WithdrawPledge cancels the caller's own pledge.
func (h *PledgeHandler) WithdrawPledge(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid pledge id")
	}

	p, err := h.pledgeService.GetPledge(c.Context(), id)
	if err != nil {
		return h.pledgeError(c, err)
	}
	if p.InvestorID != claims.UserID {
		return response.Error(c, fiber.StatusForbidden, "Not your pledge")
	}

	withdrawn, err := h.pledgeService.Withdraw(c.Context(), id, claims.UserID)
	if err != nil {
		return h.pledgeError(c, err)
	}
	return response.Success(c, "Pledge withdrawn", withdrawn)
}

// BeginSettlement hands an accepted pledge to the payment processor.
func (h *PledgeHandler) BeginSettlement(c *fiber.Ctx) error {
	claims, p, err := h.loadForOwner(c)
	if err != nil {
		return err
	}

	settling, err := h.pledgeService.BeginSettlement(c.Context(), p.ID, claims.UserID)
	if err != nil {
		return h.pledgeError(c, err)
	}
	return response.Success(c, "Settlement started", settling)
}

// SettlementCallback is the payment processor's webhook target. The
// shared secret stands in for the processor's signature scheme.
func (h *PledgeHandler) SettlementCallback(c *fiber.Ctx) error {
	secret := config.GetEnv("SETTLEMENT_WEBHOOK_SECRET", "")
	if secret == "" || c.Get("X-Webhook-Secret") != secret {
		return response.Unauthorized(c)
	}

	var input struct {
		PledgeID      string `json:"pledge_id"`
		Outcome       string `json:"outcome"`
		SettlementRef string `json:"settlement_ref"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	id, err := uuid.Parse(input.PledgeID)
	if err != nil {
		return response.BadRequest(c, "Invalid pledge id")
	}

	p, err := h.pledgeService.FinalizeSettlement(c.Context(), id,
		pledge.SettlementOutcome(input.Outcome), input.SettlementRef)
	if err != nil {
		return h.pledgeError(c, err)
	}
	return response.Success(c, "Settlement recorded", p)
}

// ListStalledSettlements reports settlements without a processor
// verdict past the cutoff. Admin only.
func (h *PledgeHandler) ListStalledSettlements(c *fiber.Ctx) error {
	cutoff := defaultStalledCutoff
	if raw := c.Query("older_than_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 {
			return response.BadRequest(c, "older_than_minutes must be a positive number")
		}
		cutoff = time.Duration(minutes) * time.Minute
	}

	stalled, err := h.pledgeService.ReconcileStalled(c.Context(), cutoff)
	if err != nil {
		return response.ServerError(c, "Reconciliation query failed")
	}
	return response.Success(c, "OK", fiber.Map{
		"count":   len(stalled),
		"pledges": stalled,
	})
}

// loadForParty loads the pledge and verifies the caller is the investor,
// the listing owner, or an admin.
func (h *PledgeHandler) loadForParty(c *fiber.Ctx) (*models.UserClaims, *models.InvestmentPledge, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return nil, nil, response.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, nil, response.BadRequest(c, "Invalid pledge id")
	}

	p, err := h.pledgeService.GetPledge(c.Context(), id)
	if err != nil {
		return nil, nil, h.pledgeError(c, err)
	}

	if claims.Role == models.RoleAdmin || p.InvestorID == claims.UserID {
		return claims, p, nil
	}
	l, err := h.listingService.Get(c.Context(), p.ListingID)
	if err != nil || l.OwnerID != claims.UserID {
		return nil, nil, response.Error(c, fiber.StatusForbidden, "Not a party to this pledge")
	}
	return claims, p, nil
}

// loadForOwner loads the pledge and verifies the caller owns the target
// listing.
func (h *PledgeHandler) loadForOwner(c *fiber.Ctx) (*models.UserClaims, *models.InvestmentPledge, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return nil, nil, response.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, nil, response.BadRequest(c, "Invalid pledge id")
	}

	p, err := h.pledgeService.GetPledge(c.Context(), id)
	if err != nil {
		return nil, nil, h.pledgeError(c, err)
	}

	l, err := h.listingService.Get(c.Context(), p.ListingID)
	if err != nil {
		return nil, nil, response.NotFound(c, "Listing not found")
	}
	if l.OwnerID != claims.UserID && claims.Role != models.RoleAdmin {
		return nil, nil, response.Error(c, fiber.StatusForbidden, "Not your listing")
	}
	return claims, p, nil
}

func (h *PledgeHandler) pledgeError(c *fiber.Ctx, err error) error {
	if reason, ok := pledge.DeniedReason(err); ok {
		return response.Denied(c, reason)
	}
	switch {
	case errors.Is(err, pledge.ErrPledgeNotFound):
		return response.NotFound(c, "Pledge not found")
	case errors.Is(err, pledge.ErrListingNotInvestable):
		return response.Conflict(c, "Listing is not open for investment")
	case errors.Is(err, pledge.ErrInvalidStateTransition):
		return response.Conflict(c, "Operation not valid in the pledge's current state")
	case errors.Is(err, pledge.ErrInvalidAmount),
		errors.Is(err, pledge.ErrInvalidInstrument),
		errors.Is(err, pledge.ErrInvalidDecision):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, pledge.ErrPaymentProcessorUnavailable):
		return response.Error(c, fiber.StatusBadGateway, "Payment processor unavailable, try again")
	default:
		return response.ServerError(c, "Pledge operation failed")
	}
}
