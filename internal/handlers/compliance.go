package handlers

import (
	"errors"
	"strconv"
	"time"

	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ComplianceHandler struct {
	claims repositories.ComplianceClaimsRepository
}

func NewComplianceHandler(claims repositories.ComplianceClaimsRepository) *ComplianceHandler {
	return &ComplianceHandler{
		claims: claims,
	}
}

// GetMyClaims returns the caller's own compliance standing.
func (h *ComplianceHandler) GetMyClaims(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	cc, err := h.claims.GetClaims(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrClaimsNotFound) {
			return response.NotFound(c, "No compliance record yet, complete KYC first")
		}
		return response.ServerError(c, "Failed to load compliance record")
	}
	return response.Success(c, "OK", cc)
}

// GetUserClaims returns another user's compliance standing. Admin only.
func (h *ComplianceHandler) GetUserClaims(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	cc, err := h.claims.GetClaims(c.Context(), uint(userID))
	if err != nil {
		if errors.Is(err, repositories.ErrClaimsNotFound) {
			return response.NotFound(c, "No compliance record for this user")
		}
		return response.ServerError(c, "Failed to load compliance record")
	}
	return response.Success(c, "OK", cc)
}

// UpsertUserClaims replaces a user's compliance claims. Admin only; in
// production this is fed by the KYC provider's webhook.
func (h *ComplianceHandler) UpsertUserClaims(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var input struct {
		KYCLevel                   string          `json:"kyc_level"`
		Accredited                 bool            `json:"accredited"`
		AccreditedUntil            *time.Time      `json:"accredited_until"`
		AMLCleared                 bool            `json:"aml_cleared"`
		SanctionsCleared           bool            `json:"sanctions_cleared"`
		SingleTxnLimit             decimal.Decimal `json:"single_txn_limit"`
		DailyLimit                 decimal.Decimal `json:"daily_limit"`
		MonthlyLimit               decimal.Decimal `json:"monthly_limit"`
		AllowRestrictedWithdrawals bool            `json:"allow_restricted_withdrawals"`
		AccountStatus              string          `json:"account_status"`
		RestrictionReasons         []string        `json:"restriction_reasons"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if !models.ValidKYCLevel(input.KYCLevel) {
		return response.BadRequest(c, "kyc_level must be none, basic, enhanced, or premium")
	}
	if !models.ValidAccountStatus(input.AccountStatus) {
		return response.BadRequest(c, "account_status must be active, restricted, or closed")
	}
	if !models.ConsistentSanctionsStatus(input.SanctionsCleared, input.AccountStatus) {
		return response.BadRequest(c, "A user that is not sanctions-cleared must have account_status restricted or closed")
	}

	cc := &models.ComplianceClaims{
		UserID:                     uint(userID),
		KYCLevel:                   input.KYCLevel,
		Accredited:                 input.Accredited,
		AccreditedUntil:            input.AccreditedUntil,
		AMLCleared:                 input.AMLCleared,
		SanctionsCleared:           input.SanctionsCleared,
		SingleTxnLimit:             input.SingleTxnLimit,
		DailyLimit:                 input.DailyLimit,
		MonthlyLimit:               input.MonthlyLimit,
		AllowRestrictedWithdrawals: input.AllowRestrictedWithdrawals,
		AccountStatus:              input.AccountStatus,
		RestrictionReasons:         models.StringSet(input.RestrictionReasons),
	}
	if err := h.claims.Upsert(c.Context(), cc); err != nil {
		return response.ServerError(c, "Failed to save compliance record")
	}

	return response.Success(c, "Compliance record saved", cc)
}
