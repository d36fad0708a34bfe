package handlers

import (
	"errors"

	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/utils/response"
	"bvest/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProfileHandler struct {
	profiles repositories.InvestorProfileRepository
}

func NewProfileHandler(profiles repositories.InvestorProfileRepository) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
	}
}

// GetProfile returns the caller's preference vector.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	profile, err := h.profiles.GetByInvestorID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return response.NotFound(c, "Profile not set up yet")
		}
		return response.ServerError(c, "Failed to load profile")
	}

	return response.Success(c, "OK", profile)
}

// UpsertProfile creates or replaces the caller's preference vector.
func (h *ProfileHandler) UpsertProfile(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	var input struct {
		PreferredIndustries  []string        `json:"preferred_industries"`
		PreferredCountries   []string        `json:"preferred_countries"`
		PreferredInstruments []string        `json:"preferred_instruments"`
		MinAmount            decimal.Decimal `json:"min_amount"`
		MaxAmount            decimal.Decimal `json:"max_amount"`
		RiskTolerance        string          `json:"risk_tolerance"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Profile(input.MinAmount, input.MaxAmount, input.PreferredInstruments)
	if !v.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": v.Errors})
	}

	risk := input.RiskTolerance
	if risk == "" {
		risk = models.RiskToleranceMedium
	}
	if risk != models.RiskToleranceLow && risk != models.RiskToleranceMedium && risk != models.RiskToleranceHigh {
		return response.BadRequest(c, "risk_tolerance must be low, medium, or high")
	}

	profile := &models.InvestorProfile{
		InvestorID:           claims.UserID,
		PreferredIndustries:  models.StringSet(input.PreferredIndustries),
		PreferredCountries:   models.StringSet(input.PreferredCountries),
		PreferredInstruments: models.StringSet(input.PreferredInstruments),
		MinAmount:            input.MinAmount,
		MaxAmount:            input.MaxAmount,
		RiskTolerance:        risk,
	}
	if err := h.profiles.Upsert(c.Context(), profile); err != nil {
		return response.ServerError(c, "Failed to save profile")
	}

	return response.Success(c, "Profile saved", profile)
}
