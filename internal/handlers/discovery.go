package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/services/matching"
	"bvest/internal/services/notification"
	"bvest/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// notifyTopMatches caps the best-effort new_match fan-out per query.
const notifyTopMatches = 3

type DiscoveryHandler struct {
	matcher    matching.Service
	profiles   repositories.InvestorProfileRepository
	dispatcher notification.Dispatcher
}

func NewDiscoveryHandler(
	matcher matching.Service,
	profiles repositories.InvestorProfileRepository,
	dispatcher notification.Dispatcher,
) *DiscoveryHandler {
	return &DiscoveryHandler{
		matcher:    matcher,
		profiles:   profiles,
		dispatcher: dispatcher,
	}
}

// SearchListings runs a filtered discovery query over the published pool.
func (h *DiscoveryHandler) SearchListings(c *fiber.Ctx) error {
	filters := matching.SearchFilters{
		Industry:   c.Query("industry"),
		Country:    c.Query("country"),
		Instrument: c.Query("instrument"),
		SortBy:     c.Query("sort"),
	}

	if raw := c.Query("min_readiness"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "min_readiness must be a number")
		}
		filters.MinReadiness = &n
	}
	if raw := c.Query("min_amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return response.BadRequest(c, "min_amount must be a number")
		}
		filters.MinAmount = &d
	}
	if raw := c.Query("max_amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return response.BadRequest(c, "max_amount must be a number")
		}
		filters.MaxAmount = &d
	}

	listings, err := h.matcher.Search(c.Context(), filters)
	if err != nil {
		if errors.Is(err, matching.ErrRepositoryUnavailable) {
			return response.Error(c, fiber.StatusServiceUnavailable, "Discovery temporarily unavailable")
		}
		return response.ServerError(c, "Search failed")
	}

	return response.Success(c, "OK", fiber.Map{
		"count":    len(listings),
		"listings": listings,
	})
}

// GetMatches ranks the published pool against the caller's preference
// vector.
func (h *DiscoveryHandler) GetMatches(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c)
	}

	profile, err := h.profiles.GetByInvestorID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return response.BadRequest(c, "Set up your investor profile before requesting matches")
		}
		return response.ServerError(c, "Failed to load profile")
	}

	results, err := h.matcher.Match(c.Context(), profile)
	if err != nil {
		if errors.Is(err, matching.ErrRepositoryUnavailable) {
			return response.Error(c, fiber.StatusServiceUnavailable, "Matching temporarily unavailable")
		}
		return response.ServerError(c, "Matching failed")
	}

	h.notifyMatches(c, claims.UserID, results)

	return response.Success(c, "OK", fiber.Map{
		"count":   len(results),
		"matches": results,
	})
}

// notifyMatches emits best-effort new_match events for the top results.
func (h *DiscoveryHandler) notifyMatches(c *fiber.Ctx, investorID uint, results []matching.MatchResult) {
	for i, r := range results {
		if i >= notifyTopMatches {
			break
		}
		err := h.dispatcher.Dispatch(c.Context(), models.Notification{
			Event:    models.EventNewMatch,
			UserID:   investorID,
			Title:    "New investment match",
			Body:     fmt.Sprintf("A listing scored %d against your preferences.", r.Score),
			Priority: models.PriorityLow,
			Metadata: models.NewJSON(map[string]interface{}{
				"listing_id": r.ListingID.String(),
				"score":      r.Score,
			}),
		})
		if err != nil {
			log.Printf("WARNING: match notification failed for investor %d: %v", investorID, err)
			break
		}
	}
}
