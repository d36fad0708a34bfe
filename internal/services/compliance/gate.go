// Package compliance decides whether an investment action is permitted
// for a user given their verification claims. Authorize is a pure
// function of the claims snapshot and the request; it holds no state and
// reads no clock of its own, which keeps every decision reproducible in
// an audit.
package compliance

import (
	"time"

	"bvest/internal/config"
	"bvest/internal/models"

	"github.com/shopspring/decimal"
)

// Gate evaluates compliance decisions against the platform limits.
type Gate struct {
	nonAccreditedCeiling decimal.Decimal
}

// NewGate creates a Gate from the platform configuration.
func NewGate(cfg config.PlatformConfig) *Gate {
	return &Gate{nonAccreditedCeiling: cfg.NonAccreditedCeiling}
}

// Authorize evaluates an action against the claims snapshot.
//
// Check order: sanctions hold, account status, AML, KYC, then monetary
// limits. The sanctions check is unconditional; no other claim field can
// bypass it.
func (g *Gate) Authorize(claims models.ComplianceClaims, req Request) Decision {
	if !claims.SanctionsCleared {
		return Denied(ReasonSanctionsHold)
	}

	switch claims.AccountStatus {
	case models.AccountStatusClosed:
		return Denied(ReasonAccountClosed)
	case models.AccountStatusRestricted:
		if !(req.Action == ActionWithdraw && claims.AllowRestrictedWithdrawals) {
			return Denied(ReasonAccountRestricted)
		}
	}

	if req.Action == ActionCreateListing {
		if !models.KYCLevelAtLeast(claims.KYCLevel, models.KYCLevelBasic) {
			return Denied(ReasonKYCRequired)
		}
		return Permitted()
	}

	if req.Amount.IsPositive() {
		if !claims.AMLCleared {
			return Denied(ReasonAMLPending)
		}
		if reason := g.checkLimits(claims, req); reason != "" {
			return Denied(reason)
		}
	}

	return Permitted()
}

func (g *Gate) checkLimits(claims models.ComplianceClaims, req Request) string {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	single := claims.SingleTxnLimit
	if req.Action == ActionCreatePledge && !claims.AccreditedAt(now) {
		// The more restrictive of the claims limit and the platform
		// ceiling always wins for non-accredited investors.
		if single.IsZero() || g.nonAccreditedCeiling.LessThan(single) {
			single = g.nonAccreditedCeiling
		}
	}

	if !single.IsZero() && req.Amount.GreaterThan(single) {
		return ReasonExceedsSingleLimit
	}
	if !claims.DailyLimit.IsZero() && req.DailySpent.Add(req.Amount).GreaterThan(claims.DailyLimit) {
		return ReasonExceedsDailyLimit
	}
	if !claims.MonthlyLimit.IsZero() && req.MonthlySpent.Add(req.Amount).GreaterThan(claims.MonthlyLimit) {
		return ReasonExceedsMonthlyLimit
	}
	return ""
}
