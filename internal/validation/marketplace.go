package validation

import (
	"bvest/internal/models"

	"github.com/shopspring/decimal"
)

// Listing validates the owner-supplied fields of a new or edited listing.
func (v *Validator) Listing(industry, country, description string, amount decimal.Decimal, instruments []string, readiness int) {
	v.Required("industry", industry)
	v.Required("country", country)
	v.MaxLength("description", description, MaxDescriptionLength)
	v.Check(amount.IsPositive(), "requested_amount", "must be positive")
	v.Range("requested_amount", amount.InexactFloat64(), MinPledgeAmount, MaxRequestedAmount)
	v.Required("accepted_instruments", instruments)
	for _, ins := range instruments {
		if !models.ValidInstrument(ins) {
			v.AddError("accepted_instruments", "contains an unknown instrument")
			break
		}
	}
	v.Range("readiness_score", float64(readiness), 0, MaxReadinessScore)
}

// Pledge validates an investor's pledge request.
func (v *Validator) Pledge(amount decimal.Decimal, instrument, message string, durationMonths int) {
	v.Check(amount.IsPositive(), "amount", "must be positive")
	v.Range("amount", amount.InexactFloat64(), MinPledgeAmount, MaxPledgeAmount)
	v.Check(models.ValidInstrument(instrument), "instrument", "must be equity, debt, or revenue_share")
	v.MaxLength("message", message, MaxMessageLength)
	if durationMonths != 0 {
		v.Range("duration_months", float64(durationMonths), 1, 360)
	}
}

// Profile validates investor preference updates.
func (v *Validator) Profile(minAmount, maxAmount decimal.Decimal, instruments []string) {
	v.Check(!minAmount.IsNegative(), "min_amount", "must not be negative")
	v.Check(!maxAmount.IsNegative(), "max_amount", "must not be negative")
	if !minAmount.IsZero() && !maxAmount.IsZero() {
		v.Check(minAmount.LessThanOrEqual(maxAmount), "min_amount", "must not exceed max_amount")
	}
	for _, ins := range instruments {
		if !models.ValidInstrument(ins) {
			v.AddError("preferred_instruments", "contains an unknown instrument")
			break
		}
	}
}
