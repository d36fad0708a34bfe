package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Risk tolerance levels
const (
	RiskToleranceLow    = "low"
	RiskToleranceMedium = "medium"
	RiskToleranceHigh   = "high"
)

// InvestorProfile is the preference vector used for matching. It is
// mutated only by the investor who owns it and read-only everywhere else.
type InvestorProfile struct {
	ID                   uint            `gorm:"primarykey" json:"id"`
	InvestorID           uint            `gorm:"uniqueIndex;not null" json:"investor_id"`
	PreferredIndustries  StringSet       `gorm:"type:jsonb" json:"preferred_industries"`
	PreferredCountries   StringSet       `gorm:"type:jsonb" json:"preferred_countries"`
	PreferredInstruments StringSet       `gorm:"type:jsonb" json:"preferred_instruments"`
	MinAmount            decimal.Decimal `gorm:"type:decimal(18,2)" json:"min_amount"`
	MaxAmount            decimal.Decimal `gorm:"type:decimal(18,2)" json:"max_amount"`
	RiskTolerance        string          `gorm:"default:'medium'" json:"risk_tolerance"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// AmountInRange reports whether amount falls inside the investor's
// preferred range, boundaries inclusive. A zero range never matches.
func (p *InvestorProfile) AmountInRange(amount decimal.Decimal) bool {
	if p.MinAmount.IsZero() && p.MaxAmount.IsZero() {
		return false
	}
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}
