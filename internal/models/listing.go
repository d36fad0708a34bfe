package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing statuses
const (
	ListingStatusDraft         = "draft"
	ListingStatusPendingReview = "pending_review"
	ListingStatusPublished     = "published"
	ListingStatusClosed        = "closed"
)

// Listing visibility
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Investment instrument types
const (
	InstrumentEquity       = "equity"
	InstrumentDebt         = "debt"
	InstrumentRevenueShare = "revenue_share"
)

// ValidInstrument reports whether s is a known instrument type.
func ValidInstrument(s string) bool {
	switch s {
	case InstrumentEquity, InstrumentDebt, InstrumentRevenueShare:
		return true
	}
	return false
}

// BusinessListing is a funding opportunity published by a business owner.
// The readiness score is computed upstream by the assessment pipeline and
// stored here as input; it is never recomputed by this service.
type BusinessListing struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID             uint            `gorm:"not null;index" json:"owner_id"`
	Industry            string          `gorm:"not null;index" json:"industry"`
	Country             string          `gorm:"not null;index" json:"country"`
	Description         string          `json:"description"`
	RequestedAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"requested_amount"`
	AcceptedInstruments StringSet       `gorm:"type:jsonb" json:"accepted_instruments"`
	ReadinessScore      int             `gorm:"not null;default:0" json:"readiness_score"`
	Visibility          string          `gorm:"default:'private'" json:"visibility"`
	Verified            bool            `gorm:"default:false" json:"verified"`
	ViewCount           int64           `gorm:"default:0" json:"view_count"`
	Status              string          `gorm:"default:'draft';index" json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (l *BusinessListing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Investable reports whether the listing can receive pledges.
func (l *BusinessListing) Investable() bool {
	return l.Status == ListingStatusPublished && l.Visibility == VisibilityPublic
}

// AcceptsInstrument reports whether the listing accepts the instrument type.
func (l *BusinessListing) AcceptsInstrument(instrument string) bool {
	return l.AcceptedInstruments.Contains(instrument)
}
