package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pledge states
const (
	PledgeStatePending          = "pending"
	PledgeStateAccepted         = "accepted"
	PledgeStateRejected         = "rejected"
	PledgeStateWithdrawn        = "withdrawn"
	PledgeStateSettling         = "settling"
	PledgeStateFunded           = "funded"
	PledgeStateSettlementFailed = "settlement_failed"
)

// TerminalPledgeState reports whether no further transition is permitted
// out of the given state.
func TerminalPledgeState(state string) bool {
	switch state {
	case PledgeStateRejected, PledgeStateWithdrawn, PledgeStateFunded, PledgeStateSettlementFailed:
		return true
	}
	return false
}

// InvestmentPledge is the transactional unit of the marketplace. Pledges
// are never deleted; terminal states are retained for audit.
type InvestmentPledge struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvestorID        uint            `gorm:"not null;index" json:"investor_id"`
	ListingID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"listing_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Instrument        string          `gorm:"not null" json:"instrument"`
	State             string          `gorm:"default:'pending';index" json:"state"`
	ExpectedReturnPct decimal.Decimal `gorm:"type:decimal(5,2)" json:"expected_return_pct"`
	DurationMonths    int             `json:"duration_months"`
	Message           string          `json:"message"`
	SettlementRef     string          `json:"settlement_ref,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	DecidedAt         *time.Time      `json:"decided_at,omitempty"`
	SettlingAt        *time.Time      `json:"settling_at,omitempty"`
	SettledAt         *time.Time      `json:"settled_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *InvestmentPledge) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Terminal reports whether the pledge has reached a final state.
func (p *InvestmentPledge) Terminal() bool {
	return TerminalPledgeState(p.State)
}

// PledgeAuditEntry records one attempted pledge transition. Entries are
// append-only and written whether or not the transition succeeded;
// ErrorKind is empty on success.
type PledgeAuditEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PledgeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"pledge_id"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Actor     string    `gorm:"not null" json:"actor"`
	Reason    string    `json:"reason"`
	ErrorKind string    `json:"error_kind"`
	CreatedAt time.Time `json:"created_at"`
}
