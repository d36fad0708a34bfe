package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// KYC verification levels, lowest to highest.
const (
	KYCLevelNone     = "none"
	KYCLevelBasic    = "basic"
	KYCLevelEnhanced = "enhanced"
	KYCLevelPremium  = "premium"
)

// Account statuses carried on compliance claims.
const (
	AccountStatusActive     = "active"
	AccountStatusRestricted = "restricted"
	AccountStatusClosed     = "closed"
)

var kycLevelRank = map[string]int{
	KYCLevelNone:     0,
	KYCLevelBasic:    1,
	KYCLevelEnhanced: 2,
	KYCLevelPremium:  3,
}

// KYCLevelAtLeast reports whether level meets or exceeds min.
func KYCLevelAtLeast(level, min string) bool {
	return kycLevelRank[level] >= kycLevelRank[min]
}

// ValidKYCLevel reports whether level is a known verification level.
func ValidKYCLevel(level string) bool {
	_, ok := kycLevelRank[level]
	return ok
}

// ValidAccountStatus reports whether status is a known account status.
func ValidAccountStatus(status string) bool {
	return status == AccountStatusActive || status == AccountStatusRestricted || status == AccountStatusClosed
}

// ConsistentSanctionsStatus reports whether the sanctions flag and the
// account status satisfy the pipeline invariant: a user that is not
// sanctions-cleared must be restricted or closed.
func ConsistentSanctionsStatus(sanctionsCleared bool, accountStatus string) bool {
	if sanctionsCleared {
		return true
	}
	return accountStatus == AccountStatusRestricted || accountStatus == AccountStatusClosed
}

// ComplianceClaims is a snapshot of a user's verification state, written
// by the external identity pipeline and consumed read-only by the
// compliance gate. Decisions are made on the value passed in, never on
// hidden state, so a stale snapshot yields a stale but auditable answer.
//
// Invariant maintained by the identity pipeline: a user that is not
// sanctions-cleared always has account status restricted or closed.
type ComplianceClaims struct {
	ID                         uint            `gorm:"primarykey" json:"id"`
	UserID                     uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	KYCLevel                   string          `gorm:"default:'none'" json:"kyc_level"`
	Accredited                 bool            `gorm:"default:false" json:"accredited"`
	AccreditedUntil            *time.Time      `json:"accredited_until,omitempty"`
	AMLCleared                 bool            `gorm:"default:false" json:"aml_cleared"`
	SanctionsCleared           bool            `gorm:"default:false" json:"sanctions_cleared"`
	SingleTxnLimit             decimal.Decimal `gorm:"type:decimal(18,2)" json:"single_txn_limit"`
	DailyLimit                 decimal.Decimal `gorm:"type:decimal(18,2)" json:"daily_limit"`
	MonthlyLimit               decimal.Decimal `gorm:"type:decimal(18,2)" json:"monthly_limit"`
	AllowRestrictedWithdrawals bool            `gorm:"default:false" json:"allow_restricted_withdrawals"`
	AccountStatus              string          `gorm:"default:'active'" json:"account_status"`
	RestrictionReasons         StringSet       `gorm:"type:jsonb" json:"restriction_reasons"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// AccreditedAt reports whether the accredited-investor flag is in force
// at the given instant, honoring the expiry when one is set.
func (c ComplianceClaims) AccreditedAt(now time.Time) bool {
	if !c.Accredited {
		return false
	}
	if c.AccreditedUntil != nil && now.After(*c.AccreditedUntil) {
		return false
	}
	return true
}
