package compliance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is an investment action subject to compliance gating.
type Action string

const (
	ActionCreatePledge  Action = "create_pledge"
	ActionAcceptPledge  Action = "accept_pledge"
	ActionWithdraw      Action = "withdraw"
	ActionCreateListing Action = "create_listing"
)

// Denial reason codes. These are business outcomes, not faults, and are
// surfaced verbatim to the initiating actor.
const (
	ReasonSanctionsHold       = "sanctions_hold"
	ReasonAccountClosed       = "account_closed"
	ReasonAccountRestricted   = "account_restricted"
	ReasonAMLPending          = "aml_pending"
	ReasonKYCRequired         = "kyc_required"
	ReasonExceedsSingleLimit  = "exceeds_single_limit"
	ReasonExceedsDailyLimit   = "exceeds_daily_limit"
	ReasonExceedsMonthlyLimit = "exceeds_monthly_limit"
)

// Decision is the outcome of an authorization check. A denial carries
// the specific reason code; it is returned as a value, never as an error.
type Decision struct {
	Allowed bool
	Reason  string
}

// Permitted builds an allowing decision.
func Permitted() Decision {
	return Decision{Allowed: true}
}

// Denied builds a denying decision with a reason code.
func Denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Request carries everything the gate needs beyond the claims snapshot.
// Accumulated spend is supplied by the caller (from the spend ledger) so
// the gate stays a pure function of its inputs.
type Request struct {
	Action       Action
	Amount       decimal.Decimal
	DailySpent   decimal.Decimal
	MonthlySpent decimal.Decimal
	Now          time.Time
}
