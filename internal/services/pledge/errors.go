package pledge

import "errors"

// Service errors
var (
	ErrPledgeNotFound              = errors.New("pledge not found")
	ErrListingNotInvestable        = errors.New("listing not investable")
	ErrInvalidStateTransition      = errors.New("invalid state transition")
	ErrInvalidAmount               = errors.New("invalid pledge amount")
	ErrInvalidInstrument           = errors.New("invalid instrument type")
	ErrInvalidDecision             = errors.New("invalid owner decision")
	ErrPaymentProcessorUnavailable = errors.New("payment processor unavailable")
)

// ReasonComplianceRevoked marks a settlement that was refused because
// the investor's claims no longer authorize the pledge amount.
const ReasonComplianceRevoked = "compliance_revoked"

// ComplianceDeniedError is a terminal business outcome, not a fault. It
// carries the gate's reason code verbatim for the initiating actor.
type ComplianceDeniedError struct {
	Reason string
}

func (e *ComplianceDeniedError) Error() string {
	return "compliance denied: " + e.Reason
}

// DeniedReason extracts the reason code when err is a compliance denial.
func DeniedReason(err error) (string, bool) {
	var denied *ComplianceDeniedError
	if errors.As(err, &denied) {
		return denied.Reason, true
	}
	return "", false
}
