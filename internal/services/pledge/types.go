package pledge

import (
	"context"
	"time"

	"bvest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerDecision is the listing owner's verdict on a pending pledge.
type OwnerDecision string

const (
	DecisionAccept OwnerDecision = "accept"
	DecisionReject OwnerDecision = "reject"
)

// SettlementOutcome is the payment processor's callback verdict.
type SettlementOutcome string

const (
	SettlementSucceeded SettlementOutcome = "succeeded"
	SettlementFailed    SettlementOutcome = "failed"
)

// CreateRequest carries the investor's pledge offer.
type CreateRequest struct {
	InvestorID        uint
	ListingID         uuid.UUID
	Amount            decimal.Decimal
	Instrument        string
	ExpectedReturnPct decimal.Decimal
	DurationMonths    int
	Message           string
}

// Config holds configuration for the lifecycle manager.
type Config struct {
	// SettlementTimeout bounds the processor dispatch in
	// BeginSettlement when the caller's context carries no deadline.
	SettlementTimeout time.Duration
}

// DefaultSettlementTimeout bounds the processor dispatch call.
const DefaultSettlementTimeout = 30 * time.Second

// Service governs the pledge lifecycle. Transitions on one pledge id
// are serialized; different ids proceed in parallel.
type Service interface {
	// CreatePledge validates the target listing and the investor's
	// compliance standing, then opens a pledge in pending state
	CreatePledge(ctx context.Context, req CreateRequest) (*models.InvestmentPledge, error)

	// Decide applies the owner's accept/reject verdict to a pending pledge
	Decide(ctx context.Context, pledgeID uuid.UUID, actorID uint, decision OwnerDecision) (*models.InvestmentPledge, error)

	// Withdraw cancels a pledge before settlement begins
	Withdraw(ctx context.Context, pledgeID uuid.UUID, actorID uint) (*models.InvestmentPledge, error)

	// BeginSettlement re-authorizes the investor and hands the pledge
	// to the payment processor
	BeginSettlement(ctx context.Context, pledgeID uuid.UUID, actorID uint) (*models.InvestmentPledge, error)

	// FinalizeSettlement is the processor callback; it closes out a
	// settling pledge. Re-finalizing a terminal pledge is a no-op.
	FinalizeSettlement(ctx context.Context, pledgeID uuid.UUID, outcome SettlementOutcome, settlementRef string) (*models.InvestmentPledge, error)

	// ReconcileStalled lists pledges stuck in settling longer than
	// olderThan. It never transitions them; resolution goes through
	// FinalizeSettlement once the processor's outcome is known.
	ReconcileStalled(ctx context.Context, olderThan time.Duration) ([]models.InvestmentPledge, error)

	// GetPledge retrieves a pledge by id
	GetPledge(ctx context.Context, pledgeID uuid.UUID) (*models.InvestmentPledge, error)

	// AuditTrail returns the transition history for a pledge
	AuditTrail(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeAuditEntry, error)
}

// MetricsCollector defines the interface for lifecycle metrics.
type MetricsCollector interface {
	RecordTransition(from, to string)
	RecordTransitionError(errKind string)
	RecordPledgeAmount(amount decimal.Decimal)
	RecordSettlementDispatch(duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransition(string, string)        {}
func (n *NoopMetricsCollector) RecordTransitionError(string)           {}
func (n *NoopMetricsCollector) RecordPledgeAmount(decimal.Decimal)     {}
func (n *NoopMetricsCollector) RecordSettlementDispatch(time.Duration) {}
