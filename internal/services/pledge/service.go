// Package pledge implements the investment pledge lifecycle: creation
// under compliance gating, the owner decision, settlement through the
// external payment processor, and investor withdrawal. Every attempted
// transition, successful or not, appends an immutable audit entry.
package pledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/services/compliance"
	"bvest/internal/services/notification"
	"bvest/internal/services/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	pledges    repositories.PledgeRepository
	listings   repositories.ListingRepository
	claims     repositories.ComplianceClaimsRepository
	ledger     repositories.SpendLedger
	gate       *compliance.Gate
	processor  payment.Processor
	dispatcher notification.Dispatcher
	config     Config
	metrics    MetricsCollector
	locks      pledgeLocks
}

// NewService creates the pledge lifecycle manager.
func NewService(
	pledges repositories.PledgeRepository,
	listings repositories.ListingRepository,
	claims repositories.ComplianceClaimsRepository,
	ledger repositories.SpendLedger,
	gate *compliance.Gate,
	processor payment.Processor,
	dispatcher notification.Dispatcher,
	config Config,
	metrics MetricsCollector,
) Service {
	if pledges == nil {
		panic("pledge repository is required")
	}
	if listings == nil {
		panic("listing repository is required")
	}
	if claims == nil {
		panic("claims repository is required")
	}
	if ledger == nil {
		panic("spend ledger is required")
	}
	if gate == nil {
		panic("compliance gate is required")
	}
	if processor == nil {
		panic("payment processor is required")
	}
	if dispatcher == nil {
		dispatcher = notification.NewLogDispatcher()
	}
	if config.SettlementTimeout == 0 {
		config.SettlementTimeout = DefaultSettlementTimeout
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		pledges:    pledges,
		listings:   listings,
		claims:     claims,
		ledger:     ledger,
		gate:       gate,
		processor:  processor,
		dispatcher: dispatcher,
		config:     config,
		metrics:    metrics,
	}
}

func (s *service) CreatePledge(ctx context.Context, req CreateRequest) (*models.InvestmentPledge, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.ValidInstrument(req.Instrument) {
		return nil, ErrInvalidInstrument
	}

	listing, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, ErrListingNotInvestable
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}

	// The id is allocated up front so even refused creations leave an
	// audit trail.
	pledgeID := uuid.New()
	actor := investorActor(req.InvestorID)

	if !listing.Investable() || !listing.AcceptsInstrument(req.Instrument) {
		s.audit(ctx, pledgeID, "", models.PledgeStatePending, actor, "", "listing_not_investable")
		return nil, ErrListingNotInvestable
	}

	decision, err := s.authorize(ctx, req.InvestorID, compliance.ActionCreatePledge, req.Amount)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.audit(ctx, pledgeID, "", models.PledgeStatePending, actor, decision.Reason, "compliance_denied")
		s.metrics.RecordTransitionError("compliance_denied")
		return nil, &ComplianceDeniedError{Reason: decision.Reason}
	}

	p := &models.InvestmentPledge{
		ID:                pledgeID,
		InvestorID:        req.InvestorID,
		ListingID:         req.ListingID,
		Amount:            req.Amount,
		Instrument:        req.Instrument,
		State:             models.PledgeStatePending,
		ExpectedReturnPct: req.ExpectedReturnPct,
		DurationMonths:    req.DurationMonths,
		Message:           req.Message,
	}
	if err := s.pledges.Create(ctx, p); err != nil {
		s.audit(ctx, pledgeID, "", models.PledgeStatePending, actor, "", "repository_error")
		return nil, fmt.Errorf("failed to create pledge: %w", err)
	}

	s.audit(ctx, p.ID, "", models.PledgeStatePending, actor, "", "")
	s.metrics.RecordTransition("", models.PledgeStatePending)
	s.metrics.RecordPledgeAmount(p.Amount)

	s.notify(ctx, models.Notification{
		Event:    models.EventPledgeCreated,
		UserID:   listing.OwnerID,
		Title:    "New investment pledge",
		Body:     fmt.Sprintf("An investor pledged %s via %s to your listing.", p.Amount.StringFixed(2), p.Instrument),
		Priority: models.PriorityHigh,
		Metadata: models.NewJSON(map[string]interface{}{"pledge_id": p.ID.String(), "listing_id": listing.ID.String()}),
	})

	return p, nil
}

func (s *service) Decide(ctx context.Context, pledgeID uuid.UUID, actorID uint, decision OwnerDecision) (*models.InvestmentPledge, error) {
	var target string
	switch decision {
	case DecisionAccept:
		target = models.PledgeStateAccepted
	case DecisionReject:
		target = models.PledgeStateRejected
	default:
		return nil, ErrInvalidDecision
	}

	mu := s.locks.acquire(pledgeID)
	defer mu.Unlock()

	p, err := s.load(ctx, pledgeID)
	if err != nil {
		return nil, err
	}

	actor := ownerActor(actorID)
	if p.State != models.PledgeStatePending {
		return nil, s.rejectTransition(ctx, p, target, actor)
	}

	// Accepting commits the owner to receive the funds, so the owner's
	// own standing is gated. Rejection needs no authorization.
	if decision == DecisionAccept {
		gateDecision, err := s.authorize(ctx, actorID, compliance.ActionAcceptPledge, p.Amount)
		if err != nil {
			return nil, err
		}
		if !gateDecision.Allowed {
			s.audit(ctx, p.ID, p.State, target, actor, gateDecision.Reason, "compliance_denied")
			s.metrics.RecordTransitionError("compliance_denied")
			return nil, &ComplianceDeniedError{Reason: gateDecision.Reason}
		}
	}

	from := p.State
	now := time.Now()
	p.State = target
	p.DecidedAt = &now
	if err := s.pledges.Save(ctx, p); err != nil {
		s.audit(ctx, p.ID, from, target, actor, "", "repository_error")
		return nil, fmt.Errorf("failed to save pledge: %w", err)
	}

	s.audit(ctx, p.ID, from, target, actor, string(decision), "")
	s.metrics.RecordTransition(from, target)

	s.notify(ctx, models.Notification{
		Event:    models.EventPledgeDecided,
		UserID:   p.InvestorID,
		Title:    "Pledge " + target,
		Body:     fmt.Sprintf("The business owner %sed your pledge of %s.", decision, p.Amount.StringFixed(2)),
		Priority: models.PriorityHigh,
		Metadata: models.NewJSON(map[string]interface{}{"pledge_id": p.ID.String(), "decision": string(decision)}),
	})

	return p, nil
}

func (s *service) Withdraw(ctx context.Context, pledgeID uuid.UUID, actorID uint) (*models.InvestmentPledge, error) {
	mu := s.locks.acquire(pledgeID)
	defer mu.Unlock()

	p, err := s.load(ctx, pledgeID)
	if err != nil {
		return nil, err
	}

	actor := investorActor(actorID)
	if p.State != models.PledgeStatePending && p.State != models.PledgeStateAccepted {
		return nil, s.rejectTransition(ctx, p, models.PledgeStateWithdrawn, actor)
	}

	from := p.State
	p.State = models.PledgeStateWithdrawn
	if err := s.pledges.Save(ctx, p); err != nil {
		s.audit(ctx, p.ID, from, models.PledgeStateWithdrawn, actor, "", "repository_error")
		return nil, fmt.Errorf("failed to save pledge: %w", err)
	}

	s.audit(ctx, p.ID, from, models.PledgeStateWithdrawn, actor, "", "")
	s.metrics.RecordTransition(from, models.PledgeStateWithdrawn)

	if listing, err := s.listings.GetByID(ctx, p.ListingID); err == nil {
		s.notify(ctx, models.Notification{
			Event:    models.EventPledgeWithdrawn,
			UserID:   listing.OwnerID,
			Title:    "Pledge withdrawn",
			Body:     fmt.Sprintf("An investor withdrew their pledge of %s.", p.Amount.StringFixed(2)),
			Priority: models.PriorityMedium,
			Metadata: models.NewJSON(map[string]interface{}{"pledge_id": p.ID.String()}),
		})
	}

	return p, nil
}

func (s *service) BeginSettlement(ctx context.Context, pledgeID uuid.UUID, actorID uint) (*models.InvestmentPledge, error) {
	mu := s.locks.acquire(pledgeID)
	defer mu.Unlock()

	p, err := s.load(ctx, pledgeID)
	if err != nil {
		return nil, err
	}

	actor := ownerActor(actorID)
	if p.State != models.PledgeStateAccepted {
		return nil, s.rejectTransition(ctx, p, models.PledgeStateSettling, actor)
	}

	// Limits are re-checked against current claims, never the snapshot
	// from creation time: verification state can change in between.
	decision, err := s.authorize(ctx, p.InvestorID, compliance.ActionCreatePledge, p.Amount)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		from := p.State
		now := time.Now()
		p.State = models.PledgeStateSettlementFailed
		p.SettledAt = &now
		if err := s.pledges.Save(ctx, p); err != nil {
			s.audit(ctx, p.ID, from, models.PledgeStateSettlementFailed, actor, decision.Reason, "repository_error")
			return nil, fmt.Errorf("failed to save pledge: %w", err)
		}
		s.audit(ctx, p.ID, from, models.PledgeStateSettlementFailed, actor, ReasonComplianceRevoked, "")
		s.metrics.RecordTransition(from, models.PledgeStateSettlementFailed)
		s.notifySettlementFailed(ctx, p, ReasonComplianceRevoked)
		return p, &ComplianceDeniedError{Reason: ReasonComplianceRevoked}
	}

	settleCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		settleCtx, cancel = context.WithTimeout(ctx, s.config.SettlementTimeout)
		defer cancel()
	}

	started := time.Now()
	ref, err := s.processor.Settle(settleCtx, p.ID, p.Amount, p.Instrument)
	s.metrics.RecordSettlementDispatch(time.Since(started))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(settleCtx.Err(), context.DeadlineExceeded) {
			// The request may have reached the processor before the
			// deadline expired, so the pledge enters settling with no
			// reference yet. The callback or the reconciliation sweep
			// resolves it; timing out never decides the outcome.
			from := p.State
			now := time.Now()
			p.State = models.PledgeStateSettling
			p.SettlingAt = &now
			if saveErr := s.pledges.Save(ctx, p); saveErr != nil {
				s.audit(ctx, p.ID, from, models.PledgeStateSettling, actor, "", "repository_error")
				return nil, fmt.Errorf("failed to save pledge: %w", saveErr)
			}
			s.audit(ctx, p.ID, from, models.PledgeStateSettling, actor, "", "processor_timeout")
			s.metrics.RecordTransition(from, models.PledgeStateSettling)
			s.metrics.RecordTransitionError("processor_timeout")
			return p, nil
		}
		// Dispatch failed outright, so the pledge stays accepted and
		// the caller may retry with backoff.
		s.audit(ctx, p.ID, p.State, models.PledgeStateSettling, actor, "", "payment_processor_unavailable")
		s.metrics.RecordTransitionError("payment_processor_unavailable")
		return nil, fmt.Errorf("%w: %v", ErrPaymentProcessorUnavailable, err)
	}

	from := p.State
	now := time.Now()
	p.State = models.PledgeStateSettling
	p.SettlingAt = &now
	p.SettlementRef = ref
	if err := s.pledges.Save(ctx, p); err != nil {
		s.audit(ctx, p.ID, from, models.PledgeStateSettling, actor, "", "repository_error")
		return nil, fmt.Errorf("failed to save pledge: %w", err)
	}

	s.audit(ctx, p.ID, from, models.PledgeStateSettling, actor, "", "")
	s.metrics.RecordTransition(from, models.PledgeStateSettling)
	return p, nil
}

func (s *service) FinalizeSettlement(ctx context.Context, pledgeID uuid.UUID, outcome SettlementOutcome, settlementRef string) (*models.InvestmentPledge, error) {
	if outcome != SettlementSucceeded && outcome != SettlementFailed {
		return nil, fmt.Errorf("unknown settlement outcome %q", outcome)
	}

	mu := s.locks.acquire(pledgeID)
	defer mu.Unlock()

	p, err := s.load(ctx, pledgeID)
	if err != nil {
		return nil, err
	}

	// The processor may deliver its callback more than once; finalizing
	// an already-terminal pledge returns the existing state untouched.
	if p.Terminal() {
		return p, nil
	}

	target := models.PledgeStateFunded
	if outcome == SettlementFailed {
		target = models.PledgeStateSettlementFailed
	}

	if p.State != models.PledgeStateSettling {
		return nil, s.rejectTransition(ctx, p, target, actorProcessor)
	}

	from := p.State
	now := time.Now()
	p.State = target
	p.SettledAt = &now
	if settlementRef != "" && p.SettlementRef == "" {
		p.SettlementRef = settlementRef
	}
	if err := s.pledges.Save(ctx, p); err != nil {
		s.audit(ctx, p.ID, from, target, actorProcessor, "", "repository_error")
		return nil, fmt.Errorf("failed to save pledge: %w", err)
	}

	s.audit(ctx, p.ID, from, target, actorProcessor, string(outcome), "")
	s.metrics.RecordTransition(from, target)

	if target == models.PledgeStateFunded {
		s.notify(ctx, models.Notification{
			Event:    models.EventPledgeFunded,
			UserID:   p.InvestorID,
			Title:    "Investment funded",
			Body:     fmt.Sprintf("Your pledge of %s has settled successfully.", p.Amount.StringFixed(2)),
			Priority: models.PriorityHigh,
			Metadata: models.NewJSON(map[string]interface{}{"pledge_id": p.ID.String()}),
		})
		if listing, err := s.listings.GetByID(ctx, p.ListingID); err == nil {
			s.notify(ctx, models.Notification{
				Event:    models.EventPledgeFunded,
				UserID:   listing.OwnerID,
				Title:    "Pledge funded",
				Body:     fmt.Sprintf("A pledge of %s to your listing has settled.", p.Amount.StringFixed(2)),
				Priority: models.PriorityHigh,
				Metadata: models.NewJSON(map[string]interface{}{"pledge_id": p.ID.String()}),
			})
		}
	} else {
		s.notifySettlementFailed(ctx, p, string(outcome))
	}

	return p, nil
}

func (s *service) ReconcileStalled(ctx context.Context, olderThan time.Duration) ([]models.InvestmentPledge, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.pledges.StalledSettlements(ctx, cutoff)
}

func (s *service) GetPledge(ctx context.Context, pledgeID uuid.UUID) (*models.InvestmentPledge, error) {
	return s.load(ctx, pledgeID)
}

func (s *service) AuditTrail(ctx context.Context, pledgeID uuid.UUID) ([]models.PledgeAuditEntry, error) {
	return s.pledges.ListAudit(ctx, pledgeID)
}

// Helper methods

const actorProcessor = "processor"

func investorActor(id uint) string { return fmt.Sprintf("investor:%d", id) }
func ownerActor(id uint) string    { return fmt.Sprintf("owner:%d", id) }

func (s *service) load(ctx context.Context, pledgeID uuid.UUID) (*models.InvestmentPledge, error) {
	p, err := s.pledges.GetByID(ctx, pledgeID)
	if err != nil {
		if errors.Is(err, repositories.ErrPledgeNotFound) {
			return nil, ErrPledgeNotFound
		}
		return nil, fmt.Errorf("failed to load pledge: %w", err)
	}
	return p, nil
}

func (s *service) authorize(ctx context.Context, userID uint, action compliance.Action, amount decimal.Decimal) (compliance.Decision, error) {
	claims, err := s.claims.GetClaims(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrClaimsNotFound) {
			// No verification snapshot on file means the user has not
			// completed KYC.
			return compliance.Denied(compliance.ReasonKYCRequired), nil
		}
		return compliance.Decision{}, fmt.Errorf("failed to load claims: %w", err)
	}

	daily, err := s.ledger.AccumulatedSpend(ctx, userID, repositories.PeriodDaily)
	if err != nil {
		return compliance.Decision{}, fmt.Errorf("failed to load daily spend: %w", err)
	}
	monthly, err := s.ledger.AccumulatedSpend(ctx, userID, repositories.PeriodMonthly)
	if err != nil {
		return compliance.Decision{}, fmt.Errorf("failed to load monthly spend: %w", err)
	}

	return s.gate.Authorize(claims, compliance.Request{
		Action:       action,
		Amount:       amount,
		DailySpent:   daily,
		MonthlySpent: monthly,
		Now:          time.Now(),
	}), nil
}

// rejectTransition audits a refused transition attempt and returns
// ErrInvalidStateTransition. The pledge is left untouched.
func (s *service) rejectTransition(ctx context.Context, p *models.InvestmentPledge, target, actor string) error {
	log.Printf("Invalid pledge transition attempt: pledge=%s %s -> %s by %s", p.ID, p.State, target, actor)
	s.audit(ctx, p.ID, p.State, target, actor, "", "invalid_state_transition")
	s.metrics.RecordTransitionError("invalid_state_transition")
	return ErrInvalidStateTransition
}

func (s *service) audit(ctx context.Context, pledgeID uuid.UUID, from, to, actor, reason, errKind string) {
	entry := &models.PledgeAuditEntry{
		PledgeID:  pledgeID,
		FromState: from,
		ToState:   to,
		Actor:     actor,
		Reason:    reason,
		ErrorKind: errKind,
	}
	if err := s.pledges.AppendAudit(ctx, entry); err != nil {
		log.Printf("Failed to append audit entry for pledge %s: %v", pledgeID, err)
	}
}

func (s *service) notify(ctx context.Context, n models.Notification) {
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		log.Printf("Failed to dispatch %s notification for user %d: %v", n.Event, n.UserID, err)
	}
}

func (s *service) notifySettlementFailed(ctx context.Context, p *models.InvestmentPledge, reason string) {
	s.notify(ctx, models.Notification{
		Event:    models.EventPledgeSettlementFailed,
		UserID:   p.InvestorID,
		Title:    "Settlement failed",
		Body:     fmt.Sprintf("Settlement of your pledge of %s failed (%s).", p.Amount.StringFixed(2), reason),
		Priority: models.PriorityCritical,
		Metadata: models.NewJSON(map[string]interface{}{"pledge_id": p.ID.String(), "reason": reason}),
	})
}
