package models

// Notification events emitted by the marketplace core.
const (
	EventPledgeCreated          = "pledge_created"
	EventPledgeDecided          = "pledge_decided"
	EventPledgeWithdrawn        = "pledge_withdrawn"
	EventPledgeFunded           = "pledge_funded"
	EventPledgeSettlementFailed = "pledge_settlement_failed"
	EventNewMatch               = "new_match"
	EventListingStatusChanged   = "listing_status_changed"
)

// Notification priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Notification is a typed event handed to the dispatch transport.
// Delivery is best-effort; a failed dispatch never rolls back the state
// change that produced it.
type Notification struct {
	Event    string `json:"event"`
	UserID   uint   `json:"user_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority string `json:"priority"`
	Metadata JSON   `json:"metadata,omitempty"`
}
