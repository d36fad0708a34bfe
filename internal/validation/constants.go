package validation

const (
	// Amount limits
	MinPledgeAmount    = 1.00
	MaxPledgeAmount    = 10000000.00
	MaxRequestedAmount = 100000000.00

	// Listing limits
	MaxReadinessScore = 100

	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxDescriptionLength = 2000
	MaxMessageLength     = 500
	MaxNameLength        = 120
)
