package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Processor is the external settlement rail. Settle is
// fire-and-acknowledge: it returns the processor's reference once the
// request is accepted, and the asynchronous outcome arrives later
// through the settlement callback.
type Processor interface {
	Settle(ctx context.Context, pledgeID uuid.UUID, amount decimal.Decimal, instrument string) (string, error)
}
