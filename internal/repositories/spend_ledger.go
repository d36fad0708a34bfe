package repositories

import (
	"context"
	"fmt"
	"time"

	"bvest/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Spend accumulation periods
const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
)

// SpendLedger supplies the accumulated pledge spend the compliance gate
// needs for daily and monthly limit checks. The gate itself never tracks
// historical spend.
type SpendLedger interface {
	// AccumulatedSpend sums an investor's committed pledge amounts for
	// the current period, UTC windows
	AccumulatedSpend(ctx context.Context, userID uint, period string) (decimal.Decimal, error)
}

type spendLedger struct {
	db *gorm.DB
}

// NewSpendLedger creates a gorm-backed SpendLedger.
func NewSpendLedger(db *gorm.DB) SpendLedger {
	return &spendLedger{db: db}
}

func (l *spendLedger) AccumulatedSpend(ctx context.Context, userID uint, period string) (decimal.Decimal, error) {
	now := time.Now().UTC()
	var start time.Time
	switch period {
	case PeriodDaily:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return decimal.Zero, fmt.Errorf("unknown spend period %q", period)
	}

	// Committed spend: everything the investor has pledged in the window
	// that has not terminated in failure or withdrawal.
	var total decimal.NullDecimal
	err := l.db.WithContext(ctx).
		Model(&models.InvestmentPledge{}).
		Select("SUM(amount)").
		Where("investor_id = ? AND created_at >= ?", userID, start).
		Where("state IN ?", []string{
			models.PledgeStatePending,
			models.PledgeStateAccepted,
			models.PledgeStateSettling,
			models.PledgeStateFunded,
		}).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
