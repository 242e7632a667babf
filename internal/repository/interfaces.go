package repository

import (
	"context"
	"time"

	"github.com/yourusername/dca-analytics/internal/models"
)

// TradeFilter narrows trade queries. From/To take precedence over Days; when
// nothing is set the full closed history is returned.
type TradeFilter struct {
	From  *time.Time
	To    *time.Time
	Days  int
	Limit int
}

// EquityFilter narrows daily equity queries. From/To take precedence over Days.
type EquityFilter struct {
	From *time.Time
	To   *time.Time
	Days int
}

// TradeRepository defines the interface for trade data access
type TradeRepository interface {
	ListClosed(ctx context.Context, filter TradeFilter) ([]*models.Trade, error)
	GetByID(ctx context.Context, tradeID string) (*models.Trade, error)
	Upsert(ctx context.Context, trade *models.Trade) error
	ExistsNear(ctx context.Context, symbol string, closedAt time.Time, window time.Duration) (bool, error)
}

// EquityRepository defines the interface for daily equity data access
type EquityRepository interface {
	History(ctx context.Context, filter EquityFilter) ([]*models.EquitySnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.EquitySnapshot) error
	Latest(ctx context.Context) (*models.EquitySnapshot, error)
}
