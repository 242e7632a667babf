// Package repository provides PostgreSQL-backed data access for trades and
// daily equity history.
package repository

import (
	"fmt"

	"github.com/yourusername/dca-analytics/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Trade  TradeRepository
	Equity EquityRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Trade:  NewPostgresTradeRepository(db),
		Equity: NewPostgresEquityRepository(db),
	}, nil
}
