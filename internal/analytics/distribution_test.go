package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/dca-analytics/internal/models"
)

func TestExitDistributionOrderAndDrop(t *testing.T) {
	trades := []*models.Trade{
		closedTrade("t1", 10, 1, "TP1 partial", false),
		closedTrade("t2", 20, 2, "TP4 hit", false),
		closedTrade("t3", -10, -1, "Stop at 0.5", false),
		closedTrade("t4", 15, 1.5, "TP4 hit", false),
	}

	dist := ExitDistribution(trades)
	assert.Equal(t, []models.ExitDistributionEntry{
		{Category: "TP4", Count: 2, Pct: 50},
		{Category: "TP1", Count: 1, Pct: 25},
		{Category: "Stop Loss", Count: 1, Pct: 25},
	}, dist)
}

func TestExitDistributionEmpty(t *testing.T) {
	assert.Empty(t, ExitDistribution(nil))

	correction := closedTrade("fix", 1, 0.1, "manual", false)
	correction.Side = models.TradeSideUpdate
	assert.Empty(t, ExitDistribution([]*models.Trade{correction}))
}

func TestDCADistribution(t *testing.T) {
	t1 := closedTrade("t1", 10, 1, "TP1", true)
	t2 := closedTrade("t2", -5, -0.5, "Stop", false)
	t2.MaxDCAReached = 2
	t3 := closedTrade("t3", 5, 0.5, "TP2 hit", true)
	t3.MaxDCAReached = 1

	dist := DCADistribution([]*models.Trade{t1, t2, t3})
	assert.Equal(t, []models.DCADistributionEntry{
		{Label: LabelNoDCA, Count: 1, Pct: 33.3},
		{Label: LabelDCA, Count: 2, Pct: 66.7},
	}, dist)
}

func TestDCADistributionEmpty(t *testing.T) {
	assert.Empty(t, DCADistribution(nil))
}
