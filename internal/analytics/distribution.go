package analytics

import (
	"github.com/yourusername/dca-analytics/internal/models"
)

// DCA distribution labels
const (
	LabelDCA   = "DCA"
	LabelNoDCA = "NO DCA"
)

// ExitDistribution buckets closed trades by exit category and returns the
// histogram in fixed display order (TP4..TP1, Stop Loss, Other). Categories
// with zero trades are dropped.
func ExitDistribution(trades []*models.Trade) []models.ExitDistributionEntry {
	counts := make(map[ExitCategory]int, len(CategoryOrder))
	total := 0
	for _, t := range trades {
		if t.IsCorrection() || !t.IsClosed() {
			continue
		}
		counts[Categorize(t.CloseReason, t.TP1Hit)]++
		total++
	}

	if total == 0 {
		return []models.ExitDistributionEntry{}
	}

	out := make([]models.ExitDistributionEntry, 0, len(CategoryOrder))
	for _, cat := range CategoryOrder {
		n := counts[cat]
		if n == 0 {
			continue
		}
		out = append(out, models.ExitDistributionEntry{
			Category: string(cat),
			Count:    n,
			Pct:      round1(float64(n) / float64(total) * 100),
		})
	}
	return out
}

// DCADistribution partitions closed trades into DCA vs no-DCA buckets with
// percentages of the classified total.
func DCADistribution(trades []*models.Trade) []models.DCADistributionEntry {
	noDCA, withDCA := 0, 0
	for _, t := range trades {
		if t.IsCorrection() || !t.IsClosed() {
			continue
		}
		if t.MaxDCAReached > 0 {
			withDCA++
		} else {
			noDCA++
		}
	}

	total := noDCA + withDCA
	if total == 0 {
		return []models.DCADistributionEntry{}
	}

	return []models.DCADistributionEntry{
		{Label: LabelNoDCA, Count: noDCA, Pct: round1(float64(noDCA) / float64(total) * 100)},
		{Label: LabelDCA, Count: withDCA, Pct: round1(float64(withDCA) / float64(total) * 100)},
	}
}
