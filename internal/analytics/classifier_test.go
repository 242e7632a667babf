package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillCountPriority(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		tp1Hit bool
		want   int
	}{
		{"trail with tp1 outranks tp2", "TP2 partial, trail stop", true, 4},
		{"trail without tp1 falls through", "trail callback from 1.2345", false, 0},
		{"tp4", "TP4 hit at 8%", false, 4},
		{"tp3", "TP3 hit at 6%", false, 3},
		{"tp2", "TP2 hit at 4%", true, 2},
		{"tp1 flag only", "manual close", true, 1},
		{"nothing", "Stop at 0.4921", false, 0},
		{"case insensitive", "tP3 HIT", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FillCount(tt.reason, tt.tp1Hit))
		})
	}
}

func TestCategorizePriority(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		tp1Hit bool
		want   ExitCategory
	}{
		{"tp4", "TP4 hit", false, ExitTP4},
		{"tp3 beats stop substring", "TP3 then stop", false, ExitTP3},
		{"tp2 beats trail", "TP2 partial, trail stop", true, ExitTP2},
		{"tp1 by flag", "trail callback", true, ExitTP1},
		{"tp1 by substring", "tp1 partial", false, ExitTP1},
		{"sl", "sl_long triggered", false, ExitStopLoss},
		{"stop", "Stop at 0.4921", false, ExitStopLoss},
		{"other", "neo cloud flip", false, ExitOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.reason, tt.tp1Hit))
		})
	}
}

// The two schemes intentionally diverge on a trailing exit that names TP2:
// the fill-count ladder credits the full run while the histogram keeps the
// trade in its named TP bucket.
func TestSchemesDivergeOnTrailingTP2(t *testing.T) {
	reason := "TP2 partial, trail stop"
	assert.Equal(t, 4, FillCount(reason, true))
	assert.Equal(t, ExitTP2, Categorize(reason, true))
}

func TestBadges(t *testing.T) {
	badges := Badges("TP2 partial, trail stop", true)
	assert.Equal(t, []Badge{
		{Label: "TP2", Kind: BadgeTP},
		{Label: "Trailing Stop", Kind: BadgeTrail},
		{Label: "Stop Loss", Kind: BadgeStop},
	}, badges)

	badges = Badges("Bybit sync", false)
	assert.Equal(t, []Badge{{Label: "Synced", Kind: BadgeSync}}, badges)

	badges = Badges("manual close via tg", false)
	assert.Equal(t, []Badge{{Label: "Manual", Kind: BadgeManual}}, badges)

	assert.Empty(t, Badges("", false))
}

func TestBadgesBreakevenAndNeo(t *testing.T) {
	badges := Badges("BE stop after TP1", true)
	assert.Contains(t, badges, Badge{Label: "TP1", Kind: BadgeTP})
	assert.Contains(t, badges, Badge{Label: "Stop Loss", Kind: BadgeStop})
	assert.Contains(t, badges, Badge{Label: "Breakeven", Kind: BadgeBE})

	badges = Badges("neo cloud flip", false)
	assert.Equal(t, []Badge{{Label: "Neo Cloud", Kind: BadgeNeutral}}, badges)
}
