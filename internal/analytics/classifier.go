// Package analytics derives performance statistics from closed trade records.
package analytics

import (
	"strings"
)

// ExitCategory is the canonical exit bucket used by the exit histogram
type ExitCategory string

const (
	ExitTP4      ExitCategory = "TP4"
	ExitTP3      ExitCategory = "TP3"
	ExitTP2      ExitCategory = "TP2"
	ExitTP1      ExitCategory = "TP1"
	ExitStopLoss ExitCategory = "Stop Loss"
	ExitOther    ExitCategory = "Other"
)

// CategoryOrder is the fixed display ordering for the exit histogram
var CategoryOrder = []ExitCategory{ExitTP4, ExitTP3, ExitTP2, ExitTP1, ExitStopLoss, ExitOther}

// FillCount maps a close reason and the TP1 flag to the number of take-profit
// fills credited to the trade. Rules form an ordered priority list; the first
// match wins. A trailing exit after TP1 means the full ladder ran its course,
// so it outranks the literal tp2/tp3 substrings.
func FillCount(reason string, tp1Hit bool) int {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "trail") && tp1Hit:
		return 4
	case strings.Contains(r, "tp4"):
		return 4
	case strings.Contains(r, "tp3"):
		return 3
	case strings.Contains(r, "tp2"):
		return 2
	case tp1Hit:
		return 1
	default:
		return 0
	}
}

// Categorize maps a close reason and the TP1 flag to its exit bucket.
// This is a separate ordered rule list from FillCount: the highest TP level
// named in the reason wins even when the trade later trailed out, which is
// why "TP2 partial, trail stop" buckets as TP2 while FillCount credits 4.
func Categorize(reason string, tp1Hit bool) ExitCategory {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "tp4"):
		return ExitTP4
	case strings.Contains(r, "tp3"):
		return ExitTP3
	case strings.Contains(r, "tp2"):
		return ExitTP2
	case tp1Hit || strings.Contains(r, "tp1"):
		return ExitTP1
	case strings.Contains(r, "sl"), strings.Contains(r, "stop"):
		return ExitStopLoss
	default:
		return ExitOther
	}
}

// BadgeKind tags a badge for presentation styling
type BadgeKind string

const (
	BadgeTP      BadgeKind = "tp"
	BadgeTrail   BadgeKind = "trail"
	BadgeStop    BadgeKind = "sl"
	BadgeBE      BadgeKind = "be"
	BadgeNeutral BadgeKind = "neutral"
	BadgeManual  BadgeKind = "manual"
	BadgeSync    BadgeKind = "sync"
)

// Badge is one presentation label attached to a single trade
type Badge struct {
	Label string    `json:"label"`
	Kind  BadgeKind `json:"kind"`
}

// Badges expands a close reason into the ordered list of presentation labels
// for a single trade. This richer taxonomy is display-only; aggregation uses
// FillCount and Categorize.
func Badges(reason string, tp1Hit bool) []Badge {
	r := strings.ToLower(reason)
	out := make([]Badge, 0, 3)

	if level := tpLevel(r, tp1Hit); level > 0 {
		out = append(out, Badge{Label: "TP" + string(rune('0'+level)), Kind: BadgeTP})
	}
	if strings.Contains(r, "trail") {
		out = append(out, Badge{Label: "Trailing Stop", Kind: BadgeTrail})
	}
	if strings.Contains(r, "sl") || strings.Contains(r, "stop") {
		out = append(out, Badge{Label: "Stop Loss", Kind: BadgeStop})
	}
	if strings.Contains(r, "be") {
		out = append(out, Badge{Label: "Breakeven", Kind: BadgeBE})
	}
	if strings.Contains(r, "neo") {
		out = append(out, Badge{Label: "Neo Cloud", Kind: BadgeNeutral})
	}
	if strings.Contains(r, "manual") || strings.Contains(r, "tg") {
		out = append(out, Badge{Label: "Manual", Kind: BadgeManual})
	}
	if strings.Contains(r, "sync") {
		out = append(out, Badge{Label: "Synced", Kind: BadgeSync})
	}
	return out
}

// tpLevel extracts the highest TP level named in an already-lowercased reason
func tpLevel(r string, tp1Hit bool) int {
	switch {
	case strings.Contains(r, "tp4"):
		return 4
	case strings.Contains(r, "tp3"):
		return 3
	case strings.Contains(r, "tp2"):
		return 2
	case tp1Hit || strings.Contains(r, "tp1"):
		return 1
	default:
		return 0
	}
}
