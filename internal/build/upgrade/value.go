// Package upgrade implements the gear upgrade evaluator: it converts a stat
// delta between two equipment configurations into a bounded priority score, a
// recommendation tier, and a list of caveats.
package upgrade

import (
	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// Tier is the discrete recommendation classification.
type Tier int

const (
	Downgrade Tier = iota
	Skip
	Sidegrade
	Upgrade
	StrongUpgrade
)

// String returns the tier label.
func (t Tier) String() string {
	switch t {
	case Downgrade:
		return "downgrade"
	case Skip:
		return "skip"
	case Sidegrade:
		return "sidegrade"
	case Upgrade:
		return "upgrade"
	case StrongUpgrade:
		return "strong_upgrade"
	default:
		return "unknown"
	}
}

// EHPDelta holds the effective-health movement for one damage type.
type EHPDelta struct {
	Current   float64
	Candidate float64
	Absolute  float64
	// Percent is Absolute relative to Current, 0 when Current is 0.
	Percent float64
}

// DPSDelta holds the relative damage-output movement. The built-in value is a
// proxy sharing a fixed normalized base between both evaluations, so only the
// delta is meaningful; Trustworthy is true only when an authoritative DPS
// source supplied both sides.
type DPSDelta struct {
	Current     float64
	Candidate   float64
	Absolute    float64
	Percent     float64
	Trustworthy bool
}

// UpgradeValue is the evaluator's output: constructed once per evaluation,
// immutable, never persisted by this package.
type UpgradeValue struct {
	// EHP maps each damage type in the threat profile to its delta.
	EHP map[stats.DamageType]EHPDelta
	DPS DPSDelta
	// ResistanceDeltas is candidate minus current for the four resistances.
	ResistanceDeltas map[stats.DamageType]float64
	// StatDeltas is the flat map of raw stat movements keyed by stat name.
	StatDeltas map[string]float64
	// PriorityScore is clamped to [0,100]; 50 is the neutral baseline.
	PriorityScore float64
	Tier          Tier
	// Price is the market price supplied by the caller, if any.
	Price *float64
	// Warnings are caveats, not vetoes: they never block an Upgrade
	// classification once the score clears 55.
	Warnings []string
}
