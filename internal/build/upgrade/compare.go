package upgrade

import (
	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// Comparison winner labels.
const (
	WinnerA   = "a"
	WinnerB   = "b"
	WinnerTie = "tie"
)

// Comparison is the head-to-head result for two items in the same slot.
type Comparison struct {
	// Winner is "a", "b", or "tie" when the scores are exactly equal.
	Winner string
	ScoreA float64
	ScoreB float64
	// ScoreGap is the winner's score minus the loser's; 0 on a tie.
	ScoreGap float64
	A        *UpgradeValue
	B        *UpgradeValue
}

// CompareTwo diffs exactly two items head-to-head. Both are evaluated as
// upgrades from an empty slot on the same base character, so the scores are
// directly comparable.
//
// Precondition: base must be non-nil.
func (e *Evaluator) CompareTwo(
	a, b stats.GearContribution,
	base *stats.DefensiveProfile,
	threat defense.ThreatProfile,
) (*Comparison, error) {
	if base == nil {
		return nil, ErrMissingBaseProfile
	}

	var emptySlot stats.GearContribution
	valueA, err := e.EvaluateUpgrade(emptySlot, a, base, threat, nil)
	if err != nil {
		return nil, err
	}
	valueB, err := e.EvaluateUpgrade(emptySlot, b, base, threat, nil)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{ScoreA: valueA.PriorityScore, ScoreB: valueB.PriorityScore, A: valueA, B: valueB}
	switch {
	case valueA.PriorityScore > valueB.PriorityScore:
		cmp.Winner = WinnerA
		cmp.ScoreGap = valueA.PriorityScore - valueB.PriorityScore
	case valueB.PriorityScore > valueA.PriorityScore:
		cmp.Winner = WinnerB
		cmp.ScoreGap = valueB.PriorityScore - valueA.PriorityScore
	default:
		cmp.Winner = WinnerTie
	}
	return cmp, nil
}
