package upgrade

import (
	"errors"
	"fmt"
	"math"

	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// ErrMissingBaseProfile is returned when an evaluation is requested without
// base character stats. This is the only failure mode: every other input,
// however degenerate, produces a best-effort numeric result so that batch
// ranking never aborts because one candidate had incomplete data.
var ErrMissingBaseProfile = errors.New("base character profile is required")

// Scoring weights and thresholds. The score starts at a neutral 50 and every
// contribution below nudges it before the final clamp to [0,100].
const (
	neutralScore = 50.0

	ehpPercentWeight = 0.5
	dpsPercentWeight = 0.3
	// Resistance gains below the soft cap are rewarded more than losses are
	// punished; investment past the cap earns nothing.
	resistanceGainWeight = 0.5
	resistanceLossWeight = 0.3
	resistanceSoftCap    = 75.0
	lifeWeight           = 0.01
	spiritWeight         = 0.2
	// poorValuePenalty multiplies the score when score-per-currency is below 1.
	poorValuePenalty = 0.8

	// normalizedBaseDamage is the shared fixed base for the relative damage
	// proxy; both sides of an evaluation use it so only the delta carries
	// meaning.
	normalizedBaseDamage = 100.0

	// Warning thresholds.
	resistanceDropWarning = 10.0
	lifeDropWarning       = 100
	energyShieldDrop      = 100
	energyShieldInvested  = 500
	spiritDropWarning     = 10
)

// DPSSource is an optional collaborator that supplies an authoritative DPS
// figure for a stat total, overriding the built-in proxy.
type DPSSource interface {
	// DPS returns the damage output for the given total, and whether the
	// source could produce one.
	DPS(total stats.DefensiveProfile) (float64, bool)
}

// Evaluator scores gear swaps. It is stateless: one instance may be shared
// across any number of concurrent evaluations.
type Evaluator struct {
	dps DPSSource
}

// NewEvaluator creates an Evaluator. dps may be nil, in which case the
// relative damage proxy is used and results carry Trustworthy=false.
func NewEvaluator(dps DPSSource) *Evaluator {
	return &Evaluator{dps: dps}
}

// EvaluateUpgrade scores replacing current with candidate on a character with
// the given base stats. threat may be nil (default profile) and price may be
// nil (no value-for-cost adjustment).
//
// Precondition: base must be non-nil; a nil base fails fast with
// ErrMissingBaseProfile.
// Postcondition: On success the returned value has PriorityScore in [0,100]
// and an EHP entry for every damage type in the threat profile.
func (e *Evaluator) EvaluateUpgrade(
	current, candidate stats.GearContribution,
	base *stats.DefensiveProfile,
	threat defense.ThreatProfile,
	price *float64,
) (*UpgradeValue, error) {
	if base == nil {
		return nil, ErrMissingBaseProfile
	}
	if len(threat) == 0 {
		threat = defense.DefaultThreatProfile()
	}

	currentTotal := stats.Combine(*base, current)
	candidateTotal := stats.Combine(*base, candidate)

	ehp := ehpDeltas(currentTotal, candidateTotal, threat)
	dps := e.dpsDelta(currentTotal, candidateTotal)
	resDeltas := resistanceDeltas(current, candidate)
	statDeltas := rawStatDeltas(current, candidate)
	warnings := deriveWarnings(resDeltas, statDeltas, currentTotal)

	score := priorityScore(ehp, dps, resDeltas, statDeltas, currentTotal, price)

	return &UpgradeValue{
		EHP:              ehp,
		DPS:              dps,
		ResistanceDeltas: resDeltas,
		StatDeltas:       statDeltas,
		PriorityScore:    score,
		Tier:             tierFor(score, len(warnings) > 0),
		Price:            price,
		Warnings:         warnings,
	}, nil
}

// ehpDeltas runs the effective-health engine on both totals and folds the
// results into per-type deltas.
func ehpDeltas(currentTotal, candidateTotal stats.DefensiveProfile, threat defense.ThreatProfile) map[stats.DamageType]EHPDelta {
	cur := defense.ComputeEffectiveHealth(currentTotal, threat)
	cand := defense.ComputeEffectiveHealth(candidateTotal, threat)

	out := make(map[stats.DamageType]EHPDelta, len(cur))
	for dt, c := range cur {
		n := cand[dt]
		d := EHPDelta{Current: c, Candidate: n}
		switch {
		case math.IsInf(c, 1) && math.IsInf(n, 1):
			// Immune on both sides: no movement.
		default:
			d.Absolute = n - c
			if c != 0 && !math.IsInf(c, 1) {
				d.Percent = d.Absolute / c * 100
			}
		}
		out[dt] = d
	}
	return out
}

// dpsDelta computes the damage-output movement, preferring the authoritative
// source when one is wired and can price both totals.
func (e *Evaluator) dpsDelta(currentTotal, candidateTotal stats.DefensiveProfile) DPSDelta {
	if e.dps != nil {
		cur, okCur := e.dps.DPS(currentTotal)
		cand, okCand := e.dps.DPS(candidateTotal)
		if okCur && okCand {
			return foldDPS(cur, cand, true)
		}
	}
	return foldDPS(relativeDamage(currentTotal), relativeDamage(candidateTotal), false)
}

func foldDPS(cur, cand float64, trustworthy bool) DPSDelta {
	d := DPSDelta{Current: cur, Candidate: cand, Absolute: cand - cur, Trustworthy: trustworthy}
	if cur != 0 {
		d.Percent = d.Absolute / cur * 100
	}
	return d
}

// relativeDamage is the built-in damage proxy:
// (base * (1 + increased/100) * more + added) * (1 + crit chance * crit multi).
func relativeDamage(total stats.DefensiveProfile) float64 {
	more := total.MoreDamage
	if more <= 0 {
		more = 1.0
	}
	hit := normalizedBaseDamage*(1+total.IncreasedDamage/100)*more + total.AddedDamage
	return hit * (1 + (total.CritChance/100)*(total.CritMultiplier/100))
}

// elementalAndChaos are the resistance-bearing damage types.
var elementalAndChaos = []stats.DamageType{stats.Fire, stats.Cold, stats.Lightning, stats.Chaos}

func resistanceDeltas(current, candidate stats.GearContribution) map[stats.DamageType]float64 {
	out := make(map[stats.DamageType]float64, len(elementalAndChaos))
	for _, dt := range elementalAndChaos {
		out[dt] = candidate.Resistances[dt] - current.Resistances[dt]
	}
	return out
}

func rawStatDeltas(current, candidate stats.GearContribution) map[string]float64 {
	return map[string]float64{
		"life":          float64(candidate.Life - current.Life),
		"mana":          float64(candidate.Mana - current.Mana),
		"armour":        candidate.Armour - current.Armour,
		"evasion":       candidate.Evasion - current.Evasion,
		"energy_shield": float64(candidate.EnergyShield - current.EnergyShield),
		"spirit":        float64(candidate.Spirit - current.Spirit),
		"strength":      float64(candidate.Strength - current.Strength),
		"dexterity":     float64(candidate.Dexterity - current.Dexterity),
		"intelligence":  float64(candidate.Intelligence - current.Intelligence),
	}
}

// deriveWarnings surfaces the trade-offs a caller should see before equipping:
// meaningful resistance, life, energy shield, or spirit losses.
func deriveWarnings(resDeltas map[stats.DamageType]float64, statDeltas map[string]float64, currentTotal stats.DefensiveProfile) []string {
	var warnings []string
	for _, dt := range elementalAndChaos {
		if drop := -resDeltas[dt]; drop > resistanceDropWarning {
			warnings = append(warnings, fmt.Sprintf("loses %.0f%% %s resistance", drop, dt))
		}
	}
	if drop := -statDeltas["life"]; drop > lifeDropWarning {
		warnings = append(warnings, fmt.Sprintf("loses %.0f life", drop))
	}
	if drop := -statDeltas["energy_shield"]; drop > energyShieldDrop && currentTotal.EnergyShield > energyShieldInvested {
		warnings = append(warnings, fmt.Sprintf("loses %.0f energy shield", drop))
	}
	if drop := -statDeltas["spirit"]; drop > spiritDropWarning {
		warnings = append(warnings, fmt.Sprintf("loses %.0f spirit", drop))
	}
	return warnings
}

// priorityScore folds every delta into the bounded [0,100] score.
func priorityScore(
	ehp map[stats.DamageType]EHPDelta,
	dps DPSDelta,
	resDeltas map[stats.DamageType]float64,
	statDeltas map[string]float64,
	currentTotal stats.DefensiveProfile,
	price *float64,
) float64 {
	score := neutralScore

	if len(ehp) > 0 {
		sum := 0.0
		for _, d := range ehp {
			sum += d.Percent
		}
		score += sum / float64(len(ehp)) * ehpPercentWeight
	}

	score += dps.Percent * dpsPercentWeight

	for _, dt := range elementalAndChaos {
		change := resDeltas[dt]
		switch {
		case change > 0 && currentTotal.Resistance(dt) < resistanceSoftCap:
			score += change * resistanceGainWeight
		case change < 0:
			score += change * resistanceLossWeight
		}
	}

	score += statDeltas["life"] * lifeWeight
	score += statDeltas["spirit"] * spiritWeight

	if price != nil && *price > 0 {
		if score / *price < 1.0 {
			score *= poorValuePenalty
		}
	}

	return clampScore(score)
}

// tierFor classifies a score into its recommendation tier. Warnings pull any
// sub-55 score into Sidegrade but never demote a score of 55 or above.
func tierFor(score float64, hasWarnings bool) Tier {
	switch {
	case score >= 70:
		return StrongUpgrade
	case score >= 55:
		return Upgrade
	case hasWarnings:
		return Sidegrade
	case score >= 45:
		return Sidegrade
	case score >= 30:
		return Skip
	default:
		return Downgrade
	}
}

func clampScore(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
