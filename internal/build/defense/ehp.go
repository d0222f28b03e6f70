package defense

import (
	"math"

	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// Mitigation model constants. The accuracy pair is tuned so mid-game evasion
// (~2500 rating) lands near a 50% hit chance.
const (
	// baselineAccuracyFactor stands in for attacker accuracy when none is supplied.
	baselineAccuracyFactor = 10000.0
	// evasionCoefficient scales evasion rating inside the hit-chance formula.
	evasionCoefficient = 4.0
	// minHitChance is the residual hit chance floor: evasion alone never
	// avoids more than 95% of hits.
	minHitChance = 0.05
	// maxBlockChance caps block at consumption time.
	maxBlockChance = 50.0
	// maxResistance is the hard resistance ceiling. The 75% soft cap is a
	// consumer convention; the engine honors values between 75 and 90 as-is.
	maxResistance = 90.0
	// maxDamageReduction leaves 10% residual damage headroom from armour and
	// resistance alike.
	maxDamageReduction = 0.90
	// armourHitSizeFactor is the denominator factor in the armour formula.
	armourHitSizeFactor = 10.0
	// armourSingleHitDivisor bounds armour's reduction against one hit to a
	// fifth of its rating, producing the diminishing-returns behavior against
	// large hits.
	armourSingleHitDivisor = 5.0
)

// ComputeEffectiveHealth converts a defensive profile and a threat profile
// into the raw pre-mitigation damage of each type required to deplete the
// character's pool. Pure and deterministic: no I/O, no error paths. Negative
// stats are clamped to zero rather than rejected, since upstream data can
// legitimately carry negative resistance from debuffs.
//
// Precondition: threat may be nil; the default profile is used in that case.
// Postcondition: The returned map contains exactly the damage types present
// in the threat profile. Every value is > 0, or +Inf for full immunity.
func ComputeEffectiveHealth(profile stats.DefensiveProfile, threat ThreatProfile) map[stats.DamageType]float64 {
	if len(threat) == 0 {
		threat = DefaultThreatProfile()
	}

	out := make(map[stats.DamageType]float64, len(threat))
	for dt, th := range threat {
		out[dt] = effectiveHealth(profile, dt, th)
	}
	return out
}

// effectiveHealth computes EHP for a single damage type.
func effectiveHealth(profile stats.DefensiveProfile, dt stats.DamageType, th Threat) float64 {
	pAvoid := avoidChance(profile, th)
	dr := damageReduction(profile, dt, th)
	pool := survivablePool(profile, dt)

	if pAvoid >= 1 {
		return math.Inf(1)
	}
	return pool / ((1 - pAvoid) * (1 - dr))
}

// avoidChance returns the probability that a hit deals zero damage outright.
// Evasion-derived avoidance and block compose as independent events.
//
// Postcondition: Returns a value in [0,1).
func avoidChance(profile stats.DefensiveProfile, th Threat) float64 {
	if th.Unavoidable {
		return 0
	}

	evadeAvoid := 0.0
	if th.Evadable {
		evasion := math.Max(profile.Evasion, 0)
		hitChance := baselineAccuracyFactor / (baselineAccuracyFactor + evasion*evasionCoefficient)
		hitChance = clamp(hitChance, minHitChance, 1.0)
		evadeAvoid = 1 - hitChance
	}

	block := 0.0
	if th.Blockable {
		block = clamp(profile.BlockChance, 0, maxBlockChance) / 100
	}

	return 1 - (1-evadeAvoid)*(1-block)
}

// damageReduction returns the fraction by which a landed hit of type dt is
// reduced. Physical uses armour's hit-size-dependent formula, everything else
// uses resistance. Negative resistance yields a negative reduction (the hit
// deals more than its raw damage).
//
// Postcondition: Returns a value <= maxDamageReduction.
func damageReduction(profile stats.DefensiveProfile, dt stats.DamageType, th Threat) float64 {
	if dt == stats.Physical {
		return armourReduction(profile.Armour, th.HitSize)
	}
	res := math.Min(profile.Resistance(dt), maxResistance)
	return res / 100
}

// armourReduction evaluates armour against a single hit of the given size.
// Armour may reduce at most a fifth of its rating on one hit, so the formula
// reduction is capped at armour/(5*hitSize).
//
// Postcondition: Returns a value in [0, maxDamageReduction].
func armourReduction(armour, hitSize float64) float64 {
	armour = math.Max(armour, 0)
	if armour == 0 || hitSize <= 0 {
		return 0
	}
	dr := armour / (armour + armourHitSizeFactor*hitSize)
	singleHitBound := armour / (armourSingleHitDivisor * hitSize)
	if dr > singleHitBound {
		dr = singleHitBound
	}
	return clamp(dr, 0, maxDamageReduction)
}

// survivablePool returns life plus the energy shield contribution for dt.
// Chaos damage depletes energy shield twice as fast, modeled by halving the
// shield's contribution.
//
// Postcondition: Returns >= 0.
func survivablePool(profile stats.DefensiveProfile, dt stats.DamageType) float64 {
	life := math.Max(float64(profile.Life), 0)
	es := math.Max(float64(profile.EnergyShield), 0)
	if dt == stats.Chaos {
		es /= 2
	}
	return life + es
}

// WeightedEHP collapses a per-type EHP mapping into a single scalar using the
// threat profile's weights, normalized across the damage types present in the
// result. A zero total weight falls back to a uniform average.
//
// Postcondition: Returns 0 for an empty result.
func WeightedEHP(result map[stats.DamageType]float64, threat ThreatProfile) float64 {
	if len(result) == 0 {
		return 0
	}

	totalWeight := 0.0
	for dt := range result {
		if w := threat[dt].Weight; w > 0 {
			totalWeight += w
		}
	}

	sum := 0.0
	if totalWeight == 0 {
		for _, ehp := range result {
			sum += ehp
		}
		return sum / float64(len(result))
	}
	for dt, ehp := range result {
		if w := threat[dt].Weight; w > 0 {
			sum += ehp * w
		}
	}
	return sum / totalWeight
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
