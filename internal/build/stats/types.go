// Package stats defines the character and gear stat value objects consumed by
// the defense and upgrade calculators.
package stats

// DamageType identifies one of the five hit damage types.
type DamageType int

const (
	Physical DamageType = iota
	Fire
	Cold
	Lightning
	Chaos
)

// AllDamageTypes lists every DamageType in declaration order.
//
// Postcondition: Returns a fresh slice of all 5 damage types.
func AllDamageTypes() []DamageType {
	return []DamageType{Physical, Fire, Cold, Lightning, Chaos}
}

// String returns the lowercase damage type label.
func (d DamageType) String() string {
	switch d {
	case Physical:
		return "physical"
	case Fire:
		return "fire"
	case Cold:
		return "cold"
	case Lightning:
		return "lightning"
	case Chaos:
		return "chaos"
	default:
		return "unknown"
	}
}

// ParseDamageType maps a label to its DamageType.
//
// Postcondition: Returns (type, true) for a known label, (0, false) otherwise.
func ParseDamageType(s string) (DamageType, bool) {
	switch s {
	case "physical":
		return Physical, true
	case "fire":
		return Fire, true
	case "cold":
		return Cold, true
	case "lightning":
		return Lightning, true
	case "chaos":
		return Chaos, true
	default:
		return Physical, false
	}
}

// DefensiveProfile holds a character's mitigation-relevant stats.
// Percentages are stored uncapped; the defense engine applies caps at
// consumption time. Profiles are value objects: calculators never mutate them.
type DefensiveProfile struct {
	// Life is the primary survivable pool.
	Life int
	// EnergyShield absorbs before life. Chaos damage depletes it twice as fast.
	EnergyShield int
	Mana         int
	// Armour is the flat physical damage reduction rating.
	Armour float64
	// Evasion is the rating feeding the accuracy-vs-evasion hit chance.
	Evasion float64
	// BlockChance is a percentage in [0,100]; the engine caps it at 50 on use.
	BlockChance float64
	// Resistances maps damage type to an uncapped resistance percentage.
	// Negative values are legal (debuffs) and increase damage taken.
	// Physical normally has no entry; armour covers it.
	Resistances map[DamageType]float64

	Strength     int
	Dexterity    int
	Intelligence int
	// Spirit is the resource-limiting stat for persistent reservations.
	Spirit int

	// AddedDamage, IncreasedDamage, MoreDamage, CritChance and CritMultiplier
	// feed the relative damage proxy. MoreDamage is an accumulated
	// multiplicative factor with neutral value 1.0.
	AddedDamage     float64
	IncreasedDamage float64
	MoreDamage      float64
	CritChance      float64
	CritMultiplier  float64
}

// CloneResistances returns a copy of the resistance map, never nil.
//
// Postcondition: Mutating the returned map does not affect p.
func (p DefensiveProfile) CloneResistances() map[DamageType]float64 {
	out := make(map[DamageType]float64, len(p.Resistances))
	for t, v := range p.Resistances {
		out[t] = v
	}
	return out
}

// Resistance returns the uncapped resistance percentage for t, 0 when absent.
func (p DefensiveProfile) Resistance(t DamageType) float64 {
	return p.Resistances[t]
}

// GearContribution is one equipment piece's stat delta. All fields are
// additive except MoreDamage, which composes multiplicatively: a zero value
// is treated as the neutral factor 1.0, never as a multiply-by-zero.
type GearContribution struct {
	Life         int
	EnergyShield int
	Mana         int
	Armour       float64
	Evasion      float64
	BlockChance  float64
	Resistances  map[DamageType]float64

	Strength     int
	Dexterity    int
	Intelligence int
	Spirit       int

	AddedDamage     float64
	IncreasedDamage float64
	// MoreDamage is a multiplicative factor. Zero means "no modifier" and is
	// normalized to 1.0 by MoreFactor.
	MoreDamage     float64
	CritChance     float64
	CritMultiplier float64
}

// MoreFactor returns the effective multiplicative damage factor for this
// piece, normalizing the absent/zero value to neutral.
//
// Postcondition: Returns MoreDamage when > 0, otherwise exactly 1.0.
func (g GearContribution) MoreFactor() float64 {
	if g.MoreDamage > 0 {
		return g.MoreDamage
	}
	return 1.0
}
