package stats

// Combine merges a gear piece's contribution into a base profile, returning a
// new total. Additive stats sum; MoreDamage composes multiplicatively with the
// base's accumulated factor. Neither input is mutated, and the returned
// profile shares no maps with either.
//
// Postcondition: Combining a zero-value GearContribution yields a profile
// equal to base (with MoreDamage normalized to at least 1.0).
func Combine(base DefensiveProfile, gear GearContribution) DefensiveProfile {
	total := base
	total.Life += gear.Life
	total.EnergyShield += gear.EnergyShield
	total.Mana += gear.Mana
	total.Armour += gear.Armour
	total.Evasion += gear.Evasion
	total.BlockChance += gear.BlockChance
	total.Strength += gear.Strength
	total.Dexterity += gear.Dexterity
	total.Intelligence += gear.Intelligence
	total.Spirit += gear.Spirit

	total.AddedDamage += gear.AddedDamage
	total.IncreasedDamage += gear.IncreasedDamage
	total.CritChance += gear.CritChance
	total.CritMultiplier += gear.CritMultiplier

	// "More" factors multiply across sources, never add.
	baseMore := base.MoreDamage
	if baseMore <= 0 {
		baseMore = 1.0
	}
	total.MoreDamage = baseMore * gear.MoreFactor()

	res := base.CloneResistances()
	for t, v := range gear.Resistances {
		res[t] += v
	}
	total.Resistances = res

	return total
}
