package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCombineZeroGearIsIdentity(t *testing.T) {
	base := DefensiveProfile{
		Life:         4000,
		EnergyShield: 500,
		Mana:         300,
		Armour:       2000,
		Evasion:      1500,
		BlockChance:  20,
		Resistances:  map[DamageType]float64{Fire: 75, Cold: 60, Lightning: 40, Chaos: -10},
		Strength:     100,
		Spirit:       50,
		MoreDamage:   1.2,
	}

	total := Combine(base, GearContribution{})

	assert.Equal(t, base.Life, total.Life)
	assert.Equal(t, base.EnergyShield, total.EnergyShield)
	assert.Equal(t, base.Armour, total.Armour)
	assert.Equal(t, base.Evasion, total.Evasion)
	assert.Equal(t, base.BlockChance, total.BlockChance)
	assert.Equal(t, base.Resistances, total.Resistances)
	assert.Equal(t, base.MoreDamage, total.MoreDamage)
}

func TestCombineAdditiveStats(t *testing.T) {
	base := DefensiveProfile{Life: 4000, Armour: 1000, Resistances: map[DamageType]float64{Fire: 40}}
	gear := GearContribution{
		Life:        300,
		Armour:      500,
		Resistances: map[DamageType]float64{Fire: 20, Cold: 30},
	}

	total := Combine(base, gear)

	assert.Equal(t, 4300, total.Life)
	assert.Equal(t, 1500.0, total.Armour)
	assert.Equal(t, 60.0, total.Resistances[Fire])
	assert.Equal(t, 30.0, total.Resistances[Cold])
}

func TestCombineDoesNotMutateBase(t *testing.T) {
	base := DefensiveProfile{Resistances: map[DamageType]float64{Fire: 40}}
	gear := GearContribution{Resistances: map[DamageType]float64{Fire: 20}}

	total := Combine(base, gear)
	total.Resistances[Fire] = 999

	assert.Equal(t, 40.0, base.Resistances[Fire])
}

func TestCombineMoreDamageMultiplies(t *testing.T) {
	base := DefensiveProfile{MoreDamage: 1.2}
	gear := GearContribution{MoreDamage: 1.5}

	total := Combine(base, gear)
	assert.InDelta(t, 1.8, total.MoreDamage, 1e-9)
}

func TestCombineMoreDamageZeroIsNeutral(t *testing.T) {
	// A zero "more" modifier means the piece has none, never a multiply-by-zero.
	base := DefensiveProfile{MoreDamage: 1.3}
	total := Combine(base, GearContribution{MoreDamage: 0})
	assert.InDelta(t, 1.3, total.MoreDamage, 1e-9)

	base = DefensiveProfile{}
	total = Combine(base, GearContribution{MoreDamage: 0})
	assert.Equal(t, 1.0, total.MoreDamage)
}

func TestMoreFactorNeutral(t *testing.T) {
	assert.Equal(t, 1.0, GearContribution{}.MoreFactor())
	assert.Equal(t, 1.5, GearContribution{MoreDamage: 1.5}.MoreFactor())
	assert.Equal(t, 1.0, GearContribution{MoreDamage: -2}.MoreFactor())
}

func TestPropertyCombineLifeIsSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		baseLife := rapid.IntRange(0, 10000).Draw(t, "base_life")
		gearLife := rapid.IntRange(-500, 500).Draw(t, "gear_life")

		total := Combine(DefensiveProfile{Life: baseLife}, GearContribution{Life: gearLife})
		if total.Life != baseLife+gearLife {
			t.Fatalf("life %d + %d = %d", baseLife, gearLife, total.Life)
		}
	})
}

func TestPropertyCombineMoreNeverZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		baseMore := rapid.Float64Range(0, 3).Draw(t, "base_more")
		gearMore := rapid.Float64Range(0, 3).Draw(t, "gear_more")

		total := Combine(DefensiveProfile{MoreDamage: baseMore}, GearContribution{MoreDamage: gearMore})
		if total.MoreDamage <= 0 {
			t.Fatalf("more factor %f from base=%f gear=%f", total.MoreDamage, baseMore, gearMore)
		}
	})
}
