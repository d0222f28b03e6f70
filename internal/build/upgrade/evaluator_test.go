package upgrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// fakeDPS is a canned DPSSource for wiring tests.
type fakeDPS struct {
	fn func(total stats.DefensiveProfile) (float64, bool)
}

func (f *fakeDPS) DPS(total stats.DefensiveProfile) (float64, bool) {
	return f.fn(total)
}

func baseProfile() *stats.DefensiveProfile {
	return &stats.DefensiveProfile{Life: 4000}
}

func TestEvaluateUpgrade_NilBase(t *testing.T) {
	e := NewEvaluator(nil)
	_, err := e.EvaluateUpgrade(stats.GearContribution{}, stats.GearContribution{}, nil, nil, nil)
	assert.ErrorIs(t, err, ErrMissingBaseProfile)
}

func TestEvaluateUpgrade_IdenticalItemsScoreNeutral(t *testing.T) {
	e := NewEvaluator(nil)
	gear := stats.GearContribution{Life: 200, Resistances: map[stats.DamageType]float64{stats.Fire: 30}}

	value, err := e.EvaluateUpgrade(gear, gear, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 50.0, value.PriorityScore)
	assert.Equal(t, Sidegrade, value.Tier)
	assert.Empty(t, value.Warnings)
	assert.False(t, value.DPS.Trustworthy)
	assert.Equal(t, 0.0, value.DPS.Percent)
	for dt, delta := range value.EHP {
		assert.Equal(t, 0.0, delta.Absolute, "type %s", dt)
		assert.Equal(t, 0.0, delta.Percent, "type %s", dt)
	}
}

func TestEvaluateUpgrade_PureLifeUpgrade(t *testing.T) {
	e := NewEvaluator(nil)
	candidate := stats.GearContribution{Life: 300}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, nil)
	require.NoError(t, err)

	// EHP moves 4000 -> 4300 on every type: +7.5% avg, weighted 0.5, plus
	// the flat life contribution.
	assert.InDelta(t, 56.75, value.PriorityScore, 1e-9)
	assert.Equal(t, Upgrade, value.Tier)
	assert.Empty(t, value.Warnings)
	assert.Equal(t, 300.0, value.StatDeltas["life"])
	for dt, delta := range value.EHP {
		assert.InDelta(t, 7.5, delta.Percent, 1e-9, "type %s", dt)
	}
}

func TestEvaluateUpgrade_ResistanceGainBelowCap(t *testing.T) {
	e := NewEvaluator(nil)
	base := &stats.DefensiveProfile{
		Life:        1000,
		Resistances: map[stats.DamageType]float64{stats.Fire: 40},
	}
	candidate := stats.GearContribution{Resistances: map[stats.DamageType]float64{stats.Fire: 30}}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, base, nil, nil)
	require.NoError(t, err)

	// Fire EHP doubles (1666.7 -> 3333.3): +100% on one of five types gives
	// +10 score; the uncapped 30% gain adds another +15.
	assert.InDelta(t, 75.0, value.PriorityScore, 1e-9)
	assert.Equal(t, StrongUpgrade, value.Tier)
	assert.Equal(t, 30.0, value.ResistanceDeltas[stats.Fire])
}

func TestEvaluateUpgrade_ResistanceOverHardCapIsWorthless(t *testing.T) {
	e := NewEvaluator(nil)
	base := &stats.DefensiveProfile{
		Life:        1000,
		Resistances: map[stats.DamageType]float64{stats.Fire: 90},
	}
	candidate := stats.GearContribution{Resistances: map[stats.DamageType]float64{stats.Fire: 10}}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, base, nil, nil)
	require.NoError(t, err)

	// Already at the 90% hard cap: no EHP movement and no gain credit.
	assert.Equal(t, 50.0, value.PriorityScore)
	assert.Equal(t, Sidegrade, value.Tier)
}

func TestEvaluateUpgrade_ResistanceDropWarning(t *testing.T) {
	e := NewEvaluator(nil)
	base := &stats.DefensiveProfile{
		Life:        1000,
		Resistances: map[stats.DamageType]float64{stats.Lightning: 60},
	}
	current := stats.GearContribution{Resistances: map[stats.DamageType]float64{stats.Lightning: 15}}

	value, err := e.EvaluateUpgrade(current, stats.GearContribution{}, base, nil, nil)
	require.NoError(t, err)

	require.Len(t, value.Warnings, 1)
	assert.Equal(t, "loses 15% lightning resistance", value.Warnings[0])
	// Lightning EHP falls 4000 -> 2500 (-37.5% on one of five types) and the
	// loss weight takes 4.5 more.
	assert.InDelta(t, 41.75, value.PriorityScore, 1e-9)
	assert.Equal(t, Sidegrade, value.Tier, "warnings pull sub-55 scores to sidegrade")
}

func TestEvaluateUpgrade_LifeDropWarning(t *testing.T) {
	e := NewEvaluator(nil)
	current := stats.GearContribution{Life: 200}

	value, err := e.EvaluateUpgrade(current, stats.GearContribution{}, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, value.Warnings, "loses 200 life")
}

func TestEvaluateUpgrade_EnergyShieldWarningRequiresInvestment(t *testing.T) {
	e := NewEvaluator(nil)
	current := stats.GearContribution{EnergyShield: 150}

	// ES-invested character: the drop matters.
	invested := &stats.DefensiveProfile{Life: 2000, EnergyShield: 600}
	value, err := e.EvaluateUpgrade(current, stats.GearContribution{}, invested, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, value.Warnings, "loses 150 energy shield")

	// Incidental ES on a life build: same drop, no warning.
	lifeBuild := &stats.DefensiveProfile{Life: 2000, EnergyShield: 100}
	value, err = e.EvaluateUpgrade(current, stats.GearContribution{}, lifeBuild, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, value.Warnings)
}

func TestEvaluateUpgrade_SpiritDropWarning(t *testing.T) {
	e := NewEvaluator(nil)
	current := stats.GearContribution{Spirit: 30}

	value, err := e.EvaluateUpgrade(current, stats.GearContribution{}, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, value.Warnings, "loses 30 spirit")
}

func TestEvaluateUpgrade_DamageProxy(t *testing.T) {
	e := NewEvaluator(nil)
	candidate := stats.GearContribution{IncreasedDamage: 50}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.False(t, value.DPS.Trustworthy)
	assert.InDelta(t, 50.0, value.DPS.Percent, 1e-9)
	assert.InDelta(t, 65.0, value.PriorityScore, 1e-9)
	assert.Equal(t, Upgrade, value.Tier)
}

func TestEvaluateUpgrade_MoreDamageNeverMultipliesByZero(t *testing.T) {
	e := NewEvaluator(nil)
	// candidate has no "more" modifier; its absence must not zero the proxy.
	candidate := stats.GearContribution{AddedDamage: 10}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.Greater(t, value.DPS.Candidate, 0.0)
	assert.InDelta(t, 10.0, value.DPS.Absolute, 1e-9)
}

func TestEvaluateUpgrade_DPSSourceTrusted(t *testing.T) {
	src := &fakeDPS{fn: func(total stats.DefensiveProfile) (float64, bool) {
		if total.IncreasedDamage > 0 {
			return 1200, true
		}
		return 1000, true
	}}
	e := NewEvaluator(src)
	candidate := stats.GearContribution{IncreasedDamage: 10}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.True(t, value.DPS.Trustworthy)
	assert.Equal(t, 1000.0, value.DPS.Current)
	assert.Equal(t, 1200.0, value.DPS.Candidate)
	assert.InDelta(t, 20.0, value.DPS.Percent, 1e-9)
}

func TestEvaluateUpgrade_DPSSourcePartialFallsBackToProxy(t *testing.T) {
	src := &fakeDPS{fn: func(total stats.DefensiveProfile) (float64, bool) {
		// Can only price the unmodified total.
		return 1000, total.IncreasedDamage == 0
	}}
	e := NewEvaluator(src)
	candidate := stats.GearContribution{IncreasedDamage: 10}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, nil)
	require.NoError(t, err)

	assert.False(t, value.DPS.Trustworthy)
}

func TestEvaluateUpgrade_PoorValuePenalty(t *testing.T) {
	e := NewEvaluator(nil)
	candidate := stats.GearContribution{Life: 300}

	free, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, nil)
	require.NoError(t, err)

	price := 500.0
	priced, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, &price)
	require.NoError(t, err)

	assert.InDelta(t, free.PriorityScore*0.8, priced.PriorityScore, 1e-9)
	require.NotNil(t, priced.Price)
	assert.Equal(t, 500.0, *priced.Price)
}

func TestEvaluateUpgrade_CheapPriceNoPenalty(t *testing.T) {
	e := NewEvaluator(nil)
	candidate := stats.GearContribution{Life: 300}

	price := 1.0
	priced, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), nil, &price)
	require.NoError(t, err)

	assert.InDelta(t, 56.75, priced.PriorityScore, 1e-9)
}

func TestEvaluateUpgrade_NamedThreatProfile(t *testing.T) {
	e := NewEvaluator(nil)
	threat := defense.ThreatProfile{
		stats.Physical: {HitSize: 3000, Unavoidable: true, Weight: 1},
	}
	candidate := stats.GearContribution{Armour: 5000}

	value, err := e.EvaluateUpgrade(stats.GearContribution{}, candidate, baseProfile(), threat, nil)
	require.NoError(t, err)

	require.Len(t, value.EHP, 1)
	assert.Greater(t, value.EHP[stats.Physical].Percent, 0.0)
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		score       float64
		hasWarnings bool
		want        Tier
	}{
		{75, false, StrongUpgrade},
		{70, false, StrongUpgrade},
		{69.9, false, Upgrade},
		{55, false, Upgrade},
		{55, true, Upgrade},
		{54.9, true, Sidegrade},
		{50, false, Sidegrade},
		{45, false, Sidegrade},
		{44.9, false, Skip},
		{35, true, Sidegrade},
		{30, false, Skip},
		{29.9, false, Downgrade},
		{10, true, Sidegrade},
	}
	for _, tt := range tests {
		got := tierFor(tt.score, tt.hasWarnings)
		assert.Equal(t, tt.want, got, "score=%f warnings=%v", tt.score, tt.hasWarnings)
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "strong_upgrade", StrongUpgrade.String())
	assert.Equal(t, "upgrade", Upgrade.String())
	assert.Equal(t, "sidegrade", Sidegrade.String())
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "downgrade", Downgrade.String())
}

// Property-based tests

func genGear(t *rapid.T, label string) stats.GearContribution {
	return stats.GearContribution{
		Life:         rapid.IntRange(-500, 500).Draw(t, label+"_life"),
		EnergyShield: rapid.IntRange(-300, 300).Draw(t, label+"_es"),
		Armour:       rapid.Float64Range(-1000, 3000).Draw(t, label+"_armour"),
		Evasion:      rapid.Float64Range(-1000, 3000).Draw(t, label+"_evasion"),
		BlockChance:  rapid.Float64Range(-10, 40).Draw(t, label+"_block"),
		Spirit:       rapid.IntRange(-50, 50).Draw(t, label+"_spirit"),
		Resistances: map[stats.DamageType]float64{
			stats.Fire:      rapid.Float64Range(-60, 60).Draw(t, label+"_fire"),
			stats.Cold:      rapid.Float64Range(-60, 60).Draw(t, label+"_cold"),
			stats.Lightning: rapid.Float64Range(-60, 60).Draw(t, label+"_lightning"),
			stats.Chaos:     rapid.Float64Range(-60, 60).Draw(t, label+"_chaos"),
		},
		AddedDamage:     rapid.Float64Range(0, 100).Draw(t, label+"_added"),
		IncreasedDamage: rapid.Float64Range(-50, 100).Draw(t, label+"_inc"),
		MoreDamage:      rapid.Float64Range(0, 2).Draw(t, label+"_more"),
		CritChance:      rapid.Float64Range(0, 50).Draw(t, label+"_crit"),
		CritMultiplier:  rapid.Float64Range(0, 300).Draw(t, label+"_critmult"),
	}
}

func TestPropertyScoreAlwaysBounded(t *testing.T) {
	e := NewEvaluator(nil)
	rapid.Check(t, func(t *rapid.T) {
		base := &stats.DefensiveProfile{
			Life:        rapid.IntRange(1, 8000).Draw(t, "base_life"),
			Resistances: map[stats.DamageType]float64{stats.Fire: rapid.Float64Range(-60, 90).Draw(t, "base_fire")},
		}
		current := genGear(t, "current")
		candidate := genGear(t, "candidate")

		value, err := e.EvaluateUpgrade(current, candidate, base, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value.PriorityScore < 0 || value.PriorityScore > 100 {
			t.Fatalf("score %f out of bounds", value.PriorityScore)
		}
	})
}

func TestPropertySwapSymmetry(t *testing.T) {
	// Evaluating A->B and B->A must disagree about the direction of movement.
	e := NewEvaluator(nil)
	rapid.Check(t, func(t *rapid.T) {
		base := baseProfile()
		a := genGear(t, "a")
		b := genGear(t, "b")

		forward, err := e.EvaluateUpgrade(a, b, base, nil, nil)
		if err != nil {
			t.Fatalf("forward: %v", err)
		}
		backward, err := e.EvaluateUpgrade(b, a, base, nil, nil)
		if err != nil {
			t.Fatalf("backward: %v", err)
		}

		for dt, f := range forward.EHP {
			bk := backward.EHP[dt]
			if f.Absolute != 0 && f.Absolute != -bk.Absolute {
				t.Fatalf("type %s: forward %f backward %f not symmetric", dt, f.Absolute, bk.Absolute)
			}
		}
	})
}
