// Package mcpserver exposes the build calculators and the item/build store
// as MCP tools over a stdio transport.
package mcpserver

import (
	"fmt"
	"math"

	"github.com/dochoss/poe2-mcp/internal/build/stats"
	"github.com/dochoss/poe2-mcp/internal/build/upgrade"
)

// ProfileInput is the wire form of a character's defensive stats.
type ProfileInput struct {
	Life         int     `json:"life" jsonschema:"maximum life"`
	EnergyShield int     `json:"energy_shield,omitempty" jsonschema:"maximum energy shield"`
	Mana         int     `json:"mana,omitempty" jsonschema:"maximum mana"`
	Armour       float64 `json:"armour,omitempty" jsonschema:"armour rating"`
	Evasion      float64 `json:"evasion,omitempty" jsonschema:"evasion rating"`
	BlockChance  float64 `json:"block_chance,omitempty" jsonschema:"block chance percentage"`
	// Resistances maps damage type (fire, cold, lightning, chaos) to an
	// uncapped resistance percentage; negative values are allowed.
	Resistances map[string]float64 `json:"resistances,omitempty" jsonschema:"uncapped resistance percentages by damage type"`

	Strength     int `json:"strength,omitempty" jsonschema:"strength attribute"`
	Dexterity    int `json:"dexterity,omitempty" jsonschema:"dexterity attribute"`
	Intelligence int `json:"intelligence,omitempty" jsonschema:"intelligence attribute"`
	Spirit       int `json:"spirit,omitempty" jsonschema:"spirit available for reservations"`

	AddedDamage     float64 `json:"added_damage,omitempty" jsonschema:"flat added damage"`
	IncreasedDamage float64 `json:"increased_damage,omitempty" jsonschema:"total increased damage percentage"`
	MoreDamage      float64 `json:"more_damage,omitempty" jsonschema:"accumulated multiplicative damage factor, 1.0 neutral"`
	CritChance      float64 `json:"crit_chance,omitempty" jsonschema:"critical strike chance percentage"`
	CritMultiplier  float64 `json:"crit_multiplier,omitempty" jsonschema:"critical strike multiplier percentage"`
}

// GearInput is the wire form of one equipment piece's stat contribution.
type GearInput struct {
	Life         int                `json:"life,omitempty" jsonschema:"added life"`
	EnergyShield int                `json:"energy_shield,omitempty" jsonschema:"added energy shield"`
	Mana         int                `json:"mana,omitempty" jsonschema:"added mana"`
	Armour       float64            `json:"armour,omitempty" jsonschema:"added armour rating"`
	Evasion      float64            `json:"evasion,omitempty" jsonschema:"added evasion rating"`
	BlockChance  float64            `json:"block_chance,omitempty" jsonschema:"added block chance percentage"`
	Resistances  map[string]float64 `json:"resistances,omitempty" jsonschema:"added resistance percentages by damage type"`

	Strength     int `json:"strength,omitempty" jsonschema:"added strength"`
	Dexterity    int `json:"dexterity,omitempty" jsonschema:"added dexterity"`
	Intelligence int `json:"intelligence,omitempty" jsonschema:"added intelligence"`
	Spirit       int `json:"spirit,omitempty" jsonschema:"added spirit"`

	AddedDamage     float64 `json:"added_damage,omitempty" jsonschema:"flat added damage"`
	IncreasedDamage float64 `json:"increased_damage,omitempty" jsonschema:"increased damage percentage"`
	MoreDamage      float64 `json:"more_damage,omitempty" jsonschema:"multiplicative damage factor, omit or 0 for neutral"`
	CritChance      float64 `json:"crit_chance,omitempty" jsonschema:"added critical strike chance percentage"`
	CritMultiplier  float64 `json:"crit_multiplier,omitempty" jsonschema:"added critical strike multiplier percentage"`
}

// EHPDeltaResult is the wire form of one damage type's effective-health movement.
type EHPDeltaResult struct {
	Current   float64 `json:"current" jsonschema:"effective health with current gear"`
	Candidate float64 `json:"candidate" jsonschema:"effective health with candidate gear"`
	Absolute  float64 `json:"absolute" jsonschema:"candidate minus current"`
	Percent   float64 `json:"percent" jsonschema:"absolute relative to current, in percent"`
}

// DPSDeltaResult is the wire form of the relative damage movement.
type DPSDeltaResult struct {
	Current     float64 `json:"current" jsonschema:"relative damage with current gear"`
	Candidate   float64 `json:"candidate" jsonschema:"relative damage with candidate gear"`
	Absolute    float64 `json:"absolute" jsonschema:"candidate minus current"`
	Percent     float64 `json:"percent" jsonschema:"absolute relative to current, in percent"`
	Trustworthy bool    `json:"trustworthy" jsonschema:"true only when an authoritative DPS source supplied both sides"`
}

// UpgradeResult is the wire form of an evaluation.
type UpgradeResult struct {
	EHP              map[string]EHPDeltaResult `json:"ehp" jsonschema:"effective health deltas by damage type"`
	DPS              DPSDeltaResult            `json:"dps" jsonschema:"relative damage delta"`
	ResistanceDeltas map[string]float64        `json:"resistance_deltas" jsonschema:"resistance movements by damage type"`
	StatDeltas       map[string]float64        `json:"stat_deltas" jsonschema:"raw stat movements by stat name"`
	PriorityScore    float64                   `json:"priority_score" jsonschema:"bounded priority score in [0,100]"`
	Tier             string                    `json:"tier" jsonschema:"recommendation tier"`
	Price            *float64                  `json:"price,omitempty" jsonschema:"market price, when supplied"`
	Warnings         []string                  `json:"warnings,omitempty" jsonschema:"trade-off caveats"`
}

// toProfile converts wire input to the calculator's profile type.
func (p ProfileInput) toProfile() stats.DefensiveProfile {
	return stats.DefensiveProfile{
		Life:            p.Life,
		EnergyShield:    p.EnergyShield,
		Mana:            p.Mana,
		Armour:          p.Armour,
		Evasion:         p.Evasion,
		BlockChance:     p.BlockChance,
		Resistances:     toResistances(p.Resistances),
		Strength:        p.Strength,
		Dexterity:       p.Dexterity,
		Intelligence:    p.Intelligence,
		Spirit:          p.Spirit,
		AddedDamage:     p.AddedDamage,
		IncreasedDamage: p.IncreasedDamage,
		MoreDamage:      p.MoreDamage,
		CritChance:      p.CritChance,
		CritMultiplier:  p.CritMultiplier,
	}
}

// toGear converts wire input to the calculator's contribution type.
func (g GearInput) toGear() stats.GearContribution {
	return stats.GearContribution{
		Life:            g.Life,
		EnergyShield:    g.EnergyShield,
		Mana:            g.Mana,
		Armour:          g.Armour,
		Evasion:         g.Evasion,
		BlockChance:     g.BlockChance,
		Resistances:     toResistances(g.Resistances),
		Strength:        g.Strength,
		Dexterity:       g.Dexterity,
		Intelligence:    g.Intelligence,
		Spirit:          g.Spirit,
		AddedDamage:     g.AddedDamage,
		IncreasedDamage: g.IncreasedDamage,
		MoreDamage:      g.MoreDamage,
		CritChance:      g.CritChance,
		CritMultiplier:  g.CritMultiplier,
	}
}

// toResistances parses damage type labels, dropping unknown keys.
func toResistances(m map[string]float64) map[stats.DamageType]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[stats.DamageType]float64, len(m))
	for label, v := range m {
		if dt, ok := stats.ParseDamageType(label); ok {
			out[dt] = v
		}
	}
	return out
}

// toUpgradeResult converts an evaluation to its wire form. Infinite EHP
// values (full immunity) are flattened to a large sentinel so the result
// stays valid JSON.
func toUpgradeResult(v *upgrade.UpgradeValue) UpgradeResult {
	ehp := make(map[string]EHPDeltaResult, len(v.EHP))
	for dt, d := range v.EHP {
		ehp[dt.String()] = EHPDeltaResult{
			Current:   finite(d.Current),
			Candidate: finite(d.Candidate),
			Absolute:  finite(d.Absolute),
			Percent:   finite(d.Percent),
		}
	}
	res := make(map[string]float64, len(v.ResistanceDeltas))
	for dt, d := range v.ResistanceDeltas {
		res[dt.String()] = d
	}
	return UpgradeResult{
		EHP: ehp,
		DPS: DPSDeltaResult{
			Current:     v.DPS.Current,
			Candidate:   v.DPS.Candidate,
			Absolute:    v.DPS.Absolute,
			Percent:     v.DPS.Percent,
			Trustworthy: v.DPS.Trustworthy,
		},
		ResistanceDeltas: res,
		StatDeltas:       v.StatDeltas,
		PriorityScore:    v.PriorityScore,
		Tier:             v.Tier.String(),
		Price:            v.Price,
		Warnings:         v.Warnings,
	}
}

// immunitySentinel replaces +Inf effective health in JSON output.
const immunitySentinel = 1e18

func finite(v float64) float64 {
	if math.IsInf(v, 1) {
		return immunitySentinel
	}
	if math.IsInf(v, -1) {
		return -immunitySentinel
	}
	return v
}

// validateProfilePresent enforces the evaluator's base-profile contract at
// the tool boundary so the error message names the offending field.
func validateProfilePresent(p *ProfileInput) error {
	if p == nil {
		return fmt.Errorf("base_profile is required")
	}
	return nil
}
