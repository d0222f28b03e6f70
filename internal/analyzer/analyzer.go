// Package analyzer inspects a full character snapshot and produces a
// defensive quality assessment with prioritized improvement recommendations.
package analyzer

import (
	"fmt"

	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// Quality is the coarse defensive health tier.
type Quality int

const (
	QualityGood Quality = iota
	QualityWeak
	QualityCritical
)

// String returns the quality label.
func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityWeak:
		return "weak"
	case QualityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Defensive thresholds. Below ehpWeakThreshold the build is flagged weak,
// below ehpCriticalThreshold critical. Resistances under the comfortable
// floor are surfaced as issues even before the 75% cap is reached.
const (
	ehpCriticalThreshold = 3000.0
	ehpWeakThreshold     = 5000.0
	resistanceFloor      = 60.0
	resistanceTarget     = 75.0
)

// Item is one equipped gear piece in a snapshot.
type Item struct {
	Slot string
	Name string
}

// Snapshot is a fully materialized character: the analyzer never fetches
// anything mid-computation.
type Snapshot struct {
	Name    string
	League  string
	Profile stats.DefensiveProfile
	Skills  []string
	Items   []Item
}

// DefenseReport summarizes the snapshot's survivability.
type DefenseReport struct {
	Life         int
	EnergyShield int
	// EffectiveHP is the threat-weighted scalar EHP.
	EffectiveHP float64
	// EHPByType is the per-damage-type breakdown behind EffectiveHP.
	EHPByType   map[stats.DamageType]float64
	Resistances map[stats.DamageType]float64
	Quality     Quality
	Issues      []string
}

// Recommendation is one prioritized improvement suggestion.
type Recommendation struct {
	Priority       string
	Category       string
	Title          string
	Description    string
	SuggestedSlots []string
}

// Analysis is the full analyzer output for one character.
type Analysis struct {
	CharacterName   string
	League          string
	Defense         DefenseReport
	SkillCount      int
	ItemCount       int
	Recommendations []Recommendation
}

// Analyzer assesses character snapshots against a threat profile. Stateless;
// safe for concurrent use.
type Analyzer struct {
	threat defense.ThreatProfile
}

// NewAnalyzer creates an Analyzer. threat may be nil, in which case the
// default threat profile is assumed.
func NewAnalyzer(threat defense.ThreatProfile) *Analyzer {
	if len(threat) == 0 {
		threat = defense.DefaultThreatProfile()
	}
	return &Analyzer{threat: threat}
}

// AnalyzeCharacter produces the defensive report and recommendations for the
// given snapshot. Pure; degenerate stats yield a best-effort report rather
// than an error.
func (a *Analyzer) AnalyzeCharacter(snap Snapshot) Analysis {
	report := a.analyzeDefenses(snap.Profile)
	return Analysis{
		CharacterName:   snap.Name,
		League:          snap.League,
		Defense:         report,
		SkillCount:      len(snap.Skills),
		ItemCount:       len(snap.Items),
		Recommendations: recommendations(report),
	}
}

func (a *Analyzer) analyzeDefenses(profile stats.DefensiveProfile) DefenseReport {
	ehpByType := defense.ComputeEffectiveHealth(profile, a.threat)
	ehp := defense.WeightedEHP(ehpByType, a.threat)

	quality := QualityGood
	var issues []string
	switch {
	case ehp < ehpCriticalThreshold:
		quality = QualityCritical
		issues = append(issues, "effective HP critically low")
	case ehp < ehpWeakThreshold:
		quality = QualityWeak
		issues = append(issues, "effective HP below recommended threshold")
	}

	// Chaos resistance is commonly left negative; only the elemental three
	// are held to the comfortable floor.
	for _, dt := range []stats.DamageType{stats.Fire, stats.Cold, stats.Lightning} {
		if res := profile.Resistance(dt); res < resistanceFloor {
			issues = append(issues, fmt.Sprintf("%s resistance low (%.0f%%)", dt, res))
		}
	}

	return DefenseReport{
		Life:         profile.Life,
		EnergyShield: profile.EnergyShield,
		EffectiveHP:  ehp,
		EHPByType:    ehpByType,
		Resistances:  profile.CloneResistances(),
		Quality:      quality,
		Issues:       issues,
	}
}

// recommendations turns the defense report into actionable, slot-targeted
// suggestions, highest impact first.
func recommendations(report DefenseReport) []Recommendation {
	var recs []Recommendation

	if report.Quality != QualityGood {
		recs = append(recs, Recommendation{
			Priority: "high",
			Category: "defense",
			Title:    "Increase effective HP",
			Description: fmt.Sprintf(
				"Effective HP (%.0f) is below recommended. Upgrade armour pieces with higher life or energy shield rolls.",
				report.EffectiveHP),
			SuggestedSlots: []string{"Body Armour", "Helmet", "Gloves", "Boots"},
		})
	}

	for _, dt := range []stats.DamageType{stats.Fire, stats.Cold, stats.Lightning} {
		res := report.Resistances[dt]
		if res < resistanceTarget {
			recs = append(recs, Recommendation{
				Priority: "high",
				Category: "defense",
				Title:    fmt.Sprintf("Raise %s resistance", dt),
				Description: fmt.Sprintf(
					"Currently at %.0f%%, target %.0f%%. Prioritize gear with resistance mods.",
					res, resistanceTarget),
				SuggestedSlots: []string{"Ring", "Amulet", "Boots", "Gloves", "Belt"},
			})
		}
	}

	return recs
}
