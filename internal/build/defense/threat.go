// Package defense implements the effective-health engine: it converts a
// character's mitigation stats plus an assumed attack profile into one
// comparable effective-health number per damage type.
package defense

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dochoss/poe2-mcp/internal/build/stats"
)

// Threat describes the assumed incoming hits of a single damage type.
type Threat struct {
	// HitSize is the representative raw hit, pre-mitigation. Armour's value
	// depends on it, resistance does not.
	HitSize float64
	// Evadable marks hits subject to the accuracy-vs-evasion check.
	Evadable bool
	// Blockable marks hits that block chance applies to.
	Blockable bool
	// Unavoidable forces avoidance to zero regardless of the flags above
	// (ground effects, unavoidable slams).
	Unavoidable bool
	// Weight is only consumed by WeightedEHP when collapsing the per-type
	// mapping to a single scalar.
	Weight float64
}

// ThreatProfile maps each relevant damage type to its assumed threat.
// The engine produces exactly one EHP entry per key.
type ThreatProfile map[stats.DamageType]Threat

// defaultHitSize is the flat moderate hit assumed when the caller supplies no
// threat profile.
const defaultHitSize = 1000

// DefaultThreatProfile returns the fallback profile: a flat moderate hit for
// all five damage types, all evadable and blockable, equally weighted.
//
// Postcondition: Returns a fresh profile with exactly 5 entries.
func DefaultThreatProfile() ThreatProfile {
	p := make(ThreatProfile, 5)
	for _, t := range stats.AllDamageTypes() {
		p[t] = Threat{HitSize: defaultHitSize, Evadable: true, Blockable: true, Weight: 1}
	}
	return p
}

// ThreatDef is a named threat profile loaded from YAML content.
type ThreatDef struct {
	ID          string                 `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Threats     map[string]ThreatEntry `yaml:"threats"`
}

// ThreatEntry is the YAML form of a single damage type's threat.
type ThreatEntry struct {
	HitSize     float64 `yaml:"hit_size"`
	Evadable    bool    `yaml:"evadable"`
	Blockable   bool    `yaml:"blockable"`
	Unavoidable bool    `yaml:"unavoidable"`
	Weight      float64 `yaml:"weight"`
}

// Validate reports an error if the ThreatDef is missing required fields or
// contains illegal values.
//
// Postcondition: Returns nil iff the def is well-formed.
func (d *ThreatDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if len(d.Threats) == 0 {
		errs = append(errs, errors.New("threats must not be empty"))
	}
	for label, entry := range d.Threats {
		if _, ok := stats.ParseDamageType(label); !ok {
			errs = append(errs, fmt.Errorf("threat key %q is not a valid damage type", label))
		}
		if entry.HitSize <= 0 {
			errs = append(errs, fmt.Errorf("threat %q: hit_size must be > 0", label))
		}
		if entry.Weight < 0 {
			errs = append(errs, fmt.Errorf("threat %q: weight must be >= 0", label))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("threat profile validation failed: %v", errs)
	}
	return nil
}

// Profile converts the def into an engine-consumable ThreatProfile.
//
// Precondition: d passes Validate.
func (d *ThreatDef) Profile() ThreatProfile {
	p := make(ThreatProfile, len(d.Threats))
	for label, entry := range d.Threats {
		t, ok := stats.ParseDamageType(label)
		if !ok {
			continue
		}
		p[t] = Threat{
			HitSize:     entry.HitSize,
			Evadable:    entry.Evadable,
			Blockable:   entry.Blockable,
			Unavoidable: entry.Unavoidable,
			Weight:      entry.Weight,
		}
	}
	return p
}

// LoadThreatDefs reads all .yaml files in dir and returns parsed ThreatDefs.
//
// Precondition: dir must be a readable directory.
// Postcondition: All returned defs pass Validate.
func LoadThreatDefs(dir string) ([]*ThreatDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadThreatDefs: cannot read directory %q: %w", dir, err)
	}

	var defs []*ThreatDef
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadThreatDefs: cannot read file %q: %w", path, err)
		}
		var d ThreatDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadThreatDefs: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadThreatDefs: invalid threat profile in %q: %w", path, err)
		}
		defs = append(defs, &d)
	}
	return defs, nil
}
