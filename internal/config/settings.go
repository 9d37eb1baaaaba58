package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/personaut/personaut/internal/engine"
	"github.com/personaut/personaut/pkg/types"
)

// Settings is the YAML settings document: structured tuning data too
// awkward for environment variables. Every section is optional; absent
// sections keep their built-in defaults.
//
//	volatility: 0.3
//	stranger_trust: 0.25
//	transitions:
//	  joy:
//	    joy: 0.6
//	    peaceful: 0.4
//	coefficients:
//	  warmth:
//	    loving: 0.5
type Settings struct {
	// Volatility overrides the transition step magnitude when set.
	Volatility *float64 `yaml:"volatility"`

	// StrangerTrust overrides the default trust between unconnected
	// personas when set.
	StrangerTrust *float64 `yaml:"stranger_trust"`

	// Transitions overrides rows of the category transition table.
	// Rows are keyed by category name; omitted rows keep the default.
	Transitions map[string]map[string]float64 `yaml:"transitions"`

	// Coefficients overrides individual trait-to-emotion coefficients.
	Coefficients map[string]map[string]float64 `yaml:"coefficients"`
}

// LoadSettings reads and validates a YAML settings document.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read settings %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("config: failed to parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid settings %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks ranges and taxonomy membership so a bad document is
// rejected whole rather than half-applied.
func (s *Settings) Validate() error {
	if s.Volatility != nil && (*s.Volatility < 0 || *s.Volatility > 1) {
		return fmt.Errorf("%w: volatility=%v", types.ErrOutOfRange, *s.Volatility)
	}
	if s.StrangerTrust != nil && (*s.StrangerTrust < 0 || *s.StrangerTrust > 1) {
		return fmt.Errorf("%w: stranger_trust=%v", types.ErrOutOfRange, *s.StrangerTrust)
	}

	for from, row := range s.Transitions {
		if _, err := types.ParseCategory(from); err != nil {
			return err
		}
		total := 0.0
		for to, weight := range row {
			if _, err := types.ParseCategory(to); err != nil {
				return err
			}
			if weight < 0 {
				return fmt.Errorf("%w: transition %s->%s weight %v", types.ErrOutOfRange, from, to, weight)
			}
			total += weight
		}
		if total <= 0 {
			return fmt.Errorf("%w: transition row %s has no weight", types.ErrConfiguration, from)
		}
	}

	for trait, row := range s.Coefficients {
		if !types.IsTrait(trait) {
			return fmt.Errorf("%w: %s", types.ErrUnknownTrait, trait)
		}
		for emotion := range row {
			if !types.IsEmotion(emotion) {
				return fmt.Errorf("%w: %s", types.ErrUnknownEmotion, emotion)
			}
		}
	}
	return nil
}

// TransitionTable merges the overridden rows onto the default table.
func (s *Settings) TransitionTable() engine.TransitionTable {
	table := engine.DefaultTransitions()
	for from, row := range s.Transitions {
		category, err := types.ParseCategory(from)
		if err != nil {
			continue // Validate already rejected unknown names
		}
		merged := make(map[types.Category]float64, len(row))
		for to, weight := range row {
			toCategory, err := types.ParseCategory(to)
			if err != nil {
				continue
			}
			merged[toCategory] = weight
		}
		table[category] = merged
	}
	return table
}

// TraitCoefficients merges the overridden entries onto the default
// coefficient table.
func (s *Settings) TraitCoefficients() types.TraitCoefficients {
	coeffs := types.DefaultTraitCoefficients()
	for trait, row := range s.Coefficients {
		if coeffs[trait] == nil {
			coeffs[trait] = make(map[string]float64, len(row))
		}
		for emotion, value := range row {
			coeffs[trait][emotion] = value
		}
	}
	return coeffs
}
