package types

import (
	"fmt"
	"math"
	"sort"
)

// TraitValue pairs a trait name with its intensity.
type TraitValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TraitProfile is an intensity vector over a tracked subset of the 17
// canonical personality traits. Values live on [0,1] with 0.5 as the
// population average. Like EmotionalState, a profile has a single logical
// owner and is not safe for concurrent mutation.
type TraitProfile struct {
	traits  map[string]float64
	tracked []string // sorted, fixed at construction
}

// NewTraitProfile creates a profile tracking the given traits at baseline.
// A nil or empty tracked set tracks all 17 canonical traits. Baseline
// defaults to the population average when callers pass
// DefaultTraitIntensity.
func NewTraitProfile(tracked []string, baseline float64) (*TraitProfile, error) {
	if baseline < 0 || baseline > 1 {
		return nil, fmt.Errorf("%w: baseline %v", ErrOutOfRange, baseline)
	}
	if len(tracked) == 0 {
		tracked = AllTraits
	}

	p := &TraitProfile{traits: make(map[string]float64, len(tracked))}
	for _, name := range tracked {
		if !IsTrait(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTrait, name)
		}
		if _, dup := p.traits[name]; dup {
			continue
		}
		p.traits[name] = baseline
		p.tracked = append(p.tracked, name)
	}
	sort.Strings(p.tracked)
	return p, nil
}

// NewTraitProfileFromMap builds a profile tracking exactly the traits in
// values, at the given intensities. Round-trips with ToMap.
func NewTraitProfileFromMap(values map[string]float64) (*TraitProfile, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	p, err := NewTraitProfile(names, DefaultTraitIntensity)
	if err != nil {
		return nil, err
	}
	if err := p.SetTraits(values); err != nil {
		return nil, err
	}
	return p, nil
}

// Tracked returns the tracked trait names in sorted order. The slice is
// shared; callers must not modify it.
func (p *TraitProfile) Tracked() []string { return p.tracked }

// Has reports whether the profile tracks the given trait.
func (p *TraitProfile) Has(trait string) bool {
	_, ok := p.traits[trait]
	return ok
}

// Get returns the current intensity of a tracked trait.
func (p *TraitProfile) Get(trait string) (float64, error) {
	v, ok := p.traits[trait]
	if !ok {
		return 0, fmt.Errorf("%w: %q not tracked", ErrUnknownTrait, trait)
	}
	return v, nil
}

// SetTrait sets a single trait to an absolute value.
func (p *TraitProfile) SetTrait(trait string, value float64) error {
	if _, ok := p.traits[trait]; !ok {
		return fmt.Errorf("%w: %q not tracked", ErrUnknownTrait, trait)
	}
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: %s=%v", ErrOutOfRange, trait, value)
	}
	p.traits[trait] = value
	return nil
}

// SetTraits sets multiple traits at once, validating every name and value
// before mutating anything.
func (p *TraitProfile) SetTraits(values map[string]float64) error {
	for trait, value := range values {
		if _, ok := p.traits[trait]; !ok {
			return fmt.Errorf("%w: %q not tracked", ErrUnknownTrait, trait)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("%w: %s=%v", ErrOutOfRange, trait, value)
		}
	}
	for trait, value := range values {
		p.traits[trait] = value
	}
	return nil
}

// ToMap returns a copy of the trait intensities as a flat mapping.
func (p *TraitProfile) ToMap() map[string]float64 {
	out := make(map[string]float64, len(p.traits))
	for trait, value := range p.traits {
		out[trait] = value
	}
	return out
}

// Copy returns an independent deep copy.
func (p *TraitProfile) Copy() *TraitProfile {
	cp := &TraitProfile{
		traits:  make(map[string]float64, len(p.traits)),
		tracked: make([]string, len(p.tracked)),
	}
	for trait, value := range p.traits {
		cp.traits[trait] = value
	}
	copy(cp.tracked, p.tracked)
	return cp
}

// HighTraits returns traits at or above threshold, sorted by value
// descending then name ascending.
func (p *TraitProfile) HighTraits(threshold float64) []TraitValue {
	var high []TraitValue
	for _, trait := range p.tracked {
		if v := p.traits[trait]; v >= threshold {
			high = append(high, TraitValue{Name: trait, Value: v})
		}
	}
	sort.SliceStable(high, func(i, j int) bool {
		if high[i].Value != high[j].Value {
			return high[i].Value > high[j].Value
		}
		return high[i].Name < high[j].Name
	})
	return high
}

// LowTraits returns traits at or below threshold, sorted by value
// ascending then name ascending.
func (p *TraitProfile) LowTraits(threshold float64) []TraitValue {
	var low []TraitValue
	for _, trait := range p.tracked {
		if v := p.traits[trait]; v <= threshold {
			low = append(low, TraitValue{Name: trait, Value: v})
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		if low[i].Value != low[j].Value {
			return low[i].Value < low[j].Value
		}
		return low[i].Name < low[j].Name
	})
	return low
}

// ExtremeTraits returns both tails of the profile: traits at or above
// highThreshold and at or below lowThreshold.
func (p *TraitProfile) ExtremeTraits(lowThreshold, highThreshold float64) (high, low []TraitValue) {
	return p.HighTraits(highThreshold), p.LowTraits(lowThreshold)
}

// DeviationFromAverage returns the mean absolute deviation from the 0.5
// population average across tracked traits.
func (p *TraitProfile) DeviationFromAverage() float64 {
	if len(p.traits) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range p.traits {
		total += math.Abs(v - DefaultTraitIntensity)
	}
	return total / float64(len(p.traits))
}

// SimilarTo reports whether the mean difference over traits both profiles
// track is at most threshold. Profiles with no traits in common are never
// similar.
func (p *TraitProfile) SimilarTo(other *TraitProfile, threshold float64) bool {
	total, n := 0.0, 0
	for trait, v := range p.traits {
		ov, ok := other.traits[trait]
		if !ok {
			continue
		}
		total += math.Abs(v - ov)
		n++
	}
	if n == 0 {
		return false
	}
	return total/float64(n) <= threshold
}

// Blend returns a new profile over the intersection of tracked traits,
// with each value interpolated toward other by weight (0 keeps this
// profile, 1 takes the other).
func (p *TraitProfile) Blend(other *TraitProfile, weight float64) (*TraitProfile, error) {
	if weight < 0 || weight > 1 {
		return nil, fmt.Errorf("%w: weight=%v", ErrOutOfRange, weight)
	}
	blended := &TraitProfile{traits: make(map[string]float64)}
	for trait, v := range p.traits {
		ov, ok := other.traits[trait]
		if !ok {
			continue
		}
		blended.traits[trait] = (1-weight)*v + weight*ov
		blended.tracked = append(blended.tracked, trait)
	}
	sort.Strings(blended.tracked)
	return blended, nil
}
