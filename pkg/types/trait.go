package types

import "fmt"

// Canonical personality trait names (16PF primary factors plus humility).
// Trait intensities live on [0,1] with 0.5 as the population average.
const (
	TraitWarmth             = "warmth"
	TraitReasoning          = "reasoning"
	TraitEmotionalStability = "emotional_stability"
	TraitDominance          = "dominance"
	TraitHumility           = "humility"
	TraitLiveliness         = "liveliness"
	TraitRuleConsciousness  = "rule_consciousness"
	TraitSocialBoldness     = "social_boldness"
	TraitSensitivity        = "sensitivity"
	TraitVigilance          = "vigilance"
	TraitAbstractedness     = "abstractedness"
	TraitPrivateness        = "privateness"
	TraitApprehension       = "apprehension"
	TraitOpennessToChange   = "openness_to_change"
	TraitSelfReliance       = "self_reliance"
	TraitPerfectionism      = "perfectionism"
	TraitTension            = "tension"
)

// DefaultTraitIntensity is the population-average baseline for every trait.
const DefaultTraitIntensity = 0.5

// AllTraits lists the 17 canonical traits in canonical order.
var AllTraits = []string{
	TraitWarmth,
	TraitReasoning,
	TraitEmotionalStability,
	TraitDominance,
	TraitHumility,
	TraitLiveliness,
	TraitRuleConsciousness,
	TraitSocialBoldness,
	TraitSensitivity,
	TraitVigilance,
	TraitAbstractedness,
	TraitPrivateness,
	TraitApprehension,
	TraitOpennessToChange,
	TraitSelfReliance,
	TraitPerfectionism,
	TraitTension,
}

var traitSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllTraits))
	for _, t := range AllTraits {
		m[t] = struct{}{}
	}
	return m
}()

// IsTrait reports whether name is one of the 17 canonical traits.
func IsTrait(name string) bool {
	_, ok := traitSet[name]
	return ok
}

// ValidateTrait returns ErrUnknownTrait if name is outside the taxonomy.
func ValidateTrait(name string) error {
	if !IsTrait(name) {
		return fmt.Errorf("%w: %q", ErrUnknownTrait, name)
	}
	return nil
}
