package types

// TraitCoefficients maps (trait, emotion) to a signed coefficient that
// scales how strongly a trait pushes or dampens an emotion during a
// transition step. A positive coefficient amplifies the emotion for
// above-average trait values; a negative one suppresses it.
//
// The table is configuration data: the transition engine takes it as an
// input and DefaultTraitCoefficients supplies the documented baseline.
type TraitCoefficients map[string]map[string]float64

// Coefficient returns the coefficient for (trait, emotion), 0 if absent.
func (tc TraitCoefficients) Coefficient(trait, emotion string) float64 {
	return tc[trait][emotion]
}

// DefaultTraitCoefficients returns the baseline trait-to-emotion
// coefficient table. The returned map is a fresh copy; callers may
// customize it without affecting the defaults.
func DefaultTraitCoefficients() TraitCoefficients {
	src := defaultTraitCoefficients
	out := make(TraitCoefficients, len(src))
	for trait, row := range src {
		cp := make(map[string]float64, len(row))
		for emotion, c := range row {
			cp[emotion] = c
		}
		out[trait] = cp
	}
	return out
}

var defaultTraitCoefficients = TraitCoefficients{
	TraitWarmth: {
		"loving": 0.4, "trusting": 0.3, "nurturing": 0.3, "intimate": 0.3,
		"hostile": -0.5, "critical": -0.3, "lonely": -0.2, "hateful": -0.4,
	},
	TraitReasoning: {
		"confused": -0.3, "creative": 0.2, "thoughtful": 0.3, "helpless": -0.2,
	},
	TraitEmotionalStability: {
		"anxious": -0.5, "depressed": -0.4, "angry": -0.3, "content": 0.4,
		"satisfied": 0.3, "helpless": -0.3, "guilty": -0.2, "ashamed": -0.2,
	},
	TraitDominance: {
		"proud": 0.3, "important": 0.3, "respected": 0.3, "submissive": -0.5,
		"helpless": -0.3, "insecure": -0.3, "hostile": 0.2, "critical": 0.2,
	},
	TraitHumility: {
		"proud": -0.3, "important": -0.2, "appreciated": 0.2, "content": 0.2,
		"selfish": -0.4,
	},
	TraitLiveliness: {
		"excited": 0.4, "cheerful": 0.4, "energetic": 0.4, "hopeful": 0.3,
		"bored": -0.4, "apathetic": -0.4, "depressed": -0.3,
	},
	TraitRuleConsciousness: {
		"guilty": 0.3, "ashamed": 0.2, "satisfied": 0.2, "faithful": 0.3,
		"selfish": -0.3,
	},
	TraitSocialBoldness: {
		"rejected": -0.4, "insecure": -0.4, "submissive": -0.3, "excited": 0.2,
		"energetic": 0.2, "respected": 0.2, "lonely": -0.2,
	},
	TraitSensitivity: {
		"loving": 0.3, "hurt": 0.3, "intimate": 0.3, "sensual": 0.3,
		"lonely": 0.2, "depressed": 0.2, "creative": 0.2,
	},
	TraitVigilance: {
		"trusting": -0.5, "anxious": 0.3, "hostile": 0.2, "critical": 0.3,
		"insecure": 0.2,
	},
	TraitAbstractedness: {
		"creative": 0.4, "thoughtful": 0.3, "confused": 0.2, "bored": -0.2,
	},
	TraitPrivateness: {
		"intimate": -0.3, "trusting": -0.2, "insecure": 0.2, "lonely": 0.2,
	},
	TraitApprehension: {
		"anxious": 0.4, "guilty": 0.3, "ashamed": 0.3, "insecure": 0.4,
		"helpless": 0.3, "content": -0.3, "satisfied": -0.3, "proud": -0.3,
	},
	TraitOpennessToChange: {
		"excited": 0.3, "creative": 0.3, "hopeful": 0.2, "anxious": 0.1,
		"bored": -0.3, "content": -0.1,
	},
	TraitSelfReliance: {
		"lonely": 0.2, "rejected": -0.2, "important": 0.2, "trusting": -0.2,
		"intimate": -0.2,
	},
	TraitPerfectionism: {
		"satisfied": 0.2, "guilty": 0.2, "angry": 0.3, "critical": 0.3,
		"anxious": 0.2,
	},
	TraitTension: {
		"anxious": 0.4, "angry": 0.4, "hostile": 0.3, "content": -0.4,
		"energetic": 0.2,
	},
}
