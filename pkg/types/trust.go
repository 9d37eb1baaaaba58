package types

import "math"

// DefaultStrangerTrust is the trust assumed between two personas with no
// direct relationship edge.
const DefaultStrangerTrust = 0.3

// TrustLevel is a coarse band over the numeric [0,1] trust scale. Bands
// drive disclosure behavior: whether private memories are shared, how
// emotionally open a persona is, and whether it responds to requests.
type TrustLevel string

const (
	TrustNone     TrustLevel = "none"
	TrustMinimal  TrustLevel = "minimal"
	TrustLow      TrustLevel = "low"
	TrustModerate TrustLevel = "moderate"
	TrustHigh     TrustLevel = "high"
	TrustComplete TrustLevel = "complete"
)

// TrustBehavior describes how a persona at a given trust level interacts.
type TrustBehavior struct {
	SharesPrivateMemories bool    `json:"shares_private_memories"`
	EmotionalOpenness     float64 `json:"emotional_openness"`
	RespondsToRequests    bool    `json:"responds_to_requests"`
	DisclosureModifier    float64 `json:"disclosure_modifier"`
}

type trustBand struct {
	level       TrustLevel
	lo, hi      float64 // [lo, hi)
	description string
	behavior    TrustBehavior
}

var trustBands = []trustBand{
	{TrustNone, 0.0, 0.1, "No trust - actively suspicious or hostile",
		TrustBehavior{SharesPrivateMemories: false, EmotionalOpenness: 0.1, RespondsToRequests: false, DisclosureModifier: -0.5}},
	{TrustMinimal, 0.1, 0.25, "Minimal trust - cautious acquaintance",
		TrustBehavior{SharesPrivateMemories: false, EmotionalOpenness: 0.2, RespondsToRequests: false, DisclosureModifier: -0.3}},
	{TrustLow, 0.25, 0.4, "Low trust - guarded interactions, withholds information",
		TrustBehavior{SharesPrivateMemories: false, EmotionalOpenness: 0.4, RespondsToRequests: true, DisclosureModifier: -0.1}},
	{TrustModerate, 0.4, 0.6, "Moderate trust - open communication, some reservations",
		TrustBehavior{SharesPrivateMemories: false, EmotionalOpenness: 0.6, RespondsToRequests: true, DisclosureModifier: 0.0}},
	{TrustHigh, 0.6, 0.8, "High trust - shares personal information, relies on other",
		TrustBehavior{SharesPrivateMemories: true, EmotionalOpenness: 0.8, RespondsToRequests: true, DisclosureModifier: 0.2}},
	{TrustComplete, 0.8, 1.0, "Complete trust - shares everything, deep bond",
		TrustBehavior{SharesPrivateMemories: true, EmotionalOpenness: 1.0, RespondsToRequests: true, DisclosureModifier: 0.4}},
}

// TrustLevelFor maps a numeric trust value to its band. Values at or above
// 1.0 map to complete; values below 0 to none.
func TrustLevelFor(value float64) TrustLevel {
	if value >= 1.0 {
		return TrustComplete
	}
	for _, band := range trustBands {
		if value >= band.lo && value < band.hi {
			return band.level
		}
	}
	return TrustNone
}

// Description returns the human-readable summary of the band.
func (l TrustLevel) Description() string {
	for _, band := range trustBands {
		if band.level == l {
			return band.description
		}
	}
	return ""
}

// Behavior returns the disclosure behavior associated with the band.
func (l TrustLevel) Behavior() TrustBehavior {
	for _, band := range trustBands {
		if band.level == l {
			return band.behavior
		}
	}
	return TrustBehavior{}
}

// ClampTrust bounds a trust value to [0,1].
func ClampTrust(value float64) float64 {
	return math.Max(0, math.Min(1, value))
}
