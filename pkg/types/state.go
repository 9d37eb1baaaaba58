package types

import (
	"fmt"
	"math"
	"sort"
)

// EmotionValue pairs an emotion name with its intensity, used for ranked
// query results.
type EmotionValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// EmotionalState is a mutable intensity vector over a tracked subset of the
// canonical emotions. Intensities always stay in [0,1]. Each state also
// carries a mood baseline per emotion: the resting point intensities decay
// toward over time. A state has a single logical owner; it is not safe for
// concurrent mutation.
type EmotionalState struct {
	emotions map[string]float64
	baseline map[string]float64
	tracked  []string // sorted, fixed at construction
}

// NewEmotionalState creates a state tracking the given emotions, all
// initialized to baseline. A nil or empty tracked set tracks the full
// 36-emotion taxonomy. Fails with ErrUnknownEmotion for names outside the
// taxonomy and ErrOutOfRange for a baseline outside [0,1].
func NewEmotionalState(tracked []string, baseline float64) (*EmotionalState, error) {
	if baseline < 0 || baseline > 1 {
		return nil, fmt.Errorf("%w: baseline %v", ErrOutOfRange, baseline)
	}
	if len(tracked) == 0 {
		tracked = AllEmotions()
	}

	s := &EmotionalState{
		emotions: make(map[string]float64, len(tracked)),
		baseline: make(map[string]float64, len(tracked)),
	}
	for _, name := range tracked {
		if !IsEmotion(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEmotion, name)
		}
		if _, dup := s.emotions[name]; dup {
			continue
		}
		s.emotions[name] = baseline
		s.baseline[name] = baseline
		s.tracked = append(s.tracked, name)
	}
	sort.Strings(s.tracked)
	return s, nil
}

// NewEmotionalStateFromMap builds a state tracking exactly the emotions in
// values, at the given intensities. Round-trips with ToMap.
func NewEmotionalStateFromMap(values map[string]float64) (*EmotionalState, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	s, err := NewEmotionalState(names, 0)
	if err != nil {
		return nil, err
	}
	if err := s.ChangeState(values, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// NeutralState returns a state tracking the full taxonomy at zero intensity.
func NeutralState() *EmotionalState {
	s, _ := NewEmotionalState(nil, 0)
	return s
}

// Tracked returns the tracked emotion names in sorted order. The slice is
// shared; callers must not modify it.
func (s *EmotionalState) Tracked() []string { return s.tracked }

// Has reports whether the state tracks the given emotion.
func (s *EmotionalState) Has(emotion string) bool {
	_, ok := s.emotions[emotion]
	return ok
}

// Get returns the current intensity of a tracked emotion.
func (s *EmotionalState) Get(emotion string) (float64, error) {
	v, ok := s.emotions[emotion]
	if !ok {
		return 0, fmt.Errorf("%w: %q not tracked", ErrUnknownEmotion, emotion)
	}
	return v, nil
}

// ChangeEmotion sets a single emotion to an absolute value.
func (s *EmotionalState) ChangeEmotion(emotion string, value float64) error {
	if _, ok := s.emotions[emotion]; !ok {
		return fmt.Errorf("%w: %q not tracked", ErrUnknownEmotion, emotion)
	}
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: %s=%v", ErrOutOfRange, emotion, value)
	}
	s.emotions[emotion] = value
	return nil
}

// ChangeState sets multiple emotions at once. All names and values are
// validated before any mutation, so a failed call leaves the state
// untouched. If fill is non-nil, every tracked emotion absent from updates
// is set to *fill.
func (s *EmotionalState) ChangeState(updates map[string]float64, fill *float64) error {
	if fill != nil && (*fill < 0 || *fill > 1) {
		return fmt.Errorf("%w: fill=%v", ErrOutOfRange, *fill)
	}
	for emotion, value := range updates {
		if _, ok := s.emotions[emotion]; !ok {
			return fmt.Errorf("%w: %q not tracked", ErrUnknownEmotion, emotion)
		}
		if value < 0 || value > 1 {
			return fmt.Errorf("%w: %s=%v", ErrOutOfRange, emotion, value)
		}
	}

	if fill != nil {
		for emotion := range s.emotions {
			s.emotions[emotion] = *fill
		}
	}
	for emotion, value := range updates {
		s.emotions[emotion] = value
	}
	return nil
}

// Reset sets every tracked emotion to value.
func (s *EmotionalState) Reset(value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: reset=%v", ErrOutOfRange, value)
	}
	for emotion := range s.emotions {
		s.emotions[emotion] = value
	}
	return nil
}

// ToMap returns a copy of the emotion intensities as a flat mapping.
func (s *EmotionalState) ToMap() map[string]float64 {
	out := make(map[string]float64, len(s.emotions))
	for emotion, value := range s.emotions {
		out[emotion] = value
	}
	return out
}

// Copy returns a fully independent deep copy, mood baseline included.
func (s *EmotionalState) Copy() *EmotionalState {
	cp := &EmotionalState{
		emotions: make(map[string]float64, len(s.emotions)),
		baseline: make(map[string]float64, len(s.baseline)),
		tracked:  make([]string, len(s.tracked)),
	}
	for emotion, value := range s.emotions {
		cp.emotions[emotion] = value
	}
	for emotion, value := range s.baseline {
		cp.baseline[emotion] = value
	}
	copy(cp.tracked, s.tracked)
	return cp
}

// Dominant returns the highest-intensity emotion and its value. Ties break
// by emotion name ascending. An untracked (empty) state returns ("", 0).
func (s *EmotionalState) Dominant() (string, float64) {
	best, bestValue := "", math.Inf(-1)
	for _, emotion := range s.tracked {
		v := s.emotions[emotion]
		if v > bestValue || (v == bestValue && emotion < best) {
			best, bestValue = emotion, v
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestValue
}

// DominantCategory returns the category of the dominant emotion, defaulting
// to peaceful when no dominant emotion is determinable.
func (s *EmotionalState) DominantCategory() Category {
	emotion, _ := s.Dominant()
	if emotion == "" {
		return CategoryPeaceful
	}
	cat, err := EmotionCategory(emotion)
	if err != nil {
		return CategoryPeaceful
	}
	return cat
}

// Top returns the n highest-intensity emotions, sorted by value descending
// then name ascending.
func (s *EmotionalState) Top(n int) []EmotionValue {
	ranked := make([]EmotionValue, 0, len(s.tracked))
	for _, emotion := range s.tracked {
		ranked = append(ranked, EmotionValue{Name: emotion, Value: s.emotions[emotion]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// CategoryValues returns the tracked emotions of a category with their
// current intensities.
func (s *EmotionalState) CategoryValues(c Category) map[string]float64 {
	out := make(map[string]float64)
	for _, emotion := range categoryEmotions[c] {
		if v, ok := s.emotions[emotion]; ok {
			out[emotion] = v
		}
	}
	return out
}

// CategoryAverage returns the mean intensity of tracked emotions in a
// category, or 0 when none of the category's emotions are tracked.
func (s *EmotionalState) CategoryAverage(c Category) float64 {
	values := s.CategoryValues(c)
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// AnyAbove reports whether any tracked emotion exceeds the threshold.
func (s *EmotionalState) AnyAbove(threshold float64) bool {
	for _, v := range s.emotions {
		if v > threshold {
			return true
		}
	}
	return false
}

// AnyAboveInCategory reports whether any tracked emotion of the category
// exceeds the threshold.
func (s *EmotionalState) AnyAboveInCategory(threshold float64, c Category) bool {
	for _, v := range s.CategoryValues(c) {
		if v > threshold {
			return true
		}
	}
	return false
}

// Valence returns the overall pleasantness in [-1,1]: each emotion's
// category valence weighted by its intensity, normalized by total
// intensity. An all-zero state has valence 0.
func (s *EmotionalState) Valence() float64 {
	weighted, total := 0.0, 0.0
	for emotion, value := range s.emotions {
		if value <= 0 {
			continue
		}
		cat := emotionCategory[emotion]
		weighted += cat.Valence() * value
		total += value
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Arousal returns the overall activation in [0,1], weighted the same way
// as Valence.
func (s *EmotionalState) Arousal() float64 {
	weighted, total := 0.0, 0.0
	for emotion, value := range s.emotions {
		if value <= 0 {
			continue
		}
		cat := emotionCategory[emotion]
		weighted += cat.Arousal() * value
		total += value
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

const (
	// DefaultDecayRate is the fraction of the gap to baseline closed per turn.
	DefaultDecayRate = 0.15

	// restingNeutral is the slightly positive intensity mood baselines
	// drift toward over long spans.
	restingNeutral = 0.1

	// moodDriftBase gives roughly 3% baseline drift per turn.
	moodDriftBase = 0.97
)

// Decay moves every emotion toward its mood baseline by a compound
// per-turn rate, then drifts the baseline itself slowly toward a mildly
// positive resting point. Values within 0.01 of baseline snap exactly.
func (s *EmotionalState) Decay(turnsElapsed int, rate float64) {
	if turnsElapsed <= 0 {
		return
	}
	effective := 1.0 - math.Pow(1.0-math.Min(rate, 0.99), float64(turnsElapsed))

	for emotion, current := range s.emotions {
		base := s.baseline[emotion]
		if math.Abs(current-base) < 0.01 {
			s.emotions[emotion] = base
			continue
		}
		s.emotions[emotion] = clamp01(current + (base-current)*effective)
	}

	drift := 1.0 - math.Pow(moodDriftBase, float64(turnsElapsed))
	for emotion, base := range s.baseline {
		if math.Abs(base-restingNeutral) > 0.01 {
			s.baseline[emotion] = base + (restingNeutral-base)*drift
		}
	}
}

// ApplyDeltas shifts emotions relative to their current values, scaled by
// intensityScale and clamped to [0,1]. Names the state does not track are
// silently skipped, so a caller can broadcast one delta set to states with
// different tracked subsets.
func (s *EmotionalState) ApplyDeltas(deltas map[string]float64, intensityScale float64) {
	for emotion, delta := range deltas {
		current, ok := s.emotions[emotion]
		if !ok {
			continue
		}
		s.emotions[emotion] = clamp01(current + delta*intensityScale)
	}
}

// ApplyTraitModulated applies raw target values as deltas whose magnitude
// is modulated by the persona's traits: emotional stability dampens
// reactivity, sensitivity amplifies it, apprehension amplifies negative
// emotions and tension speeds anger escalation. Per-emotion coefficients
// come from coeffs (DefaultTraitCoefficients when nil). With nil traits the
// targets are applied as absolute values.
func (s *EmotionalState) ApplyTraitModulated(updates map[string]float64, traits map[string]float64, coeffs TraitCoefficients) {
	if len(traits) == 0 {
		for emotion, target := range updates {
			if _, ok := s.emotions[emotion]; ok {
				s.emotions[emotion] = clamp01(target)
			}
		}
		return
	}
	if coeffs == nil {
		coeffs = defaultTraitCoefficients
	}

	traitOr := func(name string) float64 {
		if v, ok := traits[name]; ok {
			return v
		}
		return DefaultTraitIntensity
	}
	stability := traitOr(TraitEmotionalStability)
	sensitivity := traitOr(TraitSensitivity)
	apprehension := traitOr(TraitApprehension)
	tension := traitOr(TraitTension)

	baseReactivity := 1.0 + (sensitivity-0.5)*0.6 - (stability-0.5)*0.8
	baseReactivity = math.Max(0.3, math.Min(2.0, baseReactivity))

	for emotion, target := range updates {
		current, ok := s.emotions[emotion]
		if !ok {
			continue
		}
		rawDelta := target - current

		traitModifier := 0.0
		for traitName, traitValue := range traits {
			if c := coeffs.Coefficient(traitName, emotion); c != 0 {
				traitModifier += (traitValue - 0.5) * c
			}
		}
		reactivity := baseReactivity + traitModifier

		if cat, ok := emotionCategory[emotion]; ok {
			if cat.Valence() < 0 && apprehension > 0.6 {
				reactivity *= 1.0 + (apprehension-0.6)*0.5
			}
			if cat == CategoryAnger && tension > 0.6 {
				reactivity *= 1.0 + (tension-0.6)*0.4
			}
		}
		reactivity = math.Max(0.2, math.Min(2.5, reactivity))

		s.emotions[emotion] = clamp01(current + rawDelta*reactivity)
	}
}

// antagonisticPairs lists emotions that psychologically contradict each
// other; when both are elevated the stronger pole suppresses the weaker.
var antagonisticPairs = [][2]string{
	{"cheerful", "depressed"},
	{"hopeful", "helpless"},
	{"excited", "apathetic"},
	{"energetic", "bored"},
	{"proud", "ashamed"},
	{"respected", "rejected"},
	{"important", "insecure"},
	{"satisfied", "guilty"},
	{"content", "angry"},
	{"loving", "hateful"},
	{"trusting", "hostile"},
	{"nurturing", "critical"},
	{"creative", "confused"},
	{"faithful", "selfish"},
}

// ApplyAntagonism suppresses the weaker side of each antagonistic pair
// when both sides are elevated above 0.1. The weaker emotion loses up to
// strength times the stronger one's value.
func (s *EmotionalState) ApplyAntagonism(strength float64) {
	for _, pair := range antagonisticPairs {
		v1, ok1 := s.emotions[pair[0]]
		v2, ok2 := s.emotions[pair[1]]
		if !ok1 || !ok2 {
			continue
		}
		if v1 <= 0.1 || v2 <= 0.1 {
			continue
		}
		if v1 >= v2 {
			s.emotions[pair[1]] = math.Max(0, v2-math.Min(v2, strength*v1))
		} else {
			s.emotions[pair[0]] = math.Max(0, v1-math.Min(v1, strength*v2))
		}
	}
}

// UpdateMoodBaseline shifts each emotion's baseline toward its current
// intensity. Prolonged states become the new normal.
func (s *EmotionalState) UpdateMoodBaseline(learningRate float64) {
	for emotion, current := range s.emotions {
		base := s.baseline[emotion]
		s.baseline[emotion] = base + (current-base)*learningRate
	}
}

// MoodBaseline returns the resting point for an emotion, 0 if untracked.
func (s *EmotionalState) MoodBaseline(emotion string) float64 {
	return s.baseline[emotion]
}

// MoodVolatility returns the mean absolute deviation of current
// intensities from their baselines. High values mean the persona is far
// from its resting state.
func (s *EmotionalState) MoodVolatility() float64 {
	if len(s.emotions) == 0 {
		return 0
	}
	total := 0.0
	for emotion, current := range s.emotions {
		total += math.Abs(current - s.baseline[emotion])
	}
	return total / float64(len(s.emotions))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
