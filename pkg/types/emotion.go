package types

import "fmt"

// Category is one of the six canonical emotion categories. The taxonomy
// partitions all 36 emotions: each category contains exactly six emotions
// and every emotion belongs to exactly one category.
type Category string

const (
	CategoryAnger    Category = "anger"
	CategorySad      Category = "sad"
	CategoryFear     Category = "fear"
	CategoryJoy      Category = "joy"
	CategoryPowerful Category = "powerful"
	CategoryPeaceful Category = "peaceful"
)

// AllCategories lists the categories in canonical taxonomy order. Code that
// iterates categories (transition sampling, serialization) uses this order
// so results are deterministic.
var AllCategories = []Category{
	CategoryAnger,
	CategorySad,
	CategoryFear,
	CategoryJoy,
	CategoryPowerful,
	CategoryPeaceful,
}

// CategoryMetadata carries the static affective coordinates of a category.
type CategoryMetadata struct {
	Valence float64 `json:"valence"` // pleasantness, -1.0 to 1.0
	Arousal float64 `json:"arousal"` // activation level, 0.0 to 1.0
}

// categoryMetadata holds the fixed valence/arousal coordinates per category.
var categoryMetadata = map[Category]CategoryMetadata{
	CategoryAnger:    {Valence: -0.8, Arousal: 0.9},
	CategorySad:      {Valence: -0.6, Arousal: 0.2},
	CategoryFear:     {Valence: -0.7, Arousal: 0.8},
	CategoryJoy:      {Valence: 0.9, Arousal: 0.8},
	CategoryPowerful: {Valence: 0.7, Arousal: 0.6},
	CategoryPeaceful: {Valence: 0.8, Arousal: 0.2},
}

// Metadata returns the valence/arousal coordinates for the category.
// Unknown categories report neutral coordinates.
func (c Category) Metadata() CategoryMetadata {
	return categoryMetadata[c]
}

// Valence returns the category's pleasantness coordinate.
func (c Category) Valence() float64 { return categoryMetadata[c].Valence }

// Arousal returns the category's activation coordinate.
func (c Category) Arousal() float64 { return categoryMetadata[c].Arousal }

// IsPositive reports whether the category sits on the positive side of the
// valence axis (joy, powerful, peaceful).
func (c Category) IsPositive() bool {
	return categoryMetadata[c].Valence > 0
}

// Valid reports whether c is one of the six canonical categories.
func (c Category) Valid() bool {
	_, ok := categoryMetadata[c]
	return ok
}

// ParseCategory converts a raw string to a Category, returning
// ErrUnknownCategory for anything outside the taxonomy.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// categoryEmotions maps each category to its six emotions in canonical
// order. The order is load-bearing: it defines iteration order for
// deterministic sampling and for AllEmotions.
var categoryEmotions = map[Category][]string{
	CategoryAnger:    {"hostile", "hurt", "angry", "selfish", "hateful", "critical"},
	CategorySad:      {"guilty", "ashamed", "depressed", "lonely", "bored", "apathetic"},
	CategoryFear:     {"rejected", "confused", "submissive", "insecure", "anxious", "helpless"},
	CategoryJoy:      {"excited", "sensual", "energetic", "cheerful", "creative", "hopeful"},
	CategoryPowerful: {"proud", "respected", "appreciated", "important", "faithful", "satisfied"},
	CategoryPeaceful: {"content", "thoughtful", "intimate", "loving", "trusting", "nurturing"},
}

// emotionCategory is the inverse index, built once at init.
var emotionCategory = func() map[string]Category {
	m := make(map[string]Category, 36)
	for _, cat := range AllCategories {
		for _, e := range categoryEmotions[cat] {
			m[e] = cat
		}
	}
	return m
}()

// AllEmotions returns the 36 canonical emotion names, grouped by category
// in canonical order. The returned slice is a fresh copy.
func AllEmotions() []string {
	out := make([]string, 0, 36)
	for _, cat := range AllCategories {
		out = append(out, categoryEmotions[cat]...)
	}
	return out
}

// CategoryEmotions returns the six emotions of a category in canonical
// order, or nil for an unknown category. The returned slice is a copy.
func CategoryEmotions(c Category) []string {
	src, ok := categoryEmotions[c]
	if !ok {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// EmotionCategory returns the category an emotion belongs to.
func EmotionCategory(emotion string) (Category, error) {
	cat, ok := emotionCategory[emotion]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEmotion, emotion)
	}
	return cat, nil
}

// IsEmotion reports whether name is in the canonical taxonomy.
func IsEmotion(name string) bool {
	_, ok := emotionCategory[name]
	return ok
}
