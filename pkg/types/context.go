package types

import (
	"fmt"
	"sort"
)

// FactCategory groups situational facts for weighting during embedding
// text generation.
type FactCategory string

const (
	FactLocation    FactCategory = "location"
	FactEnvironment FactCategory = "environment"
	FactTemporal    FactCategory = "temporal"
	FactSocial      FactCategory = "social"
	FactPhysical    FactCategory = "physical"
	FactBehavioral  FactCategory = "behavioral"
	FactEconomic    FactCategory = "economic"
	FactSensory     FactCategory = "sensory"
)

// factWeights ranks how strongly each category distinguishes situations;
// higher-weight facts come first in embedding text.
var factWeights = map[FactCategory]float64{
	FactLocation:    1.0,
	FactEnvironment: 0.8,
	FactTemporal:    0.7,
	FactSocial:      0.9,
	FactPhysical:    0.6,
	FactBehavioral:  0.8,
	FactEconomic:    0.5,
	FactSensory:     0.7,
}

// EmbeddingWeight returns the category's relative embedding weight.
func (c FactCategory) EmbeddingWeight() float64 {
	return factWeights[c]
}

// Fact is a single structured piece of situational information.
type Fact struct {
	Category   FactCategory   `json:"category"`
	Key        string         `json:"key"`
	Value      any            `json:"value"`
	Unit       string         `json:"unit,omitempty"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// EmbeddingText renders the fact as "key: value" with an optional unit.
func (f Fact) EmbeddingText() string {
	if f.Unit != "" {
		return fmt.Sprintf("%s: %v %s", f.Key, f.Value, f.Unit)
	}
	return fmt.Sprintf("%s: %v", f.Key, f.Value)
}

// SituationalContext aggregates the structured facts grounding a memory:
// where it happened, when, who was there, what the environment was like.
type SituationalContext struct {
	Facts []Fact `json:"facts"`
}

// NewSituationalContext returns an empty context.
func NewSituationalContext() *SituationalContext {
	return &SituationalContext{}
}

// AddFact appends a fact. Confidence outside [0,1] is rejected.
func (c *SituationalContext) AddFact(f Fact) error {
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("%w: confidence=%v", ErrOutOfRange, f.Confidence)
	}
	c.Facts = append(c.Facts, f)
	return nil
}

// Add appends a fact with full confidence, the common case.
func (c *SituationalContext) Add(category FactCategory, key string, value any) {
	c.Facts = append(c.Facts, Fact{Category: category, Key: key, Value: value, Confidence: 1.0})
}

// FactsByCategory returns the facts of one category, in insertion order.
func (c *SituationalContext) FactsByCategory(category FactCategory) []Fact {
	var out []Fact
	for _, f := range c.Facts {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// Value returns the value of the first fact with the given key, or def.
func (c *SituationalContext) Value(key string, def any) any {
	for _, f := range c.Facts {
		if f.Key == key {
			return f.Value
		}
	}
	return def
}

// Len returns the number of facts.
func (c *SituationalContext) Len() int { return len(c.Facts) }

// EmbeddingText renders facts as "key: value" lines, sorted by category
// weight descending then key ascending.
func (c *SituationalContext) EmbeddingText() string {
	facts := make([]Fact, len(c.Facts))
	copy(facts, c.Facts)
	sort.SliceStable(facts, func(i, j int) bool {
		wi, wj := facts[i].Category.EmbeddingWeight(), facts[j].Category.EmbeddingWeight()
		if wi != wj {
			return wi > wj
		}
		return facts[i].Key < facts[j].Key
	})

	text := ""
	for i, f := range facts {
		if i > 0 {
			text += "\n"
		}
		text += f.EmbeddingText()
	}
	return text
}

// Copy returns an independent copy of the context.
func (c *SituationalContext) Copy() *SituationalContext {
	cp := &SituationalContext{Facts: make([]Fact, len(c.Facts))}
	copy(cp.Facts, c.Facts)
	return cp
}

// Merge returns a new context holding this context's facts followed by the
// other's.
func (c *SituationalContext) Merge(other *SituationalContext) *SituationalContext {
	merged := c.Copy()
	if other != nil {
		merged.Facts = append(merged.Facts, other.Facts...)
	}
	return merged
}
