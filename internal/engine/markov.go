// Package engine implements the emotional dynamics of a persona: the
// Markov transition step that evolves an emotional state, bounded-history
// state aggregation, and trust-gated memory retrieval.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/personaut/personaut/pkg/types"
)

// DefaultVolatility controls how far a single transition step can move
// emotion intensities when no custom value is configured.
const DefaultVolatility = 0.2

// TransitionTable holds category-to-category transition weights. Rows are
// normalized at sampling time, so custom tables need not sum exactly to 1.
type TransitionTable map[types.Category]map[types.Category]float64

// DefaultTransitions returns the baseline 6x6 category transition table.
// The returned map is a fresh copy.
func DefaultTransitions() TransitionTable {
	out := make(TransitionTable, len(defaultTransitions))
	for from, row := range defaultTransitions {
		cp := make(map[types.Category]float64, len(row))
		for to, w := range row {
			cp[to] = w
		}
		out[from] = cp
	}
	return out
}

var defaultTransitions = TransitionTable{
	types.CategoryAnger: {
		types.CategoryAnger: 0.4, types.CategorySad: 0.2, types.CategoryFear: 0.15,
		types.CategoryJoy: 0.05, types.CategoryPowerful: 0.1, types.CategoryPeaceful: 0.1,
	},
	types.CategorySad: {
		types.CategoryAnger: 0.15, types.CategorySad: 0.4, types.CategoryFear: 0.2,
		types.CategoryJoy: 0.05, types.CategoryPowerful: 0.05, types.CategoryPeaceful: 0.15,
	},
	types.CategoryFear: {
		types.CategoryAnger: 0.1, types.CategorySad: 0.2, types.CategoryFear: 0.4,
		types.CategoryJoy: 0.05, types.CategoryPowerful: 0.1, types.CategoryPeaceful: 0.15,
	},
	types.CategoryJoy: {
		types.CategoryAnger: 0.05, types.CategorySad: 0.05, types.CategoryFear: 0.05,
		types.CategoryJoy: 0.5, types.CategoryPowerful: 0.2, types.CategoryPeaceful: 0.15,
	},
	types.CategoryPowerful: {
		types.CategoryAnger: 0.1, types.CategorySad: 0.05, types.CategoryFear: 0.05,
		types.CategoryJoy: 0.25, types.CategoryPowerful: 0.4, types.CategoryPeaceful: 0.15,
	},
	types.CategoryPeaceful: {
		types.CategoryAnger: 0.05, types.CategorySad: 0.1, types.CategoryFear: 0.05,
		types.CategoryJoy: 0.2, types.CategoryPowerful: 0.15, types.CategoryPeaceful: 0.45,
	},
}

// TransitionMatrix drives probabilistic transitions between emotional
// states. It is stateless with respect to personas: one matrix may evolve
// many states. The RNG is injected at construction so a fixed seed yields
// bit-identical trajectories; there is no hidden global randomness.
type TransitionMatrix struct {
	transitions TransitionTable
	coeffs      types.TraitCoefficients
	volatility  float64
	rng         *rand.Rand
}

// MatrixOption customizes a TransitionMatrix.
type MatrixOption func(*TransitionMatrix)

// WithTransitions replaces the default category transition table.
func WithTransitions(t TransitionTable) MatrixOption {
	return func(m *TransitionMatrix) {
		if t != nil {
			m.transitions = t
		}
	}
}

// WithCoefficients replaces the default trait-to-emotion coefficient table.
func WithCoefficients(c types.TraitCoefficients) MatrixOption {
	return func(m *TransitionMatrix) {
		if c != nil {
			m.coeffs = c
		}
	}
}

// NewTransitionMatrix creates a matrix with the given step volatility and
// RNG. Volatility outside [0,1] is rejected; a nil RNG is rejected rather
// than silently falling back to shared global state.
func NewTransitionMatrix(volatility float64, rng *rand.Rand, opts ...MatrixOption) (*TransitionMatrix, error) {
	if volatility < 0 || volatility > 1 {
		return nil, fmt.Errorf("%w: volatility=%v", types.ErrOutOfRange, volatility)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", types.ErrConfiguration)
	}
	m := &TransitionMatrix{
		transitions: DefaultTransitions(),
		coeffs:      types.DefaultTraitCoefficients(),
		volatility:  volatility,
		rng:         rng,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Volatility returns the configured step magnitude.
func (m *TransitionMatrix) Volatility() float64 { return m.volatility }

// TransitionProbability returns the raw (unnormalized) weight of moving
// from one category to another, 0 if the edge is absent.
func (m *TransitionMatrix) TransitionProbability(from, to types.Category) float64 {
	return m.transitions[from][to]
}

// sampleCategory draws the next category from the current category's row.
// Categories are visited in canonical taxonomy order so a fixed RNG stream
// reproduces the same draw.
func (m *TransitionMatrix) sampleCategory(from types.Category) types.Category {
	row, ok := m.transitions[from]
	if !ok {
		row = m.transitions[types.CategoryPeaceful]
	}

	total := 0.0
	for _, cat := range types.AllCategories {
		total += row[cat]
	}
	if total <= 0 {
		return from
	}

	draw := m.rng.Float64() * total
	acc := 0.0
	for _, cat := range types.AllCategories {
		acc += row[cat]
		if draw < acc {
			return cat
		}
	}
	// Floating-point residue lands on the last category.
	return types.AllCategories[len(types.AllCategories)-1]
}

// applyTraitModifiers scales a target intensity by the persona's trait
// deviations from average, using the coefficient table. Traits are visited
// in sorted order so the float summation is reproducible.
func (m *TransitionMatrix) applyTraitModifiers(target float64, emotion string, traits map[string]float64) float64 {
	names := make([]string, 0, len(traits))
	for name := range traits {
		names = append(names, name)
	}
	sort.Strings(names)

	modifier := 0.0
	for _, name := range names {
		if c := m.coeffs.Coefficient(name, emotion); c != 0 {
			modifier += c * (traits[name] - 0.5)
		}
	}
	return math.Max(0, math.Min(1, target*(1+modifier)))
}

// NextState advances a state one tick: the dominant category picks the
// transition row, a next category is sampled, and every tracked emotion
// moves toward a target raised in the sampled category and lowered
// elsewhere, optionally modulated by traits. The input is never mutated.
func (m *TransitionMatrix) NextState(current *types.EmotionalState, traits map[string]float64) *types.EmotionalState {
	nextCategory := m.sampleCategory(current.DominantCategory())

	next := current.Copy()
	for _, emotion := range current.Tracked() {
		cat, err := types.EmotionCategory(emotion)
		if err != nil {
			continue
		}
		value, _ := current.Get(emotion)

		var target float64
		if cat == nextCategory {
			target = math.Min(1, value+m.volatility*0.5)
		} else {
			target = math.Max(0, value-m.volatility*0.25)
		}
		if len(traits) > 0 {
			target = m.applyTraitModifiers(target, emotion, traits)
		}

		delta := (target - value) * m.volatility
		// Targets and inputs are already in range, so this cannot fail.
		_ = next.ChangeEmotion(emotion, math.Max(0, math.Min(1, value+delta)))
	}
	return next
}

// SimulateTrajectory applies NextState repeatedly and returns the full
// list of states, the initial one included (length steps+1).
func (m *TransitionMatrix) SimulateTrajectory(initial *types.EmotionalState, steps int, traits map[string]float64) []*types.EmotionalState {
	trajectory := make([]*types.EmotionalState, 0, steps+1)
	trajectory = append(trajectory, initial.Copy())

	current := initial
	for i := 0; i < steps; i++ {
		current = m.NextState(current, traits)
		trajectory = append(trajectory, current)
	}
	return trajectory
}
