package engine

import (
	"fmt"
	"math"

	"github.com/personaut/personaut/pkg/types"
)

// CalculationMode selects how a StateCalculator condenses a history of
// snapshots into one representative state.
type CalculationMode string

const (
	// ModeAverage takes the per-emotion arithmetic mean over snapshots
	// that track the emotion.
	ModeAverage CalculationMode = "average"
	// ModeMaximum takes the per-emotion maximum.
	ModeMaximum CalculationMode = "maximum"
	// ModeMinimum takes the per-emotion minimum.
	ModeMinimum CalculationMode = "minimum"
	// ModeRecent takes an exponentially weighted average favoring newer
	// snapshots.
	ModeRecent CalculationMode = "recent"
	// ModeCustom delegates to a caller-supplied pure function.
	ModeCustom CalculationMode = "custom"
)

const (
	// DefaultHistorySize bounds the FIFO snapshot buffer.
	DefaultHistorySize = 10
	// DefaultDecayFactor weights snapshot i of n as decay^(n-1-i) in
	// ModeRecent.
	DefaultDecayFactor = 0.8
)

// CustomCalculation condenses a snapshot history into one state. It must
// be pure: no mutation of the input snapshots.
type CustomCalculation func(history []*types.EmotionalState) (*types.EmotionalState, error)

// StateCalculator keeps a bounded FIFO history of emotional state
// snapshots and produces one representative state from them. Snapshots are
// deep-copied on the way in, so later mutation of the source state never
// rewrites history.
type StateCalculator struct {
	mode        CalculationMode
	historySize int
	decayFactor float64
	custom      CustomCalculation
	history     []*types.EmotionalState
}

// CalculatorOption customizes a StateCalculator.
type CalculatorOption func(*StateCalculator) error

// WithHistorySize bounds the FIFO buffer; the oldest snapshot is dropped
// on overflow.
func WithHistorySize(n int) CalculatorOption {
	return func(c *StateCalculator) error {
		if n < 1 {
			return fmt.Errorf("%w: history size %d", types.ErrConfiguration, n)
		}
		c.historySize = n
		return nil
	}
}

// WithDecayFactor sets the ModeRecent weight base. Zero degenerates to
// "most recent snapshot wins".
func WithDecayFactor(f float64) CalculatorOption {
	return func(c *StateCalculator) error {
		if f < 0 || f > 1 {
			return fmt.Errorf("%w: decay_factor=%v", types.ErrOutOfRange, f)
		}
		c.decayFactor = f
		return nil
	}
}

// WithCustomCalculation supplies the function ModeCustom dispatches to.
func WithCustomCalculation(fn CustomCalculation) CalculatorOption {
	return func(c *StateCalculator) error {
		c.custom = fn
		return nil
	}
}

// NewStateCalculator creates a calculator for the given mode. ModeCustom
// requires WithCustomCalculation at construction time.
func NewStateCalculator(mode CalculationMode, opts ...CalculatorOption) (*StateCalculator, error) {
	switch mode {
	case ModeAverage, ModeMaximum, ModeMinimum, ModeRecent, ModeCustom:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", types.ErrConfiguration, mode)
	}

	c := &StateCalculator{
		mode:        mode,
		historySize: DefaultHistorySize,
		decayFactor: DefaultDecayFactor,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if mode == ModeCustom && c.custom == nil {
		return nil, fmt.Errorf("%w: custom mode requires a calculation function", types.ErrConfiguration)
	}
	return c, nil
}

// Mode returns the configured calculation mode.
func (c *StateCalculator) Mode() CalculationMode { return c.mode }

// HistorySize returns the FIFO bound.
func (c *StateCalculator) HistorySize() int { return c.historySize }

// AddState pushes a deep copy of the snapshot, dropping the oldest entry
// when the buffer is full.
func (c *StateCalculator) AddState(s *types.EmotionalState) {
	c.history = append(c.history, s.Copy())
	if len(c.history) > c.historySize {
		c.history = c.history[1:]
	}
}

// ClearHistory empties the buffer. Previously returned results are
// unaffected.
func (c *StateCalculator) ClearHistory() {
	c.history = nil
}

// History returns copies of the buffered snapshots, oldest first.
func (c *StateCalculator) History() []*types.EmotionalState {
	out := make([]*types.EmotionalState, len(c.history))
	for i, s := range c.history {
		out[i] = s.Copy()
	}
	return out
}

// Len returns the number of buffered snapshots.
func (c *StateCalculator) Len() int { return len(c.history) }

// Calculate condenses the given history by the configured mode. An empty
// history is an error here; CalculatedState is the forgiving variant.
func (c *StateCalculator) Calculate(history []*types.EmotionalState) (*types.EmotionalState, error) {
	if len(history) == 0 {
		return nil, types.ErrEmptyHistory
	}
	switch c.mode {
	case ModeAverage:
		return c.aggregate(history, func(values []float64, _ []int) float64 {
			total := 0.0
			for _, v := range values {
				total += v
			}
			return total / float64(len(values))
		})
	case ModeMaximum:
		return c.aggregate(history, func(values []float64, _ []int) float64 {
			best := values[0]
			for _, v := range values[1:] {
				best = math.Max(best, v)
			}
			return best
		})
	case ModeMinimum:
		return c.aggregate(history, func(values []float64, _ []int) float64 {
			best := values[0]
			for _, v := range values[1:] {
				best = math.Min(best, v)
			}
			return best
		})
	case ModeRecent:
		return c.calculateRecent(history)
	case ModeCustom:
		return c.custom(history)
	}
	return nil, fmt.Errorf("%w: unknown mode %q", types.ErrConfiguration, c.mode)
}

// CalculatedState condenses the internal history, returning a neutral
// all-zero state when the buffer is empty.
func (c *StateCalculator) CalculatedState() (*types.EmotionalState, error) {
	if len(c.history) == 0 {
		return types.NeutralState(), nil
	}
	return c.Calculate(c.history)
}

// aggregate applies a reducer per emotion over the snapshots that track
// it. The emotion set comes from the first snapshot; snapshots missing an
// emotion are skipped, not counted as zero.
func (c *StateCalculator) aggregate(history []*types.EmotionalState, reduce func(values []float64, indexes []int) float64) (*types.EmotionalState, error) {
	result, err := types.NewEmotionalState(history[0].Tracked(), 0)
	if err != nil {
		return nil, err
	}

	for _, emotion := range history[0].Tracked() {
		var values []float64
		var indexes []int
		for i, snapshot := range history {
			if !snapshot.Has(emotion) {
				continue
			}
			v, _ := snapshot.Get(emotion)
			values = append(values, v)
			indexes = append(indexes, i)
		}
		if len(values) == 0 {
			continue
		}
		if err := result.ChangeEmotion(emotion, reduce(values, indexes)); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// calculateRecent weights snapshot i of n as decay^(n-1-i), oldest first,
// normalized by the total weight over all snapshots.
func (c *StateCalculator) calculateRecent(history []*types.EmotionalState) (*types.EmotionalState, error) {
	n := len(history)
	weights := make([]float64, n)
	totalWeight := 0.0
	for i := range history {
		weights[i] = math.Pow(c.decayFactor, float64(n-1-i))
		totalWeight += weights[i]
	}

	return c.aggregate(history, func(values []float64, indexes []int) float64 {
		if totalWeight == 0 {
			return 0
		}
		sum := 0.0
		for j, v := range values {
			sum += v * weights[indexes[j]]
		}
		return sum / totalWeight
	})
}
