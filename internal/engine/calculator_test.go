package engine_test

import (
	"errors"
	"math"
	"testing"

	"github.com/personaut/personaut/internal/engine"
	"github.com/personaut/personaut/pkg/types"
)

func TestNewStateCalculatorValidation(t *testing.T) {
	if _, err := engine.NewStateCalculator("median"); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("unknown mode must be rejected, got %v", err)
	}
	if _, err := engine.NewStateCalculator(engine.ModeCustom); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("custom mode without a function must be rejected, got %v", err)
	}
	if _, err := engine.NewStateCalculator(engine.ModeAverage, engine.WithHistorySize(0)); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("zero history size must be rejected, got %v", err)
	}
	if _, err := engine.NewStateCalculator(engine.ModeRecent, engine.WithDecayFactor(1.5)); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("decay factor above 1 must be rejected, got %v", err)
	}
}

// TestSingleSnapshotIdentity verifies AVERAGE, MAXIMUM, and MINIMUM all
// return a one-element history unchanged.
func TestSingleSnapshotIdentity(t *testing.T) {
	snapshot := mustState(t, map[string]float64{"hopeful": 0.8, "anxious": 0.3})

	for _, mode := range []engine.CalculationMode{engine.ModeAverage, engine.ModeMaximum, engine.ModeMinimum} {
		c, err := engine.NewStateCalculator(mode)
		if err != nil {
			t.Fatal(err)
		}
		got, err := c.Calculate([]*types.EmotionalState{snapshot})
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		for emotion, want := range snapshot.ToMap() {
			if v, _ := got.Get(emotion); v != want {
				t.Errorf("%s: %s expected %v, got %v", mode, emotion, want, v)
			}
		}
	}
}

func TestAverageSkipsMissingEmotions(t *testing.T) {
	c, err := engine.NewStateCalculator(engine.ModeAverage)
	if err != nil {
		t.Fatal(err)
	}

	full := mustState(t, map[string]float64{"hopeful": 0.8, "anxious": 0.4})
	partial := mustState(t, map[string]float64{"hopeful": 0.2})

	got, err := c.Calculate([]*types.EmotionalState{full, partial})
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := got.Get("hopeful"); math.Abs(v-0.5) > 1e-12 {
		t.Errorf("hopeful: expected (0.8+0.2)/2, got %v", v)
	}
	// anxious appears in one snapshot only; divide by 1, not 2.
	if v, _ := got.Get("anxious"); v != 0.4 {
		t.Errorf("anxious: expected 0.4 from the single contributor, got %v", v)
	}
}

func TestMaximumAndMinimum(t *testing.T) {
	a := mustState(t, map[string]float64{"hopeful": 0.2, "anxious": 0.9})
	b := mustState(t, map[string]float64{"hopeful": 0.7, "anxious": 0.1})
	history := []*types.EmotionalState{a, b}

	maxCalc, _ := engine.NewStateCalculator(engine.ModeMaximum)
	got, err := maxCalc.Calculate(history)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("hopeful"); v != 0.7 {
		t.Errorf("max hopeful: expected 0.7, got %v", v)
	}
	if v, _ := got.Get("anxious"); v != 0.9 {
		t.Errorf("max anxious: expected 0.9, got %v", v)
	}

	minCalc, _ := engine.NewStateCalculator(engine.ModeMinimum)
	got, err = minCalc.Calculate(history)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("hopeful"); v != 0.2 {
		t.Errorf("min hopeful: expected 0.2, got %v", v)
	}
	if v, _ := got.Get("anxious"); v != 0.1 {
		t.Errorf("min anxious: expected 0.1, got %v", v)
	}
}

func TestRecentWeighting(t *testing.T) {
	c, err := engine.NewStateCalculator(engine.ModeRecent, engine.WithDecayFactor(0.5))
	if err != nil {
		t.Fatal(err)
	}

	older := mustState(t, map[string]float64{"hopeful": 0.2})
	newer := mustState(t, map[string]float64{"hopeful": 0.8})

	got, err := c.Calculate([]*types.EmotionalState{older, newer})
	if err != nil {
		t.Fatal(err)
	}
	// Weights: 0.5 for the older, 1.0 for the newer, normalized by 1.5.
	want := (0.2*0.5 + 0.8*1.0) / 1.5
	if v, _ := got.Get("hopeful"); math.Abs(v-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, v)
	}
}

// TestRecentZeroDecayIsMostRecentWins verifies decay_factor=0
// degenerates to the newest snapshot.
func TestRecentZeroDecayIsMostRecentWins(t *testing.T) {
	c, err := engine.NewStateCalculator(engine.ModeRecent, engine.WithDecayFactor(0))
	if err != nil {
		t.Fatal(err)
	}

	history := []*types.EmotionalState{
		mustState(t, map[string]float64{"hopeful": 0.1}),
		mustState(t, map[string]float64{"hopeful": 0.5}),
		mustState(t, map[string]float64{"hopeful": 0.9}),
	}
	got, err := c.Calculate(history)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("hopeful"); v != 0.9 {
		t.Errorf("expected the most recent value 0.9, got %v", v)
	}
}

func TestCustomModeDelegates(t *testing.T) {
	doubler := func(history []*types.EmotionalState) (*types.EmotionalState, error) {
		out := history[0].Copy()
		v, _ := out.Get("hopeful")
		if err := out.ChangeEmotion("hopeful", math.Min(1, v*2)); err != nil {
			return nil, err
		}
		return out, nil
	}

	c, err := engine.NewStateCalculator(engine.ModeCustom, engine.WithCustomCalculation(doubler))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Calculate([]*types.EmotionalState{mustState(t, map[string]float64{"hopeful": 0.3})})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("hopeful"); v != 0.6 {
		t.Errorf("expected 0.6 from the custom function, got %v", v)
	}
}

func TestEmptyHistoryBehavior(t *testing.T) {
	c, err := engine.NewStateCalculator(engine.ModeAverage)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Calculate(nil); !errors.Is(err, types.ErrEmptyHistory) {
		t.Errorf("Calculate on empty history: expected ErrEmptyHistory, got %v", err)
	}

	// The forgiving variant returns an all-zero neutral state instead.
	got, err := c.CalculatedState()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Tracked()) != len(types.AllEmotions()) {
		t.Errorf("neutral state tracks the full taxonomy, got %d emotions", len(got.Tracked()))
	}
	if got.AnyAbove(0) {
		t.Error("neutral state must be all zeros")
	}
}

func TestHistoryFIFOTrimming(t *testing.T) {
	c, err := engine.NewStateCalculator(engine.ModeAverage, engine.WithHistorySize(3))
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []float64{0.1, 0.2, 0.3, 0.4} {
		c.AddState(mustState(t, map[string]float64{"hopeful": v}))
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 buffered snapshots, got %d", c.Len())
	}

	history := c.History()
	if v, _ := history[0].Get("hopeful"); v != 0.2 {
		t.Errorf("oldest snapshot must have been dropped, got %v", v)
	}

	got, err := c.CalculatedState()
	if err != nil {
		t.Fatal(err)
	}
	want := (0.2 + 0.3 + 0.4) / 3
	if v, _ := got.Get("hopeful"); math.Abs(v-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, v)
	}

	c.ClearHistory()
	if c.Len() != 0 {
		t.Error("ClearHistory must empty the buffer")
	}
}

// TestAddStateCopies verifies later mutation of a source state never
// rewrites buffered history.
func TestAddStateCopies(t *testing.T) {
	c, err := engine.NewStateCalculator(engine.ModeAverage)
	if err != nil {
		t.Fatal(err)
	}

	source := mustState(t, map[string]float64{"hopeful": 0.3})
	c.AddState(source)
	if err := source.ChangeEmotion("hopeful", 0.9); err != nil {
		t.Fatal(err)
	}

	got, err := c.CalculatedState()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("hopeful"); v != 0.3 {
		t.Errorf("history snapshot mutated through the source state: %v", v)
	}
}
