package types

import "errors"

// Sentinel errors for the domain model. Callers match with errors.Is;
// constructors and mutators wrap these with context via fmt.Errorf("%w: ...").
var (
	// ErrOutOfRange indicates a numeric value outside its declared [0,1]
	// domain (emotion intensity, trait intensity, trust, salience,
	// trust threshold, decay factor, volatility).
	ErrOutOfRange = errors.New("value out of range")

	// ErrUnknownEmotion indicates an emotion name that is not in the
	// canonical taxonomy, or not tracked by the state being mutated.
	ErrUnknownEmotion = errors.New("unknown emotion")

	// ErrUnknownTrait indicates a trait name outside the canonical set.
	ErrUnknownTrait = errors.New("unknown trait")

	// ErrUnknownCategory indicates a category name outside the six
	// canonical emotion categories.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrEmptyHistory indicates an aggregation was requested over zero
	// state snapshots.
	ErrEmptyHistory = errors.New("empty state history")

	// ErrConfiguration indicates a component was constructed with
	// missing or inconsistent configuration (e.g. a custom aggregation
	// mode without a custom function).
	ErrConfiguration = errors.New("invalid configuration")
)
