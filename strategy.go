package adaptive

import "fmt"

// Strategy identifies one reasoning approach. The set is closed: adding a
// member requires both a Reasoner implementation and selection rules able
// to produce the new tag.
type Strategy string

// The available reasoning strategies.
const (
	StrategySequential Strategy = "sequential"
	StrategyBranching  Strategy = "branching"
	StrategyAbductive  Strategy = "abductive"
	StrategyLateral    Strategy = "lateral"
	StrategyLogical    Strategy = "logical"
)

// Strategies returns all strategy tags in their canonical order. The order
// is stable and used wherever deterministic iteration matters (tie-breaks
// in performance lookups, snapshot rendering).
func Strategies() []Strategy {
	return []Strategy{
		StrategySequential,
		StrategyBranching,
		StrategyAbductive,
		StrategyLateral,
		StrategyLogical,
	}
}

// Valid reports whether s is a member of the closed strategy set.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySequential, StrategyBranching, StrategyAbductive, StrategyLateral, StrategyLogical:
		return true
	}
	return false
}

// ParseStrategy converts a string to a Strategy, rejecting unknown tags.
func ParseStrategy(s string) (Strategy, error) {
	tag := Strategy(s)
	if !tag.Valid() {
		return "", fmt.Errorf("unknown strategy: %q", s)
	}
	return tag, nil
}
