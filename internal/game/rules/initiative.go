package rules

import "fmt"

// InitiativeChoice is one of the three hidden picks of the opening coin
// flip.
type InitiativeChoice int

const (
	ChoiceBlade InitiativeChoice = iota
	ChoiceShield
	ChoiceRing
)

var choiceNames = map[InitiativeChoice]string{
	ChoiceBlade:  "BLADE",
	ChoiceShield: "SHIELD",
	ChoiceRing:   "RING",
}

func (c InitiativeChoice) String() string {
	if name, ok := choiceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CHOICE_%d", int(c))
}

// Valid reports whether the choice is one of the three defined picks.
func (c InitiativeChoice) Valid() bool {
	return c >= ChoiceBlade && c <= ChoiceRing
}

// Beats reports whether c beats other under the fixed cyclic relation:
// each choice beats its predecessor, so Shield beats Blade, Ring beats
// Shield, and Blade beats Ring.
func (c InitiativeChoice) Beats(other InitiativeChoice) bool {
	return (int(other)+1)%3 == int(c)
}

// InitiativeResult is the outcome of comparing both players' picks.
type InitiativeResult int

const (
	// InitiativeRematch means both players picked the same choice and the
	// flip must be rerun from scratch.
	InitiativeRematch InitiativeResult = iota
	// InitiativeFirstWins means the first compared pick won.
	InitiativeFirstWins
	// InitiativeSecondWins means the second compared pick won.
	InitiativeSecondWins
)

// ResolveInitiative compares two picks and reports the result.
func ResolveInitiative(first, second InitiativeChoice) InitiativeResult {
	if first == second {
		return InitiativeRematch
	}
	if first.Beats(second) {
		return InitiativeFirstWins
	}
	return InitiativeSecondWins
}
