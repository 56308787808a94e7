package counters

// CounterType names the markers the duel engine places on board cards
// and battlefields.
type CounterType string

const (
	// CounterTypeShield absorbs damage before toughness is reduced.
	CounterTypeShield CounterType = "shield"
	// CounterTypeMight adds to a unit's might during battlefield
	// resolution.
	CounterTypeMight CounterType = "might"
	// CounterTypeHold marks a turn of retained battlefield control.
	CounterTypeHold CounterType = "hold"
	// CounterTypeCharge is a generic accumulating marker used by
	// battlefield effect state.
	CounterTypeCharge CounterType = "charge"
)
