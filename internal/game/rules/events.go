package rules

import "time"

// EventType indicates the category of a duel event.
type EventType string

const (
	EventMatchStarted          EventType = "MATCH_STARTED"
	EventTurnBegan             EventType = "TURN_BEGAN"
	EventPhaseChanged          EventType = "PHASE_CHANGED"
	EventCardPlayed            EventType = "CARD_PLAYED"
	EventCardDrawn             EventType = "CARD_DRAWN"
	EventRuneChanneled         EventType = "RUNE_CHANNELED"
	EventUnitMoved             EventType = "UNIT_MOVED"
	EventUnitDied              EventType = "UNIT_DIED"
	EventBattlefieldConquered  EventType = "BATTLEFIELD_CONQUERED"
	EventBattlefieldHeld       EventType = "BATTLEFIELD_HELD"
	EventVictoryPointsAwarded  EventType = "VICTORY_POINTS_AWARDED"
	EventPromptIssued          EventType = "PROMPT_ISSUED"
	EventPromptResolved        EventType = "PROMPT_RESOLVED"
	EventLegendDeployed        EventType = "LEGEND_DEPLOYED"
	EventMatchEnded            EventType = "MATCH_ENDED"
)

// Event is a single duel occurrence published on the event bus.
type Event struct {
	Type          EventType
	PlayerID      string
	SourceID      string
	TargetID      string
	BattlefieldID string
	Amount        int
	Turn          int
	Timestamp     time.Time
	Description   string
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, playerID, sourceID, targetID string) Event {
	return Event{
		Type:      eventType,
		PlayerID:  playerID,
		SourceID:  sourceID,
		TargetID:  targetID,
		Timestamp: time.Now(),
	}
}

// EventHandler receives published events.
type EventHandler func(event Event)

// EventBus dispatches duel events to subscribers synchronously, in
// subscription order. The engine is single-threaded, so no locking is
// needed and handlers run to completion before Publish returns.
type EventBus struct {
	handlers []EventHandler
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make([]EventHandler, 0, 4)}
}

// Subscribe registers a handler for all events.
func (b *EventBus) Subscribe(handler EventHandler) {
	if handler == nil {
		return
	}
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to every subscriber.
func (b *EventBus) Publish(event Event) {
	for _, handler := range b.handlers {
		handler(event)
	}
}
