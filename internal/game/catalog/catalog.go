// Package catalog defines the Card Catalog contract the duel engine
// consumes. Cards arrive fully structured: costs, abilities and effect
// operation lists are pre-parsed by an external authoring pipeline, and
// the engine never mines rules text itself.
package catalog

import (
	"fmt"
	"strings"

	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

// CardType classifies what a card is when resolved.
type CardType string

const (
	TypeUnit        CardType = "UNIT"
	TypeSpell       CardType = "SPELL"
	TypeGear        CardType = "GEAR"
	TypeEnchantment CardType = "ENCHANTMENT"
	TypeRune        CardType = "RUNE"
	TypeBattlefield CardType = "BATTLEFIELD"
	TypeLegend      CardType = "LEGEND"
	TypeChampion    CardType = "CHAMPION"
)

// TriggerType identifies when an ability's operations run.
type TriggerType string

const (
	TriggerOnPlay           TriggerType = "on_play"
	TriggerOnDeath          TriggerType = "on_death"
	TriggerOnConquer        TriggerType = "on_conquer"
	TriggerTurnStart        TriggerType = "turn_start"
	TriggerTurnEnd          TriggerType = "turn_end"
	TriggerActivated        TriggerType = "activated"
	TriggerBattlefieldSetup TriggerType = "battlefield_setup"
)

// Ability is a pre-parsed card ability: a trigger plus an ordered effect
// operation list.
type Ability struct {
	Trigger     TriggerType
	Description string
	Ops         []effects.Operation
}

// Flags carries boolean traits the authoring pipeline derives from free
// text (e.g. "enters untapped").
type Flags struct {
	EntersUntapped bool
	Accelerate     bool
	Token          bool
}

// Card is a fully structured, immutable card template.
type Card struct {
	ID        string
	Slug      string
	Name      string
	Type      CardType
	Domain    runes.Domain
	Cost      *runes.Cost
	Might     int
	Toughness int
	RulesText string
	Tags      []string
	Abilities []Ability
	Flags     Flags
}

// AbilitiesFor returns all abilities with the given trigger.
func (c *Card) AbilitiesFor(trigger TriggerType) []Ability {
	var matched []Ability
	for _, a := range c.Abilities {
		if a.Trigger == trigger {
			matched = append(matched, a)
		}
	}
	return matched
}

// IsPermanent reports whether playing the card leaves it on the board.
func (c *Card) IsPermanent() bool {
	switch c.Type {
	case TypeUnit, TypeGear, TypeEnchantment:
		return true
	}
	return false
}

// Catalog resolves a card identifier (id, slug or name) to a structured
// card. Implementations are external collaborators; the engine only ever
// calls Lookup.
type Catalog interface {
	Lookup(identifier string) (*Card, error)
}

// MemoryCatalog is an in-process Catalog backed by maps. It serves tests
// and the demo binary; production catalogs live outside the engine.
type MemoryCatalog struct {
	byID   map[string]*Card
	bySlug map[string]*Card
	byName map[string]*Card
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byID:   make(map[string]*Card),
		bySlug: make(map[string]*Card),
		byName: make(map[string]*Card),
	}
}

// Register adds a card to the catalog, indexing it by id, slug and name.
func (m *MemoryCatalog) Register(card *Card) error {
	if card == nil {
		return fmt.Errorf("card is nil")
	}
	if card.ID == "" {
		return fmt.Errorf("card %q has no id", card.Name)
	}
	if _, exists := m.byID[card.ID]; exists {
		return fmt.Errorf("card id %s already registered", card.ID)
	}
	if card.Cost == nil {
		card.Cost = runes.NewCost()
	}
	m.byID[card.ID] = card
	if card.Slug != "" {
		m.bySlug[strings.ToLower(card.Slug)] = card
	}
	if card.Name != "" {
		m.byName[strings.ToLower(card.Name)] = card
	}
	return nil
}

// Lookup resolves an identifier by id, then slug, then name
// (case-insensitive for slug and name).
func (m *MemoryCatalog) Lookup(identifier string) (*Card, error) {
	if card, ok := m.byID[identifier]; ok {
		return card, nil
	}
	lowered := strings.ToLower(strings.TrimSpace(identifier))
	if card, ok := m.bySlug[lowered]; ok {
		return card, nil
	}
	if card, ok := m.byName[lowered]; ok {
		return card, nil
	}
	return nil, fmt.Errorf("card %q not found in catalog", identifier)
}
