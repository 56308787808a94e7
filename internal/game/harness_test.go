package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/runeclash/duel-server-go/internal/config"
	"github.com/runeclash/duel-server-go/internal/game/catalog"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
	"github.com/runeclash/duel-server-go/internal/game/runes"
)

const (
	alice = "alice"
	bob   = "bob"
)

func mustCost(t *testing.T, costStr string) *runes.Cost {
	t.Helper()
	cost, err := runes.ParseCost(costStr)
	require.NoError(t, err)
	return cost
}

// testCatalog builds a small fixed card pool shared by the engine tests.
func testCatalog(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()
	cat := catalog.NewMemoryCatalog()
	cards := []*catalog.Card{
		{
			ID: "scout", Name: "Emberfoot Scout", Type: catalog.TypeUnit,
			Domain: runes.DomainFury, Cost: mustCost(t, "{1}"), Might: 2, Toughness: 2,
		},
		{
			ID: "brute", Name: "Cinder Brute", Type: catalog.TypeUnit,
			Domain: runes.DomainFury, Cost: mustCost(t, "{1}{F}"), Might: 3, Toughness: 3,
		},
		{
			ID: "warden", Name: "Quiet Warden", Type: catalog.TypeUnit,
			Domain: runes.DomainCalm, Cost: mustCost(t, "{1}"), Might: 1, Toughness: 4,
		},
		{
			ID: "bolt", Name: "Searing Bolt", Type: catalog.TypeSpell,
			Domain: runes.DomainFury, Cost: mustCost(t, "{1}"),
			Abilities: []catalog.Ability{{
				Trigger:     catalog.TriggerOnPlay,
				Description: "Deal 2 damage to a unit.",
				Ops:         []effects.Operation{{Type: effects.OpDamage, Target: effects.TargetAny, Amount: 2}},
			}},
		},
		{
			ID: "insight", Name: "Sudden Insight", Type: catalog.TypeSpell,
			Domain: runes.DomainMind, Cost: mustCost(t, "{1}"),
			Abilities: []catalog.Ability{{
				Trigger:     catalog.TriggerOnPlay,
				Description: "Draw two cards.",
				Ops:         []effects.Operation{{Type: effects.OpDraw, Target: effects.TargetSelf, Amount: 2}},
			}},
		},
		{
			ID: "vanguard", Name: "Dawnhold Vanguard", Type: catalog.TypeChampion,
			Domain: runes.DomainOrder, Cost: mustCost(t, "{1}"), Might: 3, Toughness: 3,
			Abilities: []catalog.Ability{{
				Trigger:     catalog.TriggerActivated,
				Description: "Draw a card.",
				Ops:         []effects.Operation{{Type: effects.OpDraw, Target: effects.TargetSelf, Amount: 1}},
			}},
		},
		{ID: "fury-rune", Name: "Fury Rune", Type: catalog.TypeRune, Domain: runes.DomainFury},
		{ID: "calm-rune", Name: "Calm Rune", Type: catalog.TypeRune, Domain: runes.DomainCalm},
		{ID: "anvil", Name: "Molten Anvil", Type: catalog.TypeBattlefield},
		{ID: "spire", Name: "Silent Spire", Type: catalog.TypeBattlefield},
	}
	for _, card := range cards {
		require.NoError(t, cat.Register(card))
	}
	return cat
}

func newTestEngine(t *testing.T) *DuelEngine {
	t.Helper()
	return NewDuelEngine(config.DefaultRules(), testCatalog(t), zaptest.NewLogger(t))
}

func defaultSetups() []PlayerSetup {
	deck := []string{"scout", "brute", "bolt", "insight", "warden", "scout", "brute", "bolt", "insight", "warden"}
	runeDeck := []string{"fury-rune", "fury-rune", "calm-rune", "fury-rune", "calm-rune", "fury-rune", "calm-rune", "fury-rune"}
	return []PlayerSetup{
		{ID: alice, Name: "Alice", Deck: deck, RuneDeck: runeDeck, Battlefields: []string{"anvil"}},
		{ID: bob, Name: "Bob", Deck: deck, RuneDeck: runeDeck, Battlefields: []string{"spire"}},
	}
}

// startDuel walks through setup so that bob (Shield over Blade) holds
// the first turn at MAIN_1.
func startDuel(t *testing.T, e *DuelEngine) {
	t.Helper()
	require.NoError(t, e.InitializeGame("match-test", defaultSetups()))
	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceShield))
	require.NoError(t, e.SubmitMulligan(alice, nil))
	require.NoError(t, e.SubmitMulligan(bob, nil))
	require.Equal(t, StatusInProgress, e.state.status)
	require.Equal(t, rules.PhaseMain1, e.state.turns.CurrentPhase())
}

// addUnit injects a ready unit for a player, bypassing cost payment.
func addUnit(t *testing.T, e *DuelEngine, playerID, cardID string) *boardCard {
	t.Helper()
	gs := e.state
	player, err := gs.player(playerID)
	require.NoError(t, err)
	card, err := e.catalog.Lookup(cardID)
	require.NoError(t, err)
	bc := e.newBoardCard(gs, player, card, "")
	bc.JustSummoned = false
	player.Units = append(player.Units, bc)
	return bc
}
