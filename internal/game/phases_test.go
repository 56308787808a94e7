package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeclash/duel-server-go/internal/game/rules"
)

func TestProceed_OnlyActivePlayer(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	require.Error(t, e.ProceedToNextPhase(alice))
	require.NoError(t, e.ProceedToNextPhase(bob))
}

func TestProceed_ChainsThroughDecisionFreePhases(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	// MAIN_1 -> COMBAT resolves automatically -> MAIN_2.
	require.NoError(t, e.ProceedToNextPhase(bob))
	assert.Equal(t, rules.PhaseMain2, e.state.turns.CurrentPhase())

	// MAIN_2 -> END -> CLEANUP -> wraparound -> BEGIN -> MAIN_1.
	require.NoError(t, e.ProceedToNextPhase(bob))
	assert.Equal(t, rules.PhaseMain1, e.state.turns.CurrentPhase())
	assert.Equal(t, alice, e.state.turns.ActivePlayer())
	assert.Equal(t, 2, e.state.turnNumber())
	assert.Equal(t, alice, e.state.currentPlayer().ID)
}

func TestBeginPhase_LoserChannelsBonusRune(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	// Advance to alice's first turn; she lost the coin flip.
	require.NoError(t, e.ProceedToNextPhase(bob))
	require.NoError(t, e.ProceedToNextPhase(bob))

	aliceState, err := e.state.player(alice)
	require.NoError(t, err)
	assert.Len(t, aliceState.Channeled, 2, "one regular rune plus the coin-flip bonus")
	assert.False(t, aliceState.BonusRuneNextTurn, "the bonus is one-time")

	// Her second turn channels the regular single rune.
	require.NoError(t, e.ProceedToNextPhase(alice))
	require.NoError(t, e.ProceedToNextPhase(alice))
	require.NoError(t, e.ProceedToNextPhase(bob))
	require.NoError(t, e.ProceedToNextPhase(bob))
	assert.Len(t, aliceState.Channeled, 3)
}

func TestBeginPhase_ReadiesBoardAndExpiresEffects(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state

	aliceState, _ := gs.player(alice)
	unit := addUnit(t, e, alice, "scout")
	unit.Tapped = true
	aliceState.TempEffects = append(aliceState.TempEffects, &temporaryEffect{ID: "buff", TurnsLeft: 1})

	// Cycle to alice's turn.
	require.NoError(t, e.ProceedToNextPhase(bob))
	require.NoError(t, e.ProceedToNextPhase(bob))

	assert.False(t, unit.Tapped, "begin phase readies the board")
	assert.Empty(t, aliceState.TempEffects, "expired effects are removed")
}

func TestProceed_BlockedByOpenPrompt(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state

	addUnit(t, e, alice, "warden")
	require.NoError(t, e.PlayCard(bob, PlayCardRequest{CardID: "bolt"}))
	prompts := gs.unresolvedPrompts(PromptTarget)
	require.Len(t, prompts, 1)

	require.Error(t, e.ProceedToNextPhase(bob))

	target, _ := gs.player(alice)
	require.NoError(t, e.SubmitTargetSelection(bob, prompts[0].ID, []string{target.Units[0].InstanceID}))
	require.NoError(t, e.ProceedToNextPhase(bob))
}

func TestCombatPhase_ResolvesContestedBattlefields(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bf := gs.battlefields[0]

	bobState, _ := gs.player(bob)
	u := addUnit(t, e, bob, "scout")
	require.NoError(t, e.placeUnitAt(gs, bobState, u, bf.ID))

	// Proceeding through COMBAT resolves the uncontested engagement.
	require.NoError(t, e.ProceedToNextPhase(bob))

	assert.Equal(t, bob, bf.ControllerID)
	assert.Equal(t, conquerVictoryPoints, bobState.VictoryPoints)
}

func TestEndPhase_DeployedLegendReadiesARune(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state

	bobState, _ := gs.player(bob)
	card, err := e.catalog.Lookup("scout")
	require.NoError(t, err)
	bobState.Legend = &legendState{Card: card, Deployed: true}
	bobState.Channeled[0].Tapped = true

	require.NoError(t, e.ProceedToNextPhase(bob))
	require.NoError(t, e.ProceedToNextPhase(bob))

	assert.False(t, bobState.Channeled[0].Tapped, "legend readies a spent rune at end of turn")
}

func TestTurnSequence_PhaseOrder(t *testing.T) {
	tc := rules.NewTurnController(bob)
	want := []rules.Phase{
		rules.PhaseMain1, rules.PhaseCombat, rules.PhaseMain2,
		rules.PhaseEnd, rules.PhaseCleanup, rules.PhaseBegin,
	}
	for _, expected := range want {
		phase, _ := tc.AdvancePhase(alice)
		assert.Equal(t, expected, phase)
	}
	assert.Equal(t, 2, tc.TurnNumber())
	assert.Equal(t, alice, tc.ActivePlayer())
}
