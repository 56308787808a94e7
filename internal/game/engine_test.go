package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runeclash/duel-server-go/internal/game/rules"
)

func TestInitializeGame_RequiresTwoDistinctPlayers(t *testing.T) {
	e := newTestEngine(t)
	setups := defaultSetups()

	err := e.InitializeGame("m", setups[:1])
	require.Error(t, err)

	setups[1].ID = setups[0].ID
	err = e.InitializeGame("m", setups)
	require.Error(t, err)
}

func TestInitializeGame_DealsOpeningHands(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))

	for _, p := range e.state.players {
		assert.Len(t, p.Hand, 4)
		assert.Len(t, p.Deck, 6)
		assert.Len(t, p.RuneDeck, 8)
	}
	assert.Equal(t, StatusCoinFlip, e.state.status)
	assert.Len(t, e.state.unresolvedPrompts(PromptCoinFlip), 2)
}

func TestInitiative_ShieldBeatsBlade(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))

	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceShield))

	assert.Equal(t, bob, e.state.currentPlayer().ID)
	aliceState, err := e.state.player(alice)
	require.NoError(t, err)
	assert.True(t, aliceState.BonusRuneNextTurn, "initiative loser gets the bonus rune")
}

func TestInitiative_TieForcesRematch(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))

	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceRing))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceRing))

	assert.Equal(t, StatusCoinFlip, e.state.status)
	assert.Len(t, e.state.unresolvedPrompts(PromptCoinFlip), 2)
	for _, p := range e.state.players {
		assert.Nil(t, p.InitiativeChoice)
	}

	// The rerun can be decisive.
	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceRing))
	assert.Equal(t, alice, e.state.currentPlayer().ID, "blade beats ring")
}

func TestInitiative_RejectsInvalidChoice(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))
	require.Error(t, e.SubmitInitiativeChoice(alice, rules.InitiativeChoice(7)))
}

func TestBattlefieldSelection_AutoAssignsSoleOption(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))
	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceShield))

	// Both players had exactly one battlefield option, so selection
	// completes without prompting and the mulligan opens.
	assert.Equal(t, StatusMulligan, e.state.status)
	require.Len(t, e.state.battlefields, 2)
	assert.Equal(t, "anvil", e.state.battlefields[0].Card.ID)
	assert.Equal(t, "spire", e.state.battlefields[1].Card.ID)
	assert.Empty(t, e.state.battlefields[0].ControllerID)
}

func TestMulligan_RecyclesToDeckBottom(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))
	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceShield))

	aliceState, err := e.state.player(alice)
	require.NoError(t, err)
	setAside := []string{aliceState.Hand[0].ID, aliceState.Hand[1].ID}

	require.NoError(t, e.SubmitMulligan(alice, setAside))

	assert.Len(t, aliceState.Hand, 4, "replacements drawn for set-aside cards")
	require.Len(t, aliceState.Deck, 6)
	bottom := []string{aliceState.Deck[4].ID, aliceState.Deck[5].ID}
	assert.Equal(t, setAside, bottom, "set-aside cards recycle to the deck bottom")
}

func TestMulligan_RejectsTooManyCards(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))
	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceShield))

	aliceState, err := e.state.player(alice)
	require.NoError(t, err)
	three := []string{aliceState.Hand[0].ID, aliceState.Hand[1].ID, aliceState.Hand[2].ID}
	require.Error(t, e.SubmitMulligan(alice, three))
	assert.Len(t, aliceState.Hand, 4, "rejected mulligan leaves the hand untouched")
}

func TestFirstTurn_ChannelsAndDraws(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	bobState, err := e.state.player(bob)
	require.NoError(t, err)
	assert.Len(t, bobState.Channeled, 1)
	assert.Len(t, bobState.Hand, 5)
	assert.Equal(t, 1, e.state.turnNumber())
}

func TestVictoryPoints_ClampAndWin(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	gs := e.state
	bobState, err := gs.player(bob)
	require.NoError(t, err)

	e.awardVictoryPoints(gs, bobState, 20, "test surge")

	assert.Equal(t, gs.victoryScore, bobState.VictoryPoints, "points clamp at the victory score")
	assert.Equal(t, StatusWinnerDetermined, gs.status)

	result, err := e.GetMatchResult()
	require.NoError(t, err)
	assert.Equal(t, bob, result.WinnerID)
	assert.Equal(t, ReasonVictory, result.Reason)
}

func TestDeckOut_EndsMatchWithBurnOut(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	gs := e.state
	bobState, err := gs.player(bob)
	require.NoError(t, err)
	bobState.Deck = nil
	handBefore := len(bobState.Hand)

	e.drawCards(gs, bobState, 1)

	assert.Equal(t, StatusWinnerDetermined, gs.status)
	result, err := e.GetMatchResult()
	require.NoError(t, err)
	assert.Equal(t, alice, result.WinnerID)
	assert.Equal(t, ReasonBurnOut, result.Reason)
	assert.Equal(t, handBefore, len(bobState.Hand), "no partial draw on deck-out")
}

func TestConcede(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	require.NoError(t, e.ConcedeMatch(bob))

	result, err := e.GetMatchResult()
	require.NoError(t, err)
	assert.Equal(t, alice, result.WinnerID)
	assert.Equal(t, ReasonConcede, result.Reason)

	// Terminal state rejects further mutation.
	require.Error(t, e.ProceedToNextPhase(alice))
	require.Error(t, e.PostChat(alice, "gg"))

	require.NoError(t, e.CompleteMatch())
	assert.Equal(t, StatusCompleted, e.state.status)
}

func TestPostChat_Bounded(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	require.Error(t, e.PostChat(alice, ""))
	require.NoError(t, e.PostChat(alice, "good luck"))
	require.NoError(t, e.PostChat(bob, "have fun"))
	assert.Len(t, e.state.chatLog.list(), 2)
}

func TestCanPlayerAct(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.InitializeGame("m", defaultSetups()))

	// Both players hold coin-flip prompts.
	assert.True(t, e.CanPlayerAct(alice))
	assert.True(t, e.CanPlayerAct(bob))

	require.NoError(t, e.SubmitInitiativeChoice(alice, rules.ChoiceBlade))
	assert.False(t, e.CanPlayerAct(alice))

	require.NoError(t, e.SubmitInitiativeChoice(bob, rules.ChoiceShield))
	require.NoError(t, e.SubmitMulligan(alice, nil))
	require.NoError(t, e.SubmitMulligan(bob, nil))

	// Main phase: only the active player may act.
	assert.True(t, e.CanPlayerAct(bob))
	assert.False(t, e.CanPlayerAct(alice))
}
