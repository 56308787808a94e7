package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/runeclash/duel-server-go/internal/config"
	"github.com/runeclash/duel-server-go/internal/game/effects"
	"github.com/runeclash/duel-server-go/internal/game/rules"
)

func TestSnapshot_GobRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	require.NoError(t, e.PlayCard(bob, PlayCardRequest{CardID: "scout"}))

	snap, err := e.GetGameState()
	require.NoError(t, err)

	data, err := SerializeToBytes(snap)
	require.NoError(t, err)

	decoded, err := DeserializeFromBytes(data)
	require.NoError(t, err)

	sumA, err := SnapshotChecksum(snap)
	require.NoError(t, err)
	sumB, err := SnapshotChecksum(decoded)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB, "gob round-trip preserves the snapshot byte for byte")
}

func TestFromSerializedState_LosslessRestore(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	require.NoError(t, e.PlayCard(bob, PlayCardRequest{CardID: "scout"}))

	snap, err := e.GetGameState()
	require.NoError(t, err)

	restored, err := FromSerializedState(snap, e.catalog, config.DefaultRules(), zaptest.NewLogger(t))
	require.NoError(t, err)

	snapAgain, err := restored.GetGameState()
	require.NoError(t, err)

	sumA, err := SnapshotChecksum(snap)
	require.NoError(t, err)
	sumB, err := SnapshotChecksum(snapAgain)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB, "restore then re-export is lossless")
}

func TestFromSerializedState_IdenticalSubsequentBehavior(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	snap, err := e.GetGameState()
	require.NoError(t, err)
	restored, err := FromSerializedState(snap, e.catalog, config.DefaultRules(), zaptest.NewLogger(t))
	require.NoError(t, err)

	// The same legal operation produces the same result on both engines.
	require.NoError(t, e.ProceedToNextPhase(bob))
	require.NoError(t, restored.ProceedToNextPhase(bob))

	assert.Equal(t, e.state.turns.CurrentPhase(), restored.state.turns.CurrentPhase())
	assert.Equal(t, e.state.turns.ActivePlayer(), restored.state.turns.ActivePlayer())
	assert.Equal(t, e.state.turnNumber(), restored.state.turnNumber())

	origBob, _ := e.state.player(bob)
	restBob, _ := restored.state.player(bob)
	assert.Equal(t, len(origBob.Hand), len(restBob.Hand))
	assert.Equal(t, len(origBob.Channeled), len(restBob.Channeled))
}

func TestFromSerializedState_RestoresSuspendedEffect(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	target := addUnit(t, e, alice, "warden")
	require.NoError(t, e.PlayCard(bob, PlayCardRequest{CardID: "bolt"}))
	prompts := e.state.unresolvedPrompts(PromptTarget)
	require.Len(t, prompts, 1)

	snap, err := e.GetGameState()
	require.NoError(t, err)
	restored, err := FromSerializedState(snap, e.catalog, config.DefaultRules(), zaptest.NewLogger(t))
	require.NoError(t, err)

	// The continuation survives and resumes on the restored engine.
	require.NoError(t, restored.SubmitTargetSelection(bob, prompts[0].ID, []string{target.InstanceID}))

	restoredAlice, _ := restored.state.player(alice)
	require.Len(t, restoredAlice.Units, 1)
	assert.Equal(t, 2, restoredAlice.Units[0].CurrentToughness)
	assert.Empty(t, restored.state.pending)
}

func TestFromSerializedState_RestoresTokens(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)
	gs := e.state
	bobState, _ := gs.player(bob)

	ops := []effects.Operation{{
		Type:   effects.OpSummon,
		Amount: 1,
		Token:  &effects.TokenSpec{Name: "Ember Sprite", Might: 1, Toughness: 1, Tags: []string{"elemental"}},
	}}
	e.runOps(gs, bob, nil, "", ops, effects.Context{SourceCardID: "bolt"})
	require.Len(t, bobState.Units, 1)

	snap, err := e.GetGameState()
	require.NoError(t, err)

	// The token template lives in no catalog, so the snapshot must carry it.
	restored, err := FromSerializedState(snap, e.catalog, config.DefaultRules(), zaptest.NewLogger(t))
	require.NoError(t, err)

	restoredBob, _ := restored.state.player(bob)
	require.Len(t, restoredBob.Units, 1)
	token := restoredBob.Units[0]
	assert.Equal(t, bobState.Units[0].InstanceID, token.InstanceID)
	assert.Equal(t, "Ember Sprite", token.Card.Name)
	assert.Equal(t, []string{"elemental"}, token.Card.Tags)
	assert.True(t, token.Card.Flags.Token)

	snapAgain, err := restored.GetGameState()
	require.NoError(t, err)
	sumA, err := SnapshotChecksum(snap)
	require.NoError(t, err)
	sumB, err := SnapshotChecksum(snapAgain)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB, "a live token survives the round trip")
}

func TestFromSerializedState_BackfillsDefaults(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	snap, err := e.GetGameState()
	require.NoError(t, err)

	// An older snapshot may miss maps and the victory score.
	snap.VictoryScore = 0
	for i := range snap.Battlefields {
		snap.Battlefields[i].LastConqueredTurn = nil
		snap.Battlefields[i].EffectState = nil
	}

	restored, err := FromSerializedState(snap, e.catalog, config.DefaultRules(), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultRules().VictoryScore, restored.state.victoryScore)
	for _, bf := range restored.state.battlefields {
		assert.NotNil(t, bf.LastConqueredTurn)
		assert.NotNil(t, bf.EffectState)
	}
}

func TestFromSerializedState_RejectsBadInput(t *testing.T) {
	_, err := FromSerializedState(nil, testCatalog(t), config.DefaultRules(), nil)
	require.Error(t, err)

	e := newTestEngine(t)
	startDuel(t, e)
	snap, err := e.GetGameState()
	require.NoError(t, err)

	_, err = FromSerializedState(snap, nil, config.DefaultRules(), nil)
	require.Error(t, err)

	snap.Players[0].Deck = append(snap.Players[0].Deck, "no-such-card")
	_, err = FromSerializedState(snap, testCatalog(t), config.DefaultRules(), nil)
	require.Error(t, err)
}

func TestSnapshotHistory_RecordsPerTurnChecksums(t *testing.T) {
	e := newTestEngine(t)
	startDuel(t, e)

	// MAIN_1 -> COMBAT -> MAIN_2 -> END -> CLEANUP -> next turn.
	require.NoError(t, e.ProceedToNextPhase(bob))
	require.NoError(t, e.ProceedToNextPhase(bob))

	require.Equal(t, 2, e.state.turnNumber())
	require.Len(t, e.state.history, 1)
	assert.Equal(t, 1, e.state.history[0].Turn)
	assert.NotEmpty(t, e.state.history[0].Checksum)
	assert.Equal(t, rules.PhaseMain1, e.state.turns.CurrentPhase())
}
