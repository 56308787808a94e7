package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombatWindow_OpponentGetsFirstPriority(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")

	assert.Equal(t, "bob", w.Holder)
	assert.Equal(t, StageAction, w.Stage)
}

func TestCombatWindow_TwoActionPassesResolve(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")

	resolved, err := w.Pass("bob", "alice")
	require.NoError(t, err)
	assert.False(t, resolved)
	assert.Equal(t, "alice", w.Holder)

	resolved, err = w.Pass("alice", "bob")
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.True(t, w.Closed)
}

func TestCombatWindow_PlayFlipsToReaction(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")

	require.NoError(t, w.RecordPlay("bob", "alice"))
	assert.Equal(t, StageReaction, w.Stage)
	assert.Equal(t, "alice", w.Holder)
	assert.Equal(t, 0, w.ActionPasses)
}

func TestCombatWindow_ReactionPassReturnsToLastActor(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")

	require.NoError(t, w.RecordPlay("bob", "alice"))

	resolved, err := w.Pass("alice", "bob")
	require.NoError(t, err)
	assert.False(t, resolved)
	assert.Equal(t, "bob", w.Holder)
	assert.Equal(t, StageAction, w.Stage)
}

func TestCombatWindow_PlayResetsPassCount(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")

	// One action pass, then a play: the engagement must need two fresh
	// action passes to resolve.
	_, err := w.Pass("bob", "alice")
	require.NoError(t, err)
	require.NoError(t, w.RecordPlay("alice", "bob"))

	resolved, err := w.Pass("bob", "alice")
	require.NoError(t, err)
	assert.False(t, resolved)

	resolved, err = w.Pass("alice", "bob")
	require.NoError(t, err)
	assert.False(t, resolved)

	resolved, err = w.Pass("bob", "alice")
	require.NoError(t, err)
	assert.True(t, resolved)
}

func TestCombatWindow_WrongHolderRejected(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")

	_, err := w.Pass("alice", "bob")
	assert.Error(t, err)

	err = w.RecordPlay("alice", "bob")
	assert.Error(t, err)
}

func TestCombatWindow_ClosedRejectsActions(t *testing.T) {
	w := NewCombatWindow("eng-1", "bf-1", "alice", "bob")
	w.Closed = true

	_, err := w.Pass("bob", "alice")
	assert.Error(t, err)
}
