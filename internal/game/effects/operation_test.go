package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsBoardTarget(t *testing.T) {
	assert.True(t, Operation{Type: OpDamage, Target: TargetEnemy}.NeedsBoardTarget())
	assert.True(t, Operation{Type: OpStatModify, Target: TargetAny}.NeedsBoardTarget())

	assert.False(t, Operation{Type: OpDamage, Target: TargetSelf}.NeedsBoardTarget())
	assert.False(t, Operation{Type: OpDraw, Target: TargetSelf}.NeedsBoardTarget())
	assert.False(t, Operation{Type: OpMoveUnit, Target: TargetBattlefield}.NeedsBoardTarget())
}

func TestCopyOps_IsDeep(t *testing.T) {
	ops := []Operation{
		{
			Type:     OpSummon,
			Metadata: map[string]string{"tag": "token"},
			Token:    &TokenSpec{Name: "Recruit", Might: 1, Toughness: 1, Tags: []string{"soldier"}},
		},
	}

	copied := CopyOps(ops)
	copied[0].Metadata["tag"] = "changed"
	copied[0].Token.Tags[0] = "changed"
	copied[0].Token.Might = 9

	assert.Equal(t, "token", ops[0].Metadata["tag"])
	assert.Equal(t, "soldier", ops[0].Token.Tags[0])
	assert.Equal(t, 1, ops[0].Token.Might)
}

func TestPending_AdvanceOnlyForward(t *testing.T) {
	pending := NewPending("p1", PendingTarget, "alice", []Operation{
		{Type: OpDamage, Target: TargetEnemy, Amount: 2},
		{Type: OpDraw, Target: TargetSelf, Amount: 1},
	}, 0, Context{SourceCardID: "card-1"})

	require.NoError(t, pending.Advance(1))
	assert.Error(t, pending.Advance(0))
	assert.Equal(t, 1, pending.ResumeIndex)
}

func TestPending_SuspendedOp(t *testing.T) {
	pending := NewPending("p1", PendingTarget, "alice", []Operation{
		{Type: OpDamage, Target: TargetEnemy, Amount: 2},
	}, 0, Context{})

	op, ok := pending.SuspendedOp()
	require.True(t, ok)
	assert.Equal(t, OpDamage, op.Type)

	pending.ResumeIndex = 5
	_, ok = pending.SuspendedOp()
	assert.False(t, ok)
}

func TestContext_CopyIsDeep(t *testing.T) {
	ctx := Context{TargetIDs: []string{"a", "b"}}
	copied := ctx.Copy()
	copied.TargetIDs[0] = "changed"

	assert.Equal(t, "a", ctx.TargetIDs[0])
}
