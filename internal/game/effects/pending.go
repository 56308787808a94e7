package effects

import "fmt"

// PendingKind distinguishes why an effect suspended.
type PendingKind string

const (
	// PendingDiscard awaits a discard selection from a player.
	PendingDiscard PendingKind = "discard"
	// PendingTarget awaits a target selection from a player.
	PendingTarget PendingKind = "target"
)

// Context is a reference-free snapshot of an interpreter run. Entities
// are stored by id only and re-resolved on resumption, since a card or
// battlefield may have moved or died while the prompt was outstanding.
type Context struct {
	SourceCardID     string
	SourceInstanceID string
	PlayerTargetID   string
	BattlefieldID    string
	TargetIDs        []string
}

// Copy returns a deep copy of the context.
func (c Context) Copy() Context {
	copied := c
	copied.TargetIDs = append([]string(nil), c.TargetIDs...)
	return copied
}

// Pending is a suspended, resumable effect execution. Its ID is shared
// with the prompt that suspended it. ResumeIndex is the index of the
// operation that suspended; resumption re-enters the list at
// ResumeIndex+1 after the resolved operation is applied.
type Pending struct {
	ID          string
	Kind        PendingKind
	CasterID    string
	Ops         []Operation
	ResumeIndex int
	Context     Context
	// Handler names a legacy special-case continuation (e.g. graveyard
	// return) invoked directly instead of re-entering the interpreter.
	Handler string
}

// NewPending creates a continuation record for a suspended execution.
func NewPending(id string, kind PendingKind, casterID string, ops []Operation, index int, ctx Context) *Pending {
	return &Pending{
		ID:          id,
		Kind:        kind,
		CasterID:    casterID,
		Ops:         CopyOps(ops),
		ResumeIndex: index,
		Context:     ctx.Copy(),
	}
}

// Advance moves the resume index forward. The index only ever increases;
// moving it backward is a programming error.
func (p *Pending) Advance(to int) error {
	if to < p.ResumeIndex {
		return fmt.Errorf("pending effect %s: resume index may not decrease (%d -> %d)", p.ID, p.ResumeIndex, to)
	}
	p.ResumeIndex = to
	return nil
}

// SuspendedOp returns the operation the execution suspended on.
func (p *Pending) SuspendedOp() (Operation, bool) {
	if p.ResumeIndex < 0 || p.ResumeIndex >= len(p.Ops) {
		return Operation{}, false
	}
	return p.Ops[p.ResumeIndex], true
}
