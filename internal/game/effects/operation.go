package effects

// OpType is the closed set of effect operation types the interpreter can
// execute. Card definitions arrive from the catalog with these tags
// already resolved; the engine never parses rules text. Unknown tags are
// logged and skipped, never fatal.
type OpType string

const (
	OpDraw                OpType = "draw"
	OpDiscard             OpType = "discard"
	OpMill                OpType = "mill"
	OpStatModify          OpType = "stat_modify"
	OpDamage              OpType = "damage"
	OpHeal                OpType = "heal"
	OpSummon              OpType = "summon"
	OpReturnToHand        OpType = "return_to_hand"
	OpReturnFromGraveyard OpType = "return_from_graveyard"
	OpRemovePermanent     OpType = "remove_permanent"
	OpMoveUnit            OpType = "move_unit"
	OpGainRune            OpType = "gain_rune"
	OpSpendRune           OpType = "spend_rune"
	OpShield              OpType = "shield"
	OpChannelRune         OpType = "channel_rune"
	OpRecycle             OpType = "recycle"
	OpSearch              OpType = "search"
	OpPriority            OpType = "priority"
	OpLegend              OpType = "legend"
	OpAttachGear          OpType = "attach_gear"
	OpTransform           OpType = "transform"
	OpMulliganAdjust      OpType = "mulligan_adjust"
	OpGeneric             OpType = "generic"
)

// TargetHint narrows what an operation may legally target.
type TargetHint string

const (
	TargetSelf        TargetHint = "self"
	TargetAlly        TargetHint = "ally"
	TargetEnemy       TargetHint = "enemy"
	TargetAny         TargetHint = "any"
	TargetBattlefield TargetHint = "battlefield"
)

// TokenSpec describes a unit token an operation can create, carrying
// everything needed to build the token without a catalog entry.
type TokenSpec struct {
	Name      string
	Might     int
	Toughness int
	Tags      []string
}

// Operation is a single data-driven effect step. Operations execute
// strictly in list order; Metadata carries free-form, catalog-resolved
// details (e.g. a named special-case handler).
type Operation struct {
	Type     OpType
	Target   TargetHint
	Amount   int
	Metadata map[string]string
	Token    *TokenSpec
}

// Meta returns the named metadata entry or "" when absent.
func (op Operation) Meta(key string) string {
	if op.Metadata == nil {
		return ""
	}
	return op.Metadata[key]
}

// NeedsBoardTarget reports whether the operation acts on a specific board
// card and therefore requires target resolution before it can apply.
func (op Operation) NeedsBoardTarget() bool {
	switch op.Type {
	case OpDamage, OpHeal, OpStatModify, OpShield, OpReturnToHand,
		OpRemovePermanent, OpMoveUnit, OpAttachGear, OpTransform:
		return op.Target != TargetSelf && op.Target != TargetBattlefield
	}
	return false
}

// CopyOps returns a deep copy of an operation list. Pending effects hold
// their own copy so later catalog mutations can never reach a suspended
// continuation.
func CopyOps(ops []Operation) []Operation {
	copied := make([]Operation, len(ops))
	for i, op := range ops {
		copied[i] = op
		if op.Metadata != nil {
			copied[i].Metadata = make(map[string]string, len(op.Metadata))
			for k, v := range op.Metadata {
				copied[i].Metadata[k] = v
			}
		}
		if op.Token != nil {
			token := *op.Token
			token.Tags = append([]string(nil), op.Token.Tags...)
			copied[i].Token = &token
		}
	}
	return copied
}
