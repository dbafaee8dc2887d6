package mir

// BasicBlock is a maximal run of instructions with a single entry and,
// at most, one terminator at its end. Only the last instruction may be
// a Jump or a Branch; a Message at LevelError also terminates the
// block (it has no successors, enforced by the CFG, not by the slice
// itself).
//
// Grounded on MIR::BasicBlock (mir/mir.hpp upstream), adapted from an
// intrusive std::list to a plain Go slice since nothing here needs
// stable iterators across mutation — passes rebuild the slice instead.
type BasicBlock struct {
	Instructions []Object
}

// NewBasicBlock returns an empty block.
func NewBasicBlock() *BasicBlock { return &BasicBlock{} }

// Append adds an instruction to the end of the block.
func (b *BasicBlock) Append(o Object) { b.Instructions = append(b.Instructions, o) }

// Terminator returns the block's last instruction if it is a Jump or
// Branch, and nil otherwise (an empty terminator means program end, per
// spec §3).
func (b *BasicBlock) Terminator() Object {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	switch last.(type) {
	case *Jump, *Branch:
		return last
	default:
		return nil
	}
}

// HasErrorMessage reports whether the block contains a LevelError
// Message and returns its index, which terminates the block per the
// dead-code-removal invariant.
func (b *BasicBlock) HasErrorMessage() (int, bool) {
	for i, instr := range b.Instructions {
		if m, ok := instr.(*Message); ok && m.Level == LevelError {
			return i, true
		}
	}
	return 0, false
}

// Truncate drops every instruction after index i (inclusive keep),
// used by dead-code removal once an error message is found.
func (b *BasicBlock) Truncate(i int) {
	b.Instructions = b.Instructions[:i+1]
}
