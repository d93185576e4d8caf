package pikere

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Disassemble renders a compiled program as one human-readable line per
// instruction, in the style of an objdump listing: offset, mnemonic,
// operands.
func (p *CompiledRegex) Disassemble() string {
	var b strings.Builder
	pc := 0
	for pc < len(p.Code) {
		start := pc
		op := Opcode(p.Code[pc])
		pc++

		fmt.Fprintf(&b, "%04d  ", start)

		switch op {
		case OpMatch:
			b.WriteString("match")
		case OpLiteralOp:
			r, n := utf8.DecodeRune(p.Code[pc:])
			pc += n
			fmt.Fprintf(&b, "literal %q", r)
		case OpAnyCharOp:
			b.WriteString("any")
		case OpCharRangeOp, OpNegativeCharRangeOp:
			mnemonic := "class"
			if op == OpNegativeCharRangeOp {
				mnemonic = "nclass"
			}
			singles := int(p.Code[pc])
			ranges := int(p.Code[pc+1])
			pc += 2
			fmt.Fprintf(&b, "%s", mnemonic)
			for i := 0; i < singles; i++ {
				r, n := utf8.DecodeRune(p.Code[pc:])
				pc += n
				fmt.Fprintf(&b, " %q", r)
			}
			for i := 0; i < ranges; i++ {
				lo, n1 := utf8.DecodeRune(p.Code[pc:])
				pc += n1
				hi, n2 := utf8.DecodeRune(p.Code[pc:])
				pc += n2
				fmt.Fprintf(&b, " %q-%q", lo, hi)
			}
		case OpJump:
			target := readOffset(p.Code, pc)
			pc += offsetWidth
			fmt.Fprintf(&b, "jump %04d", target)
		case OpSplitParent:
			target := readOffset(p.Code, pc)
			pc += offsetWidth
			fmt.Fprintf(&b, "split_parent %04d, %04d", start+1+offsetWidth, target)
		case OpSplitChild:
			target := readOffset(p.Code, pc)
			pc += offsetWidth
			fmt.Fprintf(&b, "split_child %04d, %04d", target, start+1+offsetWidth)
		case OpSave:
			slot := p.Code[pc]
			pc++
			fmt.Fprintf(&b, "save %d", slot)
		case OpLineStartOp:
			b.WriteString("line_start")
		case OpLineEndOp:
			b.WriteString("line_end")
		case OpWordBoundaryOp:
			b.WriteString("word_boundary")
		case OpNotWordBoundaryOp:
			b.WriteString("not_word_boundary")
		case OpSubjectBeginOp:
			b.WriteString("subject_begin")
		case OpSubjectEndOp:
			b.WriteString("subject_end")
		default:
			fmt.Fprintf(&b, "??? (%d)", op)
		}

		if start == p.PrefixEnd {
			b.WriteString("  ; program start (anchored entry)")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
