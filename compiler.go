package pikere

import (
	"encoding/binary"
	"unicode/utf8"
)

// Opcode is a single bytecode instruction tag.
type Opcode byte

const (
	OpMatch Opcode = iota
	OpLiteralOp
	OpAnyCharOp
	OpCharRangeOp
	OpNegativeCharRangeOp
	OpJump
	OpSplitParent
	OpSplitChild
	OpSave
	OpLineStartOp
	OpLineEndOp
	OpWordBoundaryOp
	OpNotWordBoundaryOp
	OpSubjectBeginOp
	OpSubjectEndOp
)

// offsetWidth is the fixed byte width of a backpatched jump/split offset.
const offsetWidth = 4

// CompiledRegex is an immutable, position-addressable bytecode program.
// It is safe for concurrent use across goroutines — every exec call owns
// its own VM state.
type CompiledRegex struct {
	Code      []byte
	SaveCount int // 2 * capture_count
	// PrefixEnd is the byte offset of the user program, past the
	// implicit search prefix. Anchored execution starts here.
	PrefixEnd int
}

type compiler struct {
	code   []byte
	ranges []CharClass
}

func (c *compiler) emitByte(b byte) int {
	pos := len(c.code)
	c.code = append(c.code, b)
	return pos
}

func (c *compiler) emitOp(op Opcode) int { return c.emitByte(byte(op)) }

// emitOffsetPlaceholder reserves offsetWidth bytes and returns their position
// so the caller can patch them later with patchOffset.
func (c *compiler) emitOffsetPlaceholder() int {
	pos := len(c.code)
	c.code = append(c.code, make([]byte, offsetWidth)...)
	return pos
}

func (c *compiler) patchOffset(pos int, target int) {
	binary.LittleEndian.PutUint32(c.code[pos:pos+offsetWidth], uint32(target))
}

func (c *compiler) emitRune(r rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	c.code = append(c.code, buf[:n]...)
}

// CompileAST lowers a parsed pattern into a bytecode program.
func CompileAST(p *ParsedRegex) *CompiledRegex {
	c := &compiler{ranges: p.Ranges}

	// Search prefix: an implicit, strongly-non-greedy `.*?` that lets
	// unanchored execution start the real program at any position.
	c.emitOp(OpSplitChild)
	splitChildOffset := c.emitOffsetPlaceholder()
	anyCharPos := c.emitOp(OpAnyCharOp)
	c.emitOp(OpSplitParent)
	splitParentOffset := c.emitOffsetPlaceholder()
	c.patchOffset(splitParentOffset, anyCharPos)

	prefixEnd := len(c.code)
	c.patchOffset(splitChildOffset, prefixEnd)

	c.compileNode(p.AST)
	c.emitOp(OpMatch)

	return &CompiledRegex{Code: c.code, SaveCount: 2 * p.CaptureCount, PrefixEnd: prefixEnd}
}

// CompilePattern parses then compiles a pattern in one step.
func CompilePattern(pattern string) (*CompiledRegex, error) {
	p, err := Parse(pattern)
	if err != nil {
		return nil, err
	}
	return CompileAST(p), nil
}

// compileNode emits a node with its quantifier applied. A capturing
// Sequence/Alternation's Save pair is part of the node's "bare" emission,
// so a repeated quantifier re-runs Save on every iteration — each loop
// around overwrites the capture with the most recent iteration's span.
func (c *compiler) compileNode(n *Node) {
	capturing := (n.Op == OpSequence || n.Op == OpAlternation) && n.Value != -1
	inner := func() {
		if capturing {
			c.emitOp(OpSave)
			c.emitByte(byte(2 * n.Value))
		}
		c.compileBare(n)
		if capturing {
			c.emitOp(OpSave)
			c.emitByte(byte(2*n.Value + 1))
		}
	}
	c.compileQuantified(n, inner)
}

// compileBare emits one occurrence of the node's content, ignoring its
// quantifier (the quantifier is handled by compileQuantified).
func (c *compiler) compileBare(n *Node) {
	switch n.Op {
	case OpLiteral:
		c.emitOp(OpLiteralOp)
		c.emitRune(rune(n.Value))
	case OpAnyChar:
		c.emitOp(OpAnyCharOp)
	case OpCharRange:
		c.emitCharClass(OpCharRangeOp, &c.ranges[n.Value])
	case OpNegativeCharRange:
		c.emitCharClass(OpNegativeCharRangeOp, &c.ranges[n.Value])
	case OpSequence:
		for _, child := range n.Children {
			c.compileNode(child)
		}
	case OpAlternation:
		c.emitOp(OpSplitParent)
		off1 := c.emitOffsetPlaceholder()
		c.compileNode(n.Children[0])
		c.emitOp(OpJump)
		off2 := c.emitOffsetPlaceholder()
		c.patchOffset(off1, len(c.code))
		c.compileNode(n.Children[1])
		c.patchOffset(off2, len(c.code))
	case OpLineStart:
		c.emitOp(OpLineStartOp)
	case OpLineEnd:
		c.emitOp(OpLineEndOp)
	case OpWordBoundary:
		c.emitOp(OpWordBoundaryOp)
	case OpNotWordBoundary:
		c.emitOp(OpNotWordBoundaryOp)
	case OpSubjectBegin:
		c.emitOp(OpSubjectBeginOp)
	case OpSubjectEnd:
		c.emitOp(OpSubjectEndOp)
	}
}

func (c *compiler) emitCharClass(op Opcode, class *CharClass) {
	var singles, ranges []CharRange
	for _, r := range class.Ranges {
		if r.Single() {
			singles = append(singles, r)
		} else {
			ranges = append(ranges, r)
		}
	}
	c.emitOp(op)
	c.emitByte(byte(len(singles)))
	c.emitByte(byte(len(ranges)))
	for _, r := range singles {
		c.emitRune(r.Min)
	}
	for _, r := range ranges {
		c.emitRune(r.Min)
		c.emitRune(r.Max)
	}
}

// compileQuantified wraps a single emission of a node's content according
// to its quantifier: Split_PrioritizeParent before a skippable segment
// makes matching greedy (the higher-priority branch enters the segment,
// the skip is the backup); Split_PrioritizeChild at a loop tail makes
// repetition prefer one more iteration over stopping.
func (c *compiler) compileQuantified(n *Node, inner func()) {
	q := n.Quantifier
	if q.Kind == QOne {
		inner()
		return
	}

	min := q.effectiveMin()
	max := q.effectiveMax()

	var endPatches []int

	if q.AllowsNone() {
		c.emitOp(OpSplitParent)
		endPatches = append(endPatches, c.emitOffsetPlaceholder())
	}

	innerPos := len(c.code)
	inner()
	for i := 1; i < min; i++ {
		innerPos = len(c.code)
		inner()
	}

	if q.AllowsInfiniteRepeat() {
		c.emitOp(OpSplitChild)
		c.emitOffsetAt(innerPos)
	} else {
		from := min
		if from < 1 {
			from = 1
		}
		for i := from; i < max; i++ {
			c.emitOp(OpSplitParent)
			endPatches = append(endPatches, c.emitOffsetPlaceholder())
			inner()
		}
	}

	end := len(c.code)
	for _, pos := range endPatches {
		c.patchOffset(pos, end)
	}
}

// emitOffsetAt emits a fixed-width offset whose value is already known
// (used for the back-edge of an infinite-repeat loop).
func (c *compiler) emitOffsetAt(target int) {
	pos := c.emitOffsetPlaceholder()
	c.patchOffset(pos, target)
}
