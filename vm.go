package pikere

import (
	"encoding/binary"
	"unicode/utf8"
)

func readOffset(code []byte, pos int) uint32 {
	return binary.LittleEndian.Uint32(code[pos : pos+offsetWidth])
}

// Mode selects whether exec requires the whole input to match or may
// match any substring.
type Mode int

const (
	ModeSearch Mode = iota
	ModeMatch
)

// Greediness selects leftmost-first vs. leftmost-longest semantics.
type Greediness int

const (
	First Greediness = iota
	Longest
)

// thread is a single live NFA branch: a program counter plus a private
// capture snapshot. Its priority is its position in the live thread list
// — lower index wins ties.
type thread struct {
	pc    int
	saves []int
}

func cloneSaves(saves []int) []int {
	c := make([]int, len(saves))
	copy(c, saves)
	return c
}

// machine is one single-threaded, synchronous run of a CompiledRegex
// against one input. It owns no state beyond this call.
type machine struct {
	code  []byte
	input []byte
	clist []thread
	nlist []thread
	// gen[pc] records the generation a pc was last claimed in, so that
	// two live threads never end up parked on the same instruction — an
	// O(1) claim check in place of a linear scan over the live set.
	gen      []int
	genID    int
	anchored bool
}

// Exec runs the program against input and reports whether it matched, plus
// a flat capture-offset array of length SaveCount (unset slots are -1).
func (p *CompiledRegex) Exec(input []byte, mode Mode, greediness Greediness) (bool, []int) {
	vm := &machine{
		code:     p.Code,
		input:    input,
		gen:      make([]int, len(p.Code)),
		anchored: mode == ModeMatch,
	}

	start := 0
	if vm.anchored {
		start = p.PrefixEnd
	}

	initSaves := make([]int, p.SaveCount)
	for i := range initSaves {
		initSaves[i] = -1
	}

	vm.genID++
	vm.addThread(&vm.clist, start, initSaves, 0)

	found := false
	var result []int

	pos := 0
	for {
		atEnd := pos >= len(vm.input)
		var cur rune
		var size int
		if !atEnd {
			cur, size = utf8.DecodeRune(vm.input[pos:])
		}

		vm.genID++
		vm.nlist = vm.nlist[:0]

		matchedHere := false
		for i := 0; i < len(vm.clist); i++ {
			t := vm.clist[i]
			switch Opcode(vm.code[t.pc]) {
			case OpMatch:
				if vm.anchored && !atEnd {
					continue // a Match mode result must consume the entire input
				}
				if greediness == Longest {
					// an earlier start wins, then a later end; only threads that
					// started where the best match started stay alive
					if !found || t.saves[0] < result[0] || (t.saves[0] == result[0] && t.saves[1] > result[1]) {
						found, result = true, t.saves
					}
					kept := vm.clist[:i+1]
					for _, u := range vm.clist[i+1:] {
						if u.saves[0] == result[0] {
							kept = append(kept, u)
						}
					}
					vm.clist = kept
					continue
				}
				found = true
				result = t.saves
				matchedHere = true
				// discard the remaining, lower-priority threads at this generation;
				// higher-priority threads already advanced into nlist may still match
				vm.clist = vm.clist[:i]
			case OpLiteralOp:
				r, n := utf8.DecodeRune(vm.code[t.pc+1:])
				if !atEnd && cur == r {
					vm.addThread(&vm.nlist, t.pc+1+n, t.saves, pos+size)
				}
			case OpAnyCharOp:
				if !atEnd {
					vm.addThread(&vm.nlist, t.pc+1, t.saves, pos+size)
				}
			case OpCharRangeOp, OpNegativeCharRangeOp:
				next, matched := vm.testCharClass(t.pc, cur, atEnd)
				if matched {
					vm.addThread(&vm.nlist, next, t.saves, pos+size)
				}
			}
			if matchedHere {
				break
			}
		}

		vm.clist, vm.nlist = vm.nlist, vm.clist
		if atEnd {
			break
		}
		if len(vm.clist) == 0 && !found {
			return false, nil
		}
		if len(vm.clist) == 0 {
			break
		}
		pos += size
	}

	return found, result
}

// testCharClass evaluates a CharRange/NegativeCharRange instruction against
// cur, returning the pc just past its payload and whether it consumes.
func (vm *machine) testCharClass(pc int, cur rune, atEnd bool) (next int, matched bool) {
	negative := Opcode(vm.code[pc]) == OpNegativeCharRangeOp
	singles := int(vm.code[pc+1])
	rangeCount := int(vm.code[pc+2])
	p := pc + 3

	found := false
	for i := 0; i < singles; i++ {
		r, n := utf8.DecodeRune(vm.code[p:])
		p += n
		if !atEnd && r == cur {
			found = true
		}
	}
	for i := 0; i < rangeCount; i++ {
		lo, n := utf8.DecodeRune(vm.code[p:])
		p += n
		hi, n2 := utf8.DecodeRune(vm.code[p:])
		p += n2
		if !atEnd && cur >= lo && cur <= hi {
			found = true
		}
	}

	if atEnd {
		return p, false
	}
	if found != negative {
		return p, true
	}
	return p, false
}

// addThread follows every non-consuming instruction reachable from pc by
// epsilon transitions, appending a thread to list only when it reaches a
// consuming instruction or Match. Two live threads never end up at the
// same pc within one generation: claiming is tracked by vm.gen.
func (vm *machine) addThread(list *[]thread, pc int, saves []int, pos int) {
	if vm.gen[pc] == vm.genID {
		return
	}
	vm.gen[pc] = vm.genID

	switch Opcode(vm.code[pc]) {
	case OpJump:
		target := int(readOffset(vm.code, pc+1))
		vm.addThread(list, target, saves, pos)

	case OpSplitParent:
		fallthroughPC := pc + 1 + offsetWidth
		target := int(readOffset(vm.code, pc+1))
		vm.addThread(list, fallthroughPC, saves, pos) // higher priority: parent continues
		vm.addThread(list, target, cloneSaves(saves), pos)

	case OpSplitChild:
		fallthroughPC := pc + 1 + offsetWidth
		target := int(readOffset(vm.code, pc+1))
		vm.addThread(list, target, saves, pos) // higher priority: child branch
		vm.addThread(list, fallthroughPC, cloneSaves(saves), pos)

	case OpSave:
		slot := int(vm.code[pc+1])
		newSaves := cloneSaves(saves)
		newSaves[slot] = pos
		vm.addThread(list, pc+2, newSaves, pos)

	case OpLineStartOp:
		if vm.isLineStart(pos) {
			vm.addThread(list, pc+1, saves, pos)
		}
	case OpLineEndOp:
		if vm.isLineEnd(pos) {
			vm.addThread(list, pc+1, saves, pos)
		}
	case OpWordBoundaryOp:
		if vm.isWordBoundary(pos) {
			vm.addThread(list, pc+1, saves, pos)
		}
	case OpNotWordBoundaryOp:
		if !vm.isWordBoundary(pos) {
			vm.addThread(list, pc+1, saves, pos)
		}
	case OpSubjectBeginOp:
		if pos == 0 {
			vm.addThread(list, pc+1, saves, pos)
		}
	case OpSubjectEndOp:
		if pos == len(vm.input) {
			vm.addThread(list, pc+1, saves, pos)
		}

	default: // OpMatch, OpLiteralOp, OpAnyCharOp, OpCharRangeOp, OpNegativeCharRangeOp
		*list = append(*list, thread{pc: pc, saves: saves})
	}
}

func (vm *machine) isLineStart(pos int) bool {
	if pos == 0 {
		return true
	}
	return vm.input[pos-1] == '\n'
}

func (vm *machine) isLineEnd(pos int) bool {
	if pos == len(vm.input) {
		return true
	}
	return vm.input[pos] == '\n'
}

func isWordByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func (vm *machine) isWordBoundary(pos int) bool {
	if pos == 0 || pos == len(vm.input) {
		prevIsWord := pos != 0 && isWordByte(vm.input[pos-1])
		curIsWord := pos != len(vm.input) && isWordByte(vm.input[pos])
		return prevIsWord != curIsWord
	}
	return isWordByte(vm.input[pos-1]) != isWordByte(vm.input[pos])
}
