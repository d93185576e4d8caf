package pikere

import "unicode/utf8"

// scanner is a read-only UTF-8 code point cursor over a pattern string,
// kept deliberately small: every parse rule advances it by peeking and
// consuming one code point at a time.
type scanner struct {
	src string
	pos int // byte offset
}

func (s *scanner) atEnd() bool { return s.pos >= len(s.src) }

// peek returns the next code point without consuming it.
func (s *scanner) peek() (r rune, size int, ok bool) {
	if s.atEnd() {
		return 0, 0, false
	}
	r, size = utf8.DecodeRuneInString(s.src[s.pos:])
	if r == utf8.RuneError && size <= 1 {
		return 0, size, false
	}
	return r, size, true
}

// next consumes and returns the next code point.
func (s *scanner) next() (rune, bool) {
	r, size, ok := s.peek()
	if !ok {
		return 0, false
	}
	s.pos += size
	return r, true
}

// peekIs reports whether the next code point is exactly c, without consuming.
func (s *scanner) peekIs(c rune) bool {
	r, _, ok := s.peek()
	return ok && r == c
}

// consume consumes the next code point if it equals c.
func (s *scanner) consume(c rune) bool {
	if s.peekIs(c) {
		s.pos++
		return true
	}
	return false
}

func isSyntaxChar(r rune) bool {
	switch r {
	case '^', '$', '\\', '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|':
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

type parser struct {
	s            scanner
	captureCount int
	ranges       []CharClass
}

// Parse converts a textual pattern into a ParsedRegex, or returns a
// *SyntaxError describing why the pattern is malformed.
func Parse(pattern string) (*ParsedRegex, error) {
	if !utf8.ValidString(pattern) {
		return nil, newSyntaxError(ErrInvalidEncoding, 0, "invalid encoding")
	}

	p := &parser{
		s:            scanner{src: pattern},
		captureCount: 1,
	}

	root, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if !p.s.atEnd() {
		return nil, newSyntaxError(errSyntax, p.s.pos, "unexpected character")
	}
	root.Value = 0 // the implicit outermost group captures as group 0

	return &ParsedRegex{
		AST:          root,
		CaptureCount: p.captureCount,
		Ranges:       p.ranges,
	}, nil
}

// Disjunction := Alternative ('|' Disjunction)?
func (p *parser) parseDisjunction() (*Node, error) {
	left, err := p.parseAlternative()
	if err != nil {
		return nil, err
	}
	if !p.s.consume('|') {
		return left, nil
	}
	right, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	return &Node{
		Op:       OpAlternation,
		Value:    -1,
		Children: []*Node{left, right},
	}, nil
}

// Alternative := Term+  (an empty alternative is a parse error)
func (p *parser) parseAlternative() (*Node, error) {
	seq := &Node{Op: OpSequence, Value: -1}
	for {
		if p.s.atEnd() || p.s.peekIs('|') || p.s.peekIs(')') {
			break
		}
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		seq.Children = append(seq.Children, term)
	}
	if len(seq.Children) == 0 {
		return nil, newSyntaxError(ErrEmptyAlternative, p.s.pos, "empty alternative")
	}
	return seq, nil
}

// Term := Assertion | Atom Quantifier?
func (p *parser) parseTerm() (*Node, error) {
	if assertion, ok, err := p.parseAssertion(); ok || err != nil {
		return assertion, err
	}
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	q, err := p.parseQuantifier()
	if err != nil {
		return nil, err
	}
	atom.Quantifier = q
	return atom, nil
}

// Assertion := '^' | '$' | '\b' | '\B' | '\`' | '\''
func (p *parser) parseAssertion() (*Node, bool, error) {
	if p.s.consume('^') {
		return &Node{Op: OpLineStart, Quantifier: onceQuantifier}, true, nil
	}
	if p.s.consume('$') {
		return &Node{Op: OpLineEnd, Quantifier: onceQuantifier}, true, nil
	}
	if p.s.peekIs('\\') {
		save := p.s
		p.s.next()
		r, _, ok := p.s.peek()
		if ok {
			switch r {
			case 'b':
				p.s.next()
				return &Node{Op: OpWordBoundary, Quantifier: onceQuantifier}, true, nil
			case 'B':
				p.s.next()
				return &Node{Op: OpNotWordBoundary, Quantifier: onceQuantifier}, true, nil
			case '`':
				p.s.next()
				return &Node{Op: OpSubjectBegin, Quantifier: onceQuantifier}, true, nil
			case '\'':
				p.s.next()
				return &Node{Op: OpSubjectEnd, Quantifier: onceQuantifier}, true, nil
			}
		}
		p.s = save
	}
	return nil, false, nil
}

// Atom := '.' | '(' Disjunction ')' | '\' AtomEscape | '[' CharClass | LiteralChar
func (p *parser) parseAtom() (*Node, error) {
	startPos := p.s.pos
	r, _, ok := p.s.peek()
	if !ok {
		return nil, newSyntaxError(errSyntax, startPos, "unexpected end of pattern")
	}

	switch r {
	case '.':
		p.s.next()
		return &Node{Op: OpAnyChar, Quantifier: onceQuantifier}, nil
	case '(':
		p.s.next()
		idx := p.captureCount
		p.captureCount++
		inner, err := p.parseDisjunction()
		if err != nil {
			return nil, err
		}
		if !p.s.consume(')') {
			return nil, newSyntaxError(ErrUnclosedConstruct, startPos, "unclosed group")
		}
		inner.Value = int32(idx)
		inner.Quantifier = onceQuantifier
		return inner, nil
	case '\\':
		p.s.next()
		return p.parseAtomEscape()
	case '[':
		p.s.next()
		return p.parseCharClass()
	default:
		if isSyntaxChar(r) {
			return nil, newSyntaxError(errSyntax, startPos, "unexpected syntax character")
		}
		p.s.next()
		return &Node{Op: OpLiteral, Value: int32(r), Quantifier: onceQuantifier}, nil
	}
}

var controlEscapes = map[rune]rune{
	'f': '\f',
	'n': '\n',
	'r': '\r',
	't': '\t',
	'v': '\v',
}

// AtomEscape := one of f n r t v  OR  a SyntaxCharacter
func (p *parser) parseAtomEscape() (*Node, error) {
	startPos := p.s.pos
	r, ok := p.s.next()
	if !ok {
		return nil, newSyntaxError(ErrUnknownEscape, startPos, "dangling escape")
	}
	if mapped, isControl := controlEscapes[r]; isControl {
		return &Node{Op: OpLiteral, Value: int32(mapped), Quantifier: onceQuantifier}, nil
	}
	if isSyntaxChar(r) {
		return &Node{Op: OpLiteral, Value: int32(r), Quantifier: onceQuantifier}, nil
	}
	return nil, newSyntaxError(ErrUnknownEscape, startPos, "unknown escape")
}

// Quantifier := '*' | '+' | '?' | '{' Int? (',' Int?)? '}'
func (p *parser) parseQuantifier() (Quantifier, error) {
	switch {
	case p.s.consume('*'):
		return Quantifier{Kind: QZeroOrMore}, nil
	case p.s.consume('+'):
		return Quantifier{Kind: QOneOrMore}, nil
	case p.s.consume('?'):
		return Quantifier{Kind: QOptional}, nil
	case p.s.peekIs('{'):
		return p.parseCountedQuantifier()
	default:
		return onceQuantifier, nil
	}
}

func (p *parser) parseCountedQuantifier() (Quantifier, error) {
	startPos := p.s.pos
	p.s.next() // consume '{'

	min, haveMin := p.parseInt()
	if !p.s.consume(',') {
		if !p.s.consume('}') || !haveMin {
			return Quantifier{}, newSyntaxError(ErrUnclosedConstruct, startPos, "unclosed quantifier")
		}
		return Quantifier{Kind: QMinMax, Min: min, Max: min}, nil
	}
	max, haveMax := p.parseInt()
	if !p.s.consume('}') {
		return Quantifier{}, newSyntaxError(ErrUnclosedConstruct, startPos, "unclosed quantifier")
	}
	if !haveMin {
		min = -1
	}
	if !haveMax {
		max = -1
	}
	return Quantifier{Kind: QMinMax, Min: min, Max: max}, nil
}

func (p *parser) parseInt() (int, bool) {
	start := p.s.pos
	for {
		r, _, ok := p.s.peek()
		if !ok || !isDigit(r) {
			break
		}
		p.s.next()
	}
	if p.s.pos == start {
		return 0, false
	}
	n := 0
	for _, c := range p.s.src[start:p.s.pos] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// CharClass := '^'? (ClassItem)* ']'
// ClassItem := Codepoint ('-' Codepoint)?   # a bare '-' is a literal '-'
func (p *parser) parseCharClass() (*Node, error) {
	startPos := p.s.pos - 1 // position of the '['
	negated := p.s.consume('^')

	var ranges []CharRange
	for {
		if p.s.atEnd() {
			return nil, newSyntaxError(ErrUnclosedConstruct, startPos, "unclosed character class")
		}
		if p.s.consume(']') {
			break
		}
		lo, loPos, err := p.parseClassCodepoint()
		if err != nil {
			return nil, err
		}
		// A '-' encountered as an item's own lo-bound is always a literal
		// '-', never the start of a range: "[--a]" is the set {-, a}, not
		// the range '-' to 'a'.
		if lo == '-' || !p.s.peekIs('-') {
			ranges = append(ranges, CharRange{Min: lo})
			continue
		}
		// Lookahead: a trailing '-' right before ']' is a literal '-'.
		save := p.s
		p.s.next() // consume '-'
		if p.s.peekIs(']') {
			p.s = save
			ranges = append(ranges, CharRange{Min: lo})
			continue
		}
		hi, _, err := p.parseClassCodepoint()
		if err != nil {
			return nil, err
		}
		if hi < lo {
			return nil, newSyntaxError(ErrInvalidRange, loPos, "character range out of order")
		}
		if hi == lo {
			ranges = append(ranges, CharRange{Min: lo})
		} else {
			ranges = append(ranges, CharRange{Min: lo, Max: hi})
		}
	}

	// The bytecode encodes singles and multi-codepoint ranges as two
	// independent single-byte counts (see emitCharClass), so each is
	// capped at 255 separately rather than capping their sum.
	var singleCount, rangeCount int
	for _, rg := range ranges {
		if rg.Single() {
			singleCount++
		} else {
			rangeCount++
		}
	}
	if singleCount > 255 || rangeCount > 255 {
		return nil, newSyntaxError(ErrInvalidRange, startPos, "character class too large")
	}

	idx := len(p.ranges)
	p.ranges = append(p.ranges, CharClass{Ranges: ranges})

	op := OpCharRange
	if negated {
		op = OpNegativeCharRange
	}
	return &Node{Op: op, Value: int32(idx), Quantifier: onceQuantifier}, nil
}

// A bare '-' (not forming a range) is a literal '-'. Escapes are not
// recognized inside classes: a class item is always a single raw code
// point, even '\'.
func (p *parser) parseClassCodepoint() (rune, int, error) {
	pos := p.s.pos
	r, ok := p.s.next()
	if !ok {
		return 0, pos, newSyntaxError(ErrUnclosedConstruct, pos, "unclosed character class")
	}
	return r, pos, nil
}
