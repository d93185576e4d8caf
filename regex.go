package pikere

import "fmt"

// Regexp is a compiled pattern ready for repeated matching. It is
// immutable and safe for concurrent use.
type Regexp struct {
	prog *CompiledRegex
}

// Compile parses and compiles pattern, returning a *SyntaxError on failure.
func Compile(pattern string) (*Regexp, error) {
	prog, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Regexp{prog: prog}, nil
}

// MustCompile is like Compile but panics on error. Intended for patterns
// known at compile time to be valid.
func MustCompile(pattern string) *Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("pikere: Compile(%q): %v", pattern, err))
	}
	return re
}

// Group is one captured span, as a pair of byte offsets into the subject.
// An unset group has Start == -1.
type Group struct {
	Start, End int
}

// MatchString reports whether re matches anywhere in s.
func (re *Regexp) MatchString(s string) bool {
	ok, _ := re.prog.Exec([]byte(s), ModeSearch, First)
	return ok
}

// FullMatchString reports whether re matches the entirety of s.
func (re *Regexp) FullMatchString(s string) bool {
	ok, _ := re.prog.Exec([]byte(s), ModeMatch, First)
	return ok
}

// FindStringSubmatchIndex returns the byte-offset groups of the leftmost
// match in s, leftmost-first greediness, or nil if there is no match.
// Index 0 is always the whole match.
func (re *Regexp) FindStringSubmatchIndex(s string) []Group {
	return re.findIndex(s, ModeSearch, First)
}

// FindLongestStringSubmatchIndex is like FindStringSubmatchIndex but uses
// leftmost-longest greediness.
func (re *Regexp) FindLongestStringSubmatchIndex(s string) []Group {
	return re.findIndex(s, ModeSearch, Longest)
}

func (re *Regexp) findIndex(s string, mode Mode, greediness Greediness) []Group {
	ok, saves := re.prog.Exec([]byte(s), mode, greediness)
	if !ok {
		return nil
	}
	groups := make([]Group, len(saves)/2)
	for i := range groups {
		groups[i] = Group{Start: saves[2*i], End: saves[2*i+1]}
	}
	return groups
}

// FindString returns the text of the leftmost match in s, or "" if there is
// no match. Use FindStringSubmatchIndex to distinguish "no match" from an
// empty match.
func (re *Regexp) FindString(s string) string {
	groups := re.FindStringSubmatchIndex(s)
	if groups == nil || groups[0].Start < 0 {
		return ""
	}
	return s[groups[0].Start:groups[0].End]
}

// Disassemble renders re's compiled bytecode for diagnostics.
func (re *Regexp) Disassemble() string {
	return re.prog.Disassemble()
}
