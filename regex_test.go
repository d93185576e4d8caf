package pikere

import (
	"testing"

	"gotest.tools/v3/assert"
)

// runner is a small fluent test harness: each call runs one subtest and
// reports a clear failure, instead of asserting inline in every test
// function.
type runner struct {
	t *testing.T
}

func newRunner(t *testing.T) runner {
	t.Helper()
	return runner{t: t}
}

// m asserts pattern matches source, with expectedGroups giving the text of
// each capture group in order (group 0 is the whole match); "" marks a
// group expected to be unset.
func (r runner) m(pattern, source string, expectedGroups ...string) {
	r.t.Helper()
	r.t.Run(pattern+"/"+source, func(t *testing.T) {
		re, err := Compile(pattern)
		assert.NilError(t, err)

		groups := re.FindStringSubmatchIndex(source)
		if groups == nil {
			t.Fatalf("pattern %q: expected match against %q, got none", pattern, source)
		}

		got := make([]string, len(groups))
		for i, g := range groups {
			if g.Start >= 0 {
				got[i] = source[g.Start:g.End]
			}
		}
		want := make([]string, len(groups))
		copy(want, expectedGroups)
		assert.DeepEqual(t, got, want)
	})
}

// n asserts pattern does not match anywhere in source.
func (r runner) n(pattern, source string) {
	r.t.Helper()
	r.t.Run(pattern+"/"+source, func(t *testing.T) {
		re, err := Compile(pattern)
		assert.NilError(t, err)
		if re.MatchString(source) {
			t.Fatalf("pattern %q: expected no match against %q", pattern, source)
		}
	})
}

// se asserts pattern fails to compile.
func (r runner) se(pattern string) {
	r.t.Helper()
	r.t.Run(pattern, func(t *testing.T) {
		_, err := Compile(pattern)
		if err == nil {
			t.Fatalf("pattern %q: expected a syntax error, got none", pattern)
		}
	})
}

func TestLiteralsAndConcatenation(t *testing.T) {
	r := newRunner(t)
	r.m("abc", "abc", "abc")
	r.m("abc", "xxabcxx", "abc")
	r.n("abc", "ab")
	r.m(".", "x", "x")
	r.m("a.c", "aZc", "aZc")
}

func TestQuantifiers(t *testing.T) {
	r := newRunner(t)
	r.m("a*", "", "")
	r.m("a*", "aaa", "aaa")
	r.m("a+", "aaa", "aaa")
	r.n("a+", "")
	r.m("a?", "", "")
	r.m("a?", "a", "a")
	r.m("a{2,4}", "aaaaa", "aaaa")
	r.m("a{2}", "aaa", "aa")
	r.m("a{2,}", "aaaaa", "aaaaa")
	r.n("a{3}", "aa")
}

func TestAlternation(t *testing.T) {
	r := newRunner(t)
	r.m("cat|dog", "I have a dog", "dog")
	r.m("a|ab", "ab", "a")
	r.n("cat|dog", "fish")
}

func TestGroups(t *testing.T) {
	r := newRunner(t)
	r.m("(a)(b)", "ab", "ab", "a", "b")
	r.m("(ab)+", "ababab", "ababab", "ab")
	r.m("(a)|(b)", "b", "b", "", "b")
}

func TestCharClasses(t *testing.T) {
	r := newRunner(t)
	r.m("[abc]", "b", "b")
	r.n("[abc]", "d")
	r.m("[^abc]", "d", "d")
	r.n("[^abc]", "a")
	r.m("[a-z]+", "hello", "hello")
	r.m("[a-zA-Z0-9_]+", "snake_case_1", "snake_case_1")
	r.m("[a-]", "-", "-")
}

func TestAnchorsAndAssertions(t *testing.T) {
	r := newRunner(t)
	r.m("^abc", "abc", "abc")
	r.n("^abc", "xabc")
	r.m("abc$", "abc", "abc")
	r.n("abc$", "abcx")
	r.m(`\bfoo\b`, "a foo b", "foo")
	r.n(`\bfoo\b`, "afoob")
	r.m(`\Bfoo`, "xfoo", "foo")
	r.n(`\Bfoo`, " foo")
}

func TestEscapes(t *testing.T) {
	r := newRunner(t)
	r.m(`a\.b`, "a.b", "a.b")
	r.n(`a\.b`, "axb")
	r.m(`\n`, "\n", "\n")
	r.m(`\t`, "\t", "\t")
}

func TestSyntaxErrors(t *testing.T) {
	r := newRunner(t)
	r.se("(abc")
	r.se("a|")
	r.se("|a")
	r.se("[abc")
	r.se(`\q`)
	r.se("a{2")
	r.se("[z-a]")
}

func TestFullMatch(t *testing.T) {
	re := MustCompile("a+b")
	assert.Assert(t, re.FullMatchString("aaab"))
	assert.Assert(t, !re.FullMatchString("xaaabx"))
	assert.Assert(t, re.MatchString("xaaabx"))
}

func TestLongestGreediness(t *testing.T) {
	re := MustCompile("a|ab|abc")
	first := re.FindStringSubmatchIndex("abc")
	assert.Equal(t, "abc"[first[0].Start:first[0].End], "a")

	longest := re.FindLongestStringSubmatchIndex("abc")
	assert.Equal(t, "abc"[longest[0].Start:longest[0].End], "abc")
}
