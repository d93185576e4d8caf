package pikere

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

func TestParseBuildsExpectedAST(t *testing.T) {
	p, err := Parse("a(b|c)*")
	assert.NilError(t, err)
	assert.Equal(t, p.CaptureCount, 2)

	root := p.AST
	assert.Equal(t, root.Op, OpSequence)
	assert.Equal(t, root.Value, int32(0))
	assert.Equal(t, len(root.Children), 2)

	lit := root.Children[0]
	assert.Equal(t, lit.Op, OpLiteral)
	assert.Equal(t, lit.Value, int32('a'))

	group := root.Children[1]
	assert.Equal(t, group.Op, OpAlternation)
	assert.Equal(t, group.Value, int32(1))
	assert.Equal(t, group.Quantifier.Kind, QZeroOrMore)
}

func TestParseCharClassRanges(t *testing.T) {
	p, err := Parse("[a-cX]")
	assert.NilError(t, err)

	class := p.Ranges[p.AST.Children[0].Value]
	want := CharClass{Ranges: []CharRange{{Min: 'a', Max: 'c'}, {Min: 'X'}}}
	if diff := cmp.Diff(want, class); diff != "" {
		t.Fatalf("character class mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRoundTripIsDeterministic(t *testing.T) {
	pattern := `^(foo|bar)+[a-z0-9]{2,4}\b$`
	p1, err := Parse(pattern)
	assert.NilError(t, err)
	prog1 := CompileAST(p1)

	p2, err := Parse(pattern)
	assert.NilError(t, err)
	prog2 := CompileAST(p2)

	assert.DeepEqual(t, prog1.Code, prog2.Code)
	assert.Equal(t, prog1.PrefixEnd, prog2.PrefixEnd)
	assert.Equal(t, prog1.SaveCount, prog2.SaveCount)
}

func TestSyntaxErrorReportsPosition(t *testing.T) {
	_, err := Parse("ab(cd")
	se, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	assert.Equal(t, se.Kind, ErrUnclosedConstruct)
	assert.Equal(t, se.Pos, 2)
}
