package pikere

import (
	"os"
	"testing"

	"gopkg.in/yaml.v2"
	"gotest.tools/v3/assert"
)

// matchCase is a match example: either a bare input string (whole match
// only, no group assertions) or a mapping with expected group text.
type matchCase struct {
	Input  string
	Full   string
	Groups []string
}

func (m *matchCase) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		m.Input = plain
		return nil
	}
	var full struct {
		Input  string
		Full   string
		Groups []string
	}
	if err := unmarshal(&full); err != nil {
		return err
	}
	m.Input, m.Full, m.Groups = full.Input, full.Full, full.Groups
	return nil
}

type scenario struct {
	Pattern string
	Longest bool
	Matches []matchCase
	Rejects []string
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	data, err := os.ReadFile("testdata/scenarios.yaml")
	assert.NilError(t, err)
	var scenarios []scenario
	assert.NilError(t, yaml.Unmarshal(data, &scenarios))
	return scenarios
}

// TestConcreteScenarios runs the fixture table of pattern/input examples
// end to end through Parse, Compile, and Exec.
func TestConcreteScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		sc := sc
		t.Run(sc.Pattern, func(t *testing.T) {
			re, err := Compile(sc.Pattern)
			assert.NilError(t, err)

			greediness := First
			if sc.Longest {
				greediness = Longest
			}

			for _, m := range sc.Matches {
				m := m
				t.Run("match/"+m.Input, func(t *testing.T) {
					ok, saves := re.prog.Exec([]byte(m.Input), ModeSearch, greediness)
					if !ok {
						t.Fatalf("expected match against %q, got none", m.Input)
					}
					fullMatch := m.Input[saves[0]:saves[1]]
					if m.Full != "" {
						assert.Equal(t, fullMatch, m.Full)
					}
					for i, want := range m.Groups {
						slot := 2 * (i + 1)
						got := ""
						if saves[slot] >= 0 {
							got = m.Input[saves[slot]:saves[slot+1]]
						}
						assert.Equal(t, got, want)
					}
				})
			}

			for _, input := range sc.Rejects {
				input := input
				t.Run("reject/"+input, func(t *testing.T) {
					ok, _ := re.prog.Exec([]byte(input), ModeSearch, greediness)
					if ok {
						t.Fatalf("expected no match against %q", input)
					}
				})
			}
		})
	}
}
