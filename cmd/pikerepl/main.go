// Command pikerepl is an interactive pattern/input tester. Each line is
// "pattern => input"; the pattern is compiled and matched against input
// in search mode, leftmost-first, and the result is printed.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/clstate/pikere"
)

func main() {
	rl, err := readline.New("pike> ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			break
		}

		pattern, input, ok := strings.Cut(line, "=>")
		if !ok {
			fmt.Fprintln(os.Stderr, "expected: pattern => input")
			continue
		}
		pattern = strings.TrimSpace(pattern)
		input = strings.TrimSpace(input)

		re, err := pikere.Compile(pattern)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		groups := re.FindStringSubmatchIndex(input)
		if groups == nil {
			fmt.Println("no match")
			continue
		}
		fmt.Printf("match: %q\n", input[groups[0].Start:groups[0].End])
		for i := 1; i < len(groups); i++ {
			g := groups[i]
			if g.Start < 0 {
				fmt.Printf("  group %d: <unset>\n", i)
				continue
			}
			fmt.Printf("  group %d: %q\n", i, input[g.Start:g.End])
		}
	}
}
