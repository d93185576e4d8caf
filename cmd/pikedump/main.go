// Command pikedump compiles a pattern and prints its bytecode disassembly.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/clstate/pikere"
)

var mnemonicColors = map[string]*color.Color{
	"match":             color.New(color.FgGreen, color.Bold),
	"jump":              color.New(color.FgBlue),
	"split_parent":      color.New(color.FgBlue),
	"split_child":       color.New(color.FgBlue),
	"save":              color.New(color.FgMagenta),
	"literal":           color.New(color.FgYellow),
	"any":               color.New(color.FgYellow),
	"class":             color.New(color.FgYellow),
	"nclass":            color.New(color.FgYellow),
	"line_start":        color.New(color.FgCyan),
	"line_end":          color.New(color.FgCyan),
	"word_boundary":     color.New(color.FgCyan),
	"not_word_boundary": color.New(color.FgCyan),
	"subject_begin":     color.New(color.FgCyan),
	"subject_end":       color.New(color.FgCyan),
}

var cli struct {
	Pattern string `arg:"" name:"pattern" help:"Pattern to compile and disassemble." type:"string"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("pikedump"),
		kong.Description("Compiles a pattern and prints its bytecode disassembly."),
		kong.UsageOnError(),
	)

	prog, err := pikere.CompilePattern(cli.Pattern)
	if err != nil {
		log.Fatalf("compile: %v", err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, line := range strings.Split(strings.TrimRight(prog.Disassemble(), "\n"), "\n") {
		mnemonic := firstField(line)
		if c, ok := mnemonicColors[mnemonic]; ok {
			c.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}

// firstField pulls the mnemonic out of a "0004  mnemonic operands..." line.
func firstField(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
