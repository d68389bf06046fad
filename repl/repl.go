// Package repl implements Lumen's interactive read-eval-print loop,
// using readline for line editing/history and fatih/color to render
// the banner and diagnostics: red for errors, yellow for the version
// line, cyan for informational text. The value of an entered expression
// is not echoed; output comes only from `print` statements.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/lumen-lang/lumen/eval"
	"github.com/lumen-lang/lumen/lexer"
	"github.com/lumen-lang/lumen/parser"
	"github.com/lumen-lang/lumen/resolver"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the cosmetic configuration of an interactive session.
type Repl struct {
	Banner  string
	Version string
	Line    string
	Prompt  string
}

// NewRepl builds a Repl with the given banner, version string,
// separator line, and prompt.
func NewRepl(banner, version, line, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Line: line, Prompt: prompt}
}

func (r *Repl) printBanner(w io.Writer) {
	blueColor.Fprintf(w, "%s\n", r.Line)
	greenColor.Fprintf(w, "%s\n", r.Banner)
	blueColor.Fprintf(w, "%s\n", r.Line)
	yellowColor.Fprintln(w, "Version: "+r.Version)
	blueColor.Fprintf(w, "%s\n", r.Line)
	cyanColor.Fprintln(w, "Type an expression or statement and press enter.")
	cyanColor.Fprintln(w, "Type '.exit' to quit.")
	blueColor.Fprintf(w, "%s\n", r.Line)
}

// Start runs the read-eval-print loop until the user exits or EOF is
// reached. A single *eval.Interpreter persists across the whole
// session, so variables and functions declared in one line remain
// visible to the next.
func (r *Repl) Start(w io.Writer) {
	r.printBanner(w)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		fmt.Fprintf(w, "failed to start readline: %v\n", err)
		return
	}
	defer rl.Close()

	in := eval.NewInterpreter(eval.WithWriter(w))

	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Fprintln(w, "Good Bye!")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			fmt.Fprintln(w, "Good Bye!")
			return
		}
		rl.SaveHistory(line)

		r.evalLine(w, line, in)
	}
}

func (r *Repl) evalLine(w io.Writer, line string, in *eval.Interpreter) {
	tokens, ldiags := lexer.NewLexer(line).ScanTokens()
	for _, d := range ldiags {
		redColor.Fprintf(w, "%s\n", d.Error())
	}

	stmts, pdiags := parser.NewParser(tokens).Parse()
	if len(pdiags) > 0 {
		for _, d := range pdiags {
			redColor.Fprintf(w, "%s\n", d.Error())
		}
		return
	}

	depths, rdiags := resolver.NewResolver().Resolve(stmts)
	var fatal bool
	for _, d := range rdiags {
		redColor.Fprintf(w, "%s\n", d.Error())
		if !strings.Contains(d.Message, "never used") {
			fatal = true
		}
	}
	if fatal {
		return
	}

	if err := in.Interpret(stmts, depths); err != nil {
		redColor.Fprintf(w, "%s\n", err.Error())
	}
}
