// Command lumen is the Lumen interpreter's command-line driver. With
// no arguments it starts an interactive REPL; given a file path it
// runs that file and exits with a non-zero status if any phase of the
// pipeline (lex, parse, resolve, interpret) reported an error.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/lumen-lang/lumen/config"
	"github.com/lumen-lang/lumen/eval"
	"github.com/lumen-lang/lumen/lexer"
	"github.com/lumen-lang/lumen/parser"
	"github.com/lumen-lang/lumen/repl"
	"github.com/lumen-lang/lumen/resolver"
)

const version = "v0.1.0"

const banner = `
  _
 | |   _   _ _ __ ___   ___ _ __
 | |  | | | | '_ ` + "`" + ` _ \ / _ \ '_ \
 | |__| |_| | | | | | |  __/ | | |
 |_____\__,_|_| |_| |_|\___|_| |_|
`

const line = "----------------------------------------"

var redColor = color.New(color.FgRed)

func main() {
	args := os.Args[1:]

	cfg := config.Default()
	var script string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--help" || args[i] == "-h":
			showHelp()
			return
		case args[i] == "--version" || args[i] == "-v":
			fmt.Println("lumen " + version)
			return
		case args[i] == "--config" && i+1 < len(args):
			i++
			loaded, err := config.Load(args[i])
			if err != nil {
				redColor.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
			cfg = loaded
		default:
			script = args[i]
		}
	}

	if script == "" {
		replBanner := banner
		if cfg.Banner != "" {
			replBanner = cfg.Banner
		}
		r := repl.NewRepl(replBanner, version, line, cfg.Prompt)
		r.Start(os.Stdout)
		return
	}

	runFile(script, cfg)
}

func showHelp() {
	fmt.Println(banner)
	fmt.Println("Usage:")
	fmt.Println("  lumen                    start an interactive session")
	fmt.Println("  lumen <file>             run a script file")
	fmt.Println("  lumen --config <path>    load runtime options from YAML")
	fmt.Println("  lumen --version          print the version")
}

func runFile(path string, cfg config.RunConfig) {
	source, err := os.ReadFile(path)
	if err != nil {
		redColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	tokens, ldiags := lexer.NewLexer(string(source)).ScanTokens()
	if reportDiagnostics(ldiags) {
		os.Exit(1)
	}

	stmts, pdiags := parser.NewParser(tokens).Parse()
	if reportDiagnostics(pdiags) {
		os.Exit(1)
	}

	depths, rdiags := resolver.NewResolver().Resolve(stmts)
	fatal := false
	for _, d := range rdiags {
		redColor.Fprintf(os.Stderr, "%s\n", d.Error())
		if !strings.Contains(d.Message, "never used") {
			fatal = true
		}
	}
	if fatal {
		os.Exit(1)
	}

	in := eval.NewInterpreter(
		eval.WithMaxCallDepth(cfg.MaxCallDepth),
		eval.WithDisabledBuiltins(cfg.DisabledBuiltins),
	)
	if err := in.Interpret(stmts, depths); err != nil {
		redColor.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}

// reportDiagnostics prints every diagnostic that carries an Error()
// method and reports whether any were found.
func reportDiagnostics[T interface{ Error() string }](diags []T) bool {
	for _, d := range diags {
		redColor.Fprintf(os.Stderr, "%s\n", d.Error())
	}
	return len(diags) > 0
}
