// Command dana is the Dana language CLI: run a .na file, or drop into a
// line-at-a-time REPL when invoked with no file argument.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/dana-lang/dana/internal/host"
	"github.com/dana-lang/dana/sandbox"
)

const version = "0.1.0"

func main() {
	var (
		debug      bool
		noColor    bool
		forceColor bool
		help       bool
		strict     bool
	)
	flags := pflag.NewFlagSet("dana", pflag.ContinueOnError)
	flags.BoolVar(&debug, "debug", false, "enable verbose structured logging")
	flags.BoolVar(&noColor, "no-color", false, "disable colorized output")
	flags.BoolVar(&forceColor, "force-color", false, "force colorized output even when stdout isn't a terminal")
	flags.BoolVar(&strict, "strict", false, "raise NameError on undefined identifiers instead of yielding none")
	flags.BoolVarP(&help, "help", "h", false, "show this message")

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if help {
		printUsage()
		return
	}

	configureColor(noColor, forceColor)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	go func() {
		<-sigCh
		fmt.Println()
		os.Exit(130)
	}()

	opts := sandbox.Options{Debug: debug, Strict: strict}
	if mockLLMEnabled() {
		opts.ReasonRes = host.NewMockResource()
	}
	sb := sandbox.New(opts)

	// os.Exit skips deferred calls, so Shutdown runs explicitly first.
	args := flags.Args()
	var code int
	if len(args) == 0 {
		code = runREPL(sb)
	} else {
		code = runFile(sb, args[0])
	}
	sb.Shutdown()
	os.Exit(code)
}

func printUsage() {
	fmt.Printf(`dana v%s — the Dana scripting language

Usage:
  dana                Start an interactive REPL
  dana <file>.na       Run a Dana source file
  dana -h, --help      Show this message

Flags:
  --debug              Enable verbose structured logging
  --no-color           Disable colorized output
  --force-color        Force colorized output
  --strict             Raise NameError on undefined identifiers
`, version)
}

func configureColor(noColor, forceColor bool) {
	switch {
	case forceColor:
		color.NoColor = false
	case noColor:
		color.NoColor = true
	default:
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

func mockLLMEnabled() bool {
	v := os.Getenv("OPENDXA_MOCK_LLM")
	return v == "1" || v == "true" || v == "yes"
}

func runFile(sb *sandbox.Sandbox, path string) int {
	res := sb.Run(path)
	if res.Output != "" {
		fmt.Print(res.Output)
	}
	if !res.Success {
		color.New(color.FgRed).Fprintf(os.Stderr, "%v\n", res.Error)
		return 1
	}
	return 0
}

func runREPL(sb *sandbox.Sandbox) int {
	prompt := color.New(color.FgCyan).Sprint("dana> ")
	errColor := color.New(color.FgRed)
	resultColor := color.New(color.FgGreen)

	reader := bufio.NewScanner(os.Stdin)
	fmt.Printf("dana v%s — type an expression, Ctrl-D to exit\n", version)
	fmt.Print(prompt)
	for reader.Scan() {
		line := reader.Text()
		if line == "" {
			fmt.Print(prompt)
			continue
		}
		res := sb.Eval(line, "<repl>")
		if res.Output != "" {
			fmt.Print(res.Output)
		}
		if !res.Success {
			errColor.Fprintf(os.Stderr, "%v\n", res.Error)
		} else if !res.Result.IsNone() {
			resultColor.Println(res.Result.Repr())
		}
		fmt.Print(prompt)
	}
	fmt.Println()
	if err := reader.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
