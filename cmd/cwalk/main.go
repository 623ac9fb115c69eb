package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/raymyers/cwalk/pkg/ast"
	"github.com/raymyers/cwalk/pkg/eval"
	"github.com/raymyers/cwalk/pkg/lexer"
	"github.com/raymyers/cwalk/pkg/parser"
	"github.com/raymyers/cwalk/pkg/sema"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// dAST dumps the parsed AST instead of interpreting, in the spirit of
// the teacher's -dparse debug flag.
var dAST bool

func main() {
	os.Exit(runMain())
}

func runMain() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return lastStatus
}

// lastStatus records the interpreted program's exit status so runMain
// can report it to os.Exit after cobra's Execute returns only nil/err.
var lastStatus int

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cwalk [file]",
		Short: "cwalk interprets a subset of C directly from its AST",
		Long: `cwalk is a tree-walking interpreter for a small C subset:
no preprocessor beyond #include recognition, no arrays, no unions, no
goto. It parses a source file, analyzes it, and runs main() to
completion on the calling thread, reporting its exit status.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			if dAST {
				return dumpAST(filename, out, errOut)
			}

			status, err := run(filename)
			if err != nil {
				fmt.Fprintf(errOut, "cwalk: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "Process terminated with status %d\n", status)
			lastStatus = status
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dAST, "dast", false, "Dump the parsed AST instead of interpreting")

	return rootCmd
}

// run performs the Driver contract (spec.md §6): lex, parse, analyze,
// interpret, returning main's exit status. Any parse error or sema
// finding aborts before interpretation ever starts; an eval-level
// fault is the only failure interpretation itself can report.
func run(filename string) (status int, err error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", filename, err)
	}

	prog, err := parseSource(filename, string(content))
	if err != nil {
		return 0, err
	}

	if errs := sema.Analyze(prog); len(errs) > 0 {
		return 0, fmt.Errorf("%s: %d semantic error(s), first: %v", filename, len(errs), errs[0])
	}

	return eval.New().Run(prog)
}

func parseSource(filename, content string) (*ast.Program, error) {
	p := parser.New(lexer.New(content))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		var b bytes.Buffer
		for _, e := range errs {
			fmt.Fprintf(&b, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("parsing failed with %d error(s):\n%s", len(errs), b.String())
	}
	return prog, nil
}

func dumpAST(filename string, out, errOut io.Writer) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "cwalk: error reading %s: %v\n", filename, err)
		return err
	}
	prog, err := parseSource(filename, string(content))
	if err != nil {
		fmt.Fprintf(errOut, "cwalk: %v\n", err)
		return err
	}
	ast.NewPrinter(out).PrintProgram(prog)
	return nil
}
