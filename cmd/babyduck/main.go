// cmd/babyduck is the BabyDuck compiler+VM entry point: read source,
// lex, parse, compile, run (spec §6). No flags library is warranted for
// the CLI's one real switch (-trace); see internal/cliconfig.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"babyduck/internal/cliconfig"
	"babyduck/internal/compileerr"
	"babyduck/internal/compiler"
	"babyduck/internal/lexer"
	"babyduck/internal/parser"
	"babyduck/internal/vm"
)

func main() {
	cfg, err := cliconfig.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log := newLogger(cfg.Trace)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(trace bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if trace {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Development = true
		cfg.Encoding = "console"
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func run(cfg *cliconfig.Config, log *zap.Logger) error {
	source, err := readAll(cfg.Input)
	if err != nil {
		return err
	}

	scanner := lexer.NewScanner(source)
	tokens := scanner.ScanTokens()

	p := parser.NewParser(tokens)
	ast := p.Parse()
	if len(p.Errors) > 0 {
		return compileerr.NewSyntaxError("%s", p.Errors[0])
	}

	c := compiler.New(log)
	artifact, err := c.Compile(ast)
	if err != nil {
		return err
	}

	machine := vm.New(artifact.Program, artifact.Funcs, artifact.Globals, artifact.Constants, cfg.Output, log, cfg.Trace)
	return machine.Run()
}

func readAll(r io.Reader) (string, error) {
	buf, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	return string(buf), nil
}
