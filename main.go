//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"smile/pkg/config"
	"smile/pkg/loader"
	"smile/pkg/runtime"
	"smile/pkg/utils"
)

func main() {
	cfg, inPath, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	src, err := utils.OpenSource(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open program %q: %v\n", inPath, err)
		os.Exit(1)
	}
	// A program read from stdin takes its input from the lines after the
	// terminator; a program file reads input from stdin.
	var input io.Reader
	if inPath != "" && inPath != utils.StdinName {
		input = os.Stdin
	}
	code := run(cfg, src, input, os.Stdout, newLogger(cfg, os.Stderr))
	src.Close()
	os.Exit(code)
}

// parseFlags loads the configuration file, overlays the flags that were
// set on the command line and validates the result.
func parseFlags(args []string, stderr io.Writer) (*config.Config, string, error) {
	fs := flag.NewFlagSet("smile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inPath := fs.String("in", utils.StdinName, "program source; '-' reads program and input from stdin")
	configPath := fs.String("config", "", "YAML configuration file")
	trace := fs.Bool("trace", false, "log call stack and jump activity to stderr")
	maxSteps := fs.Int("max-steps", 0, "abort after this many instructions (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, "", err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *trace
		case "max-steps":
			cfg.MaxSteps = *maxSteps
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, *inPath, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if !cfg.Trace {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// run loads a program from src, executes it and returns the process exit
// code. INNUM and INSTR read from input, or from the rest of src when
// input is nil. Any parse or runtime error is reported as one line on out.
func run(cfg *config.Config, src, input io.Reader, out io.Writer, logger *slog.Logger) int {
	lines := runtime.NewLineReader(src)
	prog, labels, err := loader.Load(lines)
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}

	m := runtime.NewMachine(prog, labels)
	m.Input = lines
	if input != nil {
		m.Input = runtime.NewLineReader(input)
	}
	m.Output = out
	m.MaxSteps = cfg.MaxSteps
	m.Logger = logger
	if err := m.Run(); err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	return 0
}
