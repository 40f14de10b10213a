package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/jreyes33/jackparse/batch"
	"github.com/jreyes33/jackparse/config"
	"github.com/jreyes33/jackparse/format"
	"github.com/jreyes33/jackparse/jack/parser"
)

var log = commonlog.GetLogger("jackparse")

// Exit statuses. The nonzero ones after 2 follow sysexits.h.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitEmpty       = 2
	exitUsage       = 65
	exitNoInput     = 66
	exitDecode      = 67
	exitConfig      = 70
	exitTimeout     = 75
)

// exitError carries a process status. A nil err means the reason has
// already been reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	var ioErr *batch.IOError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, parser.ErrEmptyInput):
		return exitEmpty
	case errors.As(err, &ioErr):
		return exitNoInput
	case errors.Is(err, batch.ErrDecode):
		return exitDecode
	case errors.Is(err, batch.ErrTimeout):
		return exitTimeout
	}
	return exitDiagnostics
}

// app holds what the persistent flags and the config file decide.
type app struct {
	configPath string
	verbose    int
	logPath    string
	color      string

	cfg *config.Config
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var path *string
	if a.logPath != "" {
		path = &a.logPath
	}
	commonlog.Configure(a.verbose, path)

	dir, err := os.Getwd()
	if err != nil {
		return withCode(exitConfig, fmt.Errorf("working directory: %w", err))
	}
	cfg, loaded, err := config.Resolve(a.configPath, dir)
	if err != nil {
		return withCode(exitConfig, fmt.Errorf("load config: %w", err))
	}
	if loaded != "" {
		log.Infof("using config %s", loaded)
	} else {
		log.Debugf("no config file found, using defaults")
	}
	if cmd.Flags().Changed("color") {
		cfg.Output.Color = a.color
	}
	a.cfg = cfg
	return a.validate()
}

func (a *app) validate() error {
	if err := a.cfg.Validate(); err != nil {
		return withCode(exitConfig, err)
	}
	return nil
}

func (a *app) printer(w io.Writer) *format.DiagnosticPrinter {
	mode, _ := format.ParseColorMode(a.cfg.Output.Color)
	return format.NewDiagnosticPrinter(w, mode)
}

// usage gives positional argument errors the usage exit status.
func usage(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return withCode(exitUsage, err)
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "jackparse",
		Short:             "An error-tolerant parser for the Jack language",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (default: jackparse.toml or jackparse.yaml in the working directory)")
	flags.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&a.logPath, "log", "", "write logs to this file instead of stderr")
	flags.StringVar(&a.color, "color", "auto", "colour diagnostics: auto, always or never")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newTokensCmd(a))
	rootCmd.AddCommand(newFmtCmd(a))
	rootCmd.AddCommand(newGrammarCmd(a))

	return rootCmd
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && !(errors.As(err, &ee) && ee.err == nil) {
		fmt.Fprintf(stderr, "jackparse: %v\n", err)
	}
	return exitCode(err)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
