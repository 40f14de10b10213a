package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jreyes33/jackparse/batch"
	"github.com/jreyes33/jackparse/format"
	"github.com/jreyes33/jackparse/jack/parser"
)

func newFmtCmd(a *app) *cobra.Command {
	var fmtOverwrite bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Pretty-print a .jack file, preserving comments",
		Long: `Pretty-print a .jack file to stdout.

If a file is provided, it must have a .jack extension.
If no file is provided, reads Jack source from stdin.

Use -w to overwrite the file in place (requires a file argument).
Files with syntax errors are left alone and their diagnostics printed.`,
		Args: usage(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source []byte
			var err error
			var filename string

			if len(args) == 0 {
				if fmtOverwrite {
					return withCode(exitUsage, errors.New("-w requires a file argument"))
				}
				source, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return &batch.IOError{Path: "<stdin>", Err: err}
				}
			} else {
				filename = args[0]
				if ext := filepath.Ext(filename); ext != ".jack" {
					return withCode(exitUsage, fmt.Errorf("expected .jack file, got %q", ext))
				}
				source, err = os.ReadFile(filename)
				if err != nil {
					return &batch.IOError{Path: filename, Err: err}
				}
			}
			if !utf8.Valid(source) {
				return fmt.Errorf("%s: %w", filename, batch.ErrDecode)
			}

			table, err := a.cfg.Table()
			if err != nil {
				return withCode(exitConfig, err)
			}
			opts := append(a.cfg.ParserOptions(), parser.WithComments())
			if filename != "" {
				opts = append(opts, parser.WithFile(filename))
			}
			tree, err := parser.New(table, opts...).Parse(source)
			if err != nil {
				return err
			}

			output, err := format.Pretty(tree)
			if errors.Is(err, format.ErrNotFormattable) {
				if perr := a.printer(cmd.ErrOrStderr()).Print(tree); perr != nil {
					return perr
				}
				return withCode(exitDiagnostics, nil)
			}
			if err != nil {
				return fmt.Errorf("format: %w", err)
			}

			if fmtOverwrite {
				if err := os.WriteFile(filename, output, 0644); err != nil {
					return &batch.IOError{Path: filename, Err: err}
				}
				return nil
			}
			_, err = cmd.OutOrStdout().Write(output)
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")

	return cmd
}
