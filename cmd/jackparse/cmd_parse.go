package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jreyes33/jackparse/batch"
	"github.com/jreyes33/jackparse/format"
	"github.com/jreyes33/jackparse/jack/cst"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string
	var grammarName string
	var includeComments bool
	var includePositions bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "parse <file|dir>",
		Short: "Parse Jack source and print its syntax tree",
		Long: `Parse a .jack file and print its syntax tree to stdout.

Given a directory, every .jack file below it is parsed in path order.
Diagnostics go to stderr. The exit status is 1 when any file has errors.`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = outputFormat
			}
			if cmd.Flags().Changed("grammar") {
				cfg.Parse.Grammar = grammarName
			}
			if cmd.Flags().Changed("comments") {
				cfg.Parse.Comments = includeComments
			}
			if cmd.Flags().Changed("positions") {
				cfg.Output.Positions = includePositions
			}
			if err := a.validate(); err != nil {
				return err
			}

			table, err := cfg.Table()
			if err != nil {
				return withCode(exitConfig, err)
			}
			enc, err := format.NewEncoder(cfg.Output.Format, cmd.OutOrStdout(), format.Options{Positions: cfg.Output.Positions})
			if err != nil {
				return withCode(exitConfig, err)
			}

			files, err := batch.Expand(args)
			if err != nil {
				return err
			}
			results := batch.Run(cmd.Context(), files, batch.Options{
				Table:   table,
				Parser:  cfg.ParserOptions(),
				Workers: cfg.Batch.Workers,
				Timeout: cfg.Batch.Timeout.Duration,
			})

			printer := a.printer(cmd.ErrOrStderr())
			errs := 0
			for _, res := range results {
				if res.Err != nil {
					return res.Err
				}
				if verify {
					if err := cst.Verify(res.Tree.Root); err != nil {
						return fmt.Errorf("%s: %w", res.Path, err)
					}
				}
				if err := enc.Encode(res.Tree); err != nil {
					return fmt.Errorf("encode %s: %w", res.Path, err)
				}
				if err := printer.Print(res.Tree); err != nil {
					return err
				}
				errs += res.Tree.ErrorCount()
			}
			if errs > 0 {
				return withCode(exitDiagnostics, nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexp", fmt.Sprintf("output format: %v", format.Names()))
	cmd.Flags().StringVar(&grammarName, "grammar", "jack", "grammar table to parse with")
	cmd.Flags().BoolVar(&includeComments, "comments", false, "keep comments in the tree")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include source positions in the output")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the span invariants of every tree")

	return cmd
}
