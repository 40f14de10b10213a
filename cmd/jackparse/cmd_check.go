package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jreyes33/jackparse/batch"
)

func newCheckCmd(a *app) *cobra.Command {
	var workers int
	var timeout string

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Parse many files and report diagnostics only",
		Long: `Parse every named file, and every .jack file below each named directory,
on a pool of workers. Diagnostics and a summary line are printed to stdout.

The exit status is 1 when any file has errors. A file that cannot be read
or decoded sets the status of its failure instead.`,
		Args: usage(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("workers") {
				cfg.Batch.Workers = workers
			}
			if cmd.Flags().Changed("timeout") {
				if err := cfg.Batch.Timeout.UnmarshalText([]byte(timeout)); err != nil {
					return withCode(exitUsage, fmt.Errorf("--timeout: %w", err))
				}
			}
			if err := a.validate(); err != nil {
				return err
			}
			table, err := cfg.Table()
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

			out := cmd.OutOrStdout()
			printer := a.printer(out)
			var failure error
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "jackparse: %v\n", res.Err)
					if failure == nil {
						failure = res.Err
					}
					continue
				}
				if err := printer.Print(res.Tree); err != nil {
					return err
				}
			}

			s := batch.Summarize(results)
			if err := printer.Summary(s.Files, s.Errors, s.Warnings); err != nil {
				return err
			}
			switch {
			case failure != nil:
				return withCode(exitCode(failure), nil)
			case s.Errors > 0:
				return withCode(exitDiagnostics, nil)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "number of files parsed at once (default: number of CPUs)")
	cmd.Flags().StringVar(&timeout, "timeout", "", "abandon a file after this long, e.g. 500ms")

	return cmd
}
