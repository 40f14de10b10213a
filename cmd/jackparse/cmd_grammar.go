package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jreyes33/jackparse/batch"
	"github.com/jreyes33/jackparse/jack/grammar"
)

func newGrammarCmd(a *app) *cobra.Command {
	var grammarName string

	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Print the grammar table as EBNF",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := activeTable(a, cmd, grammarName)
			if err != nil {
				return err
			}
			return table.WriteEBNF(cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVar(&grammarName, "grammar", "jack", fmt.Sprintf("grammar table: %v", grammar.Names()))
	cmd.AddCommand(newGrammarCheckCmd(a, &grammarName))

	return cmd
}

func newGrammarCheckCmd(a *app, grammarName *string) *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse and verify an EBNF grammar file",
		Long: `Parse and verify an EBNF grammar file with golang.org/x/exp/ebnf.

Without a file, the active grammar table is rendered and verified from its
start rule.`,
		Args: usage(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				table, err := activeTable(a, cmd, *grammarName)
				if err != nil {
					return err
				}
				if err := table.Verify(); err != nil {
					printErrors(out, err)
					return withCode(exitDiagnostics, nil)
				}
				fmt.Fprintf(out, "%s: ok\n", table.Name())
				return nil
			}

			filename := args[0]
			f, err := os.Open(filename)
			if err != nil {
				return &batch.IOError{Path: filename, Err: err}
			}
			defer f.Close()

			if err := grammar.VerifyEBNF(filename, f, startProduction); err != nil {
				printErrors(out, err)
				return withCode(exitDiagnostics, nil)
			}
			fmt.Fprintf(out, "%s: ok\n", filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func activeTable(a *app, cmd *cobra.Command, name string) (*grammar.Table, error) {
	if cmd.Flags().Changed("grammar") {
		a.cfg.Parse.Grammar = name
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	table, err := a.cfg.Table()
	if err != nil {
		return nil, withCode(exitConfig, err)
	}
	return table, nil
}

// printErrors prints one line per error when the ebnf package reports a
// list of them.
func printErrors(w io.Writer, err error) {
	prefix, inner := "", err
	if u := errors.Unwrap(err); u != nil {
		prefix = strings.TrimSuffix(err.Error(), u.Error())
		inner = u
	}
	v := reflect.ValueOf(inner)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintf(w, "%s%v\n", prefix, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(w, err)
	}
}
