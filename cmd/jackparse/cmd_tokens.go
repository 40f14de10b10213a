package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jreyes33/jackparse/batch"
	"github.com/jreyes33/jackparse/jack/lexer"
	"github.com/jreyes33/jackparse/jack/token"
)

func newTokensCmd(a *app) *cobra.Command {
	var includeTrivia bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream of a .jack file",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			src, err := os.ReadFile(filename)
			if err != nil {
				return &batch.IOError{Path: filename, Err: err}
			}
			if !utf8.Valid(src) {
				return fmt.Errorf("%s: %w", filename, batch.ErrDecode)
			}
			table, err := a.cfg.Table()
			if err != nil {
				return withCode(exitConfig, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for tok := range lexer.Tokenize(table, src, lexer.WithFile(filename)) {
				if tok.Kind == token.Whitespace && !includeTrivia {
					continue
				}
				note := ""
				if tok.Kind == token.Error {
					note = lexer.Describe(tok)
				}
				fmt.Fprintf(tw, "%d:%d-%d:%d\t%s\t%q\t%s\n",
					tok.Span.Start.Line, tok.Span.Start.Column,
					tok.Span.End.Line, tok.Span.End.Column,
					tok.Kind, tok.Literal, note)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&includeTrivia, "whitespace", false, "include whitespace tokens")

	return cmd
}
