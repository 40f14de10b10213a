// Package format renders parse results: syntax trees in several encodings,
// diagnostics for terminals, and Jack source reprinted from a tree.
package format

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/jreyes33/jackparse/jack/cst"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Encoder interface {
	encoding.TextMarshaler
	Encode(tree *cst.Tree) error
}

type Options struct {
	// Positions adds spans to every node.
	Positions bool
}

var encoders = map[string]func(io.Writer, Options) Encoder{
	"sexp": func(w io.Writer, _ Options) Encoder { return NewSExprEncoder(w) },
	"tree": func(w io.Writer, opts Options) Encoder { return NewTreeEncoder(w, opts.Positions) },
	"json": func(w io.Writer, opts Options) Encoder { return NewJSONEncoder(w, opts.Positions) },
	"yaml": func(w io.Writer, opts Options) Encoder { return NewYAMLEncoder(w, opts.Positions) },
}

// Names lists the output formats NewEncoder accepts.
func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func NewEncoder(name string, w io.Writer, opts Options) (Encoder, error) {
	newEncoder, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownFormat, name, Names())
	}
	return newEncoder(w, opts), nil
}

func write(w io.Writer, e Encoder) error {
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
