package parser

import (
	"errors"
	"fmt"
)

var ErrEmptyInput = errors.New("empty input")

// EmptyInputError is returned when the input holds nothing but whitespace
// and comments, so no tree can be produced.
type EmptyInputError struct {
	File string
}

func (e *EmptyInputError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%v: nothing to parse", ErrEmptyInput)
	}
	return fmt.Sprintf("%s: %v: nothing to parse", e.File, ErrEmptyInput)
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}
