package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{EOF, "EOF"},
		{Error, "Error"},
		{Identifier, "Identifier"},
		{Keyword, "Keyword"},
		{Integer, "Integer"},
		{String, "String"},
		{Symbol, "Symbol"},
		{LineComment, "LineComment"},
		{Kind(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestSpan(t *testing.T) {
	outer := Span{Start: Position{Offset: 2}, End: Position{Offset: 10}}
	inner := Span{Start: Position{Offset: 4}, End: Position{Offset: 10}}
	empty := Span{Start: Position{Offset: 10}, End: Position{Offset: 10}}

	assert.True(t, outer.Contains(inner))
	assert.True(t, outer.Contains(empty))
	assert.False(t, inner.Contains(outer))
	assert.Equal(t, 8, outer.Len())
	assert.True(t, empty.IsEmpty())
	assert.False(t, inner.IsEmpty())
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "3:7", Position{Line: 3, Column: 7}.String())
	assert.Equal(t, "Main.jack:3:7", Position{File: "Main.jack", Line: 3, Column: 7}.String())
}

func TestTrivia(t *testing.T) {
	assert.True(t, Token{Kind: Whitespace}.IsTrivia())
	assert.True(t, Token{Kind: LineComment}.IsTrivia())
	assert.True(t, Token{Kind: BlockComment}.IsComment())
	assert.False(t, Token{Kind: Error}.IsTrivia())
	assert.False(t, Token{Kind: Identifier}.IsTrivia())
}
