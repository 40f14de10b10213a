package cst

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Field    string      `json:"field,omitempty" yaml:"field,omitempty"`
	Named    bool        `json:"named,omitempty" yaml:"named,omitempty"`
	Missing  bool        `json:"missing,omitempty" yaml:"missing,omitempty"`
	Span     *jsonSpan   `json:"span,omitempty" yaml:"span,omitempty"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Children []*jsonNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start" yaml:"start"`
	End   jsonPosition `json:"end" yaml:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Export(true))
}

// Export converts the tree into plain values tagged for JSON and YAML
// encoders. Spans are left out unless withPositions is set.
func (n *Node) Export(withPositions bool) any {
	return n.export(withPositions)
}

func (n *Node) export(withPositions bool) *jsonNode {
	jn := &jsonNode{
		Kind:    n.kind,
		Field:   n.field,
		Named:   n.named,
		Missing: n.missing,
	}
	if withPositions {
		jn.Span = &jsonSpan{
			Start: jsonPosition{Offset: n.span.Start.Offset, Line: n.span.Start.Line, Column: n.span.Start.Column},
			End:   jsonPosition{Offset: n.span.End.Offset, Line: n.span.End.Line, Column: n.span.End.Column},
		}
	}
	if n.tok != nil {
		jn.Text = n.tok.Literal
	}
	if len(n.children) > 0 {
		jn.Children = make([]*jsonNode, len(n.children))
		for i, child := range n.children {
			jn.Children[i] = child.export(withPositions)
		}
	}
	return jn
}
