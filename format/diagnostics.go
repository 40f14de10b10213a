package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jreyes33/jackparse/jack/cst"
)

var ErrUnknownColorMode = errors.New("unknown color mode")

type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

var colorModes = map[string]ColorMode{
	"auto":   ColorAuto,
	"always": ColorAlways,
	"never":  ColorNever,
}

func ParseColorMode(s string) (ColorMode, error) {
	if s == "" {
		return ColorAuto, nil
	}
	mode, ok := colorModes[s]
	if !ok {
		return ColorAuto, fmt.Errorf("%w %q (want auto, always or never)", ErrUnknownColorMode, s)
	}
	return mode, nil
}

func (m ColorMode) String() string {
	for name, mode := range colorModes {
		if mode == m {
			return name
		}
	}
	return "auto"
}

var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorInfo    = lipgloss.Color("#06B6D4")
	colorCaret   = lipgloss.Color("#10B981")
)

type diagnosticStyles struct {
	position lipgloss.Style
	severity map[cst.Severity]lipgloss.Style
	message  lipgloss.Style
	caret    lipgloss.Style
}

func newDiagnosticStyles(r *lipgloss.Renderer) diagnosticStyles {
	return diagnosticStyles{
		position: r.NewStyle().Bold(true),
		severity: map[cst.Severity]lipgloss.Style{
			cst.SeverityError:   r.NewStyle().Foreground(colorError).Bold(true),
			cst.SeverityWarning: r.NewStyle().Foreground(colorWarning).Bold(true),
			cst.SeverityInfo:    r.NewStyle().Foreground(colorInfo).Bold(true),
		},
		message: r.NewStyle().Bold(true),
		caret:   r.NewStyle().Foreground(colorCaret).Bold(true),
	}
}

// DiagnosticPrinter writes diagnostics the way compilers do:
//
//	Main.jack:3:13: error: expected expression, found ';'
//	        let x = ;
//	                ^
type DiagnosticPrinter struct {
	w      io.Writer
	color  bool
	styles diagnosticStyles
}

func NewDiagnosticPrinter(w io.Writer, mode ColorMode) *DiagnosticPrinter {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return &DiagnosticPrinter{
		w:      w,
		color:  r.ColorProfile() != termenv.Ascii,
		styles: newDiagnosticStyles(r),
	}
}

func (p *DiagnosticPrinter) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// Print writes every diagnostic of tree, with source excerpts when the
// tree carries its source.
func (p *DiagnosticPrinter) Print(tree *cst.Tree) error {
	for _, d := range tree.Diagnostics {
		if err := p.PrintDiagnostic(d, tree.Source); err != nil {
			return err
		}
	}
	return nil
}

func (p *DiagnosticPrinter) PrintDiagnostic(d cst.Diagnostic, src []byte) error {
	var sb strings.Builder
	sb.WriteString(p.paint(p.styles.position, d.Span.Start.String()+":"))
	sb.WriteString(" ")
	sb.WriteString(p.paint(p.styles.severity[d.Severity], d.Severity.String()+":"))
	sb.WriteString(" ")
	sb.WriteString(p.paint(p.styles.message, d.Message))
	sb.WriteString("\n")
	if line, ok := sourceLine(src, d.Span.Start.Offset); ok {
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(caretPadding(line, d.Span.Start.Column))
		sb.WriteString(p.paint(p.styles.caret, caret(line, d)))
		sb.WriteString("\n")
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}

// Summary writes a closing line such as "3 files, 2 errors, 1 warning".
func (p *DiagnosticPrinter) Summary(files, errs, warnings int) error {
	text := fmt.Sprintf("%s, %s, %s",
		plural(files, "file"), plural(errs, "error"), plural(warnings, "warning"))
	style := p.styles.message
	if errs > 0 {
		style = p.styles.severity[cst.SeverityError]
	}
	_, err := fmt.Fprintln(p.w, p.paint(style, text))
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// sourceLine returns the line of src holding offset, without its line
// terminator.
func sourceLine(src []byte, offset int) (string, bool) {
	if src == nil || offset > len(src) {
		return "", false
	}
	start := offset
	for start > 0 && src[start-1] != '\n' && src[start-1] != '\r' {
		start--
	}
	end := offset
	for end < len(src) && src[end] != '\n' && src[end] != '\r' {
		end++
	}
	line := string(src[start:end])
	if strings.TrimSpace(line) == "" && offset == len(src) {
		return "", false
	}
	return line, true
}

// caretPadding reproduces the tabs of line up to column so the caret
// lines up in any tab width.
func caretPadding(line string, column int) string {
	var sb strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func caret(line string, d cst.Diagnostic) string {
	width := len(line) - d.Span.Start.Column + 1
	if d.Span.End.Line == d.Span.Start.Line {
		width = d.Span.End.Column - d.Span.Start.Column
	}
	width = max(1, width)
	return "^" + strings.Repeat("~", width-1)
}
