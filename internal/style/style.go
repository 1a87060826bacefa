// Package style provides semantic text styling that renders with or without color.
package style

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Style is a semantic tag attached to a piece of text.
type Style int

// Semantic styles. None leaves text untouched, even in colored mode.
const (
	None Style = iota
	Literal
	Good
	Warning
	Error
	Hint
)

// Semantic color palette, shared with the rest of the CLI.
const (
	ColorPrimary = "255" // White - literals, identifiers
	ColorSuccess = "42"  // Green - success states
	ColorWarning = "214" // Orange - section banners, cautions
	ColorError   = "203" // Red - failures
	ColorMuted   = "240" // Dark gray - hints, urls
)

type piece struct {
	style Style
	text  string
}

// Text accumulates styled pieces. The zero value is ready to use.
type Text struct {
	pieces []piece
}

// Stylize appends s with the given style.
func (t *Text) Stylize(style Style, s string) *Text {
	if s == "" {
		return t
	}
	t.pieces = append(t.pieces, piece{style: style, text: s})
	return t
}

// None appends unstyled text.
func (t *Text) None(s string) *Text { return t.Stylize(None, s) }

// Literal appends emphasized text such as identifiers.
func (t *Text) Literal(s string) *Text { return t.Stylize(Literal, s) }

// Good appends success-styled text.
func (t *Text) Good(s string) *Text { return t.Stylize(Good, s) }

// Warning appends warning-styled text.
func (t *Text) Warning(s string) *Text { return t.Stylize(Warning, s) }

// Error appends error-styled text.
func (t *Text) Error(s string) *Text { return t.Stylize(Error, s) }

// Hint appends muted text.
func (t *Text) Hint(s string) *Text { return t.Stylize(Hint, s) }

// Append adds all pieces of other to t.
func (t *Text) Append(other Text) *Text {
	t.pieces = append(t.pieces, other.pieces...)
	return t
}

// Len returns the number of pieces.
func (t Text) Len() int { return len(t.pieces) }

// String returns the text without any styling.
func (t Text) String() string {
	var b strings.Builder
	for _, p := range t.pieces {
		b.WriteString(p.text)
	}
	return b.String()
}

// Printer writes Text to an output stream.
type Printer struct {
	w       io.Writer
	colored bool
	styles  map[Style]lipgloss.Style
}

// NewPrinter returns a Printer writing to w. When colored is false, styles
// are ignored and only the text is written.
func NewPrinter(w io.Writer, colored bool) *Printer {
	p := &Printer{w: w, colored: colored}
	if colored {
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI256)
		base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
		p.styles = map[Style]lipgloss.Style{
			Literal: base.Foreground(lipgloss.Color(ColorPrimary)).Bold(true),
			Good:    base.Foreground(lipgloss.Color(ColorSuccess)),
			Warning: base.Foreground(lipgloss.Color(ColorWarning)),
			Error:   base.Foreground(lipgloss.Color(ColorError)).Bold(true),
			Hint:    base.Foreground(lipgloss.Color(ColorMuted)).Italic(true),
		}
	}
	return p
}

// Colored reports whether the printer emits styling.
func (p *Printer) Colored() bool {
	return p.colored
}

// Print renders t and writes it in a single call.
func (p *Printer) Print(t Text) error {
	out := p.Render(t)
	if out == "" {
		return nil
	}
	if _, err := io.WriteString(p.w, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Render returns t as it would be printed.
func (p *Printer) Render(t Text) string {
	if !p.colored {
		return t.String()
	}
	var b strings.Builder
	for _, pc := range t.pieces {
		st, ok := p.styles[pc.style]
		if !ok {
			b.WriteString(pc.text)
			continue
		}
		// Style line by line so lipgloss does not pad lines to a common width.
		for i, line := range strings.Split(pc.text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(st.Render(line))
			}
		}
	}
	return b.String()
}
