// Package ansi splits terminal output into runs of text sharing one SGR
// (Select Graphic Rendition) effect.
package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	esc       = '\x1b'
	bel       = '\a'
	csiPrefix = "\x1b["
	sgrFinal  = 'm'

	// second bytes of ESC ] (OSC), ESC P (DCS), ESC X (SOS), ESC ^ (PM), ESC _ (APC)
	stringIntroducers = "]PX^_"
)

// Segment is a run of text rendered under a single effect.
// Effect holds the SGR parameters active for the run ("" when reset),
// e.g. "1;32" for bold green.
type Segment struct {
	Effect string
	Text   string
}

// Segmenter splits a line into styled segments.
type Segmenter interface {
	Segment(line string) []Segment
}

// SGR is the default Segmenter.
type SGR struct{}

// Segment implements Segmenter.
func (SGR) Segment(line string) []Segment {
	return Split(line)
}

// Split splits line on escape sequences. Every escape sequence ends the
// current run; SGR sequences change the effect of the following runs and
// any other sequence (cursor moves, erase line) is dropped. Empty runs are
// omitted.
func Split(line string) []Segment {
	var (
		segments []Segment
		effect   string
		text     strings.Builder
	)

	flush := func() {
		if text.Len() == 0 {
			return
		}
		segments = append(segments, Segment{Effect: effect, Text: text.String()})
		text.Reset()
	}

	for len(line) > 0 {
		idx := strings.IndexByte(line, esc)
		if idx < 0 {
			text.WriteString(line)
			break
		}
		text.WriteString(line[:idx])
		line = line[idx:]

		seq, n := decode(line)
		line = line[n:]
		flush()

		if params, ok := sgrParams(seq); ok {
			effect = applySGR(effect, params)
		}
	}
	flush()

	return segments
}

// Strip returns line without any escape sequences.
func Strip(line string) string {
	var b strings.Builder
	for _, seg := range Split(line) {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// decode returns the escape sequence at the start of s and its length.
// String sequences (OSC, DCS, SOS, PM, APC) end at the first BEL or ST; one
// left unterminated on the line consumes only its introducer.
func decode(s string) (string, int) {
	if len(s) >= 2 && s[0] == esc && strings.IndexByte(stringIntroducers, s[1]) >= 0 {
		end := stringTerminator(s[2:])
		if end < 0 {
			return s[:2], 2
		}
		return s[:2+end], 2 + end
	}
	seq, _, n, _ := xansi.DecodeSequence(s, xansi.NormalState, nil)
	if n <= 0 {
		n = 1
	}
	if n > len(s) {
		n = len(s)
	}
	return seq, n
}

// stringTerminator returns the index just past the first BEL or ST in s,
// or -1 when s holds neither.
func stringTerminator(s string) int {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == bel:
			return i + 1
		case s[i] == esc && i+1 < len(s) && s[i+1] == '\\':
			return i + 2
		}
	}
	return -1
}

// sgrParams reports whether seq is an SGR sequence and returns its parameters.
func sgrParams(seq string) (string, bool) {
	if !strings.HasPrefix(seq, csiPrefix) || len(seq) < len(csiPrefix)+1 || seq[len(seq)-1] != sgrFinal {
		return "", false
	}
	params := seq[len(csiPrefix) : len(seq)-1]
	for i := 0; i < len(params); i++ {
		c := params[i]
		if (c < '0' || c > '9') && c != ';' && c != ':' {
			return "", false
		}
	}
	return params, true
}

// applySGR folds params into the current effect. A reset ("" or "0")
// clears everything that came before it.
func applySGR(effect, params string) string {
	if params == "" || params == "0" {
		return ""
	}
	if rest, ok := strings.CutPrefix(params, "0;"); ok {
		return rest
	}
	if effect == "" {
		return params
	}
	return effect + ";" + params
}
