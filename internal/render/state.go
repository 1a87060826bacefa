package render

import (
	"github.com/detent/glctl/internal/section"
)

// Filter selects which section bodies are shown.
type Filter struct {
	All  bool   // show everything, collapsed sections included
	Step string // section of interest when All is false
}

// Section is an open section on the render stack.
type Section struct {
	Name      string
	Collapsed bool
}

// Visible reports whether a line is shown while stack is open.
//
// Outside of any section everything is shown. Inside sections a line is shown
// only when no open section is collapsed and one of them is the filtered step.
func (f Filter) Visible(stack []Section) bool {
	if f.All || len(stack) == 0 {
		return true
	}
	matched := false
	for _, s := range stack {
		if s.Collapsed {
			return false
		}
		if s.Name == f.Step {
			matched = true
		}
	}
	return matched
}

// parseMode is either scanning text or holding a marker whose effect is
// applied together with the segment that follows it.
type parseMode struct {
	insideMarker bool
	marker       section.Marker
}

func scanningText() parseMode {
	return parseMode{}
}

func insideMarker(m section.Marker) parseMode {
	return parseMode{insideMarker: true, marker: m}
}

// state is owned by a single Render call.
type state struct {
	mode  parseMode
	stack []Section
}

func (s *state) push(sec Section) {
	s.stack = append(s.stack, sec)
}

// pop removes the innermost section. Producers are trusted to close sections
// in order, so the name is not checked.
func (s *state) pop() (Section, bool) {
	if len(s.stack) == 0 {
		return Section{}, false
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top, true
}
