package section

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies whether a marker opens or closes a section.
type Kind int

// Marker kinds.
const (
	Start Kind = iota
	End
)

const (
	startKeyword = "section_start"
	endKeyword   = "section_end"

	collapsedFlag = "collapsed=true"
)

// String returns the keyword used in logs for the kind.
func (k Kind) String() string {
	switch k {
	case Start:
		return startKeyword
	case End:
		return endKeyword
	}
	return "unknown"
}

// ErrNotMarker is returned when a piece of text is not a section marker.
// Callers treat it as plain text.
var ErrNotMarker = errors.New("not a section marker")

// Marker is a section boundary parsed from a job log segment.
//
// GitLab writes them as:
//
//	section_start:1560896352:my_section[collapsed=true]
//	section_end:1560896353:my_section
type Marker struct {
	Kind      Kind
	Name      string
	Collapsed bool // only meaningful for Start
}

// Parse interprets text as a section marker.
// Any text that is not a well-formed marker yields an error wrapping ErrNotMarker.
func Parse(text string) (Marker, error) {
	// producers may prefix control characters
	text = strings.TrimLeft(text, "\r")
	if !strings.HasPrefix(text, startKeyword+":") && !strings.HasPrefix(text, endKeyword+":") {
		return Marker{}, ErrNotMarker
	}

	fields := strings.Split(strings.TrimSpace(text), ":")
	if len(fields) != 3 {
		return Marker{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrNotMarker, len(fields))
	}

	var kind Kind
	switch fields[0] {
	case startKeyword:
		kind = Start
	case endKeyword:
		kind = End
	default:
		return Marker{}, fmt.Errorf("%w: unknown type %q", ErrNotMarker, fields[0])
	}

	name, flags, hasFlags := splitFlags(fields[2])
	return Marker{
		Kind:      kind,
		Name:      name,
		Collapsed: hasFlags && flags == collapsedFlag,
	}, nil
}

// splitFlags separates "name[flags]" into its parts. Without a well-formed
// bracket pair the whole value is the name.
func splitFlags(value string) (name, flags string, ok bool) {
	open := strings.IndexByte(value, '[')
	if open < 0 {
		return value, "", false
	}
	end := strings.IndexByte(value[open+1:], ']')
	if end < 0 {
		return value, "", false
	}
	return value[:open], value[open+1 : open+1+end], true
}
