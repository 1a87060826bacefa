// Package render replays GitLab job logs, folding sections according to a
// filter and printing a banner for every section boundary.
package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/detent/glctl/internal/ansi"
	"github.com/detent/glctl/internal/section"
	"github.com/detent/glctl/internal/style"
)

const initialLineBuffer = 64 * 1024

// Options configure a Renderer.
type Options struct {
	Filter  Filter
	Colored bool

	// Segmenter splits lines into styled runs. Defaults to ansi.SGR.
	Segmenter ansi.Segmenter

	// Logger receives section events at debug level. Nil discards them.
	Logger *log.Logger
}

// Renderer writes a filtered job log to an output stream.
// A Renderer keeps no state between Render calls.
type Renderer struct {
	printer   *style.Printer
	filter    Filter
	colored   bool
	segmenter ansi.Segmenter
	logger    *log.Logger
}

// New creates a Renderer writing to w.
func New(w io.Writer, opts Options) *Renderer {
	r := &Renderer{
		printer:   style.NewPrinter(w, opts.Colored),
		filter:    opts.Filter,
		colored:   opts.Colored,
		segmenter: opts.Segmenter,
		logger:    opts.Logger,
	}
	if r.segmenter == nil {
		r.segmenter = ansi.SGR{}
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Render writes data line by line. Malformed markers are printed as text;
// any write failure aborts the render.
func (r *Renderer) Render(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, initialLineBuffer), max(len(data)+1, initialLineBuffer))

	st := &state{}
	for scanner.Scan() {
		if err := r.renderLine(st, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(st.stack) > 0 {
		r.logger.Debug("log ended with open sections", "depth", len(st.stack))
	}
	return nil
}

func (r *Renderer) renderLine(st *state, line string) error {
	// content before a marker keeps the visibility of the previous line
	show := r.filter.Visible(st.stack)

	var err error
	for _, seg := range r.segmenter.Segment(line) {
		if st.mode.insideMarker {
			if show, err = r.applyMarker(st, seg.Text); err != nil {
				return err
			}
			continue
		}

		m, parseErr := section.Parse(seg.Text)
		if parseErr != nil {
			// colored output re-emits the whole line at the end to keep its styling
			if show && !r.colored {
				var txt style.Text
				txt.None(seg.Text)
				if err := r.printer.Print(txt); err != nil {
					return fmt.Errorf("print segment: %w", err)
				}
			}
			continue
		}
		st.mode = insideMarker(m)
	}

	// a marker ending the line has no header segment
	if st.mode.insideMarker {
		if show, err = r.applyMarker(st, ""); err != nil {
			return err
		}
	}

	if !show {
		return nil
	}
	var txt style.Text
	if r.colored {
		txt.None(line)
	}
	txt.None("\n")
	if err := r.printer.Print(txt); err != nil {
		return fmt.Errorf("print line: %w", err)
	}
	return nil
}

// applyMarker applies the pending marker using text, the segment that
// follows it, and returns the visibility for the rest of the line.
func (r *Renderer) applyMarker(st *state, text string) (bool, error) {
	m := st.mode.marker

	switch m.Kind {
	case section.Start:
		sec := Section{Name: m.Name, Collapsed: m.Collapsed}
		st.push(sec)
		show := r.filter.Visible(st.stack)
		r.logger.Debug("section opened", "name", sec.Name, "collapsed", sec.Collapsed, "depth", len(st.stack), "shown", show)

		if err := r.printer.Print(banner(text, sec, show, r.colored)); err != nil {
			return false, fmt.Errorf("print banner: %w", err)
		}
		st.mode = scanningText()

		// the banner took this line's slot
		if r.colored {
			if show {
				var sep style.Text
				sep.None("\n")
				if err := r.printer.Print(sep); err != nil {
					return false, fmt.Errorf("print banner: %w", err)
				}
			}
			show = false
		}
		return show, nil

	default:
		shown := r.filter.Visible(st.stack)
		closing, ok := st.pop()
		if !ok {
			r.logger.Debug("section end without open section", "name", m.Name)
		}
		show := r.filter.Visible(st.stack)
		r.logger.Debug("section closed", "name", m.Name, "depth", len(st.stack), "shown", show)

		// adjacent markers: this segment may itself open or close a section
		title := text
		if next, err := section.Parse(text); err == nil {
			st.mode = insideMarker(next)
			title = ""
		} else {
			st.mode = scanningText()
		}

		sec := Section{Name: m.Name, Collapsed: closing.Collapsed}
		if err := r.printer.Print(banner(title, sec, shown, r.colored)); err != nil {
			return false, fmt.Errorf("print banner: %w", err)
		}

		if r.colored {
			show = false
		}
		return show, nil
	}
}

// banner formats the line announcing a section boundary. Sections whose
// body is filtered out are flagged with a trailing " <".
func banner(title string, sec Section, shown, colored bool) style.Text {
	var txt style.Text
	txt.Warning(fmt.Sprintf("\n> %s [", title))
	txt.Literal(sec.Name)
	txt.Warning("]")
	if !shown {
		txt.Warning(" <")
		if sec.Collapsed && colored {
			txt.None("\n")
		}
	}
	txt.None("\n")
	return txt
}
