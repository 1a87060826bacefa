package section

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Marker
	}{
		{
			name: "start without flags",
			text: "section_start:1560896352:build",
			want: Marker{Kind: Start, Name: "build"},
		},
		{
			name: "end without flags",
			text: "section_end:1560896353:build",
			want: Marker{Kind: End, Name: "build"},
		},
		{
			name: "collapsed start",
			text: "section_start:1560896352:build[collapsed=true]",
			want: Marker{Kind: Start, Name: "build", Collapsed: true},
		},
		{
			name: "collapsed false",
			text: "section_start:1560896352:build[collapsed=false]",
			want: Marker{Kind: Start, Name: "build"},
		},
		{
			name: "unknown flag",
			text: "section_start:1560896352:build[hide_duration=true]",
			want: Marker{Kind: Start, Name: "build"},
		},
		{
			name: "empty flags",
			text: "section_start:1560896352:build[]",
			want: Marker{Kind: Start, Name: "build"},
		},
		{
			name: "unclosed bracket keeps whole name",
			text: "section_start:1560896352:build[collapsed=true",
			want: Marker{Kind: Start, Name: "build[collapsed=true"},
		},
		{
			name: "closing bracket before opening keeps whole name",
			text: "section_start:1560896352:bu]ild[x",
			want: Marker{Kind: Start, Name: "bu]ild[x"},
		},
		{
			name: "leading carriage returns",
			text: "\r\rsection_start:1560896352:prepare_script",
			want: Marker{Kind: Start, Name: "prepare_script"},
		},
		{
			name: "trailing carriage return",
			text: "section_end:1560896353:prepare_script\r",
			want: Marker{Kind: End, Name: "prepare_script"},
		},
		{
			name: "end keeps collapsed flag out of the name",
			text: "section_end:1560896353:step_script[collapsed=true]",
			want: Marker{Kind: End, Name: "step_script", Collapsed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_NotAMarker(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"plain text", "Running with gitlab-runner 16.5.0"},
		{"partial keyword", "section_star:1560896352:build"},
		{"keyword without colon", "section_start"},
		{"keyword not at start", "  section_start:1:build"},
		{"embedded keyword", "echo section_start:1:build"},
		{"missing name", "section_start:1560896352"},
		{"too many fields", "section_start:1560896352:build:extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, ErrNotMarker) {
				t.Errorf("Parse(%q) error = %v, want ErrNotMarker", tt.text, err)
			}
		})
	}
}

func TestParse_PairsShareName(t *testing.T) {
	names := []string{"a", "get_sources", "step-script", "x.y", ""}
	for _, name := range names {
		start, err := Parse("section_start:1700000000:" + name)
		require.NoError(t, err)
		end, err := Parse("section_end:1700000001:" + name)
		require.NoError(t, err)

		assert.Equal(t, name, start.Name)
		assert.Equal(t, start.Name, end.Name)
		assert.False(t, start.Collapsed)
		assert.Equal(t, Start, start.Kind)
		assert.Equal(t, End, end.Kind)
	}
}

func TestKind_String(t *testing.T) {
	if Start.String() != "section_start" {
		t.Errorf("Start.String() = %q", Start.String())
	}
	if End.String() != "section_end" {
		t.Errorf("End.String() = %q", End.String())
	}
	if Kind(9).String() != "unknown" {
		t.Errorf("Kind(9).String() = %q", Kind(9).String())
	}
}
