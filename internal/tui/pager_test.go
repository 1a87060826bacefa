package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizedPager(t *testing.T, lines int) *PagerModel {
	t.Helper()
	var b strings.Builder
	for i := range lines {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	m := NewPagerModel("Log for job 1", b.String())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 13})
	require.True(t, m.ready)
	return m
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPager_NotReadyView(t *testing.T) {
	m := NewPagerModel("title", "body")
	assert.Equal(t, "Loading...\n", m.View())
}

func TestPager_WindowSize(t *testing.T) {
	m := sizedPager(t, 50)

	assert.Equal(t, 80, m.viewport.Width)
	assert.Equal(t, 10, m.viewport.Height)
	assert.Contains(t, m.View(), "Log for job 1")
	assert.Contains(t, m.View(), "line 0")
}

func TestPager_TopBottom(t *testing.T) {
	m := sizedPager(t, 50)
	assert.True(t, m.viewport.AtTop())

	m.Update(runeKey("G"))
	assert.True(t, m.viewport.AtBottom())
	assert.Contains(t, m.View(), "line 49")

	m.Update(runeKey("g"))
	assert.True(t, m.viewport.AtTop())
}

func TestPager_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := sizedPager(t, 5)
		_, cmd := m.Update(key)
		require.NotNil(t, cmd, key.String())
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestPager_Resize(t *testing.T) {
	m := sizedPager(t, 5)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 2})

	assert.Equal(t, 40, m.viewport.Width)
	assert.Equal(t, 1, m.viewport.Height)
}
