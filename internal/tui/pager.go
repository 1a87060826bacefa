package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	headerHeight = 2 // title + blank line
	footerHeight = 1
)

// PagerModel is the Bubble Tea model for scrolling a rendered log.
type PagerModel struct {
	viewport viewport.Model
	title    string
	content  string
	ready    bool
}

// NewPagerModel creates a pager over already rendered content.
func NewPagerModel(title, content string) *PagerModel {
	return &PagerModel{
		title:   title,
		content: strings.TrimSuffix(content, "\n"),
	}
}

func (m *PagerModel) Init() tea.Cmd {
	return nil
}

func (m *PagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *PagerModel) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title) + "\n\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(HintStyle.Render(fmt.Sprintf("%3.f%%  g/G top/bottom, q to quit", m.viewport.ScrollPercent()*100)))
	return b.String()
}

// RunPager shows content in a full-screen pager until the user quits.
func RunPager(title, content string) error {
	p := tea.NewProgram(NewPagerModel(title, content), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}
