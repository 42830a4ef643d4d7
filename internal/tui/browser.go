package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"arbor.dev/arbor/internal/eventlog"
)

// BrowserEntry is one historical repository state the undo browser can land
// on: the cursor it corresponds to, a one-line account of the event that
// produced it, and the smartlog lines for the state.
type BrowserEntry struct {
	Cursor  eventlog.Cursor
	Summary string
	View    []string
}

type browserKeyMap struct {
	Older   key.Binding
	Newer   key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k browserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Older, k.Newer, k.Confirm, k.Quit}
}

func (k browserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Older, k.Newer}, {k.Confirm, k.Quit}}
}

func newBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		Older: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "older"),
		),
		Newer: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "newer"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "go to this state"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// undoBrowserModel steps through historical states; the viewport scrolls a
// single state while left/right move between states.
type undoBrowserModel struct {
	entries  []BrowserEntry
	index    int
	keys     browserKeyMap
	help     help.Model
	viewport viewport.Model
	ready    bool
	accepted bool
	quitting bool

	titleStyle  lipgloss.Style
	statusStyle lipgloss.Style
}

func newUndoBrowserModel(entries []BrowserEntry, start int) undoBrowserModel {
	return undoBrowserModel{
		entries:     entries,
		index:       start,
		keys:        newBrowserKeyMap(),
		help:        help.New(),
		titleStyle:  lipgloss.NewStyle().Bold(true),
		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (m undoBrowserModel) Init() tea.Cmd {
	return nil
}

func (m undoBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Older):
			if m.index > 0 {
				m.index--
				m.setContent()
			}
			return m, nil
		case key.Matches(msg, m.keys.Newer):
			if m.index < len(m.entries)-1 {
				m.index++
				m.setContent()
			}
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			m.accepted = true
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.setContent()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *undoBrowserModel) setContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.entries[m.index].View, "\n"))
	m.viewport.GotoTop()
}

func (m undoBrowserModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  loading..."
	}

	entry := m.entries[m.index]
	title := m.titleStyle.Render(fmt.Sprintf("Repo state %d/%d", m.index+1, len(m.entries)))
	status := m.statusStyle.Render(entry.Summary)
	header := title + "  " + status + "\n"

	return header + "\n" + m.viewport.View() + "\n" + m.help.View(m.keys)
}

// RunUndoBrowser steps through the given states starting at start and returns
// the index the user landed on, plus whether they confirmed it with Enter.
func RunUndoBrowser(entries []BrowserEntry, start int) (int, bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return 0, false, err
	}
	if len(entries) == 0 {
		return 0, false, fmt.Errorf("no states to browse")
	}
	if start < 0 {
		start = 0
	}
	if start >= len(entries) {
		start = len(entries) - 1
	}

	m := newUndoBrowserModel(entries, start)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return 0, false, err
	}

	if finalModel, ok := final.(undoBrowserModel); ok {
		return finalModel.index, finalModel.accepted, nil
	}
	return 0, false, fmt.Errorf("unexpected model type")
}
