package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func browserEntries() []BrowserEntry {
	return []BrowserEntry{
		{Cursor: 0, Summary: "initial state", View: []string{"@ d4e5f6a7 (main) initial commit"}},
		{Cursor: 1, Summary: "commit: created a1b2c3d4", View: []string{"@ a1b2c3d4 add parser"}},
		{Cursor: 2, Summary: "hide: hid a1b2c3d4", View: []string{"@ d4e5f6a7 (main) initial commit"}},
	}
}

func stepBrowser(t *testing.T, m undoBrowserModel, msg tea.Msg) (undoBrowserModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(undoBrowserModel)
	require.True(t, ok)
	return next, cmd
}

func TestUndoBrowser(t *testing.T) {
	t.Run("steps between states", func(t *testing.T) {
		m := newUndoBrowserModel(browserEntries(), 2)
		m, _ = stepBrowser(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

		m, _ = stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyLeft})
		require.Equal(t, 1, m.index)

		m, _ = stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyLeft})
		m, _ = stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyLeft})
		require.Equal(t, 0, m.index, "stepping past the oldest state stays put")

		m, _ = stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyRight})
		require.Equal(t, 1, m.index)
	})

	t.Run("shows the state summary and its smartlog", func(t *testing.T) {
		m := newUndoBrowserModel(browserEntries(), 1)
		m, _ = stepBrowser(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

		view := m.View()
		require.Contains(t, view, "Repo state 2/3")
		require.Contains(t, view, "commit: created a1b2c3d4")
		require.Contains(t, view, "@ a1b2c3d4 add parser")
	})

	t.Run("enter confirms the selected state", func(t *testing.T) {
		m := newUndoBrowserModel(browserEntries(), 2)
		m, _ = stepBrowser(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
		m, _ = stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyLeft})

		m, cmd := stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.accepted)
		require.Equal(t, 1, m.index)
		require.NotNil(t, cmd)
	})

	t.Run("quit leaves without accepting", func(t *testing.T) {
		m := newUndoBrowserModel(browserEntries(), 0)
		m, _ = stepBrowser(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

		m, cmd := stepBrowser(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		require.False(t, m.accepted)
		require.NotNil(t, cmd)
		require.Equal(t, "", m.View())
	})
}
