package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/figsheet/figsheet/pkg/manifest"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// manifestCandidate - Discovered manifest files
// =============================================================================

// manifestCandidate is a manifest file found under a directory, with
// enough metadata to choose between several.
type manifestCandidate struct {
	Path     string
	Images   int
	Captions int
	Modified time.Time
	Err      error
}

// discoverManifests scans dir for JSON manifests and probes each one.
// Unreadable or malformed files stay in the list so the picker can
// show them dimmed.
func discoverManifests(dir string) ([]manifestCandidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []manifestCandidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		c := manifestCandidate{Path: path}
		if info, err := e.Info(); err == nil {
			c.Modified = info.ModTime()
		}
		if m, err := manifest.Load(path); err != nil {
			c.Err = err
		} else {
			c.Images = len(m.Images())
			c.Captions = len(m.Captions())
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// =============================================================================
// ManifestListModel - Interactive manifest file selection
// =============================================================================

// ManifestListModel is the bubbletea model for interactive manifest selection.
type ManifestListModel struct {
	Candidates []manifestCandidate
	Cursor     int
	Selected   *manifestCandidate
	Height     int
	Offset     int
}

// NewManifestListModel creates a new manifest list model.
func NewManifestListModel(candidates []manifestCandidate) ManifestListModel {
	return ManifestListModel{
		Candidates: candidates,
		Height:     15,
	}
}

func (m ManifestListModel) Init() tea.Cmd {
	return nil
}

func (m ManifestListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Candidates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			c := m.Candidates[m.Cursor]
			if c.Err != nil {
				return m, nil
			}
			m.Selected = &c
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ManifestListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Manifest"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Candidates) {
		end = len(m.Candidates)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := m.Candidates[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		images := "—"
		captions := "—"
		if c.Err == nil {
			images = fmt.Sprintf("%d", c.Images)
			captions = fmt.Sprintf("%d", c.Captions)
		}

		modified := "—"
		if !c.Modified.IsZero() {
			modified = formatRelativeTime(c.Modified)
		}

		rows = append(rows, []string{cursor, filepath.Base(c.Path), images, captions, modified})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Manifest", "Images", "Captions", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Candidates) {
				return lipgloss.NewStyle()
			}
			c := m.Candidates[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if c.Err != nil {
				return base.Foreground(colorDim)
			}
			if isCurrent {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Candidates))))

	return b.String()
}

// pickManifest runs the interactive picker over the manifests found in
// dir and returns the selected path. An empty string means the user
// quit without choosing.
func pickManifest(dir string) (string, error) {
	candidates, err := discoverManifests(dir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no manifest files found in %s", dir)
	}
	if len(candidates) == 1 && candidates[0].Err == nil {
		return candidates[0].Path, nil
	}

	model := NewManifestListModel(candidates)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}
	result := final.(ManifestListModel)
	if result.Selected == nil {
		return "", nil
	}
	return result.Selected.Path, nil
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
