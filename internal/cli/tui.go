package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/selecttree/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	defaultPickerHeight = 15
	minPickerHeight     = 5
)

// PickerModel is the bubbletea model for choosing one selectbox option.
// Selected is set when the user confirms with enter and stays nil when
// they quit.
type PickerModel struct {
	Title    string
	Lines    tree.Lines
	Cursor   int
	Offset   int
	Height   int
	Selected *tree.Line
}

// NewPickerModel creates a picker over lines.
func NewPickerModel(title string, lines tree.Lines) PickerModel {
	return PickerModel{
		Title:  title,
		Lines:  lines,
		Height: defaultPickerHeight,
	}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Lines))
		case "end", "G":
			m.move(len(m.Lines))
		case "enter":
			if len(m.Lines) == 0 {
				return m, tea.Quit
			}
			line := m.Lines[m.Cursor]
			m.Selected = &line
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, minPickerHeight)
		m.scroll()
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the list, and keeps it visible.
func (m *PickerModel) move(delta int) {
	if len(m.Lines) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Lines)-1)
	m.scroll()
}

func (m *PickerModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Lines) == 0 {
		b.WriteString(listDimStyle.Render("  no options"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Lines))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, m.Lines[i].Text, m.Lines[i].ID.String()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Option", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Lines))))

	return b.String()
}
