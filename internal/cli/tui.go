package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cpanmap/pkg/catalog"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listFilterStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// DistroPickerModel - Interactive distribution selection
// =============================================================================

// DistroPickerModel is the bubbletea model for picking a distribution.
// Typing narrows the list to names containing the typed text.
type DistroPickerModel struct {
	All      []*catalog.Distribution
	Visible  []*catalog.Distribution
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *catalog.Distribution
}

// NewDistroPickerModel creates a picker over ds.
func NewDistroPickerModel(ds []*catalog.Distribution, filter string) DistroPickerModel {
	m := DistroPickerModel{All: ds, Filter: strings.ToLower(filter), Height: 15}
	m.applyFilter()
	return m
}

func (m *DistroPickerModel) applyFilter() {
	visible := make([]*catalog.Distribution, 0, len(m.All))
	for _, d := range m.All {
		if strings.Contains(d.LowerName, m.Filter) {
			visible = append(visible, d)
		}
	}
	m.Visible = visible
	m.Cursor, m.Offset = 0, 0
}

func (m DistroPickerModel) Init() tea.Cmd {
	return nil
}

func (m DistroPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Visible) == 0 {
				return m, nil
			}
			m.Selected = m.Visible[m.Cursor]
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.applyFilter()
			}
		case tea.KeyRunes:
			m.Filter += strings.ToLower(string(msg.Runes))
			m.applyFilter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m DistroPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Distribution"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n")
	b.WriteString(listFilterStyle.Render("filter: " + m.Filter))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Visible))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Name, d.Maintainer.ID, formatCell(d.Row, d.Col)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Distribution", "Maintainer", "Cell").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := 0
	if len(m.Visible) > 0 {
		pos = m.Cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, len(m.Visible))))

	return b.String()
}

// pickDistribution runs the picker and returns the chosen distribution, or
// nil if the user quit.
func pickDistribution(ds []*catalog.Distribution, filter string) (*catalog.Distribution, error) {
	final, err := tea.NewProgram(NewDistroPickerModel(ds, filter)).Run()
	if err != nil {
		return nil, err
	}
	return final.(DistroPickerModel).Selected, nil
}
