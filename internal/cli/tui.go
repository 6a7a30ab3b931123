package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/grapes/pkg/model"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ModuleListModel - Interactive module selection
// =============================================================================

// ModuleListModel is the bubbletea model for interactive module selection.
type ModuleListModel struct {
	Modules  []model.Module
	Cursor   int
	Selected *model.Module
	Height   int
	Offset   int
}

// NewModuleListModel creates a new module list model.
func NewModuleListModel(modules []model.Module) ModuleListModel {
	return ModuleListModel{Modules: modules, Height: 15}
}

func (m ModuleListModel) Init() tea.Cmd {
	return nil
}

func (m ModuleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Modules)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Modules) == 0 {
				return m, nil
			}
			selected := m.Modules[m.Cursor]
			m.Selected = &selected
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ModuleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Module"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Modules))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		mod := m.Modules[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		org := mod.Organization
		if org == "" {
			org = "—"
		}
		promoted := ""
		if mod.Promoted {
			promoted = "✓"
		}
		rows = append(rows, []string{cursor, mod.Name, mod.Version, org, promoted,
			strconv.Itoa(len(mod.AllDependencies()))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Module", "Version", "Organization", "Promoted", "Deps").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Modules) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if m.Modules[idx].Promoted {
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Modules))))

	return b.String()
}
