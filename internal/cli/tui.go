package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listDetailStyle = lipgloss.NewStyle().Foreground(colorGray).PaddingLeft(2)
	listCodeStyle   = lipgloss.NewStyle().Foreground(colorWhite).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorDim).PaddingLeft(1).MarginLeft(2)
)

// =============================================================================
// ReportModel - Interactive error browser
// =============================================================================

// reportItem is one row of the browser: a located error or a file that
// could not be checked.
type reportItem struct {
	File     string
	Position string
	Path     string
	Message  string
	Details  string
	Context  string
}

// ReportModel is the bubbletea model for browsing validation errors.
type ReportModel struct {
	Items  []reportItem
	Valid  int
	Cursor int
	Height int
	Offset int
}

// newReportModel creates a browser over the problems in reports.
func newReportModel(reports []fileReport) ReportModel {
	m := ReportModel{Height: 15}
	for _, r := range reports {
		switch {
		case r.Err != nil:
			m.Items = append(m.Items, reportItem{File: r.File, Message: ocerrors.UserMessage(r.Err)})
		case r.Valid:
			m.Valid++
		default:
			for _, e := range r.Errors {
				m.Items = append(m.Items, reportItem{
					File:     r.File,
					Position: fmt.Sprintf("%d:%d", e.Line, e.Column),
					Path:     e.Path,
					Message:  e.Message,
					Details:  e.Details,
					Context:  e.Context,
				})
			}
		}
	}
	return m
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if len(m.Items) > 0 {
				m.Cursor = len(m.Items) - 1
				if m.Cursor >= m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help and the detail pane.
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m ReportModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Validation Errors"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.Items) == 0 {
		b.WriteString(StyleSuccess.Render(fmt.Sprintf("%s All %d documents are valid", iconSuccess, m.Valid)))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		pos := it.Position
		if pos == "" {
			pos = "—"
		}
		rows = append(rows, []string{cursor, it.File, pos, it.Path, it.Message})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "File", "Pos", "Path", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col == 2 || col == 3 {
				base = base.Foreground(colorGray)
			}
			if m.Offset+row == m.Cursor {
				if col == 4 {
					return base.Foreground(colorRed).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	cur := m.Items[m.Cursor]
	if cur.Details != "" {
		b.WriteString(listDetailStyle.Render(cur.Details))
		b.WriteString("\n")
	}
	if cur.Context != "" {
		b.WriteString(listCodeStyle.Render(strings.TrimRight(cur.Context, " \t\r")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d valid", m.Cursor+1, len(m.Items), m.Valid)))

	return b.String()
}

// browseReports runs the error browser until the user quits.
func browseReports(reports []fileReport) error {
	if _, err := tea.NewProgram(newReportModel(reports)).Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
