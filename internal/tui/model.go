// Package tui is a terminal browser over the assessment history: a table
// of recent assessments with a detail view for factors and
// recommendations.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oakmere/auditflow/internal/cli"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/service"
)

// State represents the current state of the TUI.
type State int

const (
	StateList State = iota
	StateDetail
)

// historyLoadedMsg carries a fresh page of assessment history.
type historyLoadedMsg struct {
	records []model.AssessmentRecord
}

// errMsg reports a failed load.
type errMsg struct {
	err error
}

// Model holds the history browser state.
type Model struct {
	ctx      context.Context
	assessor service.Assessor
	keymap   KeyMap
	table    table.Model
	records  []model.AssessmentRecord
	lastErr  error
	limit    int
	width    int
	height   int
	state    State
	quitting bool
}

func newModel(ctx context.Context, assessor service.Assessor, limit int) Model {
	columns := []table.Column{
		{Title: "Assessed", Width: 17},
		{Title: "Income", Width: 14},
		{Title: "Score", Width: 8},
		{Title: "Level", Width: 8},
		{Title: "Factors", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(cli.PrimaryColor).
		Bold(false)
	t.SetStyles(s)

	return Model{
		ctx:      ctx,
		assessor: assessor,
		keymap:   DefaultKeyMap(),
		table:    t,
		limit:    limit,
		state:    StateList,
		width:    80,
		height:   24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.loadHistory())
}

// loadHistory fetches recent assessments off the Update loop.
func (m Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := m.assessor.History(m.ctx, m.limit)
		if err != nil {
			return errMsg{err: err}
		}
		return historyLoadedMsg{records: records}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Select):
			if m.state == StateList && len(m.records) > 0 {
				m.state = StateDetail
			}
			return m, nil
		case key.Matches(msg, m.keymap.Back):
			if m.state == StateDetail {
				m.state = StateList
			}
			return m, nil
		case key.Matches(msg, m.keymap.Refresh):
			if m.state == StateList {
				return m, m.loadHistory()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(maxInt(m.height-6, 3))

	case historyLoadedMsg:
		m.records = msg.records
		m.lastErr = nil
		m.table.SetRows(historyRows(m.records))

	case errMsg:
		m.lastErr = msg.err
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateDetail:
		return m.detailView()
	default:
		return m.listView()
	}
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(cli.FormatTitle("Assessment History") + "\n")

	if m.lastErr != nil {
		b.WriteString(cli.FormatError("Failed to load history: "+m.lastErr.Error()) + "\n")
	}
	if len(m.records) == 0 && m.lastErr == nil {
		b.WriteString(cli.FormatInfo("No assessments recorded yet") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	b.WriteString(cli.SubtleStyle.Render("↑/↓ navigate • enter details • r refresh • q quit"))
	return b.String()
}

func (m Model) detailView() string {
	record := m.selectedRecord()
	if record == nil {
		return m.listView()
	}

	header := fmt.Sprintf("Assessed %s, total income %s",
		record.AssessedAt.Format("2006-01-02 15:04"),
		record.TotalIncome.StringFixed(2))

	body := cli.SubtleStyle.Render(header) + "\n\n" +
		cli.RenderAssessment(record.Result) + "\n" +
		cli.SubtleStyle.Render("esc back • q quit")

	return body
}

func (m Model) selectedRecord() *model.AssessmentRecord {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return nil
	}
	return &m.records[idx]
}

func historyRows(records []model.AssessmentRecord) []table.Row {
	rows := make([]table.Row, len(records))
	for i, rec := range records {
		rows[i] = table.Row{
			rec.AssessedAt.Format("2006-01-02 15:04"),
			rec.TotalIncome.StringFixed(2),
			rec.Result.Score.Round(4).String(),
			string(rec.Result.Level),
			fmt.Sprintf("%d", len(rec.Result.Factors)),
		}
	}
	return rows
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
