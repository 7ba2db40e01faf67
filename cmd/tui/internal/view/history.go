package view

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/report"
)

type historyState int

const (
	historyStatePeriod historyState = iota
	historyStateList
	historyStatePath
	historyStateExporting
	historyStateResult
)

const exportTimeout = time.Minute

// HistoryModel shows the sales in a date range and exports them as CSV.
type HistoryModel struct {
	CommonModel
	reportService *report.Service

	state  historyState
	period PeriodPicker
	filter inventory.SaleFilter

	table   table.Model
	lines   []report.Line
	summary string

	form    *huh.Form
	path    *string
	spinner spinner.Model
	written string

	err error
}

func NewHistoryModel(svc *report.Service, today func() time.Time) HistoryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	columns := []table.Column{
		{Title: "Date", Width: 11},
		{Title: "Sale", Width: 6},
		{Title: "Product", Width: 24},
		{Title: "Qty", Width: 5},
		{Title: "Unit", Width: 9},
		{Title: "Total", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return HistoryModel{
		reportService: svc,
		state:         historyStatePeriod,
		period:        NewPeriodPicker(today),
		table:         t,
		path:          new("./reports"),
		spinner:       s,
	}
}

func (m HistoryModel) Title() string { return "Sales History" }

func (m HistoryModel) ShortHelp() string {
	switch m.state {
	case historyStateList:
		return "Esc: change period | x: export CSV"
	case historyStateExporting:
		return "Exporting..."
	case historyStateResult:
		return "Esc: back to sales"
	}

	return "Esc: back | Enter: confirm"
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.filter = msg.Filter

		m.state = historyStateList
		m.err = nil

		return m, m.loadCmd()

	case historyLoadMsg:
		m.err = msg.err
		m.lines = msg.lines
		m.summary = report.Summary(msg.lines)
		m.table.SetRows(historyRows(msg.lines))

		return m, nil

	case historyExportMsg:
		m.state = historyStateResult
		m.err = msg.err
		m.written = msg.path

		return m, nil
	}

	switch m.state {
	case historyStatePeriod:
		return m.updatePeriod(msg)
	case historyStateList:
		return m.updateList(msg)
	case historyStatePath:
		return m.updatePath(msg)
	case historyStateExporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case historyStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = historyStateList
			m.err = nil
		}
	}

	return m, nil
}

func (m HistoryModel) updatePeriod(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.period.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.period, cmd = m.period.Update(msg)

	return m, cmd
}

func (m HistoryModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = historyStatePeriod
			m.period.Reset()

			return m, nil
		case "x":
			m.form = m.buildPathForm()
			m.state = historyStatePath

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = historyStateList
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = historyStateExporting

	return m, tea.Batch(m.spinner.Tick, m.exportCmd(*m.path))
}

func (m HistoryModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./reports").
				Value(m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m HistoryModel) View() string {
	switch m.state {
	case historyStatePeriod:
		return panelStyle.Render(m.period.View())

	case historyStatePath:
		return panelStyle.Render(m.form.View())

	case historyStateExporting:
		return panelStyle.Render(fmt.Sprintf("%s Writing sales report...", m.spinner.View()))

	case historyStateResult:
		if m.err != nil {
			return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Export Complete!"),
			"",
			"Written to "+m.written,
		))
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	body := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if len(m.lines) == 0 {
		body = faintStyle.Render("No sales in this range.")
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Range: "+activeStyle(rangeLabel(m.filter))),
		body,
		"",
		m.summary,
	))
}

func rangeLabel(f inventory.SaleFilter) string {
	if f.StartDate == nil || f.EndDate == nil {
		return "All sales"
	}

	return FormatDate(*f.StartDate) + " to " + FormatDate(*f.EndDate)
}

func historyRows(lines []report.Line) []table.Row {
	rows := make([]table.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, table.Row{
			l.SaleDate,
			strconv.FormatInt(l.SaleID, 10),
			l.ProductName,
			strconv.Itoa(l.Quantity),
			l.UnitPrice,
			l.Total,
		})
	}

	return rows
}

type historyLoadMsg struct {
	lines []report.Line
	err   error
}

func (m HistoryModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		lines, err := m.reportService.Build(ctx, filter)

		return historyLoadMsg{lines: lines, err: err}
	}
}

type historyExportMsg struct {
	path string
	err  error
}

func (m HistoryModel) exportCmd(dir string) tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		path, _, err := m.reportService.Export(ctx, filter, dir)

		return historyExportMsg{path: path, err: err}
	}
}
