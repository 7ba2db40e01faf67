package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

// expiryWindows are the day ranges the expiring screen toggles between.
var expiryWindows = []int{7, 30}

// ExpiringModel lists products expiring within a short or long window.
type ExpiringModel struct {
	CommonModel
	svc *inventory.Service

	table     table.Model
	windowIdx int
	count     int
	loading   bool
	err       error
}

func NewExpiringModel(svc *inventory.Service) ExpiringModel {
	return ExpiringModel{
		svc:     svc,
		table:   newProductTable(15),
		loading: true,
	}
}

func (m ExpiringModel) Title() string { return "Expiring Products" }

func (m ExpiringModel) ShortHelp() string {
	return "Esc: back | t: toggle 7/30 days | r: refresh"
}

func (m ExpiringModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ExpiringModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadExpiringMsg:
		m.loading = false
		m.err = msg.err
		m.count = len(msg.rows)
		m.table.SetRows(productTableRows(msg.rows))

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(tableHeight(msg.Height))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "t":
			m.windowIdx = (m.windowIdx + 1) % len(expiryWindows)
			m.loading = true

			return m, m.loadCmd()
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ExpiringModel) View() string {
	if m.loading {
		return panelStyle.Render("Loading...")
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("[t] Window: %s | %d product(s)",
		activeStyle(fmt.Sprintf("%d days", expiryWindows[m.windowIdx])), m.count)

	return panelStyle.Render(alertLayout(header, m.table, m.count == 0, "Nothing expires in this window."))
}

type loadExpiringMsg struct {
	rows []inventory.ProductRow
	err  error
}

func (m ExpiringModel) loadCmd() tea.Cmd {
	days := expiryWindows[m.windowIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.svc.ExpiringWithin(ctx, days)
		if err != nil {
			return loadExpiringMsg{err: err}
		}

		today := m.svc.Today()

		rows := make([]inventory.ProductRow, len(products))
		for i, p := range products {
			rows[i] = inventory.ProductRow{
				Product:        p,
				IsLowStock:     p.IsLowStock(),
				IsExpiringSoon: p.IsExpiringSoon(today),
			}
		}

		return loadExpiringMsg{rows: rows}
	}
}

// LowStockModel lists products that need restocking.
type LowStockModel struct {
	CommonModel
	svc *inventory.Service

	table   table.Model
	count   int
	loading bool
	err     error
}

func NewLowStockModel(svc *inventory.Service) LowStockModel {
	return LowStockModel{
		svc:     svc,
		table:   newProductTable(15),
		loading: true,
	}
}

func (m LowStockModel) Title() string { return "Low Stock" }

func (m LowStockModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m LowStockModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LowStockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLowStockMsg:
		m.loading = false
		m.err = msg.err
		m.count = len(msg.rows)
		m.table.SetRows(productTableRows(msg.rows))

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(tableHeight(msg.Height))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LowStockModel) View() string {
	if m.loading {
		return panelStyle.Render("Loading...")
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Under %d units left | %s",
		inventory.LowStockThreshold, warnStyle.Render(fmt.Sprintf("%d critical", m.count)))

	return panelStyle.Render(alertLayout(header, m.table, m.count == 0, "Every product is stocked."))
}

type loadLowStockMsg struct {
	rows []inventory.ProductRow
	err  error
}

func (m LowStockModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.svc.LowStockProducts(ctx)

		return loadLowStockMsg{rows: rows, err: err}
	}
}

func alertLayout(header string, t table.Model, empty bool, emptyText string) string {
	body := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(t.View())

	if empty {
		body = faintStyle.Render(emptyText)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
	)
}
