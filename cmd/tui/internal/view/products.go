package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

const noProductsStatus = "No products match."

type productsState int

const (
	productsStateBrowse productsState = iota
	productsStateSearch
	productsStateEdit
)

type ProductsModel struct {
	CommonModel
	svc *inventory.Service

	state  productsState
	table  table.Model
	rows   []inventory.ProductRow
	search textinput.Model
	form   *huh.Form

	paymentIdx int
	filter     inventory.ListFilter

	// edit is heap allocated so the form binding survives model copies.
	edit   *inventory.ProductInput
	editID int64

	loading bool
	err     error
	status  string
}

func newProductTable(height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Name", Width: 22},
		{Title: "Category", Width: 16},
		{Title: "Qty", Width: 6},
		{Title: "Price", Width: 9},
		{Title: "Expiry", Width: 11},
		{Title: "Payment", Width: 11},
		{Title: "Flags", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func productTableRows(rows []inventory.ProductRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		p := r.Product
		out = append(out, table.Row{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Category,
			strconv.Itoa(p.QuantityRemaining),
			FormatPrice(p.Price),
			p.ExpiryDate,
			p.ModeOfPayment,
			flags(r),
		})
	}

	return out
}

func NewProductsModel(svc *inventory.Service) ProductsModel {
	ti := textinput.New()
	ti.Placeholder = "name or category"
	ti.Prompt = "Search: "
	ti.CharLimit = 64
	ti.Width = 30

	return ProductsModel{
		svc:     svc,
		table:   newProductTable(15),
		search:  ti,
		filter:  inventory.ListFilter{PaymentMode: inventory.PaymentModeAll},
		loading: true,
	}
}

func (m ProductsModel) Title() string { return "Products" }

func (m ProductsModel) ShortHelp() string {
	switch m.state {
	case productsStateSearch:
		return "Enter: apply | Esc: clear"
	case productsStateEdit:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | /: search | p: payment | x: expiring | l: low stock | r: refresh"
}

func (m ProductsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProductsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.rows
		m.table.SetRows(productTableRows(m.rows))

		switch {
		case len(m.rows) == 0:
			m.status = noProductsStatus
		case m.status == noProductsStatus:
			m.status = ""
		}

		return m, nil

	case productSaveMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			m.form = productForm(m.edit)

			return m, m.form.Init()
		}

		m.status = fmt.Sprintf("Saved product #%d.", m.editID)
		m.state = productsStateBrowse
		m.form = nil
		m.edit = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(tableHeight(msg.Height))
		return m, nil
	}

	switch m.state {
	case productsStateBrowse:
		return m.updateBrowse(msg)
	case productsStateSearch:
		return m.updateSearch(msg)
	case productsStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ProductsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "/":
			m.state = productsStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		case "p":
			m.paymentIdx = (m.paymentIdx + 1) % len(paymentModes)
			m.filter.PaymentMode = paymentModes[m.paymentIdx]

			return m, m.loadCmd()
		case "x":
			m.filter.ExpiringSoon = !m.filter.ExpiringSoon
			return m, m.loadCmd()
		case "l":
			m.filter.LowStock = !m.filter.LowStock
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProductsModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			m.filter.SearchText = m.search.Value()
			m.state = productsStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, m.loadCmd()
		case tea.KeyEsc:
			m.search.SetValue("")
			m.filter.SearchText = ""
			m.state = productsStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	return m, cmd
}

func (m ProductsModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return m, nil
	}

	p := m.rows[idx].Product
	m.edit = inputFromProduct(p)
	m.editID = p.ID
	m.form = productForm(m.edit)
	m.status = ""

	m.state = productsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProductsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = productsStateBrowse
			m.form = nil
			m.edit = nil
			m.status = ""
			m.table.Focus()

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

	return m, m.saveCmd()
}

func (m ProductsModel) View() string {
	if m.loading {
		return panelStyle.Render("Loading products...")
	}

	if m.err != nil {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	search := m.filter.SearchText
	if search == "" {
		search = "-"
	}

	header := fmt.Sprintf(
		"Filter: [p] Payment: %s | [x] Expiring soon: %s | [l] Low stock: %s | [/] Search: %s",
		activeStyle(m.filter.PaymentMode),
		activeStyle(onOff(m.filter.ExpiringSoon)),
		activeStyle(onOff(m.filter.LowStock)),
		activeStyle(search),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	parts := []string{lipgloss.NewStyle().PaddingBottom(1).Render(header)}
	if m.state == productsStateSearch {
		parts = append(parts, m.search.View())
	}

	parts = append(parts, tableView, faintStyle.Render("LOW: under 10 left | EXP: expires within 30 days"))
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.state == productsStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Edit Product #%d\n\n%s", m.editID, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = warnStyle.Render(m.status) + "\n" + content
	}

	return panelStyle.Render(content)
}

func onOff(b bool) string {
	if b {
		return "on"
	}

	return "off"
}

// Messages

type loadProductsMsg struct {
	rows []inventory.ProductRow
	err  error
}

func (m ProductsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.svc.ListProducts(ctx, filter)

		return loadProductsMsg{rows: rows, err: err}
	}
}

type productSaveMsg struct {
	err error
}

func (m ProductsModel) saveCmd() tea.Cmd {
	if m.edit == nil {
		return nil
	}

	id := m.editID
	in := *m.edit

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return productSaveMsg{err: m.svc.UpdateProduct(ctx, id, in)}
	}
}
