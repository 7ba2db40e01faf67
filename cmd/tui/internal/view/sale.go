package view

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type saleState int

const (
	saleStateLoading saleState = iota
	saleStateForm
	saleStateSaving
	saleStateDone
)

// saleInput holds the form bindings.
type saleInput struct {
	productID int64
	quantity  string
	date      string
}

type SaleModel struct {
	CommonModel
	svc *inventory.Service

	state    saleState
	products []inventory.ProductRow
	input    *saleInput
	form     *huh.Form

	sale   *inventory.Sale
	status string
	err    error
}

func NewSaleModel(svc *inventory.Service) SaleModel {
	return SaleModel{
		svc:   svc,
		input: &saleInput{date: svc.Today().Format(time.DateOnly)},
	}
}

func (m SaleModel) Title() string { return "Record Sale" }

func (m SaleModel) ShortHelp() string {
	if m.state == saleStateDone {
		return "Enter: record another | Esc: back"
	}

	return "Tab: next field | Esc: back"
}

func (m SaleModel) Init() tea.Cmd {
	return m.loadProductsCmd()
}

func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saleProductsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.products = msg.rows
		if len(m.products) == 0 {
			m.err = errors.New("no products yet, add one first")
			return m, nil
		}

		m.state = saleStateForm
		m.form = m.buildForm()

		return m, m.form.Init()

	case saleResultMsg:
		if msg.err != nil {
			m.status = describeError(msg.err)
			m.state = saleStateForm
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		m.sale = msg.sale
		m.status = ""
		m.state = saleStateDone

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	switch m.state {
	case saleStateForm:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = saleStateSaving

		return m, m.recordCmd()

	case saleStateDone:
		if isKey && keyMsg.Type == tea.KeyEnter {
			fresh := NewSaleModel(m.svc)
			return fresh, fresh.Init()
		}
	}

	return m, nil
}

func (m SaleModel) buildForm() *huh.Form {
	options := make([]huh.Option[int64], 0, len(m.products))
	for _, r := range m.products {
		p := r.Product
		label := fmt.Sprintf("#%d %s (%d left)", p.ID, p.Name, p.QuantityRemaining)
		options = append(options, huh.NewOption(label, p.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Key("product").
				Title("Product").
				Options(options...).
				Height(8).
				Value(&m.input.productID),
			huh.NewInput().Key("quantity").Title("Quantity").Value(&m.input.quantity),
			huh.NewInput().Key("sale_date").Title("Sale date").Placeholder("YYYY-MM-DD").Value(&m.input.date),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SaleModel) View() string {
	if m.err != nil {
		return panelStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	switch m.state {
	case saleStateLoading:
		return panelStyle.Render("Loading products...")
	case saleStateSaving:
		return panelStyle.Render("Recording sale...")
	case saleStateDone:
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render(fmt.Sprintf("Sale #%d recorded: %d unit(s) of product #%d on %s",
				m.sale.ID, m.sale.QuantitySold, m.sale.ProductID, m.sale.SaleDate)),
			"",
			faintStyle.Render(m.ShortHelp()),
		))
	}

	content := m.form.View()
	if m.status != "" {
		content = errorStyle.Render(m.status) + "\n\n" + content
	}

	return panelStyle.Render(content)
}

type saleProductsMsg struct {
	rows []inventory.ProductRow
	err  error
}

func (m SaleModel) loadProductsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.svc.ListProducts(ctx, inventory.ListFilter{})

		return saleProductsMsg{rows: rows, err: err}
	}
}

type saleResultMsg struct {
	sale *inventory.Sale
	err  error
}

func (m SaleModel) recordCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sale, err := m.svc.RecordSale(ctx, in.productID, in.quantity, in.date)

		return saleResultMsg{sale: sale, err: err}
	}
}
