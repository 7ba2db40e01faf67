package view

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

// productForm binds every product field to in. The ledger does the validation
// so the form and the API reject exactly the same input.
func productForm(in *inventory.ProductInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("name").Title("Name").Value(&in.Name),
			huh.NewInput().Key("category").Title("Category").Value(&in.Category),
			huh.NewInput().Key("quantity_remaining").Title("Quantity remaining").Value(&in.QuantityRemaining),
			huh.NewInput().Key("quantity_to_expire").Title("Quantity to expire").Value(&in.QuantityToExpire),
			huh.NewInput().Key("price").Title("Price").Placeholder("0.00").Value(&in.Price),
			huh.NewInput().Key("expiry_date").Title("Expiry date").Placeholder("YYYY-MM-DD").Value(&in.ExpiryDate),
			huh.NewInput().
				Key("mode_of_payment").
				Title("Mode of payment").
				Suggestions(paymentModes[1:]).
				Value(&in.ModeOfPayment),
		),
	).WithWidth(45).WithShowHelp(false)
}

func inputFromProduct(p *inventory.Product) *inventory.ProductInput {
	return &inventory.ProductInput{
		Name:              p.Name,
		Category:          p.Category,
		QuantityRemaining: strconv.Itoa(p.QuantityRemaining),
		QuantityToExpire:  strconv.Itoa(p.QuantityToExpire),
		Price:             p.Price.String(),
		ExpiryDate:        p.ExpiryDate,
		ModeOfPayment:     p.ModeOfPayment,
	}
}

type addState int

const (
	addStateForm addState = iota
	addStateSaving
	addStateDone
)

// AddProductModel is the new product screen.
type AddProductModel struct {
	CommonModel
	svc *inventory.Service

	state  addState
	input  *inventory.ProductInput
	form   *huh.Form
	status string
	lastID int64
}

func NewAddProductModel(svc *inventory.Service) AddProductModel {
	in := &inventory.ProductInput{QuantityToExpire: "0"}

	return AddProductModel{
		svc:   svc,
		input: in,
		form:  productForm(in),
	}
}

func (m AddProductModel) Title() string { return "Add Product" }

func (m AddProductModel) ShortHelp() string {
	if m.state == addStateDone {
		return "Enter: add another | Esc: back"
	}

	return "Tab: next field | Esc: back"
}

func (m AddProductModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddProductModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(addResultMsg); ok {
		if res.err != nil {
			// Keep what was typed so the bad field can be corrected.
			m.status = describeError(res.err)
			m.state = addStateForm
			m.form = productForm(m.input)

			return m, m.form.Init()
		}

		m.lastID = res.id
		m.status = ""
		m.state = addStateDone

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	switch m.state {
	case addStateForm:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = addStateSaving

		return m, m.saveCmd()

	case addStateDone:
		if isKey && keyMsg.Type == tea.KeyEnter {
			fresh := NewAddProductModel(m.svc)
			return fresh, fresh.Init()
		}
	}

	return m, nil
}

func (m AddProductModel) View() string {
	switch m.state {
	case addStateSaving:
		return panelStyle.Render("Saving product...")
	case addStateDone:
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render(fmt.Sprintf("Added product #%d", m.lastID)),
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

type addResultMsg struct {
	id  int64
	err error
}

func (m AddProductModel) saveCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		id, err := m.svc.AddProduct(ctx, in)

		return addResultMsg{id: id, err: err}
	}
}
