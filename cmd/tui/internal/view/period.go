package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/report"
)

// salesPeriod is a preset window over the sales history, resolved against the
// ledger's today. A nil bound leaves that side of the range open.
type salesPeriod struct {
	label  string
	bounds func(today time.Time) (from, to *time.Time)
}

var salesPeriods = []salesPeriod{
	{"Today", func(today time.Time) (*time.Time, *time.Time) {
		return new(today), new(today)
	}},
	{"Yesterday", func(today time.Time) (*time.Time, *time.Time) {
		y := today.AddDate(0, 0, -1)
		return new(y), new(y)
	}},
	{"Last 7 days", func(today time.Time) (*time.Time, *time.Time) {
		return new(today.AddDate(0, 0, -6)), new(today)
	}},
	{"Month to date", func(today time.Time) (*time.Time, *time.Time) {
		from, to := report.DefaultRange(today)
		return new(from), new(to)
	}},
	{"Previous month", func(today time.Time) (*time.Time, *time.Time) {
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return new(first), new(first.AddDate(0, 1, -1))
	}},
	{"All sales", func(time.Time) (*time.Time, *time.Time) {
		return nil, nil
	}},
}

const customPeriodLabel = "Custom range"

// filterFor resolves the preset at idx into a sale filter.
func filterFor(idx int, today time.Time) inventory.SaleFilter {
	from, to := salesPeriods[idx].bounds(today)
	return inventory.SaleFilter{StartDate: from, EndDate: to}
}

// customFilter parses a hand-typed inclusive range.
func customFilter(from, to string) (inventory.SaleFilter, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(from))
	if err != nil {
		return inventory.SaleFilter{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(to))
	if err != nil {
		return inventory.SaleFilter{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return inventory.SaleFilter{}, errors.New("end date is before start date")
	}

	return inventory.SaleFilter{StartDate: &start, EndDate: &end}, nil
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

// PeriodSelectedMsg carries the sale filter the user settled on.
type PeriodSelectedMsg struct {
	Filter inventory.SaleFilter
}

type customRange struct {
	from string
	to   string
}

// PeriodPicker chooses the window for the sales history: a preset or a custom
// range typed into a huh form.
type PeriodPicker struct {
	cursor int
	today  func() time.Time

	form  *huh.Form
	input *customRange
	err   error
}

func NewPeriodPicker(today func() time.Time) PeriodPicker {
	return PeriodPicker{
		today: today,
		input: &customRange{},
	}
}

// IsSelecting reports whether the preset list is showing.
func (p PeriodPicker) IsSelecting() bool {
	return p.form == nil
}

func (p *PeriodPicker) Reset() {
	p.form = nil
	p.err = nil
}

func (p PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if p.form != nil {
		return p.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(salesPeriods) {
			p.cursor++
		}
	case "enter":
		if p.cursor == len(salesPeriods) {
			p.form = p.buildForm()
			return p, p.form.Init()
		}

		filter := filterFor(p.cursor, p.today())

		return p, func() tea.Msg { return PeriodSelectedMsg{Filter: filter} }
	}

	return p, nil
}

func (p PeriodPicker) updateCustom(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		p.Reset()
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	filter, err := customFilter(p.input.from, p.input.to)
	if err != nil {
		p.err = err
		p.form = p.buildForm()

		return p, p.form.Init()
	}

	p.Reset()

	return p, func() tea.Msg { return PeriodSelectedMsg{Filter: filter} }
}

func (p PeriodPicker) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("from").Title("From").Placeholder("YYYY-MM-DD").
				Validate(validDate).Value(&p.input.from),
			huh.NewInput().Key("to").Title("To").Placeholder("YYYY-MM-DD").
				Validate(validDate).Value(&p.input.to),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (p PeriodPicker) View() string {
	var sb strings.Builder

	if p.form != nil {
		sb.WriteString("Custom range (Esc for presets)\n\n")
		sb.WriteString(p.form.View())
	} else {
		sb.WriteString("Sales period:\n\n")

		for i := 0; i <= len(salesPeriods); i++ {
			label := customPeriodLabel
			if i < len(salesPeriods) {
				label = salesPeriods[i].label
			}

			if i == p.cursor {
				fmt.Fprintf(&sb, "> %s\n", activeStyle(label))
				continue
			}

			fmt.Fprintf(&sb, "  %s\n", label)
		}
	}

	if p.err != nil {
		sb.WriteString("\n" + errorStyle.Render("Error: "+p.err.Error()))
	}

	return sb.String()
}
