package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

func bounds(f inventory.SaleFilter) (string, string) {
	var from, to string
	if f.StartDate != nil {
		from = FormatDate(*f.StartDate)
	}

	if f.EndDate != nil {
		to = FormatDate(*f.EndDate)
	}

	return from, to
}

func TestFilterFor(t *testing.T) {
	// Sunday, 31 March 2024.
	today := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		label    string
		wantFrom string
		wantTo   string
	}

	tests := []testCase{
		{"Today", "2024-03-31", "2024-03-31"},
		{"Yesterday", "2024-03-30", "2024-03-30"},
		{"Last 7 days", "2024-03-25", "2024-03-31"},
		{"Month to date", "2024-03-01", "2024-03-31"},
		{"Previous month", "2024-02-01", "2024-02-29"},
		{"All sales", "", ""},
	}

	require.Len(t, salesPeriods, len(tests))

	for i, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.label, salesPeriods[i].label)

			from, to := bounds(filterFor(i, today))
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestCustomFilter(t *testing.T) {
	type testCase struct {
		name     string
		from, to string
		wantErr  bool
	}

	tests := []testCase{
		{name: "valid", from: "2024-06-01", to: "2024-06-10"},
		{name: "single day", from: "2024-06-01", to: "2024-06-01"},
		{name: "reversed", from: "2024-06-10", to: "2024-06-01", wantErr: true},
		{name: "bad start", from: "06/01/2024", to: "2024-06-10", wantErr: true},
		{name: "bad end", from: "2024-06-01", to: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := customFilter(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			from, to := bounds(f)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestPeriodPicker_SelectsPreset(t *testing.T) {
	today := func() time.Time { return time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC) }
	p := NewPeriodPicker(today)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(PeriodSelectedMsg)
	require.True(t, ok)

	from, to := bounds(msg.Filter)
	assert.Equal(t, "2024-03-30", from)
	assert.Equal(t, "2024-03-30", to)
	assert.True(t, p.IsSelecting())
}

func TestPeriodPicker_CustomRangeOpensForm(t *testing.T) {
	p := NewPeriodPicker(time.Now)

	for range salesPeriods {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, p.IsSelecting())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, p.IsSelecting())
}
