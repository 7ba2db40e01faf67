package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pillbox/internal/importer"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateRejected
	importStateResult
)

type ImportModel struct {
	CommonModel
	invService    *inventory.Service
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	rejected   list.Model

	status string
	err    error
}

func NewImportModel(invSvc *inventory.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		invService:    invSvc,
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Products" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateRejected {
		return "Esc: pick another file"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateRejected {
			var cmd tea.Cmd
			m.rejected, cmd = m.rejected.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		var impErr *inventory.ImportError
		if errors.As(msg.err, &impErr) {
			m.state = importStateRejected
			m.rejected = newRejectedList(impErr.Rows)

			return m, nil
		}

		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d products.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult, importStateRejected:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return panelStyle.Render(fmt.Sprintf("Select a product CSV to import:\n\n%s", m.filePicker.View()))
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateRejected:
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render("Nothing was imported. Fix these rows and try again:"),
			"",
			m.rejected.View(),
		))
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		inputs, err := m.importService.Parse(f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		ids, err := m.invService.ImportProducts(ctx, inputs)

		return importResultMsg{count: len(ids), err: err}
	}
}

// Rejected row list

type rowErrorItem struct {
	rowErr inventory.RowError
}

func (i rowErrorItem) Title() string       { return fmt.Sprintf("Row %d", i.rowErr.Row) }
func (i rowErrorItem) Description() string { return describeError(i.rowErr.Err) }
func (i rowErrorItem) FilterValue() string { return "" }

func newRejectedList(rows []inventory.RowError) list.Model {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowErrorItem{rowErr: r}
	}

	l := list.New(items, rowErrorDelegate{}, 80, 15)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type rowErrorDelegate struct{}

func (d rowErrorDelegate) Height() int                             { return 1 }
func (d rowErrorDelegate) Spacing() int                            { return 0 }
func (d rowErrorDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowErrorDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(rowErrorItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%-8s %s", cursor, item.Title(), item.Description())
}
