package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pillbox/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pillbox/internal/config"
	"github.com/MrJamesThe3rd/pillbox/internal/database"
	"github.com/MrJamesThe3rd/pillbox/internal/importer"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory/store"
	"github.com/MrJamesThe3rd/pillbox/internal/logging"
	"github.com/MrJamesThe3rd/pillbox/internal/report"
)

// defaultLogFile keeps log output off the terminal when LOG_FILE is unset.
const defaultLogFile = "pillbox-tui.log"

type model struct {
	appName string

	inventoryService *inventory.Service
	importService    *importer.Service
	reportService    *report.Service

	currentView View
	active      view.View
}

type View int

const (
	ViewMenu     View = 0
	ViewProducts View = 1
	ViewAdd      View = 2
	ViewSale     View = 3
	ViewExpiring View = 4
	ViewLowStock View = 5
	ViewHistory  View = 6
	ViewImport   View = 7
)

func initialModel() (model, *sql.DB, io.Closer) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = defaultLogFile
	}

	closer := logging.Setup(logFile, cfg.Log.Level)

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		fmt.Fprintln(os.Stderr, "failed to connect to database:", err)
		os.Exit(1)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		slog.Error("failed to migrate database", "error", err)
		fmt.Fprintln(os.Stderr, "failed to migrate database:", err)
		os.Exit(1)
	}

	invSvc := inventory.NewService(store.New(db))

	return model{
		appName:          cfg.App.Name,
		inventoryService: invSvc,
		importService:    importer.NewService(),
		reportService:    report.NewService(invSvc),
		currentView:      ViewMenu,
	}, db, closer
}

func (m model) Init() tea.Cmd {
	return nil
}

// open builds a fresh screen so every visit starts from current data.
func (m model) open(v View) view.View {
	switch v {
	case ViewProducts:
		return view.NewProductsModel(m.inventoryService)
	case ViewAdd:
		return view.NewAddProductModel(m.inventoryService)
	case ViewSale:
		return view.NewSaleModel(m.inventoryService)
	case ViewExpiring:
		return view.NewExpiringModel(m.inventoryService)
	case ViewLowStock:
		return view.NewLowStockModel(m.inventoryService)
	case ViewHistory:
		return view.NewHistoryModel(m.reportService, m.inventoryService.Today)
	case ViewImport:
		return view.NewImportModel(m.inventoryService, m.importService)
	}

	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1", "2", "3", "4", "5", "6", "7":
				m.currentView = View(msg.String()[0] - '0')
				m.active = m.open(m.currentView)

				return m, m.active.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	newModel, cmd := m.active.Update(msg)
	if v, ok := newModel.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.active == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Products\n" +
				"2. Add Product\n" +
				"3. Record Sale\n" +
				"4. Expiring Soon\n" +
				"5. Low Stock\n" +
				"6. Sales History\n" +
				"7. Import Products\n\n" +
				"q. Quit",
		)
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(m.active.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, m.active.View(), help)
}

func main() {
	m, db, closer := initialModel()
	defer closer.Close()
	defer db.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
