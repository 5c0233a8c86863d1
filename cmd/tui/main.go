package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/playtimeuy/payments/cmd/tui/internal/view"
	"github.com/playtimeuy/payments/internal/app"
	"github.com/playtimeuy/payments/internal/config"
)

type model struct {
	svcs     *app.Services
	currency string
	appName  string

	currentView View

	salesView    view.SalesModel
	checkoutView view.CheckoutModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewSales    View = 1
	ViewCheckout View = 2
	ViewExport   View = 3
)

func initialModel(cfg *config.Config, svcs *app.Services) model {
	return model{
		svcs:         svcs,
		currency:     cfg.Checkout.Currency,
		appName:      cfg.App.Name,
		currentView:  ViewMenu,
		salesView:    view.NewSalesModel(svcs.Sales, cfg.Checkout.Currency),
		checkoutView: view.NewCheckoutModel(svcs.Checkout),
		exportView:   view.NewExportModel(svcs.Export, cfg.Checkout.Currency),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewSales
				m.salesView = view.NewSalesModel(m.svcs.Sales, m.currency)

				return m, m.salesView.Init()
			case "2":
				m.currentView = ViewCheckout
				m.checkoutView = view.NewCheckoutModel(m.svcs.Checkout)

				return m, m.checkoutView.Init()
			case "3":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.svcs.Export, m.currency)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSales:
		var newModel tea.Model
		newModel, cmd = m.salesView.Update(msg)
		m.salesView = newModel.(view.SalesModel)
	case ViewCheckout:
		var newModel tea.Model
		newModel, cmd = m.checkoutView.Update(msg)
		m.checkoutView = newModel.(view.CheckoutModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + " sales console\n\n" +
				"1. Browse Sales\n" +
				"2. New Checkout\n" +
				"3. Export Commissions\n\n" +
				"q. Quit",
		)
	case ViewSales:
		return m.salesView.View()
	case ViewCheckout:
		return m.checkoutView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// the terminal belongs to bubbletea, so logs go to a file
	logFile, err := os.OpenFile(filepath.Join(os.TempDir(), "playtimeuy-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, nil)).With("app", cfg.App.Name)
	slog.SetDefault(logger)

	svcs, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build services: %v\n", err)
		os.Exit(1)
	}
	defer svcs.Close()

	p := tea.NewProgram(initialModel(cfg, svcs))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
