package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/playtimeuy/payments/internal/sale"
)

var statusFilters = []struct {
	label  string
	status *sale.Status
}{
	{label: "All"},
	{label: "Pending", status: new(sale.StatusPending)},
	{label: "Paid", status: new(sale.StatusPaid)},
	{label: "Rejected", status: new(sale.StatusRejected)},
}

type SalesModel struct {
	CommonModel
	salesService *sale.Service
	currency     string

	table table.Model
	sales []*sale.Sale

	statusFilterIdx int

	filter  sale.ListFilter
	loading bool
	err     error
}

func NewSalesModel(salesSvc *sale.Service, currency string) SalesModel {
	columns := []table.Column{
		{Title: "Created", Width: 17},
		{Title: "Status", Width: 10},
		{Title: "Promoter", Width: 14},
		{Title: "Price", Width: 14},
		{Title: "Commission", Width: 14},
		{Title: "Net", Width: 14},
		{Title: "Payment", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return SalesModel{
		salesService: salesSvc,
		currency:     currency,
		table:        t,
		loading:      true,
	}
}

func (m SalesModel) Title() string { return "Sales" }
func (m SalesModel) ShortHelp() string {
	return "Esc: back | s: status filter | r: refresh"
}

func (m SalesModel) Init() tea.Cmd {
	return m.loadSalesCmd()
}

func (m SalesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSalesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.sales = msg.sales
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadSalesCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.filter.Status = statusFilters[m.statusFilterIdx].status
			m.loading = true
			return m, m.loadSalesCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m SalesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading sales...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\nr: retry | Esc: back", m.err))
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d sales",
		activeStyle(statusFilters[m.statusFilterIdx].label),
		len(m.sales),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		m.detail(),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m SalesModel) detail() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.sales) {
		return ""
	}

	sl := m.sales[idx]

	paidAt := "-"
	if sl.PaidAt != nil {
		paidAt = FormatDate(*sl.PaidAt)
	}

	return lipgloss.NewStyle().Faint(true).PaddingTop(1).Render(fmt.Sprintf(
		"Sale %s | policy %s | preference %s | gateway %s %s | paid %s\n%s",
		sl.ID, sl.Policy, sl.Gateway.PreferenceID, sl.Gateway.Status, sl.Gateway.StatusDetail, paidAt, sl.CheckoutURL,
	))
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *SalesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.sales))
	for _, sl := range m.sales {
		rows = append(rows, table.Row{
			FormatDate(sl.CreatedAt),
			string(sl.Status),
			sl.PromoterID,
			money.Format(sl.FinalPrice, m.currency),
			money.Format(sl.Commission, m.currency),
			money.Format(sl.Net, m.currency),
			sl.Gateway.PaymentID,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadSalesMsg struct {
	sales []*sale.Sale
	err   error
}

func (m SalesModel) loadSalesCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sales, err := m.salesService.List(ctx, filter)
		return loadSalesMsg{sales: sales, err: err}
	}
}
