package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/playtimeuy/payments/internal/apperr"
	"github.com/playtimeuy/payments/internal/checkout"
)

type checkoutState int

const (
	checkoutStateForm checkoutState = iota
	checkoutStateSubmitting
	checkoutStateResult
)

// checkoutFields is shared by pointer so the form keeps writing to the same values
// across model copies.
type checkoutFields struct {
	mode       string
	promoterID string
	creatorID  string
	title      string
	price      string
}

type CheckoutModel struct {
	CommonModel
	checkoutService *checkout.Service

	state   checkoutState
	fields  *checkoutFields
	form    *huh.Form
	spinner spinner.Model

	result *checkout.Result
	err    error
}

func NewCheckoutModel(svc *checkout.Service) CheckoutModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	fields := &checkoutFields{mode: string(checkout.ModeReferral)}

	return CheckoutModel{
		checkoutService: svc,
		state:           checkoutStateForm,
		fields:          fields,
		form:            buildCheckoutForm(fields),
		spinner:         s,
	}
}

func (m CheckoutModel) Title() string { return "New Checkout" }

func (m CheckoutModel) ShortHelp() string {
	switch m.state {
	case checkoutStateSubmitting:
		return "Creating preference..."
	case checkoutStateResult:
		return "Esc: back to menu"
	}
	return "Esc: back | Enter: confirm"
}

func (m CheckoutModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m CheckoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case checkoutStateForm:
		return m.updateForm(msg)
	case checkoutStateSubmitting:
		return m.updateSubmitting(msg)
	case checkoutStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m CheckoutModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	req, err := m.fields.request()
	if err != nil {
		m.state = checkoutStateResult
		m.err = err
		return m, nil
	}

	m.state = checkoutStateSubmitting
	return m, tea.Batch(m.spinner.Tick, m.submitCmd(req))
}

func (m CheckoutModel) updateSubmitting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(checkoutResultMsg); ok {
		m.state = checkoutStateResult
		m.result = res.result
		m.err = res.err
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func buildCheckoutForm(f *checkoutFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Checkout type").
				Options(
					huh.NewOption("Promoter referral", string(checkout.ModeReferral)),
					huh.NewOption("Creator subscription", string(checkout.ModeCreator)),
				).
				Value(&f.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Promoter ID").
				Value(&f.promoterID),
		).WithHideFunc(func() bool { return f.mode != string(checkout.ModeReferral) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Creator ID").
				Value(&f.creatorID),
			huh.NewInput().
				Title("Title").
				Placeholder("default subscription title").
				Value(&f.title),
		).WithHideFunc(func() bool { return f.mode != string(checkout.ModeCreator) }),
		huh.NewGroup(
			huh.NewInput().
				Title("Final price").
				Placeholder("750").
				Value(&f.price).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
						return errors.New("price must be a number")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (f *checkoutFields) request() (checkout.Request, error) {
	req := checkout.Request{
		Mode:       checkout.Mode(f.mode),
		PromoterID: strings.TrimSpace(f.promoterID),
		CreatorID:  strings.TrimSpace(f.creatorID),
		Title:      strings.TrimSpace(f.title),
	}

	if s := strings.TrimSpace(f.price); s != "" {
		price, err := decimal.NewFromString(s)
		if err != nil {
			return checkout.Request{}, fmt.Errorf("parsing price: %w", err)
		}
		req.FinalPrice = &price
	}

	return req, nil
}

func (m CheckoutModel) View() string {
	switch m.state {
	case checkoutStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case checkoutStateSubmitting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Registering sale and creating the Mercado Pago preference...", m.spinner.View()),
		)

	case checkoutStateResult:
		return m.viewResult()
	}

	return ""
}

func (m CheckoutModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Error: " + apperr.PublicMessage(m.err)),
		)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Preference created")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Sale:       "+m.result.SaleID,
			"Preference: "+m.result.PreferenceID,
			"Checkout:   "+m.result.CheckoutURL,
			"Sandbox:    "+m.result.SandboxCheckoutURL,
		),
	)
}

type checkoutResultMsg struct {
	result *checkout.Result
	err    error
}

func (m CheckoutModel) submitCmd(req checkout.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
		defer cancel()

		res, err := m.checkoutService.CreatePreference(ctx, req)
		return checkoutResultMsg{result: res, err: err}
	}
}
