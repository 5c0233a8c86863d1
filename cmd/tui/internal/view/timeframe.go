package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Period is a preset or custom creation-date range for sales.
type Period int

const (
	PeriodThisMonth Period = iota
	PeriodLastMonth
	PeriodLast30Days
	PeriodAll
	PeriodCustom
)

func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodLast30Days:
		return "Last 30 Days"
	case PeriodAll:
		return "All Time"
	case PeriodCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range returns the inclusive day range for p relative to now. It is not
// meaningful for PeriodAll and PeriodCustom.
func (p Period) Range(now time.Time) (time.Time, time.Time) {
	switch p {
	case PeriodLastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		return dayBounds(start, start.AddDate(0, 1, -1))
	case PeriodLast30Days:
		return dayBounds(now.AddDate(0, 0, -29), now)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return dayBounds(start, now)
	}
}

func dayBounds(start, end time.Time) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location()),
		time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
}

// PeriodSelectedMsg is emitted once a range is chosen. Start and End are zero when All is true.
type PeriodSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

// PeriodPicker lets the user pick a Period, prompting for dates on PeriodCustom.
type PeriodPicker struct {
	selected Period
	custom   bool

	inputs [2]textinput.Model
	focus  int

	err error
}

func NewPeriodPicker() PeriodPicker {
	var inputs [2]textinput.Model
	for i, prompt := range []string{"From: ", "To:   "} {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt
		inputs[i] = in
	}

	return PeriodPicker{inputs: inputs}
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)

	if !m.custom {
		if !ok {
			return m, nil
		}

		return m.updateSelect(keyMsg)
	}

	if ok {
		switch keyMsg.String() {
		case "tab", "shift+tab":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			m.inputs[m.focus].Focus()

			return m, textinput.Blink
		case "enter":
			return m.submitCustom()
		case "esc":
			m.custom = false
			m.err = nil

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		switch m.selected {
		case PeriodCustom:
			m.custom = true
			m.focus = 0
			m.inputs[0].Focus()

			return m, textinput.Blink
		case PeriodAll:
			return m, func() tea.Msg { return PeriodSelectedMsg{All: true} }
		}

		start, end := m.selected.Range(time.Now())

		return m, func() tea.Msg { return PeriodSelectedMsg{Start: start, End: end} }
	}

	return m, nil
}

func (m PeriodPicker) submitCustom() (PeriodPicker, tea.Cmd) {
	start, err := time.ParseInLocation(time.DateOnly, m.inputs[0].Value(), time.Local)
	if err != nil {
		m.err = errors.New("invalid from date (YYYY-MM-DD)")
		return m, nil
	}

	end, err := time.ParseInLocation(time.DateOnly, m.inputs[1].Value(), time.Local)
	if err != nil {
		m.err = errors.New("invalid to date (YYYY-MM-DD)")
		return m, nil
	}

	if end.Before(start) {
		m.err = errors.New("to date is before from date")
		return m, nil
	}

	m.err = nil
	start, end = dayBounds(start, end)

	return m, func() tea.Msg { return PeriodSelectedMsg{Start: start, End: end} }
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.custom {
		return fmt.Sprintf("Custom range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.inputs[0].View(), m.inputs[1].View(), errStr)
	}

	s := "Sales created in:\n\n"
	for p := PeriodThisMonth; p <= PeriodCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}
		s += fmt.Sprintf("%s %s\n", cursor, p)
	}

	return s + "\n(Enter to select, Esc to back)" + errStr
}

// IsSelecting reports whether the picker shows the preset list.
func (m PeriodPicker) IsSelecting() bool {
	return !m.custom
}
