package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"employee-manager/internal/domain"
	"employee-manager/internal/roster"
)

type state int

const (
	stateList state = iota
	stateSearch
	stateForm
	stateConfirm
)

// doneMsg is sent when a controller operation running in a tea.Cmd returns.
type doneMsg struct {
	op  string
	err error
}

// Model is the employee list screen.
type Model struct {
	ctx     context.Context
	ctl     *roster.Controller
	surface *Surface

	state    state
	rows     []domain.Employee
	cursor   int
	search   string
	form     Form
	formMode roster.Mode
	pending  *domain.Employee
	status   string
	busy     bool
}

// New builds the model. surface must be the presenter and error reporter
// ctl was created with.
func New(ctx context.Context, ctl *roster.Controller, surface *Surface) Model {
	return Model{
		ctx:     ctx,
		ctl:     ctl,
		surface: surface,
		form:    NewForm(),
		busy:    true,
	}
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, ctl *roster.Controller, surface *Surface) error {
	p := tea.NewProgram(New(ctx, ctl, surface), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.surface.wait(), m.run("load", m.ctl.Initialize))
}

func (m Model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.busy = false
		if msg.err == nil {
			// a successful operation reloads the list and drops the filter
			m.status = ""
			m.search = ""
			m.setRows(m.ctl.View())
			return m, nil
		}
		if errors.Is(msg.err, roster.ErrNotInRoster) {
			// not reported by the controller
			m.status = msg.err.Error()
		}
		if m.search != "" {
			m.setRows(m.ctl.Filter(m.search))
		} else {
			m.setRows(m.ctl.View())
		}
		return m, nil

	case modalMsg:
		m.openModal(msg)
		return m, m.surface.wait()

	case errorMsg:
		m.status = msg.message
		return m, m.surface.wait()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case stateSearch:
			return m.updateSearch(msg)
		case stateForm:
			return m.updateForm(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) openModal(msg modalMsg) {
	m.formMode = msg.mode
	m.pending = msg.employee
	switch msg.mode {
	case roster.ModeAdd:
		m.form.Reset()
		m.state = stateForm
	case roster.ModeEdit:
		if msg.employee != nil {
			m.form.Load(*msg.employee)
		}
		m.state = stateForm
	case roster.ModeDelete:
		m.state = stateConfirm
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.state = stateSearch
	case "a":
		ctl := m.ctl
		return m, func() tea.Msg {
			ctl.OpenCreate()
			return nil
		}
	case "e", "d":
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		sel := m.ctl.SelectForEdit
		op := "edit"
		if msg.String() == "d" {
			sel, op = m.ctl.SelectForDelete, "delete"
		}
		return m, func() tea.Msg {
			if err := sel(e); err != nil {
				return doneMsg{op: op, err: err}
			}
			return nil
		}
	case "r":
		m.busy = true
		return m, m.run("refresh", m.ctl.Refresh)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.state = stateList
		return m, nil
	case tea.KeyEsc:
		m.search = ""
		m.state = stateList
	case tea.KeyBackspace:
		r := []rune(m.search)
		if len(r) > 0 {
			m.search = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.search += string(msg.Runes)
	default:
		return m, nil
	}
	m.setRows(m.ctl.Filter(m.search))
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.form.Reset()
		m.state = stateList
	case tea.KeyTab, tea.KeyDown:
		m.form.Next()
	case tea.KeyShiftTab, tea.KeyUp:
		m.form.Prev()
	case tea.KeyBackspace:
		m.form.Backspace()
	case tea.KeyRunes, tea.KeySpace:
		m.form.Type(msg.Runes)
	case tea.KeyEnter:
		return m.submitForm()
	}
	return m, nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	in := m.form.Input()
	m.form.Reset()
	m.state = stateList
	m.busy = true

	ctl := m.ctl
	if m.formMode == roster.ModeAdd {
		snapshot := &roster.StaticForm{In: in}
		return m, m.run("add", func(ctx context.Context) error {
			return ctl.SubmitCreate(ctx, snapshot)
		})
	}
	return m, m.run("update", func(ctx context.Context) error {
		cur, ok := ctl.EditTarget()
		if !ok {
			return roster.ErrNotInRoster
		}
		cur.EmployeeInput = merge(cur.EmployeeInput, in)
		return ctl.SubmitUpdate(ctx, cur)
	})
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.state = stateList
		m.busy = true
		ctl := m.ctl
		return m, m.run("delete", func(ctx context.Context) error {
			target, ok := ctl.DeleteTarget()
			if !ok {
				return roster.ErrNotInRoster
			}
			return ctl.SubmitDelete(ctx, target.ID)
		})
	case "n", "N", "esc", "q":
		m.state = stateList
	}
	return m, nil
}

func (m *Model) setRows(rows []domain.Employee) {
	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (domain.Employee, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Employee{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Employees")
	if m.busy {
		b.WriteString("  (loading...)")
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateForm:
		title := "Add employee"
		if m.formMode == roster.ModeEdit {
			title = "Edit employee"
		}
		fmt.Fprintf(&b, "%s\n\n%s\nenter save · tab next field · esc cancel\n", title, m.form.View())
		return m.withStatus(&b)
	case stateConfirm:
		name := ""
		if m.pending != nil {
			name = m.pending.FullName()
		}
		fmt.Fprintf(&b, "Delete employee %s? (y/n)\n", name)
		return m.withStatus(&b)
	}

	if len(m.rows) == 0 {
		b.WriteString("  no employees\n")
	}
	for i, e := range m.rows {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%-5d %-24s %-28s %s\n", cursor, e.ID, e.FullName(), e.Email, e.JobTitle)
	}
	b.WriteString("\n")
	if m.state == stateSearch {
		fmt.Fprintf(&b, "search: %s█\n", m.search)
	} else if m.search != "" {
		fmt.Fprintf(&b, "filter: %s\n", m.search)
	}
	b.WriteString("j/k move · / search · a add · e edit · d delete · r refresh · q quit\n")
	return m.withStatus(&b)
}

func (m Model) withStatus(b *strings.Builder) string {
	if m.status != "" {
		fmt.Fprintf(b, "\nerror: %s\n", m.status)
	}
	return b.String()
}
