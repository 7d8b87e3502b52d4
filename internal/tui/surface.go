package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"employee-manager/internal/domain"
	"employee-manager/internal/roster"
)

type modalMsg struct {
	mode     roster.Mode
	employee *domain.Employee
}

type errorMsg struct {
	message string
}

// Surface is the controller's presenter and error reporter. It turns every
// callback into a tea.Msg for the running program.
type Surface struct {
	msgs chan tea.Msg
}

func NewSurface() *Surface {
	return &Surface{msgs: make(chan tea.Msg, 32)}
}

func (s *Surface) OpenModal(mode roster.Mode, e *domain.Employee) {
	s.msgs <- modalMsg{mode: mode, employee: e}
}

func (s *Surface) ReportError(message string) {
	s.msgs <- errorMsg{message: message}
}

// UIMessages returns a read-only channel for receiving controller messages.
func (s *Surface) UIMessages() <-chan tea.Msg {
	return s.msgs
}

// wait delivers the next controller message to the program.
func (s *Surface) wait() tea.Cmd {
	return func() tea.Msg {
		return <-s.msgs
	}
}
