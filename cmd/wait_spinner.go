package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var closingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

type waitDoneMsg struct {
	err error
}

type waitSpinnerModel struct {
	spinner spinner.Model
	label   string
	timeout time.Duration
	started time.Time
	now     func() time.Time
	wait    tea.Cmd
	err     error
	done    bool
}

func newWaitSpinnerModel(label string, timeout time.Duration, wait tea.Cmd) waitSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return waitSpinnerModel{
		spinner: s,
		label:   label,
		timeout: timeout,
		started: time.Now(),
		now:     time.Now,
		wait:    wait,
	}
}

func (m waitSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m waitSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case waitDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m waitSpinnerModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s %s", m.spinner.View(), m.label, m.progress())
	if remaining := m.timeout - m.elapsed(); m.timeout > 0 && remaining <= 10*time.Second {
		return line + " " + closingStyle.Render("(almost done)")
	}

	return line
}

func (m waitSpinnerModel) elapsed() time.Duration {
	elapsed := m.now().Sub(m.started)
	if elapsed < 0 {
		return 0
	}
	if m.timeout > 0 && elapsed > m.timeout {
		return m.timeout
	}

	return elapsed
}

// progress renders "12s / 5m0s", or only the elapsed time without a limit.
func (m waitSpinnerModel) progress() string {
	elapsed := m.elapsed().Truncate(time.Second)
	if m.timeout <= 0 {
		return elapsed.String()
	}

	return fmt.Sprintf("%s / %s", elapsed, m.timeout)
}

// runWaitSpinner animates on output while wait blocks, counting up towards
// timeout. Cancelling ctx stops both the spinner and the wait.
func runWaitSpinner(ctx context.Context, output io.Writer, label string, timeout time.Duration, wait func(context.Context) error) error {
	waitCmd := func() tea.Msg {
		return waitDoneMsg{err: wait(ctx)}
	}

	p := tea.NewProgram(
		newWaitSpinnerModel(label, timeout, waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(waitSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
