package cmd

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spinnerAt(timeout, elapsed time.Duration) waitSpinnerModel {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newWaitSpinnerModel("Waiting for messages...", timeout, nil)
	m.started = started
	m.now = func() time.Time { return started.Add(elapsed) }
	return m
}

func TestWaitSpinnerShowsElapsedAgainstTimeout(t *testing.T) {
	view := spinnerAt(5*time.Minute, 12*time.Second+400*time.Millisecond).View()

	assert.Contains(t, view, "Waiting for messages... 12s / 5m0s")
	assert.NotContains(t, view, "almost done")
}

func TestWaitSpinnerFlagsLastSeconds(t *testing.T) {
	view := spinnerAt(30*time.Second, 25*time.Second).View()

	assert.Contains(t, view, "25s / 30s")
	assert.Contains(t, view, "almost done")
}

func TestWaitSpinnerClampsElapsedToTimeout(t *testing.T) {
	view := spinnerAt(30*time.Second, time.Minute).View()

	assert.Contains(t, view, "30s / 30s")
}

func TestWaitSpinnerWithoutTimeoutShowsElapsedOnly(t *testing.T) {
	view := spinnerAt(0, 3*time.Second).View()

	assert.Contains(t, view, "Waiting for messages... 3s")
	assert.NotContains(t, view, "/")
}

func TestWaitSpinnerQuitsWithWaitError(t *testing.T) {
	waitErr := errors.New("lock acquisition failed")

	model, cmd := spinnerAt(time.Minute, 0).Update(waitDoneMsg{err: waitErr})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	done := model.(waitSpinnerModel)
	assert.ErrorIs(t, done.err, waitErr)
	assert.Empty(t, done.View())
}
