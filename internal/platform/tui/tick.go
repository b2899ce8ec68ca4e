// Package tui provides the Bubble Tea front ends: the skirmish viewer, the
// online lockstep client, the match history and the SSH server that serves
// them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a simulation step.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends one tick message after period.
func tickCmd(period time.Duration) tea.Cmd {
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	return tea.Tick(period, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
