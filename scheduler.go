package main

import (
	"time"

	"akaun-master/internal/state"

	tea "github.com/charmbracelet/bubbletea"
)

// TaskMsg delivers a delayed task back into the update loop.
type TaskMsg state.Task

// TickMsg is the 1 Hz timer of one level attempt.
type TickMsg struct {
	Session string
}

func tickCmd(sessionID string) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{Session: sessionID}
	})
}

// teaScheduler queues tasks while an update runs; Flush turns them into
// timed commands so every task comes back through Update.
type teaScheduler struct {
	queued []state.Task
}

func (q *teaScheduler) Schedule(t state.Task) {
	q.queued = append(q.queued, t)
}

func (q *teaScheduler) Flush() tea.Cmd {
	if len(q.queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(q.queued))
	for _, t := range q.queued {
		cmds = append(cmds, tea.Tick(t.After, func(time.Time) tea.Msg {
			return TaskMsg(t)
		}))
	}
	q.queued = nil
	return tea.Batch(cmds...)
}
