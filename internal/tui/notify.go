package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/petquest/internal/gamify"
)

// NotificationSink hands engine notifications to the running program. It is
// registered as an engine notifier; the app drains it with listen.
type NotificationSink struct {
	ch chan gamify.Notification
}

func NewNotificationSink(size int) *NotificationSink {
	return &NotificationSink{ch: make(chan gamify.Notification, size)}
}

// Notify never blocks the engine; when the buffer is full the
// notification is dropped from the UI and only logged.
func (s *NotificationSink) Notify(n gamify.Notification) {
	select {
	case s.ch <- n:
	default:
	}
}

func (s *NotificationSink) listen() tea.Cmd {
	return func() tea.Msg {
		return notificationMsg(<-s.ch)
	}
}
