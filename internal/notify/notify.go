// Package notify shows desktop notifications for chord results.
package notify

import (
	"fmt"
	"unicode/utf8"

	"github.com/gen2brain/beeep"
)

const appName = "hyprdesk"

// maxMessageRunes caps failure text; longer messages are cut with "...".
const maxMessageRunes = 200

// Notifier sends desktop notifications when enabled.
type Notifier struct {
	enabled bool
	send    func(title, message, icon string) error
}

// New creates a Notifier backed by the system notification service.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled, send: beeep.Notify}
}

// DesktopStatus shows the current desktop, 1-based, out of count.
func (n *Notifier) DesktopStatus(current, count int) {
	n.notify(appName, fmt.Sprintf("Desktop %d/%d", current+1, count))
}

// Failure reports a failed action.
func (n *Notifier) Failure(title, message string) {
	n.notify(title, truncate(message, maxMessageRunes))
}

func (n *Notifier) notify(title, message string) {
	if n == nil || !n.enabled {
		return
	}
	// Notification errors are not worth surfacing.
	_ = n.send(title, message, "")
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
