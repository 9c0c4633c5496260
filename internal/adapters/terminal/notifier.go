package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
)

// Notifier prints notifications as one-line toasts.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
	// CommandHint renders the command that performs an action, e.g.
	// "nailbox account add --provider Office365".
	CommandHint func(domain.NotificationAction) string
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out, styles: newStyles(), CommandHint: defaultCommandHint}
}

func (n *Notifier) Notify(_ context.Context, notification domain.Notification) {
	line := n.format(notification)

	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintln(n.out, line)
}

func (n *Notifier) format(notification domain.Notification) string {
	var b strings.Builder

	switch notification.Kind {
	case domain.NotificationSuccess:
		b.WriteString(n.styles.success.Render("✓ " + notification.Message))
	case domain.NotificationError:
		b.WriteString(n.styles.failure.Render("✗ " + notification.Message))
	default:
		b.WriteString(n.styles.info.Render("• " + notification.Message))
	}

	if notification.HasAction() {
		action := *notification.Action
		hint := action.Label
		if n.CommandHint != nil {
			hint = fmt.Sprintf("%s: %s", action.Label, n.CommandHint(action))
		}
		b.WriteString("\n  ")
		b.WriteString(n.styles.action.Render("→ " + hint))
	}

	return b.String()
}

func defaultCommandHint(action domain.NotificationAction) string {
	if action.Provider == "" {
		return "nailbox account add"
	}
	return "nailbox account add --provider " + string(action.Provider)
}
