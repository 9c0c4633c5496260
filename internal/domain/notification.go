package domain

import "time"

type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// NotificationAction is the single button a toast may carry.
type NotificationAction struct {
	Label    string
	Provider Provider
}

type Notification struct {
	ID        string
	Kind      NotificationKind
	Message   string
	Action    *NotificationAction
	CreatedAt time.Time
}

func (n Notification) HasAction() bool {
	return n.Action != nil && n.Action.Label != ""
}
