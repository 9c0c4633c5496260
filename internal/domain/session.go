package domain

type SessionState int

const (
	SessionNoAccounts SessionState = iota
	SessionHasSelection
)

func (s SessionState) String() string {
	switch s {
	case SessionNoAccounts:
		return "no_accounts"
	case SessionHasSelection:
		return "has_selection"
	default:
		return "unknown"
	}
}
