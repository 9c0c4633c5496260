package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	linkAccountMessage   = "Link an account to continue"
	addAccountLabel      = "Add account"
	accountDeletedMsg    = "Account deleted successfully"
	syncStartedMessage   = "Syncing emails..."
	syncTriggeredMessage = "Email sync triggered"
	syncFailedPrefix     = "Failed to sync emails: "
	loadFailedPrefix     = "Failed to load accounts: "
)

// SessionDeps groups the collaborators of a SessionManager. Accounts, Selection
// and Notifier are required.
type SessionDeps struct {
	Accounts  ports.AccountService
	AuthURLs  ports.AuthorizationURLProvider
	Selection ports.SelectionStore
	Notifier  ports.Notifier
	Navigator ports.Navigator
	Clock     ports.Clock
	Logger    logrus.FieldLogger
	// Provider is offered by the add-account prompt. Defaults to Office365.
	Provider domain.Provider
}

// SessionManager owns the active account selection of one client session.
//
// The selection is only mutated by Reconcile/Refresh, SelectAccount and a
// confirmed delete. Remote calls are made without holding mu and their
// results are applied only while the session is open.
type SessionManager struct {
	accounts  ports.AccountService
	authURLs  ports.AuthorizationURLProvider
	selection ports.SelectionStore
	notifier  ports.Notifier
	navigator ports.Navigator
	clock     ports.Clock
	log       logrus.FieldLogger
	provider  domain.Provider

	mu            sync.Mutex
	selected      domain.AccountID
	observed      []domain.Account
	state         domain.SessionState
	emptyPrompted bool
	pendingDelete *domain.Account
	navigating    bool
	closed        bool
	requestedSeq  uint64
	appliedSeq    uint64
	syncing       map[domain.AccountID]struct{}

	syncs singleflight.Group
}

func NewSessionManager(deps SessionDeps) (*SessionManager, error) {
	if deps.Accounts == nil {
		return nil, errors.New("account service is required")
	}
	if deps.Selection == nil {
		return nil, errors.New("selection store is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Provider == "" {
		deps.Provider = domain.DefaultProvider
	}

	return &SessionManager{
		accounts:  deps.Accounts,
		authURLs:  deps.AuthURLs,
		selection: deps.Selection,
		notifier:  deps.Notifier,
		navigator: deps.Navigator,
		clock:     deps.Clock,
		log:       deps.Logger,
		provider:  deps.Provider,
		state:     domain.SessionNoAccounts,
		syncing:   map[domain.AccountID]struct{}{},
	}, nil
}

// Restore loads the persisted selection. The session stays in the
// no-accounts state until the first reconcile.
func (m *SessionManager) Restore(ctx context.Context) error {
	id, err := m.selection.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted selection: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrSessionClosed
	}
	m.selected = id

	return nil
}

// Refresh fetches the account list and reconciles against it. A response is
// dropped when a newer one has already been applied.
func (m *SessionManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrSessionClosed
	}
	m.requestedSeq++
	seq := m.requestedSeq
	m.mu.Unlock()

	accounts, err := m.accounts.ListAccounts(ctx)
	if err != nil {
		m.log.WithError(err).Warn("List accounts failed")
		m.notify(ctx, domain.NotificationError, loadFailedPrefix+err.Error(), nil)
		return fmt.Errorf("list accounts: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.log.Debug("Discarding account list received after session close")
		return nil
	}
	if seq <= m.appliedSeq {
		m.mu.Unlock()
		m.log.WithField("seq", seq).Debug("Discarding stale account list")
		return nil
	}
	m.appliedSeq = seq
	prompt := m.reconcileLocked(ctx, accounts)
	m.mu.Unlock()

	if prompt {
		m.promptAddAccount(ctx)
	}

	return nil
}

// Reconcile validates the selection against a freshly observed account list.
// It supersedes any refresh still in flight.
func (m *SessionManager) Reconcile(ctx context.Context, accounts []domain.Account) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.appliedSeq = m.requestedSeq
	prompt := m.reconcileLocked(ctx, accounts)
	m.mu.Unlock()

	if prompt {
		m.promptAddAccount(ctx)
	}
}

// reconcileLocked reports whether the add-account prompt must be emitted.
func (m *SessionManager) reconcileLocked(ctx context.Context, accounts []domain.Account) bool {
	m.observed = append([]domain.Account(nil), accounts...)

	if len(accounts) == 0 {
		m.state = domain.SessionNoAccounts
		if m.selected != "" {
			m.setSelectedLocked(ctx, "")
		}
		if m.emptyPrompted {
			return false
		}
		m.emptyPrompted = true
		return true
	}

	m.emptyPrompted = false
	m.state = domain.SessionHasSelection

	if m.selected != "" {
		if _, ok := domain.FindAccount(accounts, m.selected); ok {
			return false
		}
		m.log.WithField("account_id", m.selected).Debug("Selected account no longer linked, falling back to first account")
	}

	m.setSelectedLocked(ctx, accounts[0].ID)
	return false
}

// SelectAccount sets the selection without validating it against the account
// list; the next reconcile repairs an unknown id. An empty id is rejected.
func (m *SessionManager) SelectAccount(ctx context.Context, id domain.AccountID) error {
	if id == "" {
		return domain.ErrEmptyAccountID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrSessionClosed
	}

	m.selected = id
	m.state = domain.SessionHasSelection

	if err := m.persistLocked(ctx, id); err != nil {
		return err
	}

	return nil
}

func (m *SessionManager) setSelectedLocked(ctx context.Context, id domain.AccountID) {
	m.selected = id
	if err := m.persistLocked(ctx, id); err != nil {
		m.log.WithError(err).WithField("account_id", id).Warn("Persist selection failed")
	}
}

func (m *SessionManager) persistLocked(ctx context.Context, id domain.AccountID) error {
	if id == "" {
		if err := m.selection.Clear(ctx); err != nil {
			return fmt.Errorf("clear persisted selection: %w", err)
		}
		return nil
	}

	if err := m.selection.Save(ctx, id); err != nil {
		return fmt.Errorf("persist selection: %w", err)
	}

	return nil
}

// Close ends the session. Results of calls still in flight are discarded.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.pendingDelete = nil
}

func (m *SessionManager) Selected() domain.AccountID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.selected
}

func (m *SessionManager) SelectedAccount() (domain.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == "" {
		return domain.Account{}, false
	}

	return domain.FindAccount(m.observed, m.selected)
}

// Accounts returns the last observed account list in provider order.
func (m *SessionManager) Accounts() []domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.Account(nil), m.observed...)
}

func (m *SessionManager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

func (m *SessionManager) promptAddAccount(ctx context.Context) {
	m.notify(ctx, domain.NotificationInfo, linkAccountMessage, &domain.NotificationAction{
		Label:    addAccountLabel,
		Provider: m.provider,
	})
}

func (m *SessionManager) notify(ctx context.Context, kind domain.NotificationKind, message string, action *domain.NotificationAction) {
	m.notifier.Notify(ctx, domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Action:    action,
		CreatedAt: m.clock.Now(),
	})
}
