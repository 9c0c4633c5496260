package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/nailbox/internal/domain"
)

// RequestDelete marks id as pending deletion and returns the account so the
// caller can ask for confirmation naming its address.
func (m *SessionManager) RequestDelete(id domain.AccountID) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.Account{}, domain.ErrSessionClosed
	}
	if m.navigating {
		return domain.Account{}, domain.ErrNavigationInFlight
	}

	account, ok := domain.FindAccount(m.observed, id)
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	m.pendingDelete = &account

	return account, nil
}

func (m *SessionManager) PendingDelete() (domain.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pendingDelete == nil {
		return domain.Account{}, false
	}

	return *m.pendingDelete, true
}

func (m *SessionManager) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pendingDelete = nil
}

// ConfirmDelete deletes the pending account. Once the guards pass, the
// pending value is cleared whatever the outcome of the remote call.
func (m *SessionManager) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if m.navigating {
		m.mu.Unlock()
		return domain.ErrNavigationInFlight
	}
	pending := m.pendingDelete
	m.pendingDelete = nil
	m.mu.Unlock()

	if pending == nil {
		return domain.ErrNoPendingDelete
	}

	return m.deleteAccount(ctx, pending.ID)
}

func (m *SessionManager) deleteAccount(ctx context.Context, id domain.AccountID) error {
	log := m.log.WithField("account_id", id)

	if err := m.accounts.DeleteAccount(ctx, id); err != nil {
		log.WithError(err).Warn("Delete account failed")
		m.notify(ctx, domain.NotificationError, err.Error(), nil)
		return fmt.Errorf("delete account %s: %w", id, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		log.Debug("Account deleted after session close, result discarded")
		return domain.ErrSessionClosed
	}

	remaining := domain.WithoutAccount(m.observed, id)
	m.observed = remaining
	prompt := false
	if len(remaining) == 0 {
		if m.selected != "" {
			m.setSelectedLocked(ctx, "")
		}
		m.state = domain.SessionNoAccounts
		prompt = !m.emptyPrompted
		m.emptyPrompted = true
		log.Info("Deleted last account")
	} else if m.selected == id {
		m.setSelectedLocked(ctx, remaining[0].ID)
		log.WithField("next_account_id", remaining[0].ID).Info("Deleted selected account, switched to next account")
	}
	m.mu.Unlock()

	if prompt {
		m.promptAddAccount(ctx)
	}

	if err := m.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrSessionClosed) {
		log.WithError(err).Warn("Refresh after delete failed")
	}

	m.notify(ctx, domain.NotificationSuccess, accountDeletedMsg, nil)
	return nil
}

// RequestAddAccount fetches the authorization URL for provider and hands it
// to the navigator. An empty provider uses the session default.
func (m *SessionManager) RequestAddAccount(ctx context.Context, provider domain.Provider) error {
	if provider == "" {
		provider = m.provider
	}
	if m.authURLs == nil || m.navigator == nil {
		return errors.New("add-account flow is not configured")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrSessionClosed
	}
	m.mu.Unlock()

	url, err := m.authURLs.AuthorizationURL(ctx, provider)
	if err != nil {
		m.log.WithError(err).WithField("provider", provider).Warn("Build authorization url failed")
		m.notify(ctx, domain.NotificationError, err.Error(), nil)
		return fmt.Errorf("get authorization url: %w", err)
	}

	m.mu.Lock()
	m.navigating = true
	m.pendingDelete = nil
	m.mu.Unlock()

	if err := m.navigator.Navigate(ctx, url); err != nil {
		m.mu.Lock()
		m.navigating = false
		m.mu.Unlock()

		m.notify(ctx, domain.NotificationError, err.Error(), nil)
		return fmt.Errorf("navigate to authorization url: %w", err)
	}

	return nil
}

// Navigating reports whether an add-account redirect is in flight.
func (m *SessionManager) Navigating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.navigating
}

// NavigationDone clears the in-flight flag once the add-account redirect has
// been handled, for example after the linked account shows up in a refresh.
func (m *SessionManager) NavigationDone() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.navigating = false
}

// TriggerSync asks the mail API to refresh one account; an empty id means the
// selected account. Concurrent calls for the same account share one request,
// which outlives the cancellation of any single caller.
func (m *SessionManager) TriggerSync(ctx context.Context, id domain.AccountID) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if id == "" {
		id = m.selected
	}
	m.mu.Unlock()

	if id == "" {
		return domain.ErrNoAccountSelected
	}

	shared := context.WithoutCancel(ctx)
	ch := m.syncs.DoChan(string(id), func() (interface{}, error) {
		return nil, m.runSync(shared, id)
	})

	select {
	case result := <-ch:
		if result.Shared {
			m.log.WithField("account_id", id).Debug("Joined in-flight sync")
		}
		return result.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SessionManager) runSync(ctx context.Context, id domain.AccountID) error {
	m.mu.Lock()
	m.syncing[id] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.syncing, id)
		m.mu.Unlock()
	}()

	m.notify(ctx, domain.NotificationInfo, syncStartedMessage, nil)

	if err := m.accounts.SyncAccount(ctx, id); err != nil {
		m.log.WithError(err).WithField("account_id", id).Warn("Sync account failed")
		m.notify(ctx, domain.NotificationError, syncFailedPrefix+err.Error(), nil)
		return fmt.Errorf("sync account %s: %w", id, err)
	}

	m.notify(ctx, domain.NotificationSuccess, syncTriggeredMessage, nil)
	return nil
}

func (m *SessionManager) SyncPending(id domain.AccountID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.syncing[id]
	return ok
}
