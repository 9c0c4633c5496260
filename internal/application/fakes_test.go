package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type inMemoryAccountService struct {
	mu        sync.Mutex
	accounts  []domain.Account
	deleted   []domain.AccountID
	deleteErr error
	listErr   error
}

func (s *inMemoryAccountService) ListAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]domain.Account(nil), s.accounts...), nil
}

func (s *inMemoryAccountService) DeleteAccount(_ context.Context, id domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.accounts = domain.WithoutAccount(s.accounts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *inMemoryAccountService) SyncAccount(_ context.Context, _ domain.AccountID) error {
	return nil
}

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]domain.Account)
	return accounts, args.Error(1)
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, id domain.AccountID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAccountService) SyncAccount(ctx context.Context, id domain.AccountID) error {
	return m.Called(ctx, id).Error(0)
}

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}

type inMemorySelectionStore struct {
	mu      sync.Mutex
	id      domain.AccountID
	writes  int
	saveErr error
}

func (s *inMemorySelectionStore) Load(_ context.Context) (domain.AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id, nil
}

func (s *inMemorySelectionStore) Save(_ context.Context, id domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.id = id
	s.writes++
	return nil
}

func (s *inMemorySelectionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.id = ""
	s.writes++
	return nil
}

func (s *inMemorySelectionStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writes
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notifications = append(n.notifications, notification)
}

func (n *recordingNotifier) All() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]domain.Notification(nil), n.notifications...)
}

func (n *recordingNotifier) Count(kind domain.NotificationKind, message string) int {
	count := 0
	for _, notification := range n.All() {
		if notification.Kind == kind && notification.Message == message {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) Last() domain.Notification {
	all := n.All()
	if len(all) == 0 {
		return domain.Notification{}
	}
	return all[len(all)-1]
}

type stubAuthURLs struct {
	url       string
	err       error
	providers []domain.Provider
}

func (s *stubAuthURLs) AuthorizationURL(_ context.Context, provider domain.Provider) (string, error) {
	s.providers = append(s.providers, provider)
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type recordingNavigator struct {
	urls []string
	err  error
}

func (n *recordingNavigator) Navigate(_ context.Context, url string) error {
	if n.err != nil {
		return n.err
	}
	n.urls = append(n.urls, url)
	return nil
}

type sessionFixture struct {
	manager   *SessionManager
	accounts  *inMemoryAccountService
	selection *inMemorySelectionStore
	notifier  *recordingNotifier
	authURLs  *stubAuthURLs
	navigator *recordingNavigator
	logs      *test.Hook
}

func newSessionFixture(t *testing.T, accounts ...domain.Account) *sessionFixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &sessionFixture{
		accounts:  &inMemoryAccountService{accounts: accounts},
		selection: &inMemorySelectionStore{},
		notifier:  &recordingNotifier{},
		authURLs:  &stubAuthURLs{url: "https://api.aurinko.io/v1/auth/authorize?serviceType=Office365"},
		navigator: &recordingNavigator{},
		logs:      hook,
	}

	manager, err := NewSessionManager(SessionDeps{
		Accounts:  f.accounts,
		AuthURLs:  f.authURLs,
		Selection: f.selection,
		Notifier:  f.notifier,
		Navigator: f.navigator,
		Clock:     clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		Logger:    logger,
	})
	require.NoError(t, err)
	f.manager = manager

	return f
}

func accountA() domain.Account {
	return domain.Account{ID: "a1", EmailAddress: "a@x.com", Name: "A"}
}

func accountB() domain.Account {
	return domain.Account{ID: "b1", EmailAddress: "b@x.com", Name: "B"}
}

func accountC() domain.Account {
	return domain.Account{ID: "c1", EmailAddress: "c@x.com", Name: "C"}
}
