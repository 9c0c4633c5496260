package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccount struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Name         string `json:"name"`
}

type fakeMailAPI struct {
	mu         sync.Mutex
	accounts   []fakeAccount
	deleted    []string
	synced     []string
	authHeader []string
	deleteErr  string
	syncErr    string
}

func newFakeMailAPI(t *testing.T, accounts ...fakeAccount) *fakeMailAPI {
	t.Helper()

	api := &fakeMailAPI{accounts: accounts}
	server := httptest.NewServer(http.HandlerFunc(api.serveHTTP))
	t.Cleanup(server.Close)
	t.Setenv("NAILBOX_API_BASE_URL", server.URL+"/api/trpc")

	return api
}

func (f *fakeMailAPI) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authHeader = append(f.authHeader, r.Header.Get("Authorization"))

	var input struct {
		JSON struct {
			AccountID string `json:"accountId"`
		} `json:"json"`
	}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&input)
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/trpc/") {
	case "mail.getAccounts":
		writeResult(w, f.accounts)
	case "mail.deleteAccount":
		if f.deleteErr != "" {
			writeError(w, http.StatusInternalServerError, f.deleteErr)
			return
		}
		kept := f.accounts[:0]
		for _, account := range f.accounts {
			if account.ID != input.JSON.AccountID {
				kept = append(kept, account)
			}
		}
		f.accounts = kept
		f.deleted = append(f.deleted, input.JSON.AccountID)
		writeResult(w, map[string]bool{"success": true})
	case "mail.syncEmails":
		if f.syncErr != "" {
			writeError(w, http.StatusTooManyRequests, f.syncErr)
			return
		}
		f.synced = append(f.synced, input.JSON.AccountID)
		writeResult(w, map[string]bool{"success": true})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeMailAPI) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeMailAPI) Synced() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.synced...)
}

func (f *fakeMailAPI) LastAuthHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.authHeader) == 0 {
		return ""
	}
	return f.authHeader[len(f.authHeader)-1]
}

func writeResult(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"result": map[string]any{"data": map[string]any{"json": payload}},
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"json":{"message":%q,"code":-32603,"data":{"code":"INTERNAL_SERVER_ERROR","httpStatus":%d}}}}`, message, status)
}

func alice() fakeAccount {
	return fakeAccount{ID: "a1", EmailAddress: "alice@example.com", Name: "Alice"}
}

func bob() fakeAccount {
	return fakeAccount{ID: "b1", EmailAddress: "bob@example.com", Name: "Bob"}
}

func TestAccountListSelectsFirstAccountAndPersistsIt(t *testing.T) {
	newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "accounts: 2")
	assert.Contains(t, stdout, "alice@example.com")
	assert.Contains(t, stdout, "bob@example.com")
	assert.Equal(t, "a1", readSessionAccountID(t, home))
}

func TestAccountListJSONMarksSelection(t *testing.T) {
	newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "b1"))

	stdout, _, err := executeCLI(t, home, "account", "list", "--json")
	require.NoError(t, err)

	var payload []accountJSON
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	require.Len(t, payload, 2)
	assert.False(t, payload[0].Selected)
	assert.True(t, payload[1].Selected)
	assert.Equal(t, "bob@example.com", payload[1].EmailAddress)
}

func TestAccountListRepairsStaleSelection(t *testing.T) {
	newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "gone"))

	stdout, _, err := executeCLI(t, home, "account", "current")
	require.NoError(t, err)
	assert.Contains(t, stdout, "alice@example.com")
	assert.Equal(t, "a1", readSessionAccountID(t, home))
}

func TestAccountListWithoutAccountsPromptsToLink(t *testing.T) {
	newFakeMailAPI(t)
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "a1"))

	stdout, stderr, err := executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No accounts linked.")
	assert.Contains(t, stderr, "Link an account to continue")
	assert.Contains(t, stderr, "Add account")
	assert.Empty(t, readSessionAccountID(t, home))
}

func TestAccountSelectPersistsChoice(t *testing.T) {
	newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "select", "b1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Selected bob@example.com")

	stdout, _, err = executeCLI(t, home, "account", "current")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bob@example.com\tb1")
}

func TestAccountSelectUnknownAccountFails(t *testing.T) {
	newFakeMailAPI(t, alice())
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "select", "zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account not found: zz")
}

func TestAccountDeleteSelectedFailsOverToNextAccount(t *testing.T) {
	api := newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "a1"))

	stdout, stderr, err := executeCLI(t, home, "account", "delete", "a1", "--yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, api.Deleted())
	assert.Contains(t, stderr, "Account deleted successfully")
	assert.Contains(t, stdout, "Active account: bob@example.com")
	assert.Equal(t, "b1", readSessionAccountID(t, home))
}

func TestAccountDeleteWithYesPrintsAddress(t *testing.T) {
	api := newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "delete", "a1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleting alice@example.com (a1)")
	assert.Equal(t, []string{"a1"}, api.Deleted())
}

func TestAccountDeleteHasNoShortYesFlag(t *testing.T) {
	api := newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "delete", "a1", "-y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shorthand flag")
	assert.Empty(t, api.Deleted())
}

func TestAccountDeleteAsksForConfirmationNamingAddress(t *testing.T) {
	api := newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()

	var description string
	stdout, _, err := executeCLIWith(t, home, func(a *app) {
		a.confirm = func(_ *cobra.Command, _ string, desc string) (bool, error) {
			description = desc
			return false, nil
		}
	}, "account", "delete", "b1")
	require.NoError(t, err)
	assert.Contains(t, description, "This will permanently delete bob@example.com")
	assert.Contains(t, stdout, "Delete canceled")
	assert.Empty(t, api.Deleted())
}

func TestAccountDeleteFailureKeepsSelection(t *testing.T) {
	api := newFakeMailAPI(t, alice(), bob())
	api.deleteErr = "account is locked"
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "a1"))

	_, stderr, err := executeCLI(t, home, "account", "delete", "a1", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account is locked")
	assert.Contains(t, stderr, "account is locked")
	assert.Equal(t, "a1", readSessionAccountID(t, home))
}

func TestAccountDeleteLastAccountUnsetsSelection(t *testing.T) {
	newFakeMailAPI(t, alice())
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "a1"))

	_, stderr, err := executeCLI(t, home, "account", "delete", "a1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Link an account to continue")
	assert.Contains(t, stderr, "Account deleted successfully")
	assert.Empty(t, readSessionAccountID(t, home))
}

func TestAccountAddPrintsAuthorizationURL(t *testing.T) {
	newFakeMailAPI(t)
	t.Setenv("NAILBOX_AUTH_CLIENT_ID", "client-123")
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "account", "add", "--provider", "google")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Open this URL to link your account:")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	parsed, err := url.Parse(strings.TrimSpace(lines[len(lines)-1]))
	require.NoError(t, err)
	assert.Equal(t, "Google", parsed.Query().Get("serviceType"))
	assert.Equal(t, "client-123", parsed.Query().Get("clientId"))
}

func TestAccountAddWithoutClientIDFails(t *testing.T) {
	newFakeMailAPI(t)
	home := t.TempDir()

	_, stderr, err := executeCLI(t, home, "account", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client id is not configured")
	assert.Contains(t, stderr, "client id is not configured")
}

func TestAccountAddRejectsUnknownProvider(t *testing.T) {
	newFakeMailAPI(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "add", "--provider", "yahoo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestSyncTriggersSelectedAccount(t *testing.T) {
	api := newFakeMailAPI(t, alice(), bob())
	home := t.TempDir()
	require.NoError(t, writeSessionFixture(home, "b1"))

	_, stderr, err := executeCLI(t, home, "sync")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, api.Synced())
	assert.Contains(t, stderr, "Syncing emails...")
	assert.Contains(t, stderr, "Email sync triggered")
}

func TestSyncFailureIsReported(t *testing.T) {
	api := newFakeMailAPI(t, alice())
	api.syncErr = "rate limited"
	home := t.TempDir()

	_, stderr, err := executeCLI(t, home, "sync", "--account", "a1")
	require.Error(t, err)
	assert.Contains(t, stderr, "Failed to sync emails: rate limited")
}

func TestSyncWithoutAccountsFails(t *testing.T) {
	newFakeMailAPI(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account selected")
}

func TestAuthTokenIsSentAsBearer(t *testing.T) {
	api := newFakeMailAPI(t, alice())
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "auth", "token", "set", "--value", "tok-123")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", api.LastAuthHeader())

	_, _, err = executeCLI(t, home, "auth", "token", "remove")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "account", "list")
	require.NoError(t, err)
	assert.Empty(t, api.LastAuthHeader())
}

func TestAuthTokenSetRequiresValue(t *testing.T) {
	newFakeMailAPI(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "auth", "token", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of the flags in the group [value stdin] is required")
}

func TestVersionPrintsBuildVersion(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestUnknownCommandIsRejected(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "usage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"usage\"")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWith(t, home, nil, args...)
}

func executeCLIWith(t *testing.T, home string, customize func(*app), args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("NAILBOX_SECRETS_BACKEND", "file")

	app, err := wireApp()
	if err == nil && customize != nil {
		customize(app)
	}

	root := buildRootCmd(app, err)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err = root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSessionFixture(home string, accountID string) error {
	dir := filepath.Join(home, ".nailbox")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	session := fmt.Sprintf("version = 1\naccount_id = %q\n", accountID)
	return os.WriteFile(filepath.Join(dir, "session.toml"), []byte(session), 0o600)
}

func readSessionAccountID(t *testing.T, home string) string {
	t.Helper()

	file, err := os.Open(filepath.Join(home, ".nailbox", "session.toml"))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	require.NoError(t, err)

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if ok && strings.TrimSpace(key) == "account_id" {
			return strings.Trim(strings.TrimSpace(value), `'"`)
		}
	}
	return ""
}
