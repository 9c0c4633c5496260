package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	vaultFileName    = "secrets.toml"
	vaultFileMode    = 0o600
	vaultDirMode     = 0o700
	vaultTempPattern = ".secrets-*.toml.tmp"
	vaultVersion     = 1
)

var (
	ErrInvalidKey = errors.New("invalid secret key")

	// Slash separated segments of letters, digits, dot, dash and underscore.
	keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*(/[A-Za-z0-9_-][A-Za-z0-9._-]*)*$`)
)

type vaultFile struct {
	Version int                   `toml:"version"`
	Secrets map[string]vaultEntry `toml:"secrets,omitempty"`
}

type vaultEntry struct {
	Value     string `toml:"value"`
	UpdatedAt string `toml:"updated_at"`
}

// Store is the last-resort backend: every secret lives in one TOML vault
// under dir, readable by the owner only.
type Store struct {
	path  string
	clock ports.Clock
	mu    sync.Mutex
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(dir string, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{path: filepath.Join(filepath.Clean(dir), vaultFileName), clock: clock}
}

// Path is the vault file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	return s.update(ctx, func(vault *vaultFile) bool {
		vault.Secrets[key] = vaultEntry{
			Value:     value,
			UpdatedAt: s.clock.Now().UTC().Format(time.RFC3339),
		}
		return true
	})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vault, err := s.read()
	if err != nil {
		return "", err
	}

	entry, ok := vault.Secrets[key]
	if !ok {
		return "", fmt.Errorf("file secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return entry.Value, nil
}

// Delete is a no-op for a key the vault does not hold.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	return s.update(ctx, func(vault *vaultFile) bool {
		if _, ok := vault.Secrets[key]; !ok {
			return false
		}
		delete(vault.Secrets, key)
		return true
	})
}

func (s *Store) update(ctx context.Context, mutate func(*vaultFile) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vault, err := s.read()
	if err != nil {
		return err
	}
	if !mutate(&vault) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.write(vault)
}

func (s *Store) read() (vaultFile, error) {
	vault := vaultFile{Version: vaultVersion, Secrets: map[string]vaultEntry{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return vault, nil
		}
		return vaultFile{}, fmt.Errorf("read secrets vault: %w", err)
	}

	if err := toml.Unmarshal(data, &vault); err != nil {
		return vaultFile{}, fmt.Errorf("decode secrets vault: %w", err)
	}
	if vault.Version > vaultVersion {
		return vaultFile{}, fmt.Errorf("unsupported secrets vault version %d (current %d)", vault.Version, vaultVersion)
	}
	if vault.Secrets == nil {
		vault.Secrets = map[string]vaultEntry{}
	}

	return vault, nil
}

// write replaces the vault through a temp file so a crash never leaves it
// half written.
func (s *Store) write(vault vaultFile) error {
	vault.Version = vaultVersion

	data, err := toml.Marshal(vault)
	if err != nil {
		return fmt.Errorf("encode secrets vault: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, vaultDirMode); err != nil {
		return fmt.Errorf("create secrets directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, vaultTempPattern)
	if err != nil {
		return fmt.Errorf("create temp secrets vault: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(vaultFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp secrets vault: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp secrets vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp secrets vault: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace secrets vault: %w", err)
	}

	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w %q", ErrInvalidKey, key)
	}

	return nil
}
