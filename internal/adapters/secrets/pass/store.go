package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
)

var (
	ErrUnavailable    = errors.New("pass command unavailable")
	ErrMultilineValue = errors.New("pass secret must be a single line")
)

const missingEntryMarker = "is not in the password store"

// CommandError is a pass invocation that exited with an error.
type CommandError struct {
	Op     string
	Key    string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("pass %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("pass %s %q: %v: %s", e.Op, e.Key, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func (e *CommandError) missingEntry() bool {
	return strings.Contains(e.Stderr, missingEntryMarker)
}

// execFunc runs pass with args, feeding stdin when it is not empty.
type execFunc func(ctx context.Context, stdin string, args ...string) (stdout string, stderr string, err error)

// Store keeps secrets in the user's password-store. Entries follow the pass
// convention of a password on the first line.
type Store struct {
	exec execFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{exec: execPass}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("pass put %q: %w", key, ErrMultilineValue)
	}

	_, err := s.invoke(ctx, "put", key, value+"\n", "insert", "--multiline", "--force", key)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.invoke(ctx, "get", key, "", "show", key)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.missingEntry() {
			return "", fmt.Errorf("pass secret %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", err
	}

	password, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(password, "\r"), nil
}

// Delete treats an entry that is already gone as deleted.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.invoke(ctx, "delete", key, "", "rm", "--force", key)
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.missingEntry() {
		return nil
	}

	return err
}

func (s *Store) invoke(ctx context.Context, op string, key string, stdin string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("pass %s: secret key is empty", op)
	}

	stdout, stderr, err := s.exec(ctx, stdin, args...)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		return "", &CommandError{Op: op, Key: key, Stderr: stderr, Err: err}
	}

	return stdout, nil
}

func execPass(ctx context.Context, stdin string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
