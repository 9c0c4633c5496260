package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
)

// APITokenSecretKey is the secret-store key of the mail API bearer token.
const APITokenSecretKey = "nailbox/api/token"

var ErrEmptyToken = errors.New("api token is empty")

type CredentialService struct {
	store ports.SecretStore
}

func NewCredentialService(store ports.SecretStore) *CredentialService {
	return &CredentialService{store: store}
}

func (s *CredentialService) SetAPIToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.store.Put(ctx, APITokenSecretKey, token); err != nil {
		return fmt.Errorf("store api token: %w", err)
	}

	return nil
}

func (s *CredentialService) RemoveAPIToken(ctx context.Context) error {
	if err := s.store.Delete(ctx, APITokenSecretKey); err != nil {
		return fmt.Errorf("delete api token: %w", err)
	}

	return nil
}

// APIToken returns the stored token, or "" when none has been set.
func (s *CredentialService) APIToken(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, APITokenSecretKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load api token: %w", err)
	}

	return strings.TrimSpace(token), nil
}
