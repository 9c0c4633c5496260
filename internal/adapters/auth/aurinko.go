package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
)

const DefaultAuthorizeURL = "https://api.aurinko.io/v1/auth/authorize"

var DefaultScopes = []string{"Mail.Read", "Mail.ReadWrite", "Mail.Send", "Mail.Drafts", "Mail.All"}

var ErrClientIDMissing = errors.New("aurinko client id is not configured")

type AuthorizationRequest struct {
	AuthURL     string
	ClientID    string
	ServiceType domain.Provider
	Scopes      []string
	ReturnURL   string
	State       string
}

func BuildAuthorizationURL(req AuthorizationRequest) (string, error) {
	if req.AuthURL == "" {
		return "", errors.New("auth url is required")
	}
	if req.ClientID == "" {
		return "", ErrClientIDMissing
	}
	if req.ServiceType == "" {
		return "", errors.New("service type is required")
	}
	if req.ReturnURL == "" {
		return "", errors.New("return url is required")
	}

	parsed, err := url.Parse(req.AuthURL)
	if err != nil {
		return "", fmt.Errorf("parse auth url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("auth url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("auth url host is required")
	}

	q := parsed.Query()
	q.Set("clientId", req.ClientID)
	q.Set("serviceType", string(req.ServiceType))
	if len(req.Scopes) > 0 {
		q.Set("scopes", strings.Join(req.Scopes, " "))
	}
	q.Set("responseType", "code")
	q.Set("returnUrl", req.ReturnURL)
	if req.State != "" {
		q.Set("state", req.State)
	}
	parsed.RawQuery = q.Encode()

	return parsed.String(), nil
}

type AurinkoConfig struct {
	AuthorizeURL string
	ClientID     string
	ReturnURL    string
	Scopes       []string
}

// AurinkoURLs hands out Aurinko authorize URLs with a fresh state per request.
type AurinkoURLs struct {
	cfg      AurinkoConfig
	newState func() (string, error)
}

var _ ports.AuthorizationURLProvider = (*AurinkoURLs)(nil)

func NewAurinkoURLs(cfg AurinkoConfig) *AurinkoURLs {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}

	return &AurinkoURLs{cfg: cfg, newState: NewState}
}

func (a *AurinkoURLs) AuthorizationURL(ctx context.Context, provider domain.Provider) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	provider, err := domain.ParseProvider(string(provider))
	if err != nil {
		return "", err
	}

	state, err := a.newState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	return BuildAuthorizationURL(AuthorizationRequest{
		AuthURL:     a.cfg.AuthorizeURL,
		ClientID:    a.cfg.ClientID,
		ServiceType: provider,
		Scopes:      a.cfg.Scopes,
		ReturnURL:   a.cfg.ReturnURL,
		State:       state,
	})
}
