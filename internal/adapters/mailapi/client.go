package mailapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL        = "http://localhost:3000/api/trpc"
	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 1 << 20

	procedureGetAccounts   = "mail.getAccounts"
	procedureDeleteAccount = "mail.deleteAccount"
	procedureSyncEmails    = "mail.syncEmails"
)

// TokenSource returns the bearer token for API calls. An empty token sends
// the request unauthenticated.
type TokenSource interface {
	APIToken(ctx context.Context) (string, error)
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	HTTPClient     *http.Client
	Logger         logrus.FieldLogger
}

// Client calls the mail router of the Nailbox tRPC API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	log        logrus.FieldLogger
}

var _ ports.AccountService = (*Client)(nil)

type accountDTO struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Name         string `json:"name"`
}

type accountInput struct {
	AccountID string `json:"accountId"`
}

type requestEnvelope struct {
	JSON any `json:"json"`
}

type resultEnvelope struct {
	Result struct {
		Data struct {
			JSON json.RawMessage `json:"json"`
		} `json:"data"`
	} `json:"result"`
}

func NewClient(cfg Config, tokens TokenSource) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		timeout:    cfg.RequestTimeout,
		httpClient: cfg.HTTPClient,
		tokens:     tokens,
		log:        cfg.Logger,
	}
	if client.timeout <= 0 {
		client.timeout = defaultRequestTimeout
	}
	if client.httpClient == nil {
		client.httpClient = http.DefaultClient
	}
	if client.log == nil {
		client.log = logrus.StandardLogger()
	}

	return client, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var payload []accountDTO
	if err := c.call(ctx, http.MethodGet, procedureGetAccounts, nil, &payload); err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(payload))
	for _, dto := range payload {
		if dto.ID == "" {
			c.log.WithField("email", dto.EmailAddress).Warn("Skipping account without id")
			continue
		}
		accounts = append(accounts, domain.Account{
			ID:           domain.AccountID(dto.ID),
			EmailAddress: dto.EmailAddress,
			Name:         dto.Name,
		})
	}

	return accounts, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id domain.AccountID) error {
	return c.call(ctx, http.MethodPost, procedureDeleteAccount, accountInput{AccountID: string(id)}, nil)
}

func (c *Client) SyncAccount(ctx context.Context, id domain.AccountID) error {
	return c.call(ctx, http.MethodPost, procedureSyncEmails, accountInput{AccountID: string(id)}, nil)
}

func (c *Client) call(ctx context.Context, method string, procedure string, input any, out any) error {
	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var body io.Reader
	if input != nil {
		encoded, err := json.Marshal(requestEnvelope{JSON: input})
		if err != nil {
			return fmt.Errorf("encode %s input: %w", procedure, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(requestCtx, method, c.baseURL+"/"+procedure, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", procedure, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(requestCtx, req); err != nil {
		return err
	}

	log := c.log.WithField("procedure", procedure)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", procedure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(started),
	}).Debug("Mail API call finished")

	limited := io.LimitReader(resp.Body, maxResponseBytes)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var env errorEnvelope
		if err := json.NewDecoder(limited).Decode(&env); err != nil {
			log.WithError(err).Debug("Undecodable error body")
		}
		return env.toError(procedure, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	var result resultEnvelope
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return fmt.Errorf("decode %s response: %w", procedure, err)
	}
	if len(result.Result.Data.JSON) == 0 {
		return fmt.Errorf("decode %s response: missing result data", procedure)
	}
	if err := json.Unmarshal(result.Result.Data.JSON, out); err != nil {
		return fmt.Errorf("decode %s result: %w", procedure, err)
	}

	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}

	token, err := c.tokens.APIToken(ctx)
	if err != nil {
		return fmt.Errorf("authorize %s request: %w", req.URL.Path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.timeout)
}
