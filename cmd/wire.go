package cmd

import (
	"fmt"
	"io"

	authadapter "github.com/bnema/nailbox/internal/adapters/auth"
	"github.com/bnema/nailbox/internal/adapters/mailapi"
	accountsrender "github.com/bnema/nailbox/internal/adapters/render/accounts"
	tomlrepo "github.com/bnema/nailbox/internal/adapters/repo/toml"
	chainstore "github.com/bnema/nailbox/internal/adapters/secrets/chain"
	filestore "github.com/bnema/nailbox/internal/adapters/secrets/file"
	"github.com/bnema/nailbox/internal/adapters/terminal"
	"github.com/bnema/nailbox/internal/application"
	"github.com/bnema/nailbox/internal/config"
	"github.com/bnema/nailbox/internal/domain"
	"github.com/bnema/nailbox/internal/ports"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	viper           *viper.Viper
	cfg             config.Config
	log             *logrus.Logger
	accounts        ports.AccountService
	authURLs        ports.AuthorizationURLProvider
	selection       ports.SelectionStore
	credentials     *application.CredentialService
	provider        domain.Provider
	clock           ports.Clock
	accountRenderer func([]domain.Account, accountsrender.RenderOptions) (string, error)
	confirm         confirmFunc
}

func wireApp() (*app, error) {
	v, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	provider, err := domain.ParseProvider(cfg.Auth.Provider)
	if err != nil {
		return nil, fmt.Errorf("load config: %s: %w", config.KeyAuthProvider, err)
	}

	clock := ports.SystemClock{}

	secretStore, err := wireSecretStore(cfg.Secrets, clock)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}
	credentials := application.NewCredentialService(secretStore)

	selection, err := tomlrepo.NewSelectionStore(v, clock)
	if err != nil {
		return nil, fmt.Errorf("wire selection store: %w", err)
	}

	client, err := mailapi.NewClient(mailapi.Config{
		BaseURL:        cfg.API.BaseURL,
		RequestTimeout: cfg.API.Timeout,
		Logger:         logger,
	}, credentials)
	if err != nil {
		return nil, fmt.Errorf("wire mail api client: %w", err)
	}

	return &app{
		viper:       v,
		cfg:         cfg,
		log:         logger,
		accounts:    client,
		selection:   selection,
		credentials: credentials,
		provider:    provider,
		clock:       clock,
		authURLs: authadapter.NewAurinkoURLs(authadapter.AurinkoConfig{
			AuthorizeURL: cfg.Auth.AuthorizeURL,
			ClientID:     cfg.Auth.ClientID,
			ReturnURL:    cfg.Auth.ReturnURL,
		}),
		accountRenderer: accountsrender.Render,
		confirm:         huhConfirm,
	}, nil
}

func wireSecretStore(cfg config.SecretsConfig, clock ports.Clock) (ports.SecretStore, error) {
	if cfg.Backend == config.SecretsBackendFile {
		return filestore.NewStore(cfg.Dir, clock), nil
	}

	store, err := chainstore.NewDefault(cfg.Dir, clock)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// configureLogging applies log.level and log.format once flags are parsed.
func (a *app) configureLogging(out io.Writer) error {
	logCfg := config.LogConfig{
		Level:  a.viper.GetString(config.KeyLogLevel),
		Format: a.cfg.Log.Format,
	}

	configured, err := config.NewLogger(logCfg, out)
	if err != nil {
		return err
	}

	a.log.SetOutput(configured.Out)
	a.log.SetLevel(configured.GetLevel())
	a.log.SetFormatter(configured.Formatter)

	return nil
}

// newSession builds a session manager that reports to the command's streams
// and restores the persisted selection.
func (a *app) newSession(cmd *cobra.Command, notifications io.Writer) (*application.SessionManager, error) {
	session, err := application.NewSessionManager(application.SessionDeps{
		Accounts:  a.accounts,
		AuthURLs:  a.authURLs,
		Selection: a.selection,
		Notifier:  terminal.NewNotifier(notifications),
		Navigator: terminal.NewNavigator(cmd.OutOrStdout()),
		Clock:     a.clock,
		Logger:    a.log,
		Provider:  a.provider,
	})
	if err != nil {
		return nil, err
	}

	if err := session.Restore(cmd.Context()); err != nil {
		return nil, err
	}

	return session, nil
}
