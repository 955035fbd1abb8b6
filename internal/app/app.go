package app

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"tubeconv/internal/clock"
	"tubeconv/internal/config"
	"tubeconv/internal/services"
	"tubeconv/internal/store"
)

type App struct {
	Config  *config.Config
	BaseURL string
	Clock   clock.Clock

	JobClient store.JobClient
	Policy    services.RetryPolicy

	// --- Initialized Services ---
	Submitter *services.JobSubmitter
	Poller    *services.StatusPoller

	httpClient *http.Client
}

type Option func(*App)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(a *App) { a.Clock = c }
}

// WithHTTPClient sets the client used for backend requests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// WithJobClient bypasses the HTTP client entirely.
func WithJobClient(jc store.JobClient) Option {
	return func(a *App) { a.JobClient = jc }
}

func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app := &App{Config: cfg, Clock: clock.Real{}}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initLogging(); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		return nil, err
	}
	app.initServices()

	log.WithField("base_url", app.BaseURL).Debug("application initialization complete")
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initLogging() error {
	level, err := log.ParseLevel(a.Config.Log.Level)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func (a *App) initJobClient() error {
	base, err := config.ResolveBaseURL(a.Config)
	if err != nil {
		return fmt.Errorf("resolve backend URL: %w", err)
	}
	a.BaseURL = base
	if a.JobClient != nil {
		return nil
	}

	jc, err := store.NewHTTPJobClient(base, a.httpClient)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

func (a *App) initServices() {
	cfg := a.Config
	a.Policy = services.RetryPolicyFromConfig(cfg)
	a.Submitter = services.NewJobSubmitter(a.JobClient, cfg.Submit.Timeout, a.Clock)
	a.Poller = services.NewStatusPoller(a.JobClient, a.Policy, cfg.Poll.Timeout, a.Clock)
}

// NewRetriever delivers artifacts into dir, or into retrieval.download_dir
// when dir is empty.
func (a *App) NewRetriever(notifier services.Notifier, dir string) (*services.ArtifactRetriever, error) {
	if dir == "" {
		dir = a.Config.Retrieval.DownloadDir
	}
	files, err := store.NewLocalFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	return services.NewArtifactRetriever(a.JobClient, files, notifier, a.Config.Retrieval.MaxBytes), nil
}

// NewController wires a lifecycle controller that reports to ui and notifier
// and saves artifacts into dir.
func (a *App) NewController(ui services.UI, notifier services.Notifier, dir string) (*services.Controller, error) {
	retriever, err := a.NewRetriever(notifier, dir)
	if err != nil {
		return nil, err
	}
	return services.NewController(a.Submitter, a.Poller, retriever, ui, a.Clock), nil
}
