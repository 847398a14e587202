package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wellspring-health/wellspring/internal/api"
	"github.com/wellspring-health/wellspring/internal/app/badge"
	"github.com/wellspring-health/wellspring/internal/app/ledger"
	"github.com/wellspring-health/wellspring/internal/app/notify"
	"github.com/wellspring-health/wellspring/internal/app/recommend"
	"github.com/wellspring-health/wellspring/internal/domain"
	"github.com/wellspring-health/wellspring/internal/infra/content"
	_ "github.com/wellspring-health/wellspring/internal/infra/metrics" // Register Prometheus metrics
	"github.com/wellspring-health/wellspring/internal/infra/sqlite"
)

// Daemon is the core Wellspring runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB

	Ledger        *ledger.Service
	Badges        *badge.Engine
	Profiles      *recommend.ProfileBuilder
	Scorer        *recommend.Scorer
	Notifications *notify.Service
	Server        *api.Server

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dir := cfg.Storage.Dir
	if dir == "" {
		dir = wellspringHome()
	}
	db, err := sqlite.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	rules := cfg.Rules()

	badges := badge.NewEngine(db, db)
	ledgerSvc := ledger.NewService(db, db, badges, rules)
	profiles := recommend.NewProfileBuilder(db, db)

	// Content generator: configured provider, or the offline mock.
	var generator domain.CandidateGenerator
	if cfg.Generator.BaseURL != "" {
		apiKey := ""
		if cfg.Generator.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.Generator.APIKeyEnv)
		}
		generator = content.NewOpenAIGenerator(cfg.Generator.BaseURL, apiKey, cfg.Generator.Model)
	} else {
		fmt.Fprintln(os.Stderr, "WARNING: no content provider configured, using built-in challenge catalog")
		generator = content.NewMockGenerator()
	}

	timeout := time.Duration(cfg.Generator.TimeoutSecond) * time.Second
	scorer := recommend.NewScorer(profiles, db, generator, rules, timeout)

	notifications := notify.NewServiceWithPolicy(db, cfg.Policy())
	ledgerSvc.SetNotifier(notifications)

	srv := api.NewServer(ledgerSvc, badges, scorer, profiles, notifications)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:        cfg,
		DB:            db,
		Ledger:        ledgerSvc,
		Badges:        badges,
		Profiles:      profiles,
		Scorer:        scorer,
		Notifications: notifications,
		Server:        srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Wellspring serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
