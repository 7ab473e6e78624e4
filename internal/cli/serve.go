package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/lcpmarvel/bpmnlayout/pkg/cache"
	"github.com/lcpmarvel/bpmnlayout/pkg/httpapi"
	"github.com/lcpmarvel/bpmnlayout/pkg/session"
)

// serveCommand creates the serve command: it runs the HTTP API
// (pkg/httpapi) as a long-lived process.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout engine as an HTTP API",
		Long: `Run the layout engine as an HTTP API.

Routes:
  POST /v1/layouts           submit a graph; add ?async=1 to get a job id
                              back immediately instead of waiting for XML
  GET  /v1/layouts/{id}       poll an asynchronous job's status
  GET  /v1/layouts/{id}.xml   fetch a succeeded job's rendered XML

Backends are chosen by config file (cache.backend/session.backend: file,
redis, mongo) since a fleet of API instances needs a shared cache and job
store, while a single local instance is fine with the file-backed default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, configPath string) error {
	cfg, err := loadServeConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	ch, err := buildServeCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer ch.Close()

	store, err := buildServeStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize session store: %w", err)
	}
	defer store.Close()

	srv := &httpapi.Server{
		Logger:  c.Logger,
		Cache:   ch,
		Store:   store,
		Options: cfg.pipelineOptions(),
	}
	if cfg.Webhook != "" {
		srv.Notify = httpapi.NewNotifier(cfg.Webhook, c.Logger).Notify
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("listening on %s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

func buildServeCache(ctx context.Context, cfg serveConfig) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.Addr)
	case "none":
		return cache.NewNullCache(), nil
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

func buildServeStore(ctx context.Context, cfg serveConfig) (session.Store, error) {
	switch cfg.Session.Backend {
	case "mongo":
		return session.NewMongoStore(ctx, session.MongoConfig{URI: cfg.Session.URI})
	default:
		return session.NewFileStore("")
	}
}
