// Package bootstrap wires all dependencies and starts the gateway.
// Implementations are code, so serving is done by embedding: the host
// program builds its dispatch routes and hands them to New.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/wiregate/adapters/clock"
	"github.com/artpar/wiregate/adapters/hasher"
	"github.com/artpar/wiregate/adapters/httpserver"
	"github.com/artpar/wiregate/adapters/idgen"
	"github.com/artpar/wiregate/adapters/metrics"
	"github.com/artpar/wiregate/adapters/schema"
	"github.com/artpar/wiregate/adapters/sqlite"
	"github.com/artpar/wiregate/config"
	"github.com/artpar/wiregate/core/dispatch"
)

// App represents the running gateway.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Router     *dispatch.Router

	holder *config.Holder
}

// New wires the gateway from a loaded configuration and the host's routes.
func New(cfg *config.Config, routes []dispatch.Route) (*App, error) {
	a := &App{Logger: cfg.Logger()}

	if err := a.init(cfg, routes); err != nil {
		return nil, err
	}
	return a, nil
}

// NewWithHotReload wires the gateway from a config file and watches it for
// changes. Only reloadable fields (logging, auth keys) take effect without
// a restart.
func NewWithHotReload(path string, routes []dispatch.Route) (*App, error) {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	holder, err := config.NewHolder(path, bootLogger)
	if err != nil {
		return nil, err
	}

	a := &App{Logger: holder.Get().Logger(), holder: holder}
	if err := a.init(holder.Get(), routes); err != nil {
		return nil, err
	}

	holder.OnChange(func(cfg *config.Config) {
		a.Logger = cfg.Logger()
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
	})
	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

func (a *App) init(cfg *config.Config, routes []dispatch.Route) error {
	router, err := dispatch.NewRouter(routes, dispatch.WithLogger(a.Logger))
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}
	a.Router = router

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	opts := []httpserver.Option{}
	if a.Metrics != nil {
		opts = append(opts, httpserver.WithMetrics(a.Metrics))
	}

	if len(cfg.Auth.KeyHashes) > 0 {
		hashes := make([][]byte, len(cfg.Auth.KeyHashes))
		for i, h := range cfg.Auth.KeyHashes {
			hashes[i] = []byte(h)
		}
		opts = append(opts, httpserver.WithKeyAuth(hasher.NewBcrypt(cfg.Auth.BcryptCost), hashes))
	}

	if cfg.Database.DSN != "" {
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return fmt.Errorf("migrate database: %w", err)
		}
		a.DB = db
		opts = append(opts, httpserver.WithCallLog(sqlite.NewCallLogStore(db), idgen.UUID{}, clock.Real{}))
	}

	if cfg.Features.Dir != "" {
		a.checkDefinitions(cfg.Features.Dir)
	}

	handler := httpserver.New(router, a.Logger, opts...)
	a.HTTPServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	for _, name := range router.Features() {
		a.Logger.Info().Str("feature", name).Msg("registered feature")
	}
	return nil
}

// checkDefinitions cross-checks the published definition files against the
// registered routes, so a definition whose feature was never wired is
// noticed at startup rather than by a failing caller.
func (a *App) checkDefinitions(dir string) {
	features, err := schema.ParseDir(dir)
	if err != nil {
		a.Logger.Warn().Err(err).Str("dir", dir).Msg("feature definitions unreadable")
		return
	}

	for _, f := range features {
		route, ok := a.Router.Route(f.Name())
		if !ok {
			a.Logger.Warn().Str("feature", f.Name()).Msg("definition file has no registered route")
			continue
		}
		for _, method := range f.Methods() {
			if _, ok := route.Feature().Callable(method); !ok {
				a.Logger.Warn().
					Str("feature", f.Name()).
					Str("method", method).
					Msg("definition declares a method the route does not")
			}
		}
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown drains the server and closes resources.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("server shutdown")
	}

	if a.holder != nil {
		a.holder.Stop()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}
