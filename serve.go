package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"loan-qualifier/config"
	httpLayer "loan-qualifier/http"
	"loan-qualifier/repository"
	"loan-qualifier/service"
)

func (a *app) serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API",
		Action: a.serve,
	}
}

func (a *app) serve(ctx context.Context, _ *cli.Command) error {
	bundle, err := a.loadBundle()
	if err != nil {
		return err
	}

	cache, closeCache := a.newCache(ctx)
	defer closeCache()

	decisions, closeDecisions, err := a.newDecisionRepository()
	if err != nil {
		return err
	}
	defer closeDecisions()

	stage1, stage2 := stages(bundle)
	qualificationService := service.NewQualificationService(
		stage1, stage2, cache, decisions,
		service.WithLogger(a.logger),
		service.WithFingerprint(bundle.Fingerprint()),
		service.WithNormalizeOptions(service.NormalizeOptions{
			ImputeMissing: a.cfg.Validation.ImputeMissing,
		}),
	)
	handler := httpLayer.NewQualificationHandler(qualificationService, a.logger)

	var limiter *httpLayer.RateLimiter
	if a.cfg.RateLimit.Capacity > 0 {
		limiter = httpLayer.NewRateLimiter(a.cfg.RateLimit.Capacity, a.cfg.RateLimit.Window)
		defer limiter.Stop()
	}

	server := &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: httpLayer.NewRouter(handler, httpLayer.RouterConfig{
			AllowedOrigins:    a.cfg.CORS.AllowedOrigins,
			RateLimiter:       limiter,
			TrustProxyHeaders: a.cfg.Server.TrustProxyHeaders,
			Logger:            a.logger,
		}),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-quit.Done():
		a.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("error during server shutdown", "error", err)
		return err
	}

	a.logger.Info("server exited")
	return nil
}

// newCache builds the configured result cache. An unreachable redis is
// logged but not fatal since the cache is optional.
func (a *app) newCache(ctx context.Context) (repository.CacheRepository, func()) {
	switch a.cfg.Cache.Backend {
	case config.CacheRedis:
		c := repository.NewRedisCache(a.cfg.Cache.RedisAddr, a.cfg.Cache.TTL, a.logger)
		if err := c.Ping(ctx); err != nil {
			a.logger.Warn("redis not reachable, results will not be cached until it is",
				"addr", a.cfg.Cache.RedisAddr, "error", err)
		}
		return c, func() { _ = c.Close() }
	case config.CacheMemory:
		return repository.NewMemoryCache(a.cfg.Cache.TTL), func() {}
	default:
		return repository.NoopCache{}, func() {}
	}
}

func (a *app) newDecisionRepository() (repository.DecisionRepository, func(), error) {
	if a.cfg.Audit.Backend == config.AuditSQLite {
		repo, err := repository.NewDecisionRepositorySQLite(a.cfg.Audit.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				a.logger.Warn("error closing decision store", "error", err)
			}
		}, nil
	}
	return repository.NewDecisionRepositoryMemory(a.cfg.Audit.MemoryCapacity), func() {}, nil
}
