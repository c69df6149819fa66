// Package server boots the whole backend: configuration, database,
// cache, storage, migrations, event listeners and the HTTP (plus
// optional gRPC) servers.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/matjarhq/matjar/app/listeners"
	"github.com/matjarhq/matjar/app/routes"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/cache"
	"github.com/matjarhq/matjar/pkg/database"
	"github.com/matjarhq/matjar/pkg/event"
	pkggrpc "github.com/matjarhq/matjar/pkg/grpc"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/metrics"
	"github.com/matjarhq/matjar/pkg/middleware"
	"github.com/matjarhq/matjar/pkg/migration"
	"github.com/matjarhq/matjar/pkg/reqid"
	"github.com/matjarhq/matjar/pkg/router"
	"github.com/matjarhq/matjar/pkg/storage"
	"github.com/matjarhq/matjar/pkg/ws"
)

const shutdownTimeout = 10 * time.Second

// Start boots every subsystem and blocks until SIGINT/SIGTERM, then
// drains in-flight requests before returning.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		// The backend degrades to uncached listing; no reason to refuse
		// to boot.
		logger.Warn("server: redis unavailable, caching disabled", "error", err)
	}
	storage.Connect()

	if err := migration.New(database.DB).Run(); err != nil {
		return err
	}

	listeners.Register()
	go ws.CatalogHub.Run()

	r := router.New()
	r.Use(
		metrics.Middleware(),
		reqid.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
	)
	routes.RegisterAPI(r)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcSrv *grpc.Server
	if port := config.GRPCPort(); port != "" {
		s, _, err := pkggrpc.Start(port)
		if err != nil {
			logger.Warn("server: grpc listener failed", "port", port, "error", err)
		} else {
			grpcSrv = s
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("server: shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server: shutdown", "error", err)
	}
	pkggrpc.Stop(grpcSrv)
	event.Flush()
	logger.Close()
	return nil
}
