package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/workshop-grades/internal/api/http"
	"github.com/mind-engage/workshop-grades/internal/applog"
	auth "github.com/mind-engage/workshop-grades/internal/auth/middleware"
	"github.com/mind-engage/workshop-grades/internal/config"
	"github.com/mind-engage/workshop-grades/internal/db"
	"github.com/mind-engage/workshop-grades/internal/rbac"
	"github.com/mind-engage/workshop-grades/internal/runs"
	"github.com/mind-engage/workshop-grades/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger := applog.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Error("gateway stopped", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.Database.Driver), cfg.Database.DSN)
	cancel()
	if err != nil {
		return err
	}
	defer dbh.Close()
	store := runs.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.Storage.DataDir)
	if err != nil {
		return err
	}

	authSvc := auth.NewAuthService(cfg.Auth.HMACSecret, cfg.Auth.TokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	users, err := auth.ParseUsers(cfg.Auth.Users)
	if err != nil {
		return err
	}
	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.Chain{
		auth.AdminCredentials{User: cfg.Auth.AdminUser, PassHash: cfg.Auth.AdminPassHash},
		users,
	}))

	deps := api.RunsDeps{
		Store:          store,
		Blobs:          bs,
		Rosters:        bs,
		Log:            logger,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require(rbac.PermGradesCompute)).
			Post("/runs", api.CreateRunHandler(deps))
		pr.With(rbac.Require(rbac.PermGradesView)).
			Get("/runs", api.ListRunsHandler(store))
		pr.With(rbac.Require(rbac.PermGradesView)).
			Get("/runs/{runID}", api.GetRunHandler(store))
		pr.With(rbac.Require(rbac.PermGradesExport)).
			Get("/runs/{runID}/grades.csv", api.RunCSVHandler(store))
		pr.With(rbac.Require(rbac.PermRunsDelete)).
			Delete("/runs/{runID}", api.DeleteRunHandler(store))

		pr.With(rbac.Require(rbac.PermGradesCompute)).
			Route("/rosters", func(rr chi.Router) { api.MountRosters(rr, bs) })
		pr.With(rbac.Require(rbac.PermGradesExport)).
			Route("/files", func(fr chi.Router) { api.MountFiles(fr, bs) })
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", cfg.Server.HTTPAddr),
			slog.String("mode", string(cfg.Server.Mode)),
			slog.String("db", cfg.Database.Driver),
			slog.String("data_dir", bs.Base()))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutCtx)
}
