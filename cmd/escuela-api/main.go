// main is the entry point of the Escuela API.
//
// STARTUP SEQUENCE:
//  1. Load an optional .env file, then the YAML configuration
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Build the media store and notifier
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal arrives, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/escuela-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/escuela-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/config"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/http/handlers/alumno"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/http/handlers/profesor"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/http/handlers/sesion"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/media"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/notifier"
	"github.com/BryanChCh/api-rest-alumnos-profesores/internal/storage/sqlite"

	"github.com/joho/godotenv"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// A local .env is optional; in containers the variables come from the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)

	log.Info("starting escuela-api",
		slog.String("env", cfg.Env),
		slog.String("version", "3.0.0"),
	)

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// The rest of the code sees only the storage.Storage interface.
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	// ── 4. Media Store and Notifier ───────────────────────────────────────
	// An unreachable object store must not keep the CRUD API from
	// starting; photo uploads simply fail with a 500 until it is back.
	mediaStore, err := media.NewMinioStore(cfg.Media)
	if err != nil {
		log.Error("failed to build media store",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 5*time.Second)
	if err := mediaStore.EnsureBucket(bucketCtx); err != nil {
		log.Warn("object storage unavailable, foto uploads will fail",
			slog.String("endpoint", cfg.Media.Endpoint),
			slog.String("error", err.Error()))
	}
	cancelBucket()

	var notif notifier.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notif = notifier.NewWebhook(cfg.Notifier.Topic, cfg.Notifier.WebhookURL)
	} else {
		log.Warn("no notifier webhook configured, notifications go to the log")
		notif = notifier.NewLog(cfg.Notifier.Topic, log)
	}

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	// Go 1.22 ServeMux: METHOD + pattern, with {id} path values.
	// Handler factories receive their dependencies once, here.
	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("¡Hola! Esta es la raíz de tu API REST."))
	})

	router.HandleFunc("POST /alumnos", alumno.New(storage))
	router.HandleFunc("GET /alumnos", alumno.GetList(storage))
	router.HandleFunc("GET /alumnos/{id}", alumno.GetByID(storage))
	router.HandleFunc("PUT /alumnos/{id}", alumno.Update(storage))
	router.HandleFunc("DELETE /alumnos/{id}", alumno.Delete(storage))
	router.HandleFunc("DELETE /alumnos", alumno.DeleteAll())
	router.HandleFunc("POST /alumnos/{id}/fotoPerfil", alumno.FotoPerfil(storage, mediaStore))
	router.HandleFunc("POST /alumnos/{id}/email", alumno.Email(storage, notif))
	router.HandleFunc("POST /alumnos/{id}/session/login", sesion.Login(storage))
	router.HandleFunc("POST /alumnos/{id}/session/verify", sesion.Verify(storage))
	router.HandleFunc("POST /alumnos/{id}/session/logout", sesion.Logout(storage))

	router.HandleFunc("POST /profesores", profesor.New(storage))
	router.HandleFunc("GET /profesores", profesor.GetList(storage))
	router.HandleFunc("GET /profesores/{id}", profesor.GetByID(storage))
	router.HandleFunc("PUT /profesores/{id}", profesor.Update(storage))
	router.HandleFunc("DELETE /profesores/{id}", profesor.Delete(storage))
	router.HandleFunc("DELETE /profesores", profesor.DeleteAll())

	// ── 6. Create and Start the HTTP Server ───────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Timeouts guard against slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal, then Drain ───────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
