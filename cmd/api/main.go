package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilisirali/EA/internal/api"
	"github.com/ilisirali/EA/internal/auth"
	"github.com/ilisirali/EA/internal/config"
	"github.com/ilisirali/EA/internal/domain"
	"github.com/ilisirali/EA/internal/events"
	"github.com/ilisirali/EA/internal/geo"
	"github.com/ilisirali/EA/internal/photos"
	persistence "github.com/ilisirali/EA/internal/persistence/postgres"
	"github.com/ilisirali/EA/internal/report"
	"github.com/ilisirali/EA/internal/storage"
	"github.com/ilisirali/EA/internal/translate"
	httptransport "github.com/ilisirali/EA/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	service := domain.NewService(repo, publisher)

	backend := translate.NewClient(cfg.TranslateURL)
	queue := translate.NewQueue(backend,
		translate.WithMinInterval(cfg.TranslateMinInterval),
		translate.WithFailureThreshold(cfg.TranslateMaxFailures),
		translate.WithCooldown(cfg.TranslateCooldown),
		translate.WithCallTimeout(cfg.TranslateTimeout),
	)

	compiler := report.NewCompiler(photos.NewFetcher())
	store := storage.NewClient(cfg.StorageURL, cfg.StorageBucket)
	geocoder := geo.NewClient(cfg.GeocoderURL)

	handler := api.NewHandler(service, queue, backend, compiler, store, geocoder, cfg.SignedURLTTL)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		func(r *http.Request) bool {
			return r.URL.Path == "/healthz" || strings.HasPrefix(r.URL.Path, "/metrics")
		},
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(logger(cors(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("report-service listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
