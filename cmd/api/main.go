package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"swiftride.org/internal/auth"
	"swiftride.org/internal/config"
	"swiftride.org/internal/events"
	"swiftride.org/internal/httpapi"
	"swiftride.org/internal/obs"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("SWIFTRIDE_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Credential store and ledger: Postgres when a DSN is configured,
	// otherwise in-memory (local development only — revocations do not
	// survive a restart).
	var (
		db    *sql.DB
		store auth.Store
	)
	if cfg.PGDSN != "" {
		db, err = sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		pg := auth.NewPGStore(db)
		migrateCtx, migrateCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := pg.Migrate(migrateCtx); err != nil {
			migrateCancel()
			log.Fatalf("migrate: %v", err)
		}
		migrateCancel()
		store = pg
	} else {
		log.Println("no SWIFTRIDE_PG_DSN set, using in-memory store")
		store = auth.NewMemoryStore()
	}

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	opts := []auth.ServiceOption{}
	if cfg.AMQPURL != "" {
		pub, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("amqp: %v", err)
		}
		defer pub.Close()
		opts = append(opts, auth.WithEvents(pub))
	}
	svc := auth.NewService(store, codec, opts...)

	sweeper := auth.NewSweeper(store.Ledger(), cfg.TokenTTL, cfg.SweepInterval)
	go sweeper.Run(ctx)

	api := httpapi.New(svc, httpapi.ReadyProbe{DB: db}, version,
		httpapi.WithRateLimit(cfg.RateBurst, cfg.RatePerSec))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting swiftride-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
