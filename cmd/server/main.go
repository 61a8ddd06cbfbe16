package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"namhatta-management/backend/internal/audit"
	auditrepo "namhatta-management/backend/internal/audit/repository"
	"namhatta-management/backend/internal/auth"
	authhandler "namhatta-management/backend/internal/auth/handler"
	"namhatta-management/backend/internal/authz"
	"namhatta-management/backend/internal/authz/policy"
	"namhatta-management/backend/internal/config"
	"namhatta-management/backend/internal/db"
	healthhandler "namhatta-management/backend/internal/health/handler"
	namhattahandler "namhatta-management/backend/internal/namhatta/handler"
	namhattarepo "namhatta-management/backend/internal/namhatta/repository"
	"namhatta-management/backend/internal/security"
	"namhatta-management/backend/internal/server"
	"namhatta-management/backend/internal/server/middleware"
	sessionpkg "namhatta-management/backend/internal/session"
	sessionrepo "namhatta-management/backend/internal/session/repository"
	"namhatta-management/backend/internal/telemetry"
	telemetryotel "namhatta-management/backend/internal/telemetry/otel"
	"namhatta-management/backend/internal/telemetry/producer"
	userrepo "namhatta-management/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "namhatta-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	var emitter telemetry.EventEmitter
	if kafkaProducer != nil {
		emitter = kafkaProducer
		defer kafkaProducer.Close()
	} else {
		emitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}

	evaluator, err := policy.NewOPAEvaluator()
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRegistry(conn)
	namhattas := namhattarepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn), middleware.ClientIPFromContext)

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.TokenTTL())
	scopes := authz.NewScopeResolver(namhattas)
	authService := auth.NewService(users, sessions, hasher, tokens, scopes, auditLogger, emitter)

	handler := server.NewHandler(server.Deps{
		Auth:          authhandler.New(authService, tokens, cfg.CookieSecure, cfg.TokenTTL()),
		Namhattas:     namhattahandler.New(namhattas),
		Health:        healthhandler.New(conn, evaluator),
		Authenticator: middleware.NewAuthenticator(tokens, sessions, scopes),
		Authorizer:    middleware.NewAuthorizer(evaluator),
		Telemetry:     middleware.NewTelemetry(emitter),
	})

	sweeper := sessionpkg.NewSweeper(sessions, cfg.Retention(), cfg.SweepInterval())
	go sweeper.Run(ctx)

	srv := server.New(cfg.HTTPAddr, handler)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	cancel()

	// Let in-flight async telemetry finish before tearing providers down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
