// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"fingate/internal/audit"
	auditkafka "fingate/internal/audit/kafka"
	"fingate/internal/jwttoken"
	onbhandler "fingate/internal/onboarding/handler"
	"fingate/internal/onboarding/lock"
	onbmetrics "fingate/internal/onboarding/metrics"
	"fingate/internal/onboarding/provider"
	"fingate/internal/onboarding/service"
	onbstore "fingate/internal/onboarding/store"
	"fingate/internal/organization"
	"fingate/internal/platform/config"
	"fingate/internal/platform/httpserver"
	"fingate/internal/platform/logger"
	platformpg "fingate/internal/platform/postgres"
	platformredis "fingate/internal/platform/redis"
	httptransport "fingate/internal/transport/http"
	id "fingate/pkg/domain"
	"fingate/pkg/platform/middleware"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]httptransport.HealthCheck{}

	// Stores: PostgreSQL when a DSN is configured, in-memory for dev.
	var (
		db       *sql.DB
		orgs     organization.Store
		sessions onbstore.SessionStore
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = platformpg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		orgs = organization.NewPostgresStore(db)
		sessions = onbstore.NewPostgresStore(db)
		health["postgres"] = db.PingContext
	} else {
		log.Warn("no POSTGRES_DSN configured, using in-memory stores")
		orgs = organization.NewInMemoryStore()
		sessions = onbstore.NewInMemoryStore()
	}

	// Lock: Redis when configured so replicas serialize per organization.
	var orgLock lock.OrgLock = lock.NewInMemoryLock()
	redisClient, err := platformredis.New(cfg.RedisAddr)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		orgLock = lock.NewRedisLock(redisClient.Client)
		health["redis"] = redisClient.Health
	}

	metrics := onbmetrics.New()

	// Audit trail: Kafka when brokers are configured, otherwise a channel
	// worker draining into the store.
	var auditSink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := auditkafka.NewPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		auditSink = publisher
	} else {
		var backing audit.Sink
		if db != nil {
			backing = audit.NewPostgresStore(db)
		} else {
			backing = audit.NewInMemoryStore()
		}
		inbox := make(chan audit.Event, 256)
		worker := audit.NewWorker(backing, inbox, log)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit worker stopped", "error", err)
			}
		}()
		auditSink = audit.NewChannelSink(inbox)
	}
	emitter := audit.NewEmitter(auditSink, log, metrics.AuditFailures.Inc)

	providerClient := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderTimeout)

	callbackURL := cfg.CallbackBaseURL + "/webhooks/verification"
	opts := []service.Option{
		service.WithAuditEmitter(emitter),
		service.WithLock(orgLock),
		service.WithMetrics(metrics),
		service.WithLogger(log),
		service.WithDetailFetchDelay(cfg.DetailFetchDelay),
	}
	if cfg.DevMode {
		opts = append(opts, service.WithInsecureCallbacks())
	}
	svc := service.NewService(sessions, orgs, providerClient, callbackURL, opts...)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "fingate")
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Onboarding:  onbhandler.New(svc, log, cfg.WebhookSecretHash),
		RequireAuth: middleware.RequireAuth(tokens, log),
		Health:      health,
	})

	if cfg.DevMode && cfg.PostgresDSN == "" {
		seedDevOrganization(ctx, orgs, tokens, log)
	}

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("starting fingate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// seedDevOrganization creates a known organization and prints a usable token
// so the API can be exercised without a registration flow.
func seedDevOrganization(ctx context.Context, orgs organization.Store, tokens *jwttoken.Service, log *slog.Logger) {
	owner := id.UserID(uuid.New())
	orgID := id.OrganizationID(uuid.New())
	if err := orgs.Create(ctx, &organization.Organization{
		ID:               orgID,
		Kind:             id.EntityPersonal,
		OwnerUserID:      owner,
		Name:             "Dev Organization",
		OnboardingStatus: id.StatusNotStarted,
	}); err != nil {
		log.Warn("dev seed failed", "error", err)
		return
	}
	token, err := tokens.GenerateAccessToken(owner, 24*time.Hour)
	if err != nil {
		log.Warn("dev token generation failed", "error", err)
		return
	}
	log.Info("seeded dev organization", "organization_id", orgID, "token", token)
}
