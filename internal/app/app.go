package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squadhub/internal/config"
	"github.com/riskibarqy/squadhub/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/squadhub/internal/infrastructure/notify"
	"github.com/riskibarqy/squadhub/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/squadhub/internal/infrastructure/reputation"
	"github.com/riskibarqy/squadhub/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/squadhub/internal/platform/id"
	"github.com/riskibarqy/squadhub/internal/usecase"
)

// Application bundles the wired HTTP server with the services the entrypoint
// schedules out-of-band, such as the expiration sweeper.
type Application struct {
	Server  *http.Server
	Sweeper *usecase.SweeperService
}

func New(cfg config.Config, db *sqlx.DB, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	userRepo := postgres.NewUserRepository(db)
	squadRepo := postgres.NewSquadRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	idGen := idgen.NewUUIDGenerator()

	var publisher usecase.EventPublisher = usecase.NopPublisher{}
	if cfg.WebhookEnabled {
		webhookPublisher, err := notify.NewWebhookPublisher(notify.WebhookPublisherConfig{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Timeout: cfg.WebhookTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build webhook publisher: %w", err)
		}
		publisher = webhookPublisher
	}
	notifier := usecase.NewNotifier(notificationRepo, publisher, idGen, logger)

	membershipSvc := usecase.NewMembershipService(squadRepo, userRepo, idGen, logger)
	positionSvc := usecase.NewPositionService(positionRepo, squadRepo, idGen, logger)
	applicationSvc := usecase.NewApplicationService(applicationRepo, positionRepo, squadRepo, userRepo, notifier, idGen, logger)
	inviteSvc := usecase.NewInviteService(inviteRepo, squadRepo, userRepo, notifier, idGen, logger)
	notificationSvc := usecase.NewNotificationService(notificationRepo, logger)
	sweeperSvc := usecase.NewSweeperService(applicationRepo, inviteRepo, positionRepo, squadRepo, notifier, logger)

	var reputationSvc *usecase.ReputationService
	if cfg.ReputationEnabled {
		reputationClient := reputation.NewClient(reputation.ClientConfig{
			BaseURL:          cfg.ReputationBaseURL,
			APIKey:           cfg.ReputationAPIKey,
			Timeout:          cfg.ReputationTimeout,
			CacheTTL:         cfg.ReputationCacheTTL,
			FailureThreshold: cfg.ReputationCircuitFailureCount,
			OpenTimeout:      cfg.ReputationCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ReputationCircuitHalfOpenMaxReq,
		})
		reputationSvc = usecase.NewReputationService(userRepo, reputationClient, logger)
	}

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(
		membershipSvc,
		positionSvc,
		applicationSvc,
		inviteSvc,
		notificationSvc,
		sweeperSvc,
		reputationSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &Application{
		Server:  server,
		Sweeper: sweeperSvc,
	}, nil
}

// NewSweeper wires just the expiration sweeper for the standalone cron
// runner, without the HTTP surface.
func NewSweeper(cfg config.Config, db *sqlx.DB, logger *slog.Logger) (*usecase.SweeperService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	squadRepo := postgres.NewSquadRepository(db)
	positionRepo := postgres.NewPositionRepository(db)
	applicationRepo := postgres.NewApplicationRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	idGen := idgen.NewUUIDGenerator()

	var publisher usecase.EventPublisher = usecase.NopPublisher{}
	if cfg.WebhookEnabled {
		webhookPublisher, err := notify.NewWebhookPublisher(notify.WebhookPublisherConfig{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Timeout: cfg.WebhookTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build webhook publisher: %w", err)
		}
		publisher = webhookPublisher
	}
	notifier := usecase.NewNotifier(notificationRepo, publisher, idGen, logger)

	return usecase.NewSweeperService(applicationRepo, inviteRepo, positionRepo, squadRepo, notifier, logger), nil
}
