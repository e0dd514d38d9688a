package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/squadhub/internal/usecase"
)

// Handler exposes the recruiting lifecycle over HTTP. It owns no business
// rules: requests are decoded, validated and delegated to the services.
type Handler struct {
	membershipService   *usecase.MembershipService
	positionService     *usecase.PositionService
	applicationService  *usecase.ApplicationService
	inviteService       *usecase.InviteService
	notificationService *usecase.NotificationService
	sweeperService      *usecase.SweeperService
	reputationService   *usecase.ReputationService

	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(
	membershipService *usecase.MembershipService,
	positionService *usecase.PositionService,
	applicationService *usecase.ApplicationService,
	inviteService *usecase.InviteService,
	notificationService *usecase.NotificationService,
	sweeperService *usecase.SweeperService,
	reputationService *usecase.ReputationService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		membershipService:   membershipService,
		positionService:     positionService,
		applicationService:  applicationService,
		inviteService:       inviteService,
		notificationService: notificationService,
		sweeperService:      sweeperService,
		reputationService:   reputationService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, req any) error {
	if err := h.validator.StructCtx(ctx, req); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
