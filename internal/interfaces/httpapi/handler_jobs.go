package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/squadhub/internal/usecase"
)

// RunExpirationSweep is invoked by the scheduler, never by end users. The
// route sits behind RequireInternalJobToken.
func (h *Handler) RunExpirationSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpirationSweep")
	defer span.End()

	result, err := h.sweeperService.SweepExpirations(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RefreshMyReputation pulls a fresh score for the caller from the reputation
// provider so a recently promoted user does not wait for the nightly refresh.
func (h *Handler) RefreshMyReputation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshMyReputation")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	if h.reputationService == nil {
		writeError(ctx, w, fmt.Errorf("%w: reputation provider is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	refreshed, err := h.reputationService.RefreshReputation(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"score": refreshed.Score,
		"tier":  refreshed.Tier.String(),
	})
}
