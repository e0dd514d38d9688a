package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/squadhub/internal/domain/user"
	"github.com/riskibarqy/squadhub/internal/usecase"
)

type createPositionRequest struct {
	Role     string   `json:"role" validate:"required,min=2,max=64"`
	Benefits []string `json:"benefits" validate:"omitempty,max=10,dive,min=1,max=128"`
	MinTier  string   `json:"minTier" validate:"omitempty,oneof=bronze silver gold platinum"`
	Capacity int      `json:"capacity" validate:"omitempty,min=1,max=20"`
	// ExpiresAt is RFC 3339; the service applies the default window when empty.
	ExpiresAt string `json:"expiresAt" validate:"omitempty"`
}

func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePosition")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	var req createPositionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.CreatePositionInput{
		SquadID:      r.PathValue("squadID"),
		ActingUserID: principal.UserID,
		Role:         req.Role,
		Benefits:     req.Benefits,
		Capacity:     req.Capacity,
	}
	if req.MinTier != "" {
		tier, err := user.ParseTier(req.MinTier)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.MinTier = tier
	}
	if req.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: expiresAt must be RFC 3339: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.ExpiresAt = expiresAt
	}

	created, err := h.positionService.CreatePosition(ctx, input)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toPositionDTO(created))
}

func (h *Handler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClosePosition")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	if err := h.positionService.ClosePosition(ctx, r.PathValue("positionID"), principal.UserID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPosition")
	defer span.End()

	record, err := h.positionService.GetPosition(ctx, r.PathValue("positionID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPositionDTO(record))
}

func (h *Handler) ListOpenPositions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOpenPositions")
	defer span.End()

	records, err := h.positionService.ListOpenPositions(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPositionDTOs(records))
}

func (h *Handler) ListSquadPositions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquadPositions")
	defer span.End()

	records, err := h.positionService.ListSquadPositions(ctx, r.PathValue("squadID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPositionDTOs(records))
}

func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckEligibility")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized))
		return
	}

	result, err := h.applicationService.CheckEligibility(ctx, r.PathValue("positionID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eligibilityDTO{
		Eligible: result.Eligible,
		Reason:   result.Reason,
	})
}
