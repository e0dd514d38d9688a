package httpapi

import (
	"time"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/notification"
	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/usecase"
)

type squadDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CaptainID string `json:"captainId"`
	MaxSize   int    `json:"maxSize"`
	CreatedAt string `json:"createdAt"`
}

type memberDTO struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	JoinedAt string `json:"joinedAt"`
}

type squadDetailDTO struct {
	squadDTO
	Members []memberDTO `json:"members"`
}

type positionDTO struct {
	ID          string   `json:"id"`
	SquadID     string   `json:"squadId"`
	Role        string   `json:"role"`
	Benefits    []string `json:"benefits,omitempty"`
	MinTier     string   `json:"minTier"`
	IsOpen      bool     `json:"isOpen"`
	Capacity    int      `json:"capacity"`
	FilledCount int      `json:"filledCount"`
	ExpiresAt   string   `json:"expiresAt"`
	CreatedAt   string   `json:"createdAt"`
}

type applicationDTO struct {
	ID          string  `json:"id"`
	PositionID  string  `json:"positionId"`
	ApplicantID string  `json:"applicantId"`
	Status      string  `json:"status"`
	ExpiresAt   string  `json:"expiresAt"`
	CreatedAt   string  `json:"createdAt"`
	DecidedAt   *string `json:"decidedAt,omitempty"`
}

type approveResultDTO struct {
	Application    applicationDTO `json:"application"`
	FilledCount    int            `json:"filledCount"`
	PositionClosed bool           `json:"positionClosed"`
}

type inviteDTO struct {
	ID        string  `json:"id"`
	SquadID   string  `json:"squadId"`
	InviterID string  `json:"inviterId"`
	InviteeID string  `json:"inviteeId"`
	Status    string  `json:"status"`
	ExpiresAt string  `json:"expiresAt"`
	CreatedAt string  `json:"createdAt"`
	DecidedAt *string `json:"decidedAt,omitempty"`
}

type notificationDTO struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	IsRead    bool           `json:"isRead"`
	CreatedAt string         `json:"createdAt"`
}

type eligibilityDTO struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := formatTime(*t)
	return &formatted
}

func toSquadDTO(record squad.Squad) squadDTO {
	return squadDTO{
		ID:        record.ID,
		Name:      record.Name,
		CaptainID: record.CaptainID,
		MaxSize:   record.MaxSize,
		CreatedAt: formatTime(record.CreatedAt),
	}
}

func toSquadDetailDTO(detail usecase.SquadDetail) squadDetailDTO {
	members := make([]memberDTO, 0, len(detail.Members))
	for _, m := range detail.Members {
		members = append(members, memberDTO{
			UserID:   m.UserID,
			Role:     string(m.Role),
			JoinedAt: formatTime(m.JoinedAt),
		})
	}

	return squadDetailDTO{
		squadDTO: toSquadDTO(detail.Squad),
		Members:  members,
	}
}

func toPositionDTO(record position.Position) positionDTO {
	return positionDTO{
		ID:          record.ID,
		SquadID:     record.SquadID,
		Role:        record.Role,
		Benefits:    record.Benefits,
		MinTier:     record.MinTier.String(),
		IsOpen:      record.IsOpen,
		Capacity:    record.Capacity,
		FilledCount: record.FilledCount,
		ExpiresAt:   formatTime(record.ExpiresAt),
		CreatedAt:   formatTime(record.CreatedAt),
	}
}

func toPositionDTOs(records []position.Position) []positionDTO {
	out := make([]positionDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toPositionDTO(record))
	}
	return out
}

func toApplicationDTO(record application.Application) applicationDTO {
	return applicationDTO{
		ID:          record.ID,
		PositionID:  record.PositionID,
		ApplicantID: record.ApplicantID,
		Status:      string(record.Status),
		ExpiresAt:   formatTime(record.ExpiresAt),
		CreatedAt:   formatTime(record.CreatedAt),
		DecidedAt:   formatTimePtr(record.DecidedAt),
	}
}

func toApplicationDTOs(records []application.Application) []applicationDTO {
	out := make([]applicationDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toApplicationDTO(record))
	}
	return out
}

func toInviteDTO(record invite.Invite) inviteDTO {
	return inviteDTO{
		ID:        record.ID,
		SquadID:   record.SquadID,
		InviterID: record.InviterID,
		InviteeID: record.InviteeID,
		Status:    string(record.Status),
		ExpiresAt: formatTime(record.ExpiresAt),
		CreatedAt: formatTime(record.CreatedAt),
		DecidedAt: formatTimePtr(record.DecidedAt),
	}
}

func toInviteDTOs(records []invite.Invite) []inviteDTO {
	out := make([]inviteDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toInviteDTO(record))
	}
	return out
}

func toNotificationDTO(record notification.Notification) notificationDTO {
	return notificationDTO{
		ID:        record.ID,
		Kind:      string(record.Kind),
		Payload:   record.Payload,
		IsRead:    record.IsRead,
		CreatedAt: formatTime(record.CreatedAt),
	}
}

func toNotificationDTOs(records []notification.Notification) []notificationDTO {
	out := make([]notificationDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toNotificationDTO(record))
	}
	return out
}
