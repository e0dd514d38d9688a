package notification

import "time"

type Kind string

const (
	KindApplicationReceived  Kind = "application_received"
	KindApplicationApproved  Kind = "application_approved"
	KindApplicationRejected  Kind = "application_rejected"
	KindApplicationExpired   Kind = "application_expired"
	KindApplicationWithdrawn Kind = "application_withdrawn"
	KindInviteReceived       Kind = "invite_received"
	KindInviteAccepted       Kind = "invite_accepted"
	KindInviteDeclined       Kind = "invite_declined"
	KindInviteExpired        Kind = "invite_expired"
	KindInviteCancelled      Kind = "invite_cancelled"
	KindPositionExpired      Kind = "position_expired"
)

// Notification is a side effect of a lifecycle transition. It never drives
// other transitions.
type Notification struct {
	ID          string
	RecipientID string
	Kind        Kind
	Payload     map[string]any
	IsRead      bool
	CreatedAt   time.Time
}
