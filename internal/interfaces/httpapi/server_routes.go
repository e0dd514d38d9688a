package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/positions", handler.ListOpenPositions)
	mux.HandleFunc("GET /v1/positions/{positionID}", handler.GetPosition)
	mux.HandleFunc("GET /v1/squads/{squadID}/positions", handler.ListSquadPositions)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedSquadRoutes(mux, handler, verifier)
	registerAuthorizedPositionRoutes(mux, handler, verifier)
	registerAuthorizedApplicationRoutes(mux, handler, verifier)
	registerAuthorizedInviteRoutes(mux, handler, verifier)
	registerAuthorizedNotificationRoutes(mux, handler, verifier)
	registerAuthorizedReputationRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sweep-expirations", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpirationSweep)))
}

func registerAuthorizedSquadRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/squads", RequireAuth(verifier, http.HandlerFunc(handler.CreateSquad)))
	mux.Handle("GET /v1/squads/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMySquad)))
	mux.Handle("GET /v1/squads/{squadID}", RequireAuth(verifier, http.HandlerFunc(handler.GetSquad)))
	mux.Handle("POST /v1/squads/{squadID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveSquad)))
	mux.Handle("POST /v1/squads/{squadID}/transfer-captaincy", RequireAuth(verifier, http.HandlerFunc(handler.TransferCaptaincy)))
}

func registerAuthorizedPositionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/squads/{squadID}/positions", RequireAuth(verifier, http.HandlerFunc(handler.CreatePosition)))
	mux.Handle("POST /v1/positions/{positionID}/close", RequireAuth(verifier, http.HandlerFunc(handler.ClosePosition)))
	mux.Handle("GET /v1/positions/{positionID}/eligibility", RequireAuth(verifier, http.HandlerFunc(handler.CheckEligibility)))
}

func registerAuthorizedApplicationRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/positions/{positionID}/applications", RequireAuth(verifier, http.HandlerFunc(handler.ApplyToPosition)))
	mux.Handle("GET /v1/positions/{positionID}/applications", RequireAuth(verifier, http.HandlerFunc(handler.ListPositionApplications)))
	mux.Handle("GET /v1/applications/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyApplications)))
	mux.Handle("POST /v1/applications/{applicationID}/approve", RequireAuth(verifier, http.HandlerFunc(handler.ApproveApplication)))
	mux.Handle("POST /v1/applications/{applicationID}/reject", RequireAuth(verifier, http.HandlerFunc(handler.RejectApplication)))
	mux.Handle("POST /v1/applications/{applicationID}/withdraw", RequireAuth(verifier, http.HandlerFunc(handler.WithdrawApplication)))
}

func registerAuthorizedInviteRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/squads/{squadID}/invites", RequireAuth(verifier, http.HandlerFunc(handler.SendInvite)))
	mux.Handle("GET /v1/squads/{squadID}/invites", RequireAuth(verifier, http.HandlerFunc(handler.ListSquadInvites)))
	mux.Handle("GET /v1/invites/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyInvites)))
	mux.Handle("POST /v1/invites/{inviteID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptInvite)))
	mux.Handle("POST /v1/invites/{inviteID}/decline", RequireAuth(verifier, http.HandlerFunc(handler.DeclineInvite)))
	mux.Handle("POST /v1/invites/{inviteID}/cancel", RequireAuth(verifier, http.HandlerFunc(handler.CancelInvite)))
}

func registerAuthorizedNotificationRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/notifications", RequireAuth(verifier, http.HandlerFunc(handler.ListNotifications)))
	mux.Handle("GET /v1/notifications/unread-count", RequireAuth(verifier, http.HandlerFunc(handler.GetUnreadCount)))
	mux.Handle("POST /v1/notifications/{notificationID}/read", RequireAuth(verifier, http.HandlerFunc(handler.MarkNotificationRead)))
}

func registerAuthorizedReputationRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/me/reputation/refresh", RequireAuth(verifier, http.HandlerFunc(handler.RefreshMyReputation)))
}
