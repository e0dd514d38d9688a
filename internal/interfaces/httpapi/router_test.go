package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/squadhub/internal/domain/user"
	"github.com/riskibarqy/squadhub/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/squadhub/internal/usecase"
)

type routerSeqIDGenerator struct{ next int }

func (g *routerSeqIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("id-%03d", g.next), nil
}

const testJobToken = "job-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	store.SeedUser(user.User{ID: "user-alice", DisplayName: "Alice", Reputation: user.Reputation{Score: 900, Tier: user.TierGold}})
	store.SeedUser(user.User{ID: "user-bob", DisplayName: "Bob", Reputation: user.Reputation{Score: 720, Tier: user.TierGold}})

	idGen := &routerSeqIDGenerator{}
	notifier := usecase.NewNotifier(store.Notifications(), usecase.NopPublisher{}, idGen, nil)

	handler := NewHandler(
		usecase.NewMembershipService(store.Squads(), store.Users(), idGen, nil),
		usecase.NewPositionService(store.Positions(), store.Squads(), idGen, nil),
		usecase.NewApplicationService(store.Applications(), store.Positions(), store.Squads(), store.Users(), notifier, idGen, nil),
		usecase.NewInviteService(store.Invites(), store.Squads(), store.Users(), notifier, idGen, nil),
		usecase.NewNotificationService(store.Notifications(), nil),
		usecase.NewSweeperService(store.Applications(), store.Invites(), store.Positions(), store.Squads(), notifier, nil),
		nil,
		nil,
	)

	verifier := &stubVerifier{principals: map[string]user.Principal{
		"token-alice": {UserID: "user-alice", Email: "alice@example.com"},
		"token-bob":   {UserID: "user-bob", Email: "bob@example.com"},
	}}

	return NewRouter(handler, verifier, nil, []string{"*"}, testJobToken)
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal %s %s response: %v", method, path, err)
		}
	}

	return rec.Code, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()

	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in envelope, got %v", envelope)
	}
	return data
}

func TestRouter_ApplicationLifecycle(t *testing.T) {
	router := newTestRouter(t)

	code, envelope := doJSON(t, router, http.MethodPost, "/v1/squads", "token-alice", `{"name":"Night Watch"}`)
	if code != http.StatusCreated {
		t.Fatalf("create squad: expected 201, got %d (%v)", code, envelope)
	}
	squadID, _ := dataOf(t, envelope)["id"].(string)
	if squadID == "" {
		t.Fatal("expected squad id in response")
	}

	code, envelope = doJSON(t, router, http.MethodPost, "/v1/squads/"+squadID+"/positions", "token-alice",
		`{"role":"healer","minTier":"silver","capacity":1}`)
	if code != http.StatusCreated {
		t.Fatalf("create position: expected 201, got %d (%v)", code, envelope)
	}
	positionID, _ := dataOf(t, envelope)["id"].(string)

	code, envelope = doJSON(t, router, http.MethodGet, "/v1/positions/"+positionID+"/eligibility", "token-bob", "")
	if code != http.StatusOK {
		t.Fatalf("check eligibility: expected 200, got %d (%v)", code, envelope)
	}
	if eligible, _ := dataOf(t, envelope)["eligible"].(bool); !eligible {
		t.Fatalf("expected bob to be eligible, got %v", envelope)
	}

	code, envelope = doJSON(t, router, http.MethodPost, "/v1/positions/"+positionID+"/applications", "token-bob", "")
	if code != http.StatusCreated {
		t.Fatalf("apply: expected 201, got %d (%v)", code, envelope)
	}
	applicationID, _ := dataOf(t, envelope)["id"].(string)

	code, envelope = doJSON(t, router, http.MethodPost, "/v1/applications/"+applicationID+"/approve", "token-bob", "")
	if code != http.StatusForbidden {
		t.Fatalf("approve by applicant: expected 403, got %d (%v)", code, envelope)
	}

	code, envelope = doJSON(t, router, http.MethodPost, "/v1/applications/"+applicationID+"/approve", "token-alice", "")
	if code != http.StatusOK {
		t.Fatalf("approve by captain: expected 200, got %d (%v)", code, envelope)
	}
	if closed, _ := dataOf(t, envelope)["positionClosed"].(bool); !closed {
		t.Fatalf("expected single-slot position to close on approval, got %v", envelope)
	}

	code, envelope = doJSON(t, router, http.MethodGet, "/v1/squads/me", "token-bob", "")
	if code != http.StatusOK {
		t.Fatalf("get my squad: expected 200, got %d (%v)", code, envelope)
	}
	if got, _ := dataOf(t, envelope)["id"].(string); got != squadID {
		t.Fatalf("expected bob's squad %s, got %s", squadID, got)
	}

	code, envelope = doJSON(t, router, http.MethodGet, "/v1/notifications", "token-bob", "")
	if code != http.StatusOK {
		t.Fatalf("list notifications: expected 200, got %d (%v)", code, envelope)
	}
	if list, ok := envelope["data"].([]any); !ok || len(list) == 0 {
		t.Fatalf("expected approval notification for bob, got %v", envelope)
	}
}

func TestRouter_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	code, envelope := doJSON(t, router, http.MethodPost, "/v1/squads", "token-alice",
		`{"name":"Night Watch","bogus":true}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d (%v)", code, envelope)
	}
}

func TestRouter_PublicPositionListNeedsNoAuth(t *testing.T) {
	router := newTestRouter(t)

	code, envelope := doJSON(t, router, http.MethodGet, "/v1/positions", "", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d (%v)", code, envelope)
	}
}

func TestRouter_SweepJobRequiresInternalToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sweep-expirations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sweep-expirations", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with job token, got %d", rec.Code)
	}

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal sweep response: %v", err)
	}
	data := dataOf(t, envelope)
	for _, key := range []string{"expiredApplications", "expiredInvites", "expiredPositions"} {
		if _, ok := data[key]; !ok {
			t.Fatalf("expected %s in sweep result, got %v", key, envelope)
		}
	}
}
