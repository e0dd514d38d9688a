package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/squadhub/internal/domain/user"
	usermock "github.com/riskibarqy/squadhub/internal/mocks/domain/user"
	usecasemock "github.com/riskibarqy/squadhub/internal/mocks/usecase"
)

func TestReputationService_RefreshReputation_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userRepo := usermock.NewRepository(t)
	client := usecasemock.NewReputationClient(t)

	service := NewReputationService(userRepo, client, nil)
	refreshed := user.Reputation{Score: 845, Tier: user.TierGold}

	userRepo.
		On("GetByID", mock.Anything, "user-bob").
		Return(user.User{ID: "user-bob"}, true, nil).
		Once()
	client.
		On("Fetch", mock.Anything, "user-bob").
		Return(refreshed, nil).
		Once()
	userRepo.
		On("UpdateReputation", mock.Anything, "user-bob", refreshed).
		Return(nil).
		Once()

	got, err := service.RefreshReputation(ctx, "user-bob")
	if err != nil {
		t.Fatalf("refresh reputation: %v", err)
	}
	if got != refreshed {
		t.Fatalf("unexpected reputation: got=%+v want=%+v", got, refreshed)
	}
}

func TestReputationService_RefreshReputation_UserNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	userRepo := usermock.NewRepository(t)
	client := usecasemock.NewReputationClient(t)

	service := NewReputationService(userRepo, client, nil)

	userRepo.
		On("GetByID", mock.Anything, "user-ghost").
		Return(user.User{}, false, nil).
		Once()

	_, err := service.RefreshReputation(context.Background(), "user-ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	client.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestReputationService_RefreshReputation_ProviderDownUsingMockery(t *testing.T) {
	t.Parallel()

	userRepo := usermock.NewRepository(t)
	client := usecasemock.NewReputationClient(t)

	service := NewReputationService(userRepo, client, nil)

	userRepo.
		On("GetByID", mock.Anything, "user-bob").
		Return(user.User{ID: "user-bob"}, true, nil).
		Once()
	client.
		On("Fetch", mock.Anything, "user-bob").
		Return(user.Reputation{}, errors.New("provider timeout")).
		Once()

	_, err := service.RefreshReputation(context.Background(), "user-bob")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	userRepo.AssertNotCalled(t, "UpdateReputation", mock.Anything, mock.Anything, mock.Anything)
}
