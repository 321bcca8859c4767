package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/ports/secondary"
)

func TestClosureService_RequestClosure_FewFollowersResolvesImmediately(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	env.seedGrievance(&secondary.GrievanceRecord{ID: "GRV-001", Status: "in_progress"})
	env.follow("GRV-001", "user-1", "user-2")

	state, err := service.RequestClosure(ctx, "GRV-001")
	if err != nil {
		t.Fatalf("RequestClosure failed: %v", err)
	}

	if !state.ResolvedImmediately {
		t.Error("expected immediate resolution with 2 followers")
	}
	if state.PendingClosure {
		t.Error("expected no pending closure window")
	}
	if state.Followers != 2 {
		t.Errorf("expected 2 followers, got %d", state.Followers)
	}

	g, _ := env.store.grievances.GetByID(ctx, "GRV-001")
	if g.Status != "resolved" {
		t.Errorf("expected status resolved, got %s", g.Status)
	}
	if g.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}
	if !g.ClosureApproved {
		t.Error("expected closure_approved on immediate resolution")
	}
}

func TestClosureService_RequestClosure_OpensWindow(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	env.seedGrievance(&secondary.GrievanceRecord{ID: "GRV-001", Status: "in_progress"})
	env.follow("GRV-001", "user-1", "user-2", "user-3", "user-4", "user-5")

	state, err := service.RequestClosure(ctx, "GRV-001")
	if err != nil {
		t.Fatalf("RequestClosure failed: %v", err)
	}

	if state.ResolvedImmediately {
		t.Error("expected a confirmation window, not immediate resolution")
	}
	if !state.PendingClosure {
		t.Error("expected pending closure")
	}
	// floor(5 * 0.6) = 3
	if state.RequiredConfirmations != 3 {
		t.Errorf("expected 3 required confirmations, got %d", state.RequiredConfirmations)
	}
	wantDeadline := env.now.Add(7 * 24 * time.Hour).Format(time.RFC3339)
	if state.Deadline != wantDeadline {
		t.Errorf("expected deadline %s, got %s", wantDeadline, state.Deadline)
	}

	g, _ := env.store.grievances.GetByID(ctx, "GRV-001")
	if !g.PendingClosure {
		t.Error("expected pending_closure persisted")
	}
	if g.Status != "in_progress" {
		t.Errorf("expected lifecycle status untouched, got %s", g.Status)
	}
	if g.RequiredConfirmations != 3 {
		t.Errorf("expected required confirmations persisted, got %d", g.RequiredConfirmations)
	}
}

func TestClosureService_RequestClosure_AlreadyPending(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	env.seedGrievance(&secondary.GrievanceRecord{ID: "GRV-001", PendingClosure: true, RequiredConfirmations: 3})

	_, err := service.RequestClosure(ctx, "GRV-001")
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_RequestClosure_AlreadyResolved(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	env.seedGrievance(&secondary.GrievanceRecord{ID: "GRV-001", Status: "resolved"})

	_, err := service.RequestClosure(ctx, "GRV-001")
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_RequestClosure_NotFound(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()

	_, err := service.RequestClosure(context.Background(), "GRV-404")
	if !errors.Is(err, primary.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// seedPendingClosure stores a grievance with an open confirmation window
// and the given followers.
func seedPendingClosure(env *testEnv, id string, followers ...string) {
	required := int(float64(len(followers)) * 0.6)
	if required < 1 {
		required = 1
	}
	requestedAt := env.now.Add(-24 * time.Hour)
	deadline := requestedAt.Add(7 * 24 * time.Hour)
	env.seedGrievance(&secondary.GrievanceRecord{
		ID:                    id,
		Status:                "in_progress",
		PendingClosure:        true,
		ClosureRequestedAt:    &requestedAt,
		ClosureDeadline:       &deadline,
		RequiredConfirmations: required,
	})
	env.follow(id, followers...)
}

func TestClosureService_SubmitConfirmation(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	seedPendingClosure(env, "GRV-001", "user-1", "user-2", "user-3", "user-4", "user-5")

	result, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001",
		UserID:      "user-1",
		Type:        "confirmed",
	})
	if err != nil {
		t.Fatalf("SubmitConfirmation failed: %v", err)
	}

	if result.Confirmed != 1 {
		t.Errorf("expected 1 confirmed, got %d", result.Confirmed)
	}
	if result.QuorumReached {
		t.Error("expected quorum not yet reached")
	}
	if result.Resolved {
		t.Error("expected grievance not yet resolved")
	}
}

func TestClosureService_SubmitConfirmation_QuorumResolves(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	seedPendingClosure(env, "GRV-001", "user-1", "user-2", "user-3", "user-4", "user-5")

	for _, user := range []string{"user-1", "user-2"} {
		if _, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
			GrievanceID: "GRV-001", UserID: user, Type: "confirmed",
		}); err != nil {
			t.Fatalf("SubmitConfirmation(%s) failed: %v", user, err)
		}
	}

	result, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001", UserID: "user-3", Type: "confirmed",
	})
	if err != nil {
		t.Fatalf("SubmitConfirmation failed: %v", err)
	}

	if !result.QuorumReached {
		t.Error("expected quorum reached at 3 of 3")
	}
	if !result.Resolved {
		t.Error("expected grievance resolved")
	}

	g, _ := env.store.grievances.GetByID(ctx, "GRV-001")
	if g.Status != "resolved" {
		t.Errorf("expected status resolved, got %s", g.Status)
	}
	if g.PendingClosure {
		t.Error("expected closure window cleared")
	}
	if !g.ClosureApproved {
		t.Error("expected closure approved")
	}
	if g.ResolvedAt == nil {
		t.Error("expected resolved_at set")
	}
}

func TestClosureService_SubmitConfirmation_DisputesDoNotResolve(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	seedPendingClosure(env, "GRV-001", "user-1", "user-2", "user-3", "user-4", "user-5")

	for _, user := range []string{"user-1", "user-2", "user-3", "user-4"} {
		result, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
			GrievanceID: "GRV-001", UserID: user, Type: "disputed", Reason: "still broken",
		})
		if err != nil {
			t.Fatalf("SubmitConfirmation(%s) failed: %v", user, err)
		}
		if result.Resolved {
			t.Fatalf("dispute from %s resolved the grievance", user)
		}
	}

	g, _ := env.store.grievances.GetByID(ctx, "GRV-001")
	if g.Status != "in_progress" {
		t.Errorf("expected status in_progress, got %s", g.Status)
	}
	if !g.PendingClosure {
		t.Error("expected window still open")
	}
}

func TestClosureService_SubmitConfirmation_NonFollower(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	seedPendingClosure(env, "GRV-001", "user-1", "user-2", "user-3")

	_, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001", UserID: "stranger", Type: "confirmed",
	})
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_SubmitConfirmation_Duplicate(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	seedPendingClosure(env, "GRV-001", "user-1", "user-2", "user-3")

	if _, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "confirmed",
	}); err != nil {
		t.Fatalf("first SubmitConfirmation failed: %v", err)
	}

	_, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "disputed",
	})
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_SubmitConfirmation_NoPendingClosure(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	env.seedGrievance(&secondary.GrievanceRecord{ID: "GRV-001"})
	env.follow("GRV-001", "user-1")

	_, err := service.SubmitConfirmation(ctx, primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "confirmed",
	})
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_SubmitConfirmation_InvalidType(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()

	_, err := service.SubmitConfirmation(context.Background(), primary.SubmitConfirmationRequest{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "maybe",
	})
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_EvaluateQuorum(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	seedPendingClosure(env, "GRV-001", "user-1", "user-2", "user-3", "user-4", "user-5")
	for i, user := range []string{"user-1", "user-2", "user-3"} {
		_ = env.store.confirmations.Create(ctx, &secondary.ConfirmationRecord{
			ID: string(rune('a' + i)), GrievanceID: "GRV-001", UserID: user, Type: "confirmed",
		})
	}

	result, err := service.EvaluateQuorum(ctx, "GRV-001")
	if err != nil {
		t.Fatalf("EvaluateQuorum failed: %v", err)
	}
	if !result.QuorumReached || !result.Resolved {
		t.Errorf("expected quorum reached and resolved, got %+v", result)
	}
}

func TestClosureService_EvaluateQuorum_NoWindow(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	env.seedGrievance(&secondary.GrievanceRecord{ID: "GRV-001"})

	_, err := service.EvaluateQuorum(ctx, "GRV-001")
	if !errors.Is(err, primary.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestClosureService_CheckTimeouts(t *testing.T) {
	env := newTestEnv()
	service := env.closureService()
	ctx := context.Background()

	// Expired window: requested 8 days ago.
	expiredAt := env.now.Add(-8 * 24 * time.Hour)
	expiredDeadline := expiredAt.Add(7 * 24 * time.Hour)
	env.seedGrievance(&secondary.GrievanceRecord{
		ID:                    "GRV-001",
		Status:                "in_progress",
		PendingClosure:        true,
		ClosureRequestedAt:    &expiredAt,
		ClosureDeadline:       &expiredDeadline,
		RequiredConfirmations: 3,
	})

	// Live window: requested yesterday.
	liveAt := env.now.Add(-24 * time.Hour)
	liveDeadline := liveAt.Add(7 * 24 * time.Hour)
	env.seedGrievance(&secondary.GrievanceRecord{
		ID:                    "GRV-002",
		Status:                "escalated",
		PendingClosure:        true,
		ClosureRequestedAt:    &liveAt,
		ClosureDeadline:       &liveDeadline,
		RequiredConfirmations: 2,
	})

	reopened, err := service.CheckTimeouts(ctx)
	if err != nil {
		t.Fatalf("CheckTimeouts failed: %v", err)
	}
	if reopened != 1 {
		t.Errorf("expected 1 reopened window, got %d", reopened)
	}

	expired, _ := env.store.grievances.GetByID(ctx, "GRV-001")
	if expired.PendingClosure {
		t.Error("expected expired window cleared")
	}
	if expired.Status != "in_progress" {
		t.Errorf("expected lifecycle status untouched, got %s", expired.Status)
	}
	if expired.ClosureDeadline != nil || expired.ClosureRequestedAt != nil {
		t.Error("expected closure timestamps cleared")
	}
	if expired.RequiredConfirmations != 0 {
		t.Errorf("expected required confirmations reset, got %d", expired.RequiredConfirmations)
	}

	live, _ := env.store.grievances.GetByID(ctx, "GRV-002")
	if !live.PendingClosure {
		t.Error("expected live window untouched")
	}
}
