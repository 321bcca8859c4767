package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/nivaran/internal/adapters/sqlite"
	"github.com/example/nivaran/internal/ports/secondary"
)

func TestConfirmationRepository_CreateAndCounts(t *testing.T) {
	database := setupTestDB(t)
	seedJurisdiction(t, database, "JUR-001", "district")
	seedGrievance(t, database, &secondary.GrievanceRecord{ID: "GRV-001"})
	repo := sqlite.NewConfirmationRepository(database)
	ctx := context.Background()

	responses := []*secondary.ConfirmationRecord{
		{GrievanceID: "GRV-001", UserID: "user-1", Type: "confirmed"},
		{GrievanceID: "GRV-001", UserID: "user-2", Type: "confirmed"},
		{GrievanceID: "GRV-001", UserID: "user-3", Type: "disputed", Reason: "pothole still there"},
	}
	for _, c := range responses {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if c.ID == "" {
			t.Error("expected Create to assign an ID")
		}
	}

	counts, err := repo.Counts(ctx, "GRV-001")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Confirmed != 2 || counts.Disputed != 1 {
		t.Errorf("expected 2 confirmed and 1 disputed, got %+v", counts)
	}
}

func TestConfirmationRepository_Create_Duplicate(t *testing.T) {
	database := setupTestDB(t)
	seedJurisdiction(t, database, "JUR-001", "district")
	seedGrievance(t, database, &secondary.GrievanceRecord{ID: "GRV-001"})
	repo := sqlite.NewConfirmationRepository(database)
	ctx := context.Background()

	if err := repo.Create(ctx, &secondary.ConfirmationRecord{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "confirmed",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repo.Create(ctx, &secondary.ConfirmationRecord{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "disputed",
	})
	if !errors.Is(err, secondary.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestConfirmationRepository_Exists(t *testing.T) {
	database := setupTestDB(t)
	seedJurisdiction(t, database, "JUR-001", "district")
	seedGrievance(t, database, &secondary.GrievanceRecord{ID: "GRV-001"})
	repo := sqlite.NewConfirmationRepository(database)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "GRV-001", "user-1")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected no response yet")
	}

	if err := repo.Create(ctx, &secondary.ConfirmationRecord{
		GrievanceID: "GRV-001", UserID: "user-1", Type: "confirmed",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, _ = repo.Exists(ctx, "GRV-001", "user-1")
	if !exists {
		t.Error("expected response recorded")
	}
}

func TestConfirmationRepository_Counts_Empty(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewConfirmationRepository(database)

	counts, err := repo.Counts(context.Background(), "GRV-001")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Confirmed != 0 || counts.Disputed != 0 {
		t.Errorf("expected zero counts, got %+v", counts)
	}
}
