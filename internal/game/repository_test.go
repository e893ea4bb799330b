package game

import (
	"testing"

	"quiz-arena/internal/models"
)

func TestOnlyOneActiveSessionPerClientAndGame(t *testing.T) {
	db := newTestDB(t)
	g := seedGame(t, db)
	repo := NewRepository(db)

	first, err := repo.StartSession(1, g.ID, testClock())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// The partial unique index must reject a second in-progress row even when
	// it is inserted directly, bypassing the check-then-insert.
	dup := models.GameSession{
		ClientID:  1,
		GameID:    g.ID,
		Status:    models.SessionInProgress,
		StartedAt: testClock(),
	}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("second in-progress session for the same pair was inserted")
	}

	// StartSession racing against an existing row hands back that row.
	again, err := repo.StartSession(1, g.ID, testClock())
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected session %d, got %d", first.ID, again.ID)
	}

	// Once the session completes a fresh one is allowed.
	err = db.Model(first).Updates(map[string]interface{}{"status": models.SessionCompleted}).Error
	if err != nil {
		t.Fatalf("completing session failed: %v", err)
	}
	fresh, err := repo.StartSession(1, g.ID, testClock())
	if err != nil {
		t.Fatalf("start after completion failed: %v", err)
	}
	if fresh.ID == first.ID {
		t.Fatalf("expected a new session after completion")
	}
}
