package memory

import (
	"testing"

	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	game := app.NewGame(app.NewSession("game-1", app.NewGenerator(domain.NewCatalog(nil)), app.SessionOptions{}), app.GameOptions{})
	defer game.Close()

	store.Add(game)
	if got, ok := store.Get("game-1"); !ok || got != game {
		t.Fatalf("expected game present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 game, got %d", store.Len())
	}

	if _, ok := store.Remove("game-1"); !ok {
		t.Fatalf("expected remove to find game")
	}
	if _, ok := store.Get("game-1"); ok {
		t.Fatalf("expected game removed")
	}
	if _, ok := store.Remove("game-1"); ok {
		t.Fatalf("second remove should miss")
	}
}
