package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"logo-quiz-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.GameRepository.
// Notes:
//   - Game loops are goroutines, so the games themselves live in a local map.
//   - Redis marks which games are running (with a TTL) so other tooling can see
//     live sessions without reaching into the process.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	games  map[string]*app.Game
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
	}
}

func (s *SessionStore) Add(game *app.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID()] = game
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(game.ID()), "1", s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	return game, ok
}

func (s *SessionStore) Remove(id string) (*app.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, false
	}
	delete(s.games, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
	return game, true
}

func (s *SessionStore) key(id string) string {
	return "game:session:" + id
}
