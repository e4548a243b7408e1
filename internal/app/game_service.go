package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"logo-quiz-service/internal/domain"
)

// GameRepository abstracts where running games are registered (in-memory, Redis, etc).
type GameRepository interface {
	Add(game *Game)
	Get(id string) (*Game, bool)
	Remove(id string) (*Game, bool)
}

// ServiceOptions tunes the game service. Zero values fall back to defaults.
type ServiceOptions struct {
	Countdown       int
	TickInterval    time.Duration
	FeedbackDelay   time.Duration
	LeaderboardSize int
	PersistTimeout  time.Duration
	// EndedRetention keeps a finished game readable before it is evicted.
	EndedRetention time.Duration
	// IdleTimeout evicts a game that has received no command for that long.
	IdleTimeout time.Duration
}

// DefaultServiceOptions is a 30s countdown ticking every
// second and a 400ms pause on the answer feedback.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		Countdown:       DefaultCountdown,
		TickInterval:    time.Second,
		FeedbackDelay:   400 * time.Millisecond,
		LeaderboardSize: DefaultLeaderboardSize,
		PersistTimeout:  5 * time.Second,
		EndedRetention:  time.Minute,
		IdleTimeout:     10 * time.Minute,
	}
}

// GameService contains the game use cases.
type GameService struct {
	catalog domain.Catalog
	games   GameRepository
	scores  *ScoreGateway
	opts    ServiceOptions
	clock   *MonotonicClock
	newID   func() string

	pending sync.WaitGroup
}

func NewGameService(catalog domain.Catalog, games GameRepository, scores *ScoreGateway, opts ServiceOptions) *GameService {
	defaults := DefaultServiceOptions()
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaults.PersistTimeout
	}
	if opts.EndedRetention <= 0 {
		opts.EndedRetention = defaults.EndedRetention
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaults.IdleTimeout
	}
	return &GameService{
		catalog: catalog,
		games:   games,
		scores:  scores,
		opts:    opts,
		clock:   NewMonotonicClock(time.Now),
		newID:   uuid.NewString,
	}
}

// StartGame creates a session for identity in mode and draws the first question.
// The game is evicted EndedRetention after it ends, or after IdleTimeout without
// a command.
func (s *GameService) StartGame(ctx context.Context, identity domain.Identity, mode domain.Mode) (domain.SessionState, error) {
	id := s.newID()
	session := NewSession(id, NewGenerator(s.catalog), SessionOptions{
		Mode:      mode,
		Countdown: s.opts.Countdown,
		Stamp:     s.clock.Stamp,
	})
	game := NewGame(session, GameOptions{
		TickInterval:  s.opts.TickInterval,
		FeedbackDelay: s.opts.FeedbackDelay,
		OnEnd: func(rec domain.ScoreRecord) {
			s.persist(rec)
			s.evictAfter(id, s.opts.EndedRetention, "ended")
		},
		IdleTimeout: s.opts.IdleTimeout,
		OnIdle:      func() { s.evictAfter(id, 0, "idle") },
	})

	// registered before Start so an early end can always find it to evict
	s.games.Add(game)
	state, err := game.Start(ctx, identity)
	if err != nil {
		s.games.Remove(id)
		game.Close()
		return domain.SessionState{}, err
	}
	slog.Info("game started", "game", id, "mode", mode, "player", state.Player.Name)
	return state, nil
}

// Submit records an answer for the current question.
func (s *GameService) Submit(ctx context.Context, id, choice string) (domain.TurnResult, error) {
	game, ok := s.games.Get(id)
	if !ok {
		return domain.TurnResult{}, domain.ErrSessionNotFound
	}
	result, err := game.Submit(ctx, choice)
	if err == nil && !result.Accepted {
		slog.Debug("answer ignored", "game", id, "phase", result.State.Phase)
	}
	return result, err
}

// Advance moves the session past an answered question.
func (s *GameService) Advance(ctx context.Context, id string) (domain.SessionState, error) {
	game, ok := s.games.Get(id)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return game.Advance(ctx)
}

// Tick delivers a countdown second, for clients that drive their own timer.
func (s *GameService) Tick(ctx context.Context, id string) (domain.SessionState, error) {
	game, ok := s.games.Get(id)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return game.Tick(ctx)
}

// State returns the current snapshot of a session.
func (s *GameService) State(ctx context.Context, id string) (domain.SessionState, error) {
	game, ok := s.games.Get(id)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	return game.State(ctx)
}

// Subscribe returns a channel of state snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(ctx context.Context, id string) (<-chan domain.SessionState, func(), error) {
	game, ok := s.games.Get(id)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	return game.Subscribe(ctx)
}

// Leave stops the session loop and forgets it. A session that has not ended is abandoned
// without a score.
func (s *GameService) Leave(_ context.Context, id string) {
	game, ok := s.games.Remove(id)
	if !ok {
		return
	}
	game.Close()
}

// Leaderboard loads the score history and ranks it, highlighting the given player.
// Persistence failures degrade to an empty board rather than an error.
func (s *GameService) Leaderboard(ctx context.Context, highlight *domain.Highlight) domain.LeaderboardView {
	records, err := s.scores.LoadAll(ctx)
	if err != nil {
		slog.Warn("loading leaderboard", "err", err)
		records = nil
	}
	return ComputeView(records, highlight, s.opts.LeaderboardSize)
}

// evictAfter removes the game after delay unless a client already left it.
// It runs off the loop goroutine because Leave waits for the loop to stop.
func (s *GameService) evictAfter(id string, delay time.Duration, reason string) {
	time.AfterFunc(delay, func() {
		if _, ok := s.games.Get(id); !ok {
			return
		}
		slog.Debug("evicting game", "game", id, "reason", reason)
		s.Leave(context.Background(), id)
	})
}

// Wait blocks until in-flight score writes have finished.
func (s *GameService) Wait() {
	s.pending.Wait()
}

// persist saves a finished session in the background. The game has already
// ended; failures are logged and never reach the session.
func (s *GameService) persist(rec domain.ScoreRecord) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.PersistTimeout)
		defer cancel()
		if err := s.scores.Save(ctx, rec); err != nil {
			slog.Warn("saving score", "player", rec.Name, "score", rec.Score, "err", err)
			return
		}
		slog.Info("score saved", "player", rec.Name, "score", rec.Score)
	}()
}
