package app

import (
	"context"
	"log/slog"
	"time"

	"logo-quiz-service/internal/domain"
)

// GameOptions configures the loop around a Session.
type GameOptions struct {
	// TickInterval drives the random-mode countdown. Zero disables the internal
	// ticker; ticks then only arrive through Game.Tick.
	TickInterval time.Duration
	// FeedbackDelay, when positive, advances to the next question automatically
	// after an answer. Zero leaves advancing to the client.
	FeedbackDelay time.Duration
	// OnEnd is called once, from the loop goroutine, before the ended state is broadcast.
	// It must not block.
	OnEnd func(domain.ScoreRecord)
	// IdleTimeout, when positive, calls OnIdle once no command has arrived for that
	// long. Countdown ticks do not count as activity.
	IdleTimeout time.Duration
	// OnIdle is called from the loop goroutine and must not block.
	OnIdle func()
}

type command struct {
	fn   func(*Session) bool
	done chan struct{}
}

// Game owns a Session and applies every intent on a single goroutine, so timer
// ticks, answers and advances never touch the state concurrently.
type Game struct {
	id      string
	session *Session
	opts    GameOptions

	cmds chan command
	quit chan struct{}
	done chan struct{}

	// only touched by the loop goroutine
	subscribers map[chan domain.SessionState]struct{}
	ended       bool
}

// NewGame starts the loop goroutine. Call Close to stop it.
func NewGame(session *Session, opts GameOptions) *Game {
	g := &Game{
		id:          session.id,
		session:     session,
		opts:        opts,
		cmds:        make(chan command),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
	go g.run()
	return g
}

// ID returns the session identifier.
func (g *Game) ID() string {
	return g.id
}

// Start begins the session for identity.
func (g *Game) Start(ctx context.Context, identity domain.Identity) (domain.SessionState, error) {
	var (
		startErr error
		state    domain.SessionState
	)
	err := g.do(ctx, func(s *Session) bool {
		startErr = s.Start(identity)
		state = s.Snapshot()
		return startErr == nil
	})
	if err != nil {
		return domain.SessionState{}, err
	}
	return state, startErr
}

// Submit answers the current question. Ignored submissions report Accepted=false.
func (g *Game) Submit(ctx context.Context, choice string) (domain.TurnResult, error) {
	var result domain.TurnResult
	err := g.do(ctx, func(s *Session) bool {
		fb, ok := s.Submit(choice)
		result = domain.TurnResult{Accepted: ok, Feedback: fb, State: s.Snapshot()}
		if ok && g.opts.FeedbackDelay > 0 {
			g.scheduleAdvance(s.Answered())
		}
		return ok
	})
	return result, err
}

// Advance moves to the next question or ends the session.
func (g *Game) Advance(ctx context.Context) (domain.SessionState, error) {
	var state domain.SessionState
	err := g.do(ctx, func(s *Session) bool {
		ok := s.Advance()
		state = s.Snapshot()
		return ok
	})
	return state, err
}

// Tick delivers one countdown second.
func (g *Game) Tick(ctx context.Context) (domain.SessionState, error) {
	var state domain.SessionState
	err := g.do(ctx, func(s *Session) bool {
		ok := s.Tick()
		state = s.Snapshot()
		return ok
	})
	return state, err
}

// State returns the current snapshot.
func (g *Game) State(ctx context.Context) (domain.SessionState, error) {
	var state domain.SessionState
	err := g.do(ctx, func(s *Session) bool {
		state = s.Snapshot()
		return false
	})
	return state, err
}

// Subscribe returns a channel that receives a snapshot after every state change,
// starting with the current one. Slow readers only see the latest snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (g *Game) Subscribe(ctx context.Context) (<-chan domain.SessionState, func(), error) {
	ch := make(chan domain.SessionState, 8)
	err := g.do(ctx, func(s *Session) bool {
		g.subscribers[ch] = struct{}{}
		ch <- s.Snapshot()
		return false
	})
	if err != nil {
		return nil, nil, err
	}
	cancel := func() {
		_ = g.do(context.Background(), func(*Session) bool {
			if _, ok := g.subscribers[ch]; ok {
				delete(g.subscribers, ch)
				close(ch)
			}
			return false
		})
	}
	return ch, cancel, nil
}

// Close stops the loop and closes all subscriber channels. It is safe to call twice.
func (g *Game) Close() {
	select {
	case <-g.quit:
	default:
		close(g.quit)
	}
	<-g.done
}

func (g *Game) do(ctx context.Context, fn func(*Session) bool) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case g.cmds <- cmd:
	case <-g.done:
		return domain.ErrGameClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-cmd.done
	return nil
}

func (g *Game) run() {
	defer close(g.done)

	var (
		tickC  <-chan time.Time
		ticker *time.Ticker
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	var (
		idleC <-chan time.Time
		idle  *time.Timer
	)
	if g.opts.IdleTimeout > 0 && g.opts.OnIdle != nil {
		idle = time.NewTimer(g.opts.IdleTimeout)
		idleC = idle.C
	}
	defer func() {
		stopTicker()
		if idle != nil {
			idle.Stop()
		}
		for ch := range g.subscribers {
			close(ch)
		}
	}()

	for {
		select {
		case <-g.quit:
			return
		case <-tickC:
			g.apply((*Session).Tick)
		case <-idleC:
			idleC = nil
			g.opts.OnIdle()
		case cmd := <-g.cmds:
			g.apply(cmd.fn)
			close(cmd.done)
			if idleC != nil {
				idle.Reset(g.opts.IdleTimeout)
			}
		}

		switch {
		case g.session.Phase() == domain.PhaseActive && g.session.mode == domain.ModeRandom &&
			ticker == nil && g.opts.TickInterval > 0:
			ticker = time.NewTicker(g.opts.TickInterval)
			tickC = ticker.C
		case g.session.Phase() == domain.PhaseEnded:
			stopTicker()
		}
	}
}

func (g *Game) apply(fn func(*Session) bool) {
	if !fn(g.session) {
		return
	}
	if !g.ended && g.session.Phase() == domain.PhaseEnded {
		g.ended = true
		if rec, ok := g.session.Result(); ok && g.opts.OnEnd != nil {
			g.opts.OnEnd(rec)
		}
	}
	g.broadcast(g.session.Snapshot())
}

func (g *Game) broadcast(state domain.SessionState) {
	for ch := range g.subscribers {
		select {
		case ch <- state:
		default:
			// drop the stale snapshot so a slow reader never blocks the loop
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

// scheduleAdvance advances turn after the feedback delay unless the client
// already moved on.
func (g *Game) scheduleAdvance(turn int) {
	time.AfterFunc(g.opts.FeedbackDelay, func() {
		err := g.do(context.Background(), func(s *Session) bool {
			if s.Answered() != turn {
				return false
			}
			return s.Advance()
		})
		if err != nil {
			slog.Debug("auto advance dropped", "game", g.id, "err", err)
		}
	})
}
