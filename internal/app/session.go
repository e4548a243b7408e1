package app

import (
	"strings"
	"time"

	"logo-quiz-service/internal/domain"
)

// DefaultCountdown is the length of a random-mode session in seconds.
const DefaultCountdown = 30

// SessionOptions configures a Session.
type SessionOptions struct {
	Mode domain.Mode
	// Countdown is the random-mode session length in seconds; <= 0 means DefaultCountdown.
	Countdown int
	// Stamp returns the creation time of the finished ScoreRecord. Defaults to Unix millis.
	Stamp func() int64
}

// Session is the game state machine for one player: idle -> active -> ended.
// It is not safe for concurrent use; Game serializes every intent through one goroutine.
// Intents that arrive in the wrong phase leave the state untouched.
type Session struct {
	id        string
	gen       *Generator
	mode      domain.Mode
	countdown int
	stamp     func() int64

	phase     domain.Phase
	identity  domain.Identity
	score     int
	answered  int
	remaining int
	cursor    int
	current   *domain.ActiveQuestion
	feedback  domain.Feedback
	result    *domain.ScoreRecord
}

func NewSession(id string, gen *Generator, opts SessionOptions) *Session {
	if opts.Mode == "" {
		opts.Mode = domain.ModeRandom
	}
	if opts.Countdown <= 0 {
		opts.Countdown = DefaultCountdown
	}
	if opts.Stamp == nil {
		opts.Stamp = func() int64 { return time.Now().UnixMilli() }
	}
	return &Session{
		id:        id,
		gen:       gen,
		mode:      opts.Mode,
		countdown: opts.Countdown,
		stamp:     opts.Stamp,
		phase:     domain.PhaseIdle,
	}
}

// Start validates the identity, draws the first question and enters the active phase.
func (s *Session) Start(identity domain.Identity) error {
	if s.phase != domain.PhaseIdle {
		return domain.ErrWrongPhase
	}
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		return domain.ErrInvalidIdentity
	}
	first, err := s.gen.Next(s.mode, 0)
	if err != nil {
		return err
	}

	s.identity = domain.Identity{Name: name, Email: strings.TrimSpace(identity.Email)}
	s.score = 0
	s.answered = 0
	s.cursor = 0
	s.remaining = 0
	if s.mode == domain.ModeRandom {
		s.remaining = s.countdown
	}
	s.current = &first
	s.feedback = domain.FeedbackNone
	s.phase = domain.PhaseActive
	return nil
}

// Submit scores choice against the current question by exact string equality.
// It reports false when no answer can be taken: wrong phase or feedback still pending.
func (s *Session) Submit(choice string) (domain.Feedback, bool) {
	if s.phase != domain.PhaseActive || s.current == nil || s.feedback != domain.FeedbackNone {
		return domain.FeedbackNone, false
	}
	s.feedback = domain.FeedbackWrong
	if choice == s.current.CorrectAnswer {
		s.score++
		s.feedback = domain.FeedbackCorrect
	}
	s.answered++
	return s.feedback, true
}

// Advance moves past an answered question: it draws the next one, or ends the
// session when the countdown is spent or the sequential cursor hits the end.
func (s *Session) Advance() bool {
	if s.phase != domain.PhaseActive || s.feedback == domain.FeedbackNone {
		return false
	}

	if s.mode == domain.ModeSequential {
		s.cursor++
		if s.cursor >= s.gen.Len() {
			s.end()
			return true
		}
	} else if s.remaining <= 0 {
		s.end()
		return true
	}

	next, err := s.gen.Next(s.mode, s.cursor)
	if err != nil {
		// Unreachable with a non-empty catalog; end rather than stall.
		s.end()
		return true
	}
	s.current = &next
	s.feedback = domain.FeedbackNone
	return true
}

// Tick consumes one second of the random-mode countdown. Reaching zero ends the
// session at once; an unanswered question is dropped without counting as answered.
func (s *Session) Tick() bool {
	if s.phase != domain.PhaseActive || s.mode != domain.ModeRandom {
		return false
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.end()
	}
	return true
}

func (s *Session) end() {
	s.phase = domain.PhaseEnded
	s.current = nil
	s.feedback = domain.FeedbackNone
	s.result = &domain.ScoreRecord{
		Name:      s.identity.Name,
		Email:     s.identity.Email,
		Score:     s.score,
		Timestamp: s.stamp(),
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	return s.phase
}

// Answered returns how many answers have been submitted.
func (s *Session) Answered() int {
	return s.answered
}

// Result returns the finished record once the session has ended.
func (s *Session) Result() (domain.ScoreRecord, bool) {
	if s.result == nil {
		return domain.ScoreRecord{}, false
	}
	return *s.result, true
}

// Snapshot copies the state for readers outside the owning goroutine.
func (s *Session) Snapshot() domain.SessionState {
	state := domain.SessionState{
		ID:        s.id,
		Mode:      s.mode,
		Phase:     s.phase,
		Player:    s.identity,
		Score:     s.score,
		Answered:  s.answered,
		Remaining: s.remaining,
		Cursor:    s.cursor,
		Total:     s.gen.Len(),
		Feedback:  s.feedback,
	}
	if s.current != nil {
		q := *s.current
		state.Question = &q
	}
	if s.result != nil {
		r := *s.result
		state.Result = &r
	}
	return state
}
