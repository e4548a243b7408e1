package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionRecord is one catalog entry: an image to identify and four answer options.
type QuestionRecord struct {
	PromptAssetRef string    `json:"promptAssetRef"`
	Options        [4]string `json:"options"`
	CorrectAnswer  string    `json:"correctAnswer"`
}

// Catalog is the immutable set of questions loaded at startup.
type Catalog struct {
	records []QuestionRecord
}

// NewCatalog copies records so later mutation of the input cannot leak in.
func NewCatalog(records []QuestionRecord) Catalog {
	cp := make([]QuestionRecord, len(records))
	copy(cp, records)
	return Catalog{records: cp}
}

// Len reports the number of questions.
func (c Catalog) Len() int { return len(c.records) }

// At returns the record at index i. It panics when i is out of range.
func (c Catalog) At(i int) QuestionRecord { return c.records[i] }

// ActiveQuestion is the question presented for the current turn.
type ActiveQuestion struct {
	PromptAssetRef string    `json:"promptAssetRef"`
	CorrectAnswer  string    `json:"correctAnswer"`
	Options        [4]string `json:"options"`
}

// Mode selects how questions are drawn and how a session terminates.
type Mode string

const (
	// ModeRandom draws random questions with shuffled options until the countdown expires.
	ModeRandom Mode = "random"
	// ModeSequential walks the catalog in order with options as stored, ending after the last question.
	ModeSequential Mode = "sequential"
)

// ParseMode maps a config or request string to a Mode. Empty input yields ModeRandom.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeRandom:
		return ModeRandom, nil
	case ModeSequential:
		return ModeSequential, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
}

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
	PhaseEnded  Phase = "ended"
)

// Feedback is the outcome of the last submitted answer, pending until the next question.
type Feedback string

const (
	FeedbackNone    Feedback = ""
	FeedbackCorrect Feedback = "correct"
	FeedbackWrong   Feedback = "wrong"
)

// Identity is what the player enters before a session starts.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ScoreRecord is the persisted result of one finished session.
type ScoreRecord struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

// IdentityKey is the leaderboard deduplication key: email when present, otherwise name.
func (r ScoreRecord) IdentityKey() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Name
}

// LocalCacheKeyPrefix namespaces score entries in the local fallback cache.
const LocalCacheKeyPrefix = "score:"

// LocalCacheKey returns the fallback cache key for a record created at ts.
func LocalCacheKey(ts int64) string {
	return LocalCacheKeyPrefix + strconv.FormatInt(ts, 10)
}

// SessionState is a read-only snapshot of a game session.
type SessionState struct {
	ID        string          `json:"id"`
	Mode      Mode            `json:"mode"`
	Phase     Phase           `json:"phase"`
	Player    Identity        `json:"player"`
	Score     int             `json:"score"`
	Answered  int             `json:"answered"`
	Remaining int             `json:"remaining"`
	Cursor    int             `json:"cursor"`
	Total     int             `json:"total"`
	Question  *ActiveQuestion `json:"question,omitempty"`
	Feedback  Feedback        `json:"feedback,omitempty"`
	Result    *ScoreRecord    `json:"result,omitempty"`
}

// TurnResult summarizes an answer submission.
type TurnResult struct {
	Accepted bool         `json:"accepted"`
	Feedback Feedback     `json:"feedback,omitempty"`
	State    SessionState `json:"state"`
}

// UpsertPolicy controls how the durable store treats a returning player.
type UpsertPolicy string

const (
	// InsertOnly appends a new record for every finished session.
	InsertOnly UpsertPolicy = "insert_only"
	// UpdateIfHigher keeps one record per (name, email) and raises it only on a better score.
	UpdateIfHigher UpsertPolicy = "update_if_higher"
)

// ParseUpsertPolicy maps a config string to an UpsertPolicy. Empty input yields UpdateIfHigher.
func ParseUpsertPolicy(raw string) (UpsertPolicy, error) {
	switch UpsertPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", UpdateIfHigher:
		return UpdateIfHigher, nil
	case InsertOnly:
		return InsertOnly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUpsertPolicy, raw)
}

// Highlight identifies the just-finished player on the leaderboard.
type Highlight struct {
	Name  string
	Score int
}

// LeaderboardView is the ranked, deduplicated scoreboard.
type LeaderboardView struct {
	Ranked            []ScoreRecord `json:"ranked"`
	Top               []ScoreRecord `json:"top"`
	CurrentPlayerRank int           `json:"currentPlayerRank"`
	InTop             bool          `json:"inTop"`
}
