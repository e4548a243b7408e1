package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"logo-quiz-service/internal/domain"
)

// ScoreStore keeps finished sessions in the players table.
// An absent email is stored as NULL and read back as "".
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Insert(ctx context.Context, rec domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO players (name, email, score, created_at) VALUES ($1, NULLIF($2, ''), $3, $4)`,
		rec.Name, rec.Email, rec.Score, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// LoadAll returns every record, best score first; ties keep insertion order.
func (s *ScoreStore) LoadAll(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, COALESCE(email, ''), score, created_at FROM players ORDER BY score DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()

	records := []domain.ScoreRecord{}
	for rows.Next() {
		var rec domain.ScoreRecord
		if err := rows.Scan(&rec.Name, &rec.Email, &rec.Score, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *ScoreStore) FindByIdentity(ctx context.Context, name, email string) (domain.ScoreRecord, bool, error) {
	var rec domain.ScoreRecord
	err := s.pool.QueryRow(ctx,
		`SELECT name, COALESCE(email, ''), score, created_at FROM players
		 WHERE name = $1 AND COALESCE(email, '') = $2
		 ORDER BY score DESC, id ASC LIMIT 1`,
		name, email,
	).Scan(&rec.Name, &rec.Email, &rec.Score, &rec.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScoreRecord{}, false, nil
	}
	if err != nil {
		return domain.ScoreRecord{}, false, fmt.Errorf("find player: %w", err)
	}
	return rec, true, nil
}

// UpdateScore raises the stored score for rec's identity; lower scores are ignored.
func (s *ScoreStore) UpdateScore(ctx context.Context, rec domain.ScoreRecord) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE players SET score = $3 WHERE name = $1 AND COALESCE(email, '') = $2 AND score < $3`,
		rec.Name, rec.Email, rec.Score,
	)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return nil
}
