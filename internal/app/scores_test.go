package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"logo-quiz-service/internal/domain"
)

func TestGatewayInsertOnlyKeepsEveryRound(t *testing.T) {
	store := &fakeStore{}
	local := &fakeLocal{}
	g := NewScoreGateway(store, local, domain.InsertOnly)

	ctx := context.Background()
	_ = g.Save(ctx, domain.ScoreRecord{Name: "A", Email: "a@x", Score: 5, Timestamp: 1})
	_ = g.Save(ctx, domain.ScoreRecord{Name: "A", Email: "a@x", Score: 3, Timestamp: 2})

	if len(store.records) != 2 {
		t.Fatalf("expected 2 durable rows, got %d", len(store.records))
	}
	if len(local.records) != 2 {
		t.Fatalf("expected 2 local entries, got %d", len(local.records))
	}
}

func TestGatewayUpdateIfHigher(t *testing.T) {
	store := &fakeStore{}
	g := NewScoreGateway(store, nil, domain.UpdateIfHigher)
	ctx := context.Background()

	steps := []struct {
		score int
		want  int
	}{
		{5, 5},
		{3, 5},
		{8, 8},
	}
	for _, step := range steps {
		if err := g.Save(ctx, domain.ScoreRecord{Name: "A", Email: "a@x", Score: step.score}); err != nil {
			t.Fatalf("save %d: %v", step.score, err)
		}
		if len(store.records) != 1 || store.records[0].Score != step.want {
			t.Fatalf("after %d: expected single row with %d, got %+v", step.score, step.want, store.records)
		}
	}
}

func TestGatewayLocalWrittenWhenStoreFails(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	local := &fakeLocal{}
	g := NewScoreGateway(store, local, domain.UpdateIfHigher)

	err := g.Save(context.Background(), domain.ScoreRecord{Name: "A", Score: 4, Timestamp: 10})
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if len(local.records) != 1 {
		t.Fatalf("expected local write to survive, got %d", len(local.records))
	}
}

func TestGatewayLoadAllFallsBack(t *testing.T) {
	local := &fakeLocal{records: []domain.ScoreRecord{{Name: "L", Score: 2}}}
	ctx := context.Background()

	failing := NewScoreGateway(&fakeStore{err: errors.New("down")}, local, domain.UpdateIfHigher)
	got, err := failing.LoadAll(ctx)
	if err != nil || len(got) != 1 || got[0].Name != "L" {
		t.Fatalf("expected local fallback on error, got %+v, %v", got, err)
	}

	empty := NewScoreGateway(&fakeStore{}, local, domain.UpdateIfHigher)
	got, _ = empty.LoadAll(ctx)
	if len(got) != 1 {
		t.Fatalf("expected local fallback on empty store, got %+v", got)
	}

	durable := NewScoreGateway(&fakeStore{records: []domain.ScoreRecord{{Name: "D", Score: 9}}}, local, domain.UpdateIfHigher)
	got, _ = durable.LoadAll(ctx)
	if len(got) != 1 || got[0].Name != "D" {
		t.Fatalf("expected durable records, got %+v", got)
	}

	broken := NewScoreGateway(nil, &fakeLocal{err: errors.New("disk")}, domain.UpdateIfHigher)
	if _, err := broken.LoadAll(ctx); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore from broken cache, got %v", err)
	}
}

func TestMonotonicClockNeverRepeats(t *testing.T) {
	fixed := time.UnixMilli(1000)
	c := NewMonotonicClock(func() time.Time { return fixed })
	a, b, d := c.Stamp(), c.Stamp(), c.Stamp()
	if a != 1000 || b != 1001 || d != 1002 {
		t.Fatalf("expected 1000,1001,1002 got %d,%d,%d", a, b, d)
	}
}

type fakeStore struct {
	records []domain.ScoreRecord
	err     error
}

func (s *fakeStore) Insert(_ context.Context, rec domain.ScoreRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) LoadAll(context.Context) ([]domain.ScoreRecord, error) {
	return s.records, s.err
}

func (s *fakeStore) FindByIdentity(_ context.Context, name, email string) (domain.ScoreRecord, bool, error) {
	if s.err != nil {
		return domain.ScoreRecord{}, false, s.err
	}
	for _, rec := range s.records {
		if rec.Name == name && rec.Email == email {
			return rec, true, nil
		}
	}
	return domain.ScoreRecord{}, false, nil
}

func (s *fakeStore) UpdateScore(_ context.Context, rec domain.ScoreRecord) error {
	for i := range s.records {
		if s.records[i].Name == rec.Name && s.records[i].Email == rec.Email {
			s.records[i].Score = rec.Score
		}
	}
	return s.err
}

type fakeLocal struct {
	records []domain.ScoreRecord
	err     error
}

func (c *fakeLocal) Put(_ context.Context, rec domain.ScoreRecord) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, rec)
	return nil
}

func (c *fakeLocal) LoadAll(context.Context) ([]domain.ScoreRecord, error) {
	return c.records, c.err
}
