package app

import (
	"fmt"
	"math/rand"
	"time"

	"logo-quiz-service/internal/domain"
)

// Generator produces one question per turn from an injected catalog.
// It is not safe for concurrent use; each session owns its own generator.
type Generator struct {
	catalog domain.Catalog
	rnd     *rand.Rand
}

// NewGenerator seeds a generator from the wall clock.
func NewGenerator(catalog domain.Catalog) *Generator {
	return NewGeneratorWithRand(catalog, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGeneratorWithRand allows deterministic draws in tests.
func NewGeneratorWithRand(catalog domain.Catalog, rnd *rand.Rand) *Generator {
	return &Generator{catalog: catalog, rnd: rnd}
}

// Len reports the catalog size.
func (g *Generator) Len() int {
	return g.catalog.Len()
}

// Next returns the question for the current turn. In random mode the cursor is ignored.
func (g *Generator) Next(mode domain.Mode, cursor int) (domain.ActiveQuestion, error) {
	n := g.catalog.Len()
	if n == 0 {
		return domain.ActiveQuestion{}, domain.ErrEmptyCatalog
	}

	switch mode {
	case domain.ModeSequential:
		if cursor < 0 || cursor >= n {
			return domain.ActiveQuestion{}, fmt.Errorf("%w: %d of %d", domain.ErrCursorOutOfRange, cursor, n)
		}
		return activate(g.catalog.At(cursor)), nil
	case domain.ModeRandom:
		q := activate(g.catalog.At(g.rnd.Intn(n)))
		// rand.Shuffle is Fisher-Yates, every permutation equally likely.
		g.rnd.Shuffle(len(q.Options), func(i, j int) {
			q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
		})
		return q, nil
	}
	return domain.ActiveQuestion{}, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
}

func activate(rec domain.QuestionRecord) domain.ActiveQuestion {
	return domain.ActiveQuestion{
		PromptAssetRef: rec.PromptAssetRef,
		CorrectAnswer:  rec.CorrectAnswer,
		Options:        rec.Options,
	}
}
