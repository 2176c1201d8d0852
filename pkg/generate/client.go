// Package generate talks to the generative concept/quiz/flashcard service.
//
// The OpenAI-backed client asks for structured JSON output and validates the
// response shape; schema violations are folded into the same failure path as
// network errors. A deterministic Static client serves offline use and tests.
package generate

import (
	"context"
	"errors"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

// ErrEmptyResult is returned when the service answers with no concepts.
var ErrEmptyResult = errors.New("generate: service returned no concepts")

// Client is the generative-service contract consumed by the app. All calls
// fail atomically: no partial results.
type Client interface {
	// GenerateMap returns related concepts for a topic.
	GenerateMap(ctx context.Context, topic string) ([]model.Concept, error)

	// GenerateQuiz returns one multiple-choice question about a concept,
	// with exactly four options and the correct answer among them.
	GenerateQuiz(ctx context.Context, c model.Concept) (model.QuizQuestion, error)

	// GenerateFlashcard returns one new flashcard for a concept. Previous
	// cards are advisory context to avoid duplicates, not a hard exclusion.
	GenerateFlashcard(ctx context.Context, c model.Concept, previous []model.Flashcard) (model.Flashcard, error)
}

// conceptList is the wire shape of a GenerateMap response.
type conceptList struct {
	Concepts []model.Concept `json:"concepts" jsonschema_description:"8 to 12 related concepts"`
}

// clampDifficulty forces the service's difficulty values into the 0-5 range
// instead of rejecting the whole response over one bad field.
func clampDifficulty(cs []model.Concept) {
	for i := range cs {
		if cs[i].Difficulty < 0 {
			cs[i].Difficulty = 0
		}
		if cs[i].Difficulty > 5 {
			cs[i].Difficulty = 5
		}
	}
}
