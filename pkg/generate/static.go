package generate

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

// Static is an offline Client producing deterministic sample content. It is
// used when no API key is configured (demo mode) and by tests. Err, when
// set, is returned from every call.
type Static struct {
	Err error
}

var staticRelations = []string{
	"mechanism of", "complication of", "treatment for", "risk factor for",
	"diagnostic sign of", "regulated by", "precursor to", "contrasted with",
}

var staticSystems = []string{
	"Endocrine", "Cardiovascular", "Nervous", "Renal",
	"Digestive", "Immune", "Pharmacology", "",
}

// GenerateMap implements Client with a deterministic concept list derived
// from the topic string.
func (s Static) GenerateMap(_ context.Context, topic string) ([]model.Concept, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	h := fnv.New32a()
	h.Write([]byte(topic))
	seed := h.Sum32()

	n := 8 + int(seed%3) // 8-10 concepts
	concepts := make([]model.Concept, n)
	for i := range concepts {
		concepts[i] = model.Concept{
			Concept:    fmt.Sprintf("%s — aspect %d", topic, i+1),
			Relation:   staticRelations[(int(seed)+i)%len(staticRelations)],
			Note:       fmt.Sprintf("A key aspect of **%s** worth reviewing.", topic),
			Difficulty: (int(seed) + i) % 6,
			System:     staticSystems[(int(seed)+i)%len(staticSystems)],
		}
	}
	return concepts, nil
}

// GenerateQuiz implements Client.
func (s Static) GenerateQuiz(_ context.Context, c model.Concept) (model.QuizQuestion, error) {
	if s.Err != nil {
		return model.QuizQuestion{}, s.Err
	}
	correct := fmt.Sprintf("It is a %s the topic", c.Relation)
	return model.QuizQuestion{
		Question: fmt.Sprintf("How does %q relate to its topic?", c.Concept),
		Options: []string{
			correct,
			"It is unrelated",
			"It is a synonym for the topic",
			"It contradicts the topic",
		},
		CorrectAnswer: correct,
		Explanation:   fmt.Sprintf("Per the map, %q is *%s* the central topic.", c.Concept, c.Relation),
	}, nil
}

// GenerateFlashcard implements Client. Each call yields a distinct card so
// repeated generation grows the deck.
func (s Static) GenerateFlashcard(_ context.Context, c model.Concept, previous []model.Flashcard) (model.Flashcard, error) {
	if s.Err != nil {
		return model.Flashcard{}, s.Err
	}
	n := len(previous) + 1
	return model.Flashcard{
		Question: fmt.Sprintf("Card %d: what should you remember about %q?", n, c.Concept),
		Answer:   fmt.Sprintf("%s (%s, difficulty %d)", c.Note, c.Relation, c.Difficulty),
	}, nil
}
