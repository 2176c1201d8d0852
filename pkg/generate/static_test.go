package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

func TestStaticGenerateMapDeterministic(t *testing.T) {
	ctx := context.Background()
	var s Static

	a, err := s.GenerateMap(ctx, "Diabetes Mellitus")
	if err != nil {
		t.Fatalf("GenerateMap: %v", err)
	}
	b, err := s.GenerateMap(ctx, "Diabetes Mellitus")
	if err != nil {
		t.Fatalf("GenerateMap: %v", err)
	}

	if len(a) < 8 || len(a) > 12 {
		t.Errorf("concept count = %d, want 8-12", len(a))
	}
	if len(a) != len(b) {
		t.Fatalf("non-deterministic concept count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("concept %d differs between identical calls", i)
		}
		if a[i].Difficulty < 0 || a[i].Difficulty > 5 {
			t.Errorf("concept %d difficulty %d out of range", i, a[i].Difficulty)
		}
	}
}

func TestStaticGenerateQuizIsValid(t *testing.T) {
	var s Static
	q, err := s.GenerateQuiz(context.Background(), model.Concept{
		Concept: "Insulin", Relation: "treatment for",
	})
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("static quiz fails its own contract: %v", err)
	}
}

func TestStaticGenerateFlashcardGrowsDeck(t *testing.T) {
	var s Static
	ctx := context.Background()
	c := model.Concept{Concept: "Glucagon", Relation: "regulated by"}

	first, err := s.GenerateFlashcard(ctx, c, nil)
	if err != nil {
		t.Fatalf("GenerateFlashcard: %v", err)
	}
	second, err := s.GenerateFlashcard(ctx, c, []model.Flashcard{first})
	if err != nil {
		t.Fatalf("GenerateFlashcard: %v", err)
	}
	if first.Question == second.Question {
		t.Error("second card repeats the first card's question")
	}
}

func TestStaticErrPropagates(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := Static{Err: boom}
	if _, err := s.GenerateMap(context.Background(), "x"); !errors.Is(err, boom) {
		t.Errorf("GenerateMap err = %v, want %v", err, boom)
	}
	if _, err := s.GenerateQuiz(context.Background(), model.Concept{}); !errors.Is(err, boom) {
		t.Errorf("GenerateQuiz err = %v, want %v", err, boom)
	}
	if _, err := s.GenerateFlashcard(context.Background(), model.Concept{}, nil); !errors.Is(err, boom) {
		t.Errorf("GenerateFlashcard err = %v, want %v", err, boom)
	}
}
