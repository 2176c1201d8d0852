package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleQuiz() model.QuizQuestion {
	return model.QuizQuestion{
		Question:      "Which chamber pumps into the aorta?",
		Options:       []string{"Right atrium", "Left atrium", "Right ventricle", "Left ventricle"},
		CorrectAnswer: "Left ventricle",
		Explanation:   "The left ventricle drives the systemic circulation.",
	}
}

func TestPanelQuizFlow(t *testing.T) {
	p := NewPanel(testTheme())
	p.SetSize(44, 30)
	gen := p.SetConcept(model.Concept{Concept: "Aorta", Relation: "artery of"})

	if req := p.HandleKey(key("t")); req != PanelRequestQuiz {
		t.Fatalf("t gave %v, want quiz request", req)
	}
	// While loading, another press must not re-request.
	if req := p.HandleKey(key("t")); req != PanelRequestNone {
		t.Fatalf("duplicate quiz request while loading: %v", req)
	}

	p.SetQuiz(gen, sampleQuiz(), nil)

	// Move to the correct option (index 3) and answer.
	p.HandleKey(key("down"))
	p.HandleKey(key("down"))
	p.HandleKey(key("down"))
	p.HandleKey(key("enter"))

	answered, correct := p.QuizAnswered()
	if !answered || !correct {
		t.Fatalf("answered=%v correct=%v, want true/true", answered, correct)
	}
	if !strings.Contains(p.View(), "circulation") {
		t.Error("explanation not shown after answering")
	}
}

func TestPanelQuizWrongAnswer(t *testing.T) {
	p := NewPanel(testTheme())
	p.SetSize(44, 30)
	gen := p.SetConcept(model.Concept{Concept: "Aorta"})
	p.HandleKey(key("t"))
	p.SetQuiz(gen, sampleQuiz(), nil)

	p.HandleKey(key("enter")) // answer option 0, which is wrong

	answered, correct := p.QuizAnswered()
	if !answered || correct {
		t.Fatalf("answered=%v correct=%v, want true/false", answered, correct)
	}
}

func TestPanelQuizFailureAllowsRetry(t *testing.T) {
	p := NewPanel(testTheme())
	p.SetSize(44, 30)
	gen := p.SetConcept(model.Concept{Concept: "Aorta"})
	p.HandleKey(key("t"))
	p.SetQuiz(gen, model.QuizQuestion{}, errors.New("service unavailable"))

	if !strings.Contains(p.View(), "service unavailable") {
		t.Error("failure not surfaced")
	}
	if req := p.HandleKey(key("t")); req != PanelRequestQuiz {
		t.Errorf("retry after failure gave %v", req)
	}
}

func TestPanelFlashcardForwardPaging(t *testing.T) {
	p := NewPanel(testTheme())
	p.SetSize(44, 30)
	gen := p.SetConcept(model.Concept{Concept: "Aorta"})

	// SetConcept marks the first card as already in flight.
	p.AddCard(gen, model.Flashcard{Question: "Q1", Answer: "A1"}, nil)
	if got := p.CardCursor(); got != 0 {
		t.Fatalf("cursor = %d after first card", got)
	}

	// At the end of the deck, n asks for a new card.
	if req := p.HandleKey(key("n")); req != PanelRequestCard {
		t.Fatalf("n at deck end gave %v", req)
	}
	if req := p.HandleKey(key("n")); req != PanelRequestNone {
		t.Fatalf("n while loading gave %v", req)
	}
	p.AddCard(gen, model.Flashcard{Question: "Q2", Answer: "A2"}, nil)

	if len(p.Cards()) != 2 || p.CardCursor() != 1 {
		t.Fatalf("deck %d cursor %d, want 2/1", len(p.Cards()), p.CardCursor())
	}
	if !strings.Contains(p.View(), "Q2") {
		t.Error("new card not displayed")
	}
}

func TestPanelDropsStaleResults(t *testing.T) {
	p := NewPanel(testTheme())
	p.SetSize(44, 30)
	old := p.SetConcept(model.Concept{Concept: "Aorta"})
	p.SetConcept(model.Concept{Concept: "Atrium"})

	p.SetQuiz(old, sampleQuiz(), nil)
	p.AddCard(old, model.Flashcard{Question: "stale", Answer: "stale"}, nil)

	if p.qPhase != quizIdle {
		t.Error("stale quiz applied")
	}
	if len(p.Cards()) != 0 {
		t.Error("stale flashcard applied")
	}
	if answered, _ := p.QuizAnswered(); answered {
		t.Error("stale state leaked into answers")
	}
}

func TestPanelClearInvalidatesToken(t *testing.T) {
	p := NewPanel(testTheme())
	p.SetSize(44, 30)
	gen := p.SetConcept(model.Concept{Concept: "Aorta"})
	p.Clear()

	p.AddCard(gen, model.Flashcard{Question: "late", Answer: "late"}, nil)
	if len(p.Cards()) != 0 {
		t.Error("result applied after Clear")
	}
	if _, ok := p.Concept(); ok {
		t.Error("concept still set after Clear")
	}
}
