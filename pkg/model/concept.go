// Package model defines the core data types for mm: concepts returned by the
// generative service, the graph built from them, and the study aids (quiz
// questions, flashcards) attached to individual concepts.
package model

import "fmt"

// CentralRelation marks the synthetic concept representing the searched topic.
const CentralRelation = "Central Topic"

// Concept is a single related concept returned by the generative map service.
// Immutable after creation.
type Concept struct {
	Concept    string `json:"concept" jsonschema_description:"Name of the related concept"`
	Relation   string `json:"relation" jsonschema_description:"How this concept relates to the topic"`
	Note       string `json:"note" jsonschema_description:"Short study note about the concept, markdown allowed"`
	Difficulty int    `json:"difficulty" jsonschema_description:"Difficulty from 0 (trivial) to 5 (hard)"`
	System     string `json:"system,omitempty" jsonschema_description:"Body system or domain category, if applicable"`
}

// Central returns the synthetic concept used for the searched topic itself.
func Central(topic string) Concept {
	return Concept{
		Concept:    topic,
		Relation:   CentralRelation,
		Difficulty: 0,
	}
}

// IsCentral reports whether c is the synthetic central-topic concept.
func (c Concept) IsCentral() bool {
	return c.Relation == CentralRelation
}

// QuizQuestion is a single multiple-choice question about a concept.
// Held only in the side panel's local state.
type QuizQuestion struct {
	Question      string   `json:"question" jsonschema_description:"The question text"`
	Options       []string `json:"options" jsonschema_description:"Exactly four answer options"`
	CorrectAnswer string   `json:"correctAnswer" jsonschema_description:"The correct option, verbatim"`
	Explanation   string   `json:"explanation" jsonschema_description:"Why the correct answer is correct, markdown allowed"`
}

// Validate checks the structural contract of the quiz service: exactly four
// options with CorrectAnswer equal to one of them.
func (q QuizQuestion) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("quiz question is empty")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("quiz question has %d options, want 4", len(q.Options))
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q not among options", q.CorrectAnswer)
}

// Flashcard is a simple question/answer pair for spaced study.
type Flashcard struct {
	Question string `json:"question" jsonschema_description:"Front of the card"`
	Answer   string `json:"answer" jsonschema_description:"Back of the card"`
}
