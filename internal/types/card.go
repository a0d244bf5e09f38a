package types

import "fmt"

// CardType identifies one variant of the closed card union.
type CardType string

const (
	CardFlashcard   CardType = "FLASHCARD"
	CardApplication CardType = "APPLICATION"
	CardQuiz        CardType = "QUIZ"
	CardSummary     CardType = "SUMMARY"
)

// Difficulty buckets used across all card variants.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// FlashcardPayload is an atomic fact: prompt on the front, answer on the back.
type FlashcardPayload struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ApplicationPayload is an applied scenario derived from multiple flashcards.
type ApplicationPayload struct {
	Scenario string   `json:"scenario"`
	Question string   `json:"question"`
	Solution []string `json:"solution"` // Step-numbered solution lines.
}

// QuizPayload is a multiple-choice assessment. CorrectAnswerIndex is
// zero-based; the generation layer converts answer letters before storage.
type QuizPayload struct {
	Question           string   `json:"question"`
	Choices            []string `json:"choices"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// SummaryPayload is a synthesized narrative connecting a chapter's concepts.
type SummaryPayload struct {
	Narrative string `json:"narrative"`
}

// Card is the tagged union over all learning-artifact variants. Exactly one
// payload field is non-nil, matching Type; NewCard enforces this at
// construction. Cards form a DAG: flashcards derive from chunks only, while
// applications, quizzes and summaries record the flashcards they derive from
// in SourceCards.
type Card struct {
	ID             string   `json:"id"`
	Type           CardType `json:"type"`
	Title          string   `json:"title"`
	Difficulty     string   `json:"difficulty"`
	Tags           []string `json:"tags,omitempty"`
	ChapterContext string   `json:"chapterContext"`
	SourceChunks   []int    `json:"sourceChunks,omitempty"`
	SourceCards    []string `json:"sourceCards,omitempty"`
	// Enhanced marks cards replaced by the validation layer's
	// regenerate-with-escalation step.
	Enhanced bool `json:"enhanced,omitempty"`

	Flashcard   *FlashcardPayload   `json:"flashcard,omitempty"`
	Application *ApplicationPayload `json:"application,omitempty"`
	Quiz        *QuizPayload        `json:"quiz,omitempty"`
	Summary     *SummaryPayload     `json:"summary,omitempty"`
}

// NewCard validates that the card carries exactly the payload its type
// requires and returns an error otherwise. All card construction goes through
// this check rather than ad hoc field-presence tests downstream.
func NewCard(c Card) (Card, error) {
	if c.Title == "" {
		return Card{}, fmt.Errorf("card of type %s has empty title", c.Type)
	}
	payloads := 0
	if c.Flashcard != nil {
		payloads++
	}
	if c.Application != nil {
		payloads++
	}
	if c.Quiz != nil {
		payloads++
	}
	if c.Summary != nil {
		payloads++
	}
	if payloads != 1 {
		return Card{}, fmt.Errorf("card %q has %d payloads, want exactly 1", c.Title, payloads)
	}

	switch c.Type {
	case CardFlashcard:
		if c.Flashcard == nil {
			return Card{}, fmt.Errorf("card %q typed FLASHCARD without flashcard payload", c.Title)
		}
		if c.Flashcard.Front == "" || c.Flashcard.Back == "" {
			return Card{}, fmt.Errorf("flashcard %q has empty front or back", c.Title)
		}
	case CardApplication:
		if c.Application == nil {
			return Card{}, fmt.Errorf("card %q typed APPLICATION without application payload", c.Title)
		}
		if c.Application.Scenario == "" || c.Application.Question == "" || len(c.Application.Solution) == 0 {
			return Card{}, fmt.Errorf("application %q missing scenario, question, or solution", c.Title)
		}
	case CardQuiz:
		if c.Quiz == nil {
			return Card{}, fmt.Errorf("card %q typed QUIZ without quiz payload", c.Title)
		}
		if len(c.Quiz.Choices) < 2 {
			return Card{}, fmt.Errorf("quiz %q has %d choices, want at least 2", c.Title, len(c.Quiz.Choices))
		}
		if c.Quiz.CorrectAnswerIndex < 0 || c.Quiz.CorrectAnswerIndex >= len(c.Quiz.Choices) {
			return Card{}, fmt.Errorf("quiz %q correct index %d out of range", c.Title, c.Quiz.CorrectAnswerIndex)
		}
	case CardSummary:
		if c.Summary == nil {
			return Card{}, fmt.Errorf("card %q typed SUMMARY without summary payload", c.Title)
		}
		if c.Summary.Narrative == "" {
			return Card{}, fmt.Errorf("summary %q has empty narrative", c.Title)
		}
	default:
		return Card{}, fmt.Errorf("unknown card type %q", c.Type)
	}

	if c.Difficulty == "" {
		c.Difficulty = DifficultyMedium
	}
	return c, nil
}
