package synth

import (
	"fmt"
	"strings"

	"github.com/cardforge/cardforge/internal/index"
	"github.com/cardforge/cardforge/internal/types"
)

// FlashcardSystemPrompt asks the model for one atomic fact card per context
// window.
const FlashcardSystemPrompt = `You are a study-material author.
Given a passage from a book plus related supporting passages, write ONE
flashcard capturing the single most important fact or concept in the primary
passage.

Rules:
- The front is a direct question; the back is a complete, self-contained answer.
- Use only information present in the passages; never invent facts.
- The title names the concept, not the question.
- difficulty is "easy", "medium", or "hard" based on how much context the
  answer requires.

Return JSON: {"title": "...", "front": "...", "back": "...", "difficulty": "medium", "tags": ["..."]}`

// ApplicationSystemPrompt asks the model for an applied scenario built from
// several flashcards.
const ApplicationSystemPrompt = `You are a study-material author.
Given several flashcards from the same chapter, write ONE applied scenario
that requires combining their facts.

Rules:
- The scenario is a concrete situation, not a restatement of the facts.
- The question directs the reader to resolve the scenario.
- The solution is a numbered list of steps, each one sentence.
- Use only the facts on the given flashcards.

Return JSON: {"title": "...", "scenario": "...", "question": "...", "solution": ["1. ...", "2. ..."], "difficulty": "hard"}`

// QuizSystemPrompt asks the model for a chapter's multiple-choice questions.
const QuizSystemPrompt = `You are a study-material author.
Given a chapter's flashcards, write multiple-choice questions testing them.

Rules:
- Each question has exactly 4 choices labeled A through D.
- Exactly one choice is correct; the rest are plausible but wrong.
- Vary which letter holds the correct answer across questions.
- The explanation says why the correct answer is right in one or two
  sentences.

Return JSON: {"questions": [{"title": "...", "question": "...", "choices": ["...", "...", "...", "..."], "correctAnswer": "B", "explanation": "...", "difficulty": "medium"}]}`

// SummarySystemPrompt asks the model for a chapter summary.
const SummarySystemPrompt = `You are a study-material author.
Given a chapter's flashcards, write ONE narrative summary that connects the
chapter's concepts into a coherent whole.

Rules:
- Write flowing prose, not a bullet list.
- Mention every major concept the flashcards cover.
- Three to six paragraphs.

Return JSON: {"title": "...", "narrative": "..."}`

// OverviewSystemPrompt asks the model for a whole-book overview.
const OverviewSystemPrompt = `You are a study-material author.
Given the opening passages of every chapter of a book, write ONE overview
card describing what the book covers and how its chapters fit together.

Return JSON: {"title": "...", "narrative": "..."}`

// BuildFlashcardPrompt builds the user prompt for one flashcard window. The
// window's own chunks come first; retrieved neighbors follow as supporting
// context.
func BuildFlashcardPrompt(window []types.Chunk, neighbors []index.Match) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Primary passage (chapter: %s):\n", window[0].ChapterTitle))
	for _, c := range window {
		lines = append(lines, c.Text)
	}

	if len(neighbors) > 0 {
		lines = append(lines, "\nSupporting passages from elsewhere in the book:")
		for _, m := range neighbors {
			lines = append(lines, fmt.Sprintf("--- from %s ---\n%s", m.ChapterTitle, m.Text))
		}
	}

	lines = append(lines, "\nWrite one flashcard as JSON.")
	return strings.Join(lines, "\n")
}

// BuildApplicationPrompt builds the user prompt for one application card.
func BuildApplicationPrompt(chapterTitle string, flashcards []types.Card) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Flashcards from chapter %q:\n", chapterTitle))
	for i, fc := range flashcards {
		lines = append(lines, fmt.Sprintf("%d. %s\n   Q: %s\n   A: %s", i+1, fc.Title, fc.Flashcard.Front, fc.Flashcard.Back))
	}
	lines = append(lines, "\nWrite one applied scenario as JSON.")
	return strings.Join(lines, "\n")
}

// BuildQuizPrompt builds the user prompt for a chapter's quiz questions.
func BuildQuizPrompt(chapterTitle string, flashcards []types.Card, maxQuestions int) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Flashcards from chapter %q:\n", chapterTitle))
	for i, fc := range flashcards {
		lines = append(lines, fmt.Sprintf("%d. %s\n   Q: %s\n   A: %s", i+1, fc.Title, fc.Flashcard.Front, fc.Flashcard.Back))
	}
	lines = append(lines, fmt.Sprintf("\nWrite up to %d quiz questions as JSON.", maxQuestions))
	return strings.Join(lines, "\n")
}

// BuildSummaryPrompt builds the user prompt for a chapter summary.
func BuildSummaryPrompt(chapterTitle string, flashcards []types.Card) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Flashcards from chapter %q:\n", chapterTitle))
	for i, fc := range flashcards {
		lines = append(lines, fmt.Sprintf("%d. %s\n   Q: %s\n   A: %s", i+1, fc.Title, fc.Flashcard.Front, fc.Flashcard.Back))
	}
	lines = append(lines, "\nWrite the chapter summary as JSON.")
	return strings.Join(lines, "\n")
}

// openingChars bounds how much of each chapter feeds the overview prompt.
const openingChars = 600

// BuildOverviewPrompt builds the user prompt for the book overview from
// chapter openings.
func BuildOverviewPrompt(chapters []types.Chapter) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Chapter openings (%d chapters):\n", len(chapters)))
	for _, ch := range chapters {
		opening := strings.TrimSpace(ch.Content)
		if len(opening) > openingChars {
			opening = opening[:openingChars] + "..."
		}
		lines = append(lines, fmt.Sprintf("--- %s ---\n%s", ch.Title, opening))
	}
	lines = append(lines, "\nWrite the book overview as JSON.")
	return strings.Join(lines, "\n")
}
