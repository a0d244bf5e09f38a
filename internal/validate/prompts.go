package validate

import (
	"fmt"
	"strings"

	"github.com/cardforge/cardforge/internal/types"
)

// JudgeSystemPrompt asks the model to judge one card against its source
// context.
const JudgeSystemPrompt = `You are a quality reviewer for study materials.
Judge whether the card is accurate and relevant to its source passages.

Rules:
- accurate is false if the card contradicts the passages, invents facts not
  present in them, or is unrelated to them.
- The reason is one sentence naming the specific problem, or "ok".
- score is 0.0 to 1.0.

Return JSON: {"accurate": true, "reason": "ok", "score": 0.9}`

// EnhanceSystemPrompt asks the model to rewrite a card that failed review.
const EnhanceSystemPrompt = `You are a study-material author.
A reviewer rejected the card below. Rewrite it so the reviewer's objection no
longer applies, staying faithful to the source passages.

Rules:
- Keep the card's type and intent; fix only what the objection names.
- Use only information present in the source passages.
- Return the complete rewritten card, not a diff.`

// sourceExcerptChars bounds how much of each source chunk feeds the prompts.
const sourceExcerptChars = 1200

// BuildJudgePrompt builds the user prompt for one card judgment.
func BuildJudgePrompt(card types.Card, sources []string) string {
	var lines []string
	lines = append(lines, "Card under review:")
	lines = append(lines, renderCard(card))
	lines = append(lines, "\nSource passages:")
	lines = append(lines, renderSources(sources))
	lines = append(lines, "\nJudge this card. Return JSON.")
	return strings.Join(lines, "\n")
}

// BuildEnhancePrompt builds the user prompt for regenerating a failed card.
func BuildEnhancePrompt(card types.Card, reason string, sources []string) string {
	var lines []string
	lines = append(lines, "Rejected card:")
	lines = append(lines, renderCard(card))
	lines = append(lines, fmt.Sprintf("\nReviewer objection: %s", reason))
	lines = append(lines, "\nSource passages:")
	lines = append(lines, renderSources(sources))
	lines = append(lines, "\nRewrite the card as JSON.")
	return strings.Join(lines, "\n")
}

func renderCard(card types.Card) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("type: %s", card.Type))
	lines = append(lines, fmt.Sprintf("title: %s", card.Title))
	lines = append(lines, fmt.Sprintf("chapter: %s", card.ChapterContext))

	switch {
	case card.Flashcard != nil:
		lines = append(lines, fmt.Sprintf("front: %s", card.Flashcard.Front))
		lines = append(lines, fmt.Sprintf("back: %s", card.Flashcard.Back))
	case card.Application != nil:
		lines = append(lines, fmt.Sprintf("scenario: %s", card.Application.Scenario))
		lines = append(lines, fmt.Sprintf("question: %s", card.Application.Question))
		lines = append(lines, "solution:")
		for _, step := range card.Application.Solution {
			lines = append(lines, "  "+step)
		}
	case card.Quiz != nil:
		lines = append(lines, fmt.Sprintf("question: %s", card.Quiz.Question))
		for i, choice := range card.Quiz.Choices {
			marker := " "
			if i == card.Quiz.CorrectAnswerIndex {
				marker = "*"
			}
			lines = append(lines, fmt.Sprintf("  %s %c) %s", marker, 'A'+rune(i), choice))
		}
		lines = append(lines, fmt.Sprintf("explanation: %s", card.Quiz.Explanation))
	case card.Summary != nil:
		lines = append(lines, fmt.Sprintf("narrative: %s", card.Summary.Narrative))
	}
	return strings.Join(lines, "\n")
}

func renderSources(sources []string) string {
	if len(sources) == 0 {
		return "(no source passages recorded)"
	}
	var lines []string
	for i, s := range sources {
		s = strings.TrimSpace(s)
		if len(s) > sourceExcerptChars {
			s = s[:sourceExcerptChars] + "..."
		}
		lines = append(lines, fmt.Sprintf("--- passage %d ---\n%s", i+1, s))
	}
	return strings.Join(lines, "\n")
}
