package types

import "testing"

func validFlashcard() Card {
	return Card{
		Type:           CardFlashcard,
		Title:          "Photosynthesis",
		ChapterContext: "Chapter 1",
		Flashcard:      &FlashcardPayload{Front: "What is photosynthesis?", Back: "Conversion of light to chemical energy."},
	}
}

func TestNewCard_ValidVariants(t *testing.T) {
	tests := []struct {
		name string
		card Card
	}{
		{"flashcard", validFlashcard()},
		{
			"application",
			Card{
				Type:  CardApplication,
				Title: "Greenhouse design",
				Application: &ApplicationPayload{
					Scenario: "You are designing a greenhouse.",
					Question: "How should panels be oriented?",
					Solution: []string{"1. Measure sun angle.", "2. Orient panels south."},
				},
			},
		},
		{
			"quiz",
			Card{
				Type:  CardQuiz,
				Title: "Light reactions",
				Quiz: &QuizPayload{
					Question:           "Where do light reactions occur?",
					Choices:            []string{"Thylakoid", "Stroma", "Nucleus", "Cytosol"},
					CorrectAnswerIndex: 0,
					Explanation:        "Light reactions occur in the thylakoid membrane.",
				},
			},
		},
		{
			"summary",
			Card{
				Type:    CardSummary,
				Title:   "Chapter 1 in brief",
				Summary: &SummaryPayload{Narrative: "This chapter covers energy capture in plants."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := NewCard(tt.card)
			if err != nil {
				t.Fatalf("NewCard failed: %v", err)
			}
			if card.Difficulty == "" {
				t.Error("expected difficulty default to be applied")
			}
		})
	}
}

func TestNewCard_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		card Card
	}{
		{"empty title", func() Card { c := validFlashcard(); c.Title = ""; return c }()},
		{"no payload", Card{Type: CardFlashcard, Title: "x"}},
		{
			"two payloads",
			func() Card {
				c := validFlashcard()
				c.Summary = &SummaryPayload{Narrative: "n"}
				return c
			}(),
		},
		{
			"type/payload mismatch",
			Card{Type: CardQuiz, Title: "x", Flashcard: &FlashcardPayload{Front: "f", Back: "b"}},
		},
		{
			"quiz index out of range",
			Card{
				Type:  CardQuiz,
				Title: "x",
				Quiz:  &QuizPayload{Question: "q", Choices: []string{"a", "b"}, CorrectAnswerIndex: 2},
			},
		},
		{
			"quiz too few choices",
			Card{
				Type:  CardQuiz,
				Title: "x",
				Quiz:  &QuizPayload{Question: "q", Choices: []string{"a"}, CorrectAnswerIndex: 0},
			},
		},
		{"unknown type", Card{Type: "NOTE", Title: "x", Summary: &SummaryPayload{Narrative: "n"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCard(tt.card); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestChunkMeetsMinimums(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}

	tests := []struct {
		name  string
		chunk Chunk
		want  bool
	}{
		{"both satisfied", Chunk{Text: long, WordCount: 40}, true},
		{"too few words", Chunk{Text: long, WordCount: 10}, false},
		{"too short text", Chunk{Text: "short text", WordCount: 50}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.chunk.MeetsMinimums(); got != tt.want {
				t.Errorf("MeetsMinimums() = %v, want %v", got, tt.want)
			}
		})
	}
}
