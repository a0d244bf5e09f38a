package synth

// FlashcardJSONSchema returns the JSON schema for one generated flashcard.
func FlashcardJSONSchema() map[string]any {
	return map[string]any{
		"name":   "flashcard",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"title", "front", "back"},
			"properties": map[string]any{
				"title":      map[string]any{"type": "string"},
				"front":      map[string]any{"type": "string"},
				"back":       map[string]any{"type": "string"},
				"difficulty": map[string]any{"type": "string"},
				"tags": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	}
}

// ApplicationJSONSchema returns the JSON schema for one application card.
func ApplicationJSONSchema() map[string]any {
	return map[string]any{
		"name":   "application",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"title", "scenario", "question", "solution"},
			"properties": map[string]any{
				"title":    map[string]any{"type": "string"},
				"scenario": map[string]any{"type": "string"},
				"question": map[string]any{"type": "string"},
				"solution": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"difficulty": map[string]any{"type": "string"},
			},
		},
	}
}

// QuizJSONSchema returns the JSON schema for a chapter's quiz questions.
func QuizJSONSchema() map[string]any {
	return map[string]any{
		"name":   "quiz_questions",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"questions"},
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"title", "question", "choices", "correctAnswer", "explanation"},
						"properties": map[string]any{
							"title":    map[string]any{"type": "string"},
							"question": map[string]any{"type": "string"},
							"choices": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
							"correctAnswer": map[string]any{"type": "string"},
							"explanation":   map[string]any{"type": "string"},
							"difficulty":    map[string]any{"type": "string"},
						},
					},
				},
			},
		},
	}
}

// SummaryJSONSchema returns the JSON schema for a summary or overview card.
func SummaryJSONSchema() map[string]any {
	return map[string]any{
		"name":   "summary",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"title", "narrative"},
			"properties": map[string]any{
				"title":     map[string]any{"type": "string"},
				"narrative": map[string]any{"type": "string"},
			},
		},
	}
}
