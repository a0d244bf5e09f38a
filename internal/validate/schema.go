package validate

import "github.com/cardforge/cardforge/internal/types"

// JudgeJSONSchema returns the JSON schema for a card judgment.
func JudgeJSONSchema() map[string]any {
	return map[string]any{
		"name":   "card_judgment",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"accurate", "reason", "score"},
			"properties": map[string]any{
				"accurate": map[string]any{"type": "boolean"},
				"reason":   map[string]any{"type": "string"},
				"score":    map[string]any{"type": "number"},
			},
		},
	}
}

// EnhanceJSONSchema returns the JSON schema for a regenerated card of the
// given type.
func EnhanceJSONSchema(cardType types.CardType) map[string]any {
	properties := map[string]any{
		"title": map[string]any{"type": "string"},
	}
	required := []string{"title"}

	switch cardType {
	case types.CardFlashcard:
		properties["front"] = map[string]any{"type": "string"}
		properties["back"] = map[string]any{"type": "string"}
		required = append(required, "front", "back")
	case types.CardApplication:
		properties["scenario"] = map[string]any{"type": "string"}
		properties["question"] = map[string]any{"type": "string"}
		properties["solution"] = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
		required = append(required, "scenario", "question", "solution")
	case types.CardQuiz:
		properties["question"] = map[string]any{"type": "string"}
		properties["choices"] = map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
		properties["correctAnswerIndex"] = map[string]any{"type": "integer"}
		properties["explanation"] = map[string]any{"type": "string"}
		required = append(required, "question", "choices", "correctAnswerIndex", "explanation")
	case types.CardSummary:
		properties["narrative"] = map[string]any{"type": "string"}
		required = append(required, "narrative")
	}

	return map[string]any{
		"name":   "enhanced_card",
		"strict": true,
		"schema": map[string]any{
			"type":       "object",
			"required":   required,
			"properties": properties,
		},
	}
}
