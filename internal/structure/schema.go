package structure

// TitleListJSONSchema returns the JSON schema for chapter title listing.
func TitleListJSONSchema() map[string]any {
	return map[string]any{
		"name":   "chapter_titles",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"titles"},
			"properties": map[string]any{
				"titles": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	}
}

// TocPagesJSONSchema returns the JSON schema for ToC page detection.
func TocPagesJSONSchema() map[string]any {
	return map[string]any{
		"name":   "toc_pages",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"tocPages"},
			"properties": map[string]any{
				"tocPages": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
		},
	}
}

// RangeMappingJSONSchema returns the JSON schema for title-to-range mapping.
func RangeMappingJSONSchema() map[string]any {
	return map[string]any{
		"name":   "chapter_ranges",
		"strict": true,
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"chapters"},
			"properties": map[string]any{
				"chapters": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"title", "startPage", "endPage"},
						"properties": map[string]any{
							"title":     map[string]any{"type": "string"},
							"startPage": map[string]any{"type": "integer"},
							"endPage":   map[string]any{"type": "integer"},
						},
					},
				},
			},
		},
	}
}
