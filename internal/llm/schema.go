package llm

// BuildProfileJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map; used locally to validate model output before persisting.
// Everything except artist_name is nullable.
func BuildProfileJSONSchema() map[string]any {
	props := map[string]any{
		"artist_name": map[string]any{"type": "string", "minLength": 1},
		"guru_name":   nullableString(),
		"gharana_details": nullableObject(map[string]any{
			"gharana_name": nullableString(),
			"style":        nullableString(),
			"tradition":    nullableString(),
		}),
		"biography": nullableObject(map[string]any{
			"early_life":        nullableString(),
			"background":        nullableString(),
			"education":         nullableString(),
			"career_highlights": nullableString(),
		}),
		"achievements": map[string]any{
			"type": []string{"array", "null"},
			"items": nullableObject(map[string]any{
				"type":    nullableString(),
				"title":   nullableString(),
				"year":    nullableString(),
				"details": nullableString(),
			}),
		},
		"contact_details": nullableObject(map[string]any{
			"social_media": nullableObject(map[string]any{
				"instagram": nullableString(),
				"facebook":  nullableString(),
				"twitter":   nullableString(),
				"youtube":   nullableString(),
				"linkedin":  nullableString(),
				"spotify":   nullableString(),
				"tiktok":    nullableString(),
				"other":     nullableString(),
			}),
			"contact_info": nullableObject(map[string]any{
				"phone_numbers": nullableStringArray(),
				"emails":        nullableStringArray(),
				"website":       nullableString(),
				"phone":         nullableString(),
				"email":         nullableString(),
			}),
			"address": nullableObject(map[string]any{
				"full_address": nullableString(),
				"city":         nullableString(),
				"state":        nullableString(),
				"country":      nullableString(),
			}),
		}),
		"summary":               nullableString(),
		"extraction_confidence": nullableString(),
		"additional_notes":      nullableString(),
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{"artist_name"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableStringArray() map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": map[string]any{"type": "string"},
	}
}

func nullableObject(props map[string]any) map[string]any {
	return map[string]any{
		"type":       []string{"object", "null"},
		"properties": props,
	}
}
