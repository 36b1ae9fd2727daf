package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var reJSONFence = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")

// ExtractJSONPayload pulls the JSON document out of a model response.
// Models wrap output in markdown fences or chat around the JSON; a fenced
// block wins, then the outermost brace pair, then the raw content.
func ExtractJSONPayload(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	jsonStr := content

	if strings.Contains(content, "```json") {
		if m := reJSONFence.FindStringSubmatch(content); m != nil {
			jsonStr = m[1]
		} else {
			jsonStr = braceSlice(content)
		}
	} else {
		jsonStr = braceSlice(content)
	}

	if !json.Valid([]byte(jsonStr)) {
		return nil, fmt.Errorf("response contains no valid json")
	}
	return []byte(jsonStr), nil
}

func braceSlice(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

// ForceArtistName overwrites artist_name on a raw profile document. The
// filename-derived name is authoritative over whatever the model produced.
func ForceArtistName(doc []byte, name string) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	m["artist_name"] = name
	return json.Marshal(m)
}
