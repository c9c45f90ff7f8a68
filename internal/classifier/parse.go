package classifier

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

// DefaultConfidence is used when the model names a valid category without a score.
const DefaultConfidence = 1.0

type answer struct {
	Category   string `json:"category"`
	Confidence any    `json:"confidence"`
}

// ParseAnswer validates a raw model answer against set. It accepts the JSON
// object requested by the prompt or a bare category label. A label outside
// the set becomes Other with confidence 0.
func ParseAnswer(raw string, set meeting.CategorySet) meeting.Classification {
	text := stripFences(raw)

	var a answer
	if err := json.Unmarshal([]byte(text), &a); err != nil || a.Category == "" {
		a = answer{Category: text}
	}

	label := strings.Trim(strings.TrimSpace(a.Category), `"'.*`)
	cat, ok := set.Lookup(label)
	if !ok {
		return meeting.Classification{Category: meeting.Other, Confidence: 0}
	}

	return meeting.Classification{Category: cat, Confidence: confidence(a.Confidence)}
}

func confidence(v any) float64 {
	var f float64
	switch c := v.(type) {
	case float64:
		f = c
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return DefaultConfidence
		}
		f = parsed
	default:
		return DefaultConfidence
	}
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
