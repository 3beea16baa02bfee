package marketplace

import (
	"encoding/json"
	"strings"
)

// ParseSkills turns a raw skills field into a clean list. Upstream stores
// skills either as a JSON array string or as a comma-separated list; a value
// that looks like JSON but fails to parse falls back to comma splitting.
func ParseSkills(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}

	if strings.HasPrefix(field, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(field), &parsed); err == nil {
			return cleanSkills(parsed)
		}
	}

	return cleanSkills(strings.Split(field, ","))
}

func cleanSkills(raw []string) []string {
	skills := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		skills = append(skills, s)
	}
	return skills
}

// MatchSkills counts exact matches between required and held skills after
// trimming and lower-casing both sides. It returns the count and the matched
// required skills in their original spelling. No fuzzy matching.
func MatchSkills(required, held []string) (int, []string) {
	if len(required) == 0 || len(held) == 0 {
		return 0, nil
	}

	heldSet := make(map[string]struct{}, len(held))
	for _, s := range held {
		heldSet[normalizeSkill(s)] = struct{}{}
	}

	var matched []string
	for _, s := range required {
		if _, ok := heldSet[normalizeSkill(s)]; ok {
			matched = append(matched, strings.TrimSpace(s))
		}
	}
	return len(matched), matched
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
