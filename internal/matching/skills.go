package matching

import "strings"

// Match strengths for a single (required, user) skill pair.
const (
	StrengthExact     = 1.0
	StrengthSubstring = 0.8
	StrengthFamily    = 0.6
	StrengthLanguage  = 0.4
)

// DefaultScore is returned when either skill list is empty.
const DefaultScore = 30.0

var (
	familyKeywords   = []string{"python", "java", "react", "node", "sql", "css", "html", "js", "api", "data"}
	languageKeywords = []string{"python", "java", "javascript", "c++", "c#"}
)

// Score rates how well the user skills cover the required skills, in [0,100].
func Score(user, required []string) float64 {
	userSkills := normalizeSkills(user)
	requiredSkills := normalizeSkills(required)
	if len(userSkills) == 0 || len(requiredSkills) == 0 {
		return DefaultScore
	}

	var total float64
	for _, req := range requiredSkills {
		best := 0.0
		for _, have := range userSkills {
			s := strength(req, have)
			if s > best {
				best = s
			}
			if best == StrengthExact {
				break
			}
		}
		total += best
	}

	return clamp(total / float64(len(requiredSkills)) * 100)
}

// strength expects lowercased, trimmed input.
func strength(required, user string) float64 {
	switch {
	case required == user:
		return StrengthExact
	case substringMatch(required, user):
		return StrengthSubstring
	case shareKeyword(required, user, familyKeywords):
		return StrengthFamily
	case containsAny(required, languageKeywords) && containsAny(user, languageKeywords):
		return StrengthLanguage
	default:
		return 0
	}
}

func substringMatch(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func shareKeyword(a, b string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(a, k) && strings.Contains(b, k) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
