package matching

import (
	"fmt"
	"strings"

	"github.com/Trivo121/side-projects/internal/catalog"
)

// Recommendation tone thresholds for fallback analyses.
const (
	ExcellentThreshold = 60.0
	GoodThreshold      = 30.0
)

const (
	toneExcellent = "excellent growth opportunities building on your existing skills."
	toneGood      = "a good learning opportunity to expand your technical expertise."
	toneExplore   = "a chance to explore new technologies and broaden your skill set."
)

// Fallback builds a deterministic analysis from skill overlap alone.
func Fallback(userSkills []string, p catalog.Posting) Analysis {
	score := Score(userSkills, p.Skills)
	matching, missing := splitSkills(userSkills, p.Skills)

	return Analysis{
		Score:                score,
		SkillAlignment:       alignmentText(matching, len(matching)+len(missing)),
		KeyStrengths:         strengthsText(matching, p.Company),
		AreasForImprovement:  improvementText(missing),
		RecommendationReason: fmt.Sprintf("This %s position at %s offers %s", p.Title, p.Company, Tone(score)),
		Source:               SourceFallback,
	}
}

// Tone picks the recommendation wording for a score band.
func Tone(score float64) string {
	switch {
	case score >= ExcellentThreshold:
		return toneExcellent
	case score >= GoodThreshold:
		return toneGood
	default:
		return toneExplore
	}
}

// splitSkills partitions required skills by case-insensitive substring
// overlap with any user skill. Blank entries are skipped, as in Score.
func splitSkills(userSkills, required []string) (matching, missing []string) {
	user := normalizeSkills(userSkills)
	for _, req := range required {
		req = strings.TrimSpace(req)
		if req == "" {
			continue
		}
		lower := strings.ToLower(req)
		found := false
		for _, have := range user {
			if substringMatch(lower, have) {
				found = true
				break
			}
		}
		if found {
			matching = append(matching, req)
		} else {
			missing = append(missing, req)
		}
	}
	return matching, missing
}

func alignmentText(matching []string, required int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have experience in %d out of %d required skills", len(matching), required)
	if len(matching) > 0 {
		b.WriteString(": " + strings.Join(firstN(matching, 2), ", "))
		if len(matching) > 2 {
			fmt.Fprintf(&b, " and %d more", len(matching)-2)
		}
	}
	b.WriteString(".")
	return b.String()
}

func improvementText(missing []string) string {
	var b strings.Builder
	b.WriteString("Focus on developing skills in ")
	if len(missing) > 0 {
		b.WriteString(strings.Join(firstN(missing, 2), ", "))
		if len(missing) > 2 {
			fmt.Fprintf(&b, " and %d other areas", len(missing)-2)
		}
	} else {
		b.WriteString("advanced concepts in your existing skill areas")
	}
	b.WriteString(" to strengthen your candidacy.")
	return b.String()
}

func strengthsText(matching []string, company string) string {
	var b strings.Builder
	b.WriteString("Your technical foundation")
	switch len(matching) {
	case 0:
	case 1:
		b.WriteString(" in " + matching[0])
	default:
		b.WriteString(" in areas like " + matching[0])
	}
	fmt.Fprintf(&b, " aligns well with %s's technology stack.", company)
	return b.String()
}

func firstN(items []string, n int) []string {
	if len(items) < n {
		return items
	}
	return items[:n]
}
