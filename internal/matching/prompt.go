package matching

import (
	_ "embed"
	"strings"

	"github.com/Trivo121/side-projects/internal/catalog"
)

//go:embed prompt.md
var promptTemplate string

// promptResponsibilities caps how many responsibilities reach the prompt.
const promptResponsibilities = 3

// BuildPrompt renders the match prompt for a profile description and posting.
func BuildPrompt(profileText string, p catalog.Posting) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "{{PROFILE}}\n\nInternship: {{TITLE}} at {{COMPANY}}, {{LOCATION}}\nSkills: {{SKILLS}}\n" +
			"Responsibilities: {{RESPONSIBILITIES}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{PROFILE}}", strings.TrimSpace(profileText),
		"{{TITLE}}", p.Title,
		"{{COMPANY}}", p.Company,
		"{{LOCATION}}", p.Location,
		"{{SKILLS}}", strings.Join(p.Skills, ", "),
		"{{RESPONSIBILITIES}}", strings.Join(firstN(p.Responsibilities, promptResponsibilities), "; "),
	)
	return replacer.Replace(template)
}
