package profile

import (
	"fmt"
	"strings"
	"time"
)

// Source tells how a profile was created.
type Source string

const (
	SourceManual   Source = "manual"
	SourceDocument Source = "document"
)

const notSpecified = "Not specified"

// Options offered by the interactive input.
var (
	EducationLevels = []string{
		"High School", "Pursuing Bachelor's", "Completed Bachelor's",
		"Pursuing Master's", "Completed Master's", "PhD", "Other",
	}
	ExperienceLevels = []string{"No experience", "0-6 months", "6 months-1 year", "1-2 years", "2+ years"}
	YearsOfStudy     = []string{"1", "2", "3", "4", "5", "6"}
)

// Profile is the user side of a match.
type Profile struct {
	Source          Source    `json:"source"`
	TechnicalSkills []string  `json:"technical_skills"`
	EducationLevel  string    `json:"education_level,omitempty"`
	CourseName      string    `json:"course_name,omitempty"`
	YearOfStudy     string    `json:"year_of_study,omitempty"`
	Specialization  string    `json:"specialisation,omitempty"`
	WorkExperience  string    `json:"work_experience_level,omitempty"`
	FileName        string    `json:"file_name,omitempty"`
	UploadedAt      time.Time `json:"upload_date,omitzero"`
	DocumentText    string    `json:"document_text,omitempty"`
}

// ValidationError lists every problem found in a manual profile.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid profile: " + strings.Join(e.Problems, "; ")
}

// ParseSkills splits a comma separated list, dropping blanks.
func ParseSkills(raw string) []string {
	var skills []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// Normalize trims every field and drops blank skills. An empty source
// defaults to manual.
func (p *Profile) Normalize() {
	if p.Source == "" {
		p.Source = SourceManual
	}
	skills := p.TechnicalSkills[:0]
	for _, s := range p.TechnicalSkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	p.TechnicalSkills = skills
	p.EducationLevel = strings.TrimSpace(p.EducationLevel)
	p.CourseName = strings.TrimSpace(p.CourseName)
	p.YearOfStudy = strings.TrimSpace(p.YearOfStudy)
	p.Specialization = strings.TrimSpace(p.Specialization)
	p.WorkExperience = strings.TrimSpace(p.WorkExperience)
}

// Validate checks the fields the manual form requires. Document profiles
// only need a file name.
func (p Profile) Validate() error {
	var problems []string

	switch p.Source {
	case SourceDocument:
		if strings.TrimSpace(p.FileName) == "" {
			problems = append(problems, "File name is required")
		}
	case SourceManual, "":
		if len(p.TechnicalSkills) == 0 {
			problems = append(problems, "Technical skills are required")
		}
		if strings.TrimSpace(p.EducationLevel) == "" {
			problems = append(problems, "Education level is required")
		}
		if strings.TrimSpace(p.CourseName) == "" {
			problems = append(problems, "Course name is required")
		}
		if strings.TrimSpace(p.YearOfStudy) == "" {
			problems = append(problems, "Year of study is required")
		}
		if strings.TrimSpace(p.Specialization) == "" {
			problems = append(problems, "Specialisation is required")
		}
		if strings.TrimSpace(p.WorkExperience) == "" {
			problems = append(problems, "Work experience level is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown profile source %q", p.Source))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Describe renders the profile as prompt text.
func (p Profile) Describe() string {
	var b strings.Builder

	if p.Source == SourceDocument {
		b.WriteString("User Profile from CV:\n")
		fmt.Fprintf(&b, "- File: %s\n", orDefault(p.FileName, "Unknown"))
		uploaded := "Unknown"
		if !p.UploadedAt.IsZero() {
			uploaded = p.UploadedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "- Upload Date: %s\n", uploaded)
		fmt.Fprintf(&b, "- Technical Skills: %s\n", orDefault(strings.Join(p.TechnicalSkills, ", "), notSpecified))
		if text := excerpt(p.DocumentText, maxExcerptRunes); text != "" {
			fmt.Fprintf(&b, "- CV Excerpt: %s\n", text)
		}
		return b.String()
	}

	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Technical Skills: %s\n", strings.Join(p.TechnicalSkills, ", "))
	fmt.Fprintf(&b, "- Education Level: %s\n", orDefault(p.EducationLevel, notSpecified))
	fmt.Fprintf(&b, "- Course: %s\n", orDefault(p.CourseName, notSpecified))
	fmt.Fprintf(&b, "- Year of Study: %s\n", orDefault(p.YearOfStudy, notSpecified))
	fmt.Fprintf(&b, "- Specialization: %s\n", orDefault(p.Specialization, notSpecified))
	fmt.Fprintf(&b, "- Work Experience: %s\n", orDefault(p.WorkExperience, notSpecified))
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

const maxExcerptRunes = 1500

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
