package matching

import (
	"testing"

	"github.com/Trivo121/side-projects/internal/catalog"
)

var mlPosting = catalog.Posting{
	ID:       2,
	Title:    "ML Engineer Intern",
	Company:  "DataTech",
	Location: "Hyderabad",
	Stipend:  "20K",
	Skills:   []string{"Python", "Machine Learning", "TensorFlow", "Data Analysis"},
}

func TestFallbackPartialMatch(t *testing.T) {
	analysis := Fallback([]string{"Python", "React"}, mlPosting)

	if analysis.Score != 25 {
		t.Fatalf("expected score 25, got %v", analysis.Score)
	}
	if analysis.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %q", analysis.Source)
	}

	expect := map[string]string{
		"alignment":      "You have experience in 1 out of 4 required skills: Python.",
		"strengths":      "Your technical foundation in Python aligns well with DataTech's technology stack.",
		"improvement":    "Focus on developing skills in Machine Learning, TensorFlow and 1 other areas to strengthen your candidacy.",
		"recommendation": "This ML Engineer Intern position at DataTech offers a chance to explore new technologies and broaden your skill set.",
	}
	got := map[string]string{
		"alignment":      analysis.SkillAlignment,
		"strengths":      analysis.KeyStrengths,
		"improvement":    analysis.AreasForImprovement,
		"recommendation": analysis.RecommendationReason,
	}

	for key, want := range expect {
		if got[key] != want {
			t.Fatalf("unexpected %s:\nwant %q\ngot  %q", key, want, got[key])
		}
	}
}

func TestFallbackIgnoresBlankRequiredSkills(t *testing.T) {
	posting := catalog.Posting{Title: "Data Intern", Company: "Acme", Skills: []string{"Python", "", "  "}}
	analysis := Fallback([]string{"Python"}, posting)

	if analysis.Score != 100 {
		t.Fatalf("expected score 100, got %v", analysis.Score)
	}
	if want := "You have experience in 1 out of 1 required skills: Python."; analysis.SkillAlignment != want {
		t.Fatalf("unexpected alignment: %q", analysis.SkillAlignment)
	}
	if want := "Focus on developing skills in advanced concepts in your existing skill areas to strengthen your candidacy."; analysis.AreasForImprovement != want {
		t.Fatalf("unexpected improvement: %q", analysis.AreasForImprovement)
	}
}

func TestFallbackFullMatch(t *testing.T) {
	posting := catalog.Posting{Title: "React Developer Intern", Company: "WebCraft", Skills: []string{"React", "JavaScript", "Redux", "CSS"}}
	analysis := Fallback([]string{"react", "javascript", "redux", "css"}, posting)

	if analysis.Score != 100 {
		t.Fatalf("expected score 100, got %v", analysis.Score)
	}
	if want := "You have experience in 4 out of 4 required skills: React, JavaScript and 2 more."; analysis.SkillAlignment != want {
		t.Fatalf("unexpected alignment: %q", analysis.SkillAlignment)
	}
	if want := "Your technical foundation in areas like React aligns well with WebCraft's technology stack."; analysis.KeyStrengths != want {
		t.Fatalf("unexpected strengths: %q", analysis.KeyStrengths)
	}
	if want := "Focus on developing skills in advanced concepts in your existing skill areas to strengthen your candidacy."; analysis.AreasForImprovement != want {
		t.Fatalf("unexpected improvement: %q", analysis.AreasForImprovement)
	}
	if want := "This React Developer Intern position at WebCraft offers excellent growth opportunities building on your existing skills."; analysis.RecommendationReason != want {
		t.Fatalf("unexpected recommendation: %q", analysis.RecommendationReason)
	}
}

func TestFallbackNoMatches(t *testing.T) {
	posting := catalog.Posting{Title: "Welder", Company: "Forge", Skills: []string{"Welding"}}
	analysis := Fallback([]string{"Photography"}, posting)

	if analysis.Score != 0 {
		t.Fatalf("expected score 0, got %v", analysis.Score)
	}
	if want := "You have experience in 0 out of 1 required skills."; analysis.SkillAlignment != want {
		t.Fatalf("unexpected alignment: %q", analysis.SkillAlignment)
	}
	if want := "Your technical foundation aligns well with Forge's technology stack."; analysis.KeyStrengths != want {
		t.Fatalf("unexpected strengths: %q", analysis.KeyStrengths)
	}
	if want := "Focus on developing skills in Welding to strengthen your candidacy."; analysis.AreasForImprovement != want {
		t.Fatalf("unexpected improvement: %q", analysis.AreasForImprovement)
	}
}

func TestFallbackUsesScoreForToneNotSubstringMatches(t *testing.T) {
	// family match scores 60 while the substring rule finds nothing
	posting := catalog.Posting{Title: "DBA Intern", Company: "DataBase Pro", Skills: []string{"MySQL"}}
	analysis := Fallback([]string{"SQL Server"}, posting)

	if analysis.Score != 60 {
		t.Fatalf("expected score 60, got %v", analysis.Score)
	}
	if want := "This DBA Intern position at DataBase Pro offers " + toneExcellent; analysis.RecommendationReason != want {
		t.Fatalf("unexpected recommendation: %q", analysis.RecommendationReason)
	}
	if want := "You have experience in 0 out of 1 required skills."; analysis.SkillAlignment != want {
		t.Fatalf("unexpected alignment: %q", analysis.SkillAlignment)
	}
}

func TestFallbackEmptySkillsUsesDefaultScore(t *testing.T) {
	analysis := Fallback(nil, mlPosting)
	if analysis.Score != DefaultScore {
		t.Fatalf("expected default score, got %v", analysis.Score)
	}
	if want := "This ML Engineer Intern position at DataTech offers " + toneGood; analysis.RecommendationReason != want {
		t.Fatalf("unexpected recommendation: %q", analysis.RecommendationReason)
	}
}

func TestTone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{score: 100, want: toneExcellent},
		{score: 60, want: toneExcellent},
		{score: 59, want: toneGood},
		{score: 59.99, want: toneGood},
		{score: 30, want: toneGood},
		{score: 29.9, want: toneExplore},
		{score: 25, want: toneExplore},
		{score: 0, want: toneExplore},
	}

	for _, tt := range tests {
		if got := Tone(tt.score); got != tt.want {
			t.Fatalf("score %v: expected %q, got %q", tt.score, tt.want, got)
		}
	}
}
