package matching

import (
	"errors"
	"testing"
)

func TestParseAnalysis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantScore float64
		wantAlign string
		wantWhy   string
	}{
		{
			name:      "plain json",
			raw:       `{"match_score": 82, "skill_alignment": "Strong", "key_strengths": "Python", "areas_for_improvement": "ML", "recommendation_reason": "Apply"}`,
			wantScore: 82,
			wantAlign: "Strong",
			wantWhy:   "Apply",
		},
		{
			name:      "fenced json",
			raw:       "```json\n{\"match_score\": 70, \"skill_alignment\": \"Good\", \"key_strengths\": \"a\", \"areas_for_improvement\": \"b\", \"recommendation_reason\": \"c\"}\n```",
			wantScore: 70,
			wantAlign: "Good",
			wantWhy:   "c",
		},
		{
			name:      "bare fence",
			raw:       "```\n{\"match_score\": 10, \"skill_alignment\": \"Weak\"}\n```",
			wantScore: 10,
			wantAlign: "Weak",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "prose around object",
			raw:       "Here is the analysis:\n{\"match_score\": 45, \"skill_alignment\": \"Fair\"}\nHope it helps!",
			wantScore: 45,
			wantAlign: "Fair",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "trailing comma is repaired",
			raw:       `{"match_score": 66, "skill_alignment": "Ok",}`,
			wantScore: 66,
			wantAlign: "Ok",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "out of range score",
			raw:       `{"match_score": 140, "skill_alignment": "x"}`,
			wantScore: 50,
			wantAlign: "x",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "negative score",
			raw:       `{"match_score": -1, "skill_alignment": "x"}`,
			wantScore: 50,
			wantAlign: "x",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "non numeric score",
			raw:       `{"match_score": "high", "skill_alignment": "x"}`,
			wantScore: 50,
			wantAlign: "x",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "numeric string score",
			raw:       `{"match_score": "75%", "skill_alignment": "x"}`,
			wantScore: 75,
			wantAlign: "x",
			wantWhy:   "Analysis for recommendation_reason not available",
		},
		{
			name:      "missing score",
			raw:       `{"skill_alignment": "x", "recommendation_reason": "y"}`,
			wantScore: 50,
			wantAlign: "x",
			wantWhy:   "y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			analysis, err := ParseAnalysis(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if analysis.Score != tt.wantScore {
				t.Fatalf("expected score %v, got %v", tt.wantScore, analysis.Score)
			}
			if analysis.SkillAlignment != tt.wantAlign {
				t.Fatalf("unexpected alignment: %q", analysis.SkillAlignment)
			}
			if analysis.RecommendationReason != tt.wantWhy {
				t.Fatalf("unexpected recommendation: %q", analysis.RecommendationReason)
			}
			if analysis.Source != SourceRemote {
				t.Fatalf("expected remote source, got %q", analysis.Source)
			}
		})
	}
}

func TestParseAnalysisPlaceholders(t *testing.T) {
	analysis, err := ParseAnalysis(`{"match_score": 90}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := map[string]string{
		KeySkillAlignment:       analysis.SkillAlignment,
		KeyKeyStrengths:         analysis.KeyStrengths,
		KeyAreasForImprovement:  analysis.AreasForImprovement,
		KeyRecommendationReason: analysis.RecommendationReason,
	}
	for key, value := range fields {
		if want := "Analysis for " + key + " not available"; value != want {
			t.Fatalf("expected placeholder for %s, got %q", key, value)
		}
	}
}

func TestParseAnalysisNestedObjectUsesPlaceholder(t *testing.T) {
	analysis, err := ParseAnalysis(`{"match_score": 75, "skill_alignment": {"nested": 1}, "key_strengths": ["Go", {"x": 2}, "SQL"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "Analysis for " + KeySkillAlignment + " not available"; analysis.SkillAlignment != want {
		t.Fatalf("expected placeholder, got %q", analysis.SkillAlignment)
	}
	if analysis.KeyStrengths != "Go SQL" {
		t.Fatalf("unexpected strengths: %q", analysis.KeyStrengths)
	}
}

func TestParseAnalysisErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "array", raw: `[1, 2, 3]`},
		{name: "no known keys", raw: `{"verdict": "great"}`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAnalysis(tt.raw)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Raw != tt.raw {
				t.Fatalf("expected raw response to be kept")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"result: {\"a\":1} done":  `{"a":1}`,
		"no json here":            "no json here",
	}

	for input, want := range tests {
		if got := extractJSON(input); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}
