package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Analysis sources.
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// DefaultRemoteScore replaces a missing, non-numeric or out-of-range model score.
const DefaultRemoteScore = 50.0

// Response keys expected from the model.
const (
	KeyMatchScore           = "match_score"
	KeySkillAlignment       = "skill_alignment"
	KeyKeyStrengths         = "key_strengths"
	KeyAreasForImprovement  = "areas_for_improvement"
	KeyRecommendationReason = "recommendation_reason"
)

var requiredKeys = []string{
	KeyMatchScore,
	KeySkillAlignment,
	KeyKeyStrengths,
	KeyAreasForImprovement,
	KeyRecommendationReason,
}

// Analysis is the outcome of matching one profile against one posting.
type Analysis struct {
	Score                float64 `json:"match_score"`
	SkillAlignment       string  `json:"skill_alignment"`
	KeyStrengths         string  `json:"key_strengths"`
	AreasForImprovement  string  `json:"areas_for_improvement"`
	RecommendationReason string  `json:"recommendation_reason"`
	Source               string  `json:"source"`
}

// ParseError reports model output that could not be turned into an Analysis.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse model response: %s: %v", e.Reason, e.Err)
	}
	return "parse model response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseAnalysis reads a model response into an Analysis. Missing text fields
// get a placeholder and a bad score becomes DefaultRemoteScore; a response
// with none of the expected fields is an error.
func ParseAnalysis(raw string) (Analysis, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return Analysis{}, &ParseError{Reason: "empty response", Raw: raw}
	}

	var data map[string]any
	if err := unmarshalJSON([]byte(cleaned), &data); err != nil {
		return Analysis{}, &ParseError{Reason: "invalid json", Raw: raw, Err: err}
	}
	if data == nil {
		return Analysis{}, &ParseError{Reason: "response is not an object", Raw: raw}
	}

	present := 0
	for _, key := range requiredKeys {
		if _, ok := data[key]; ok {
			present++
		}
	}
	if present == 0 {
		return Analysis{}, &ParseError{Reason: "missing required fields", Raw: raw}
	}

	score := coerceFloat(data[KeyMatchScore])
	if math.IsNaN(score) || score < 0 || score > 100 {
		score = DefaultRemoteScore
	}

	return Analysis{
		Score:                score,
		SkillAlignment:       textField(data, KeySkillAlignment),
		KeyStrengths:         textField(data, KeyKeyStrengths),
		AreasForImprovement:  textField(data, KeyAreasForImprovement),
		RecommendationReason: textField(data, KeyRecommendationReason),
		Source:               SourceRemote,
	}, nil
}

func textField(data map[string]any, key string) string {
	v, ok := data[key]
	if _, nested := v.(map[string]any); !ok || v == nil || nested {
		return placeholder(key)
	}
	return coerceString(v)
}

func placeholder(key string) string {
	return fmt.Sprintf("Analysis for %s not available", key)
}

func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// extractJSON strips markdown fences and any prose around the outermost object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		return ""
	default:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
