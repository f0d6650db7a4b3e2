package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Trivo121/side-projects/internal/matching"
)

type minScoreFilter struct {
	toggle
	min float64
}

// NewMinScore creates a filter that drops recommendations scoring below the configured minimum.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinScore < 0 || cfg.MinScore > 100 {
		return fmt.Errorf("minimum score must be between 0 and 100, got %v", cfg.MinScore)
	}
	f.min = cfg.MinScore
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, _ Deps, recs []matching.Recommendation) ([]matching.Recommendation, Step, error) {
	if f.min <= 0 {
		return recs, Step{Initial: len(recs), Left: len(recs)}, nil
	}
	out, step := keep(recs, func(rec matching.Recommendation) bool {
		return rec.Score >= f.min
	})
	return out, step, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.FormatFloat(f.min, 'f', -1, 64)},
	}
}
