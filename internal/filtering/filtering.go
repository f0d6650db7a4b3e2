package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/matching"
)

// Filter represents a single filtering step applied to recommendations.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, recs []matching.Recommendation) ([]matching.Recommendation, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the criteria consumed by the filters. Zero values mean
// "no restriction".
type Config struct {
	MinScore         float64  `json:"min_score" mapstructure:"min_score"`
	Locations        []string `json:"locations" mapstructure:"locations"`
	Stipend          string   `json:"stipend" mapstructure:"stipend"`
	ExcludeCompanies []string `json:"exclude_companies" mapstructure:"exclude_companies"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// toggle carries the enabled state shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// Default returns a fresh set of every filter in application order.
func Default() []Filter {
	return []Filter{
		NewMinScore(),
		NewLocations(),
		NewStipend(),
		NewExcludedCompanies(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates and then executes the supplied filters sequentially. The input
// slice is never modified.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, recs []matching.Recommendation) ([]matching.Recommendation, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	out := append([]matching.Recommendation{}, recs...)
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, info, err := step.Apply(ctx, deps, out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		out = next
	}

	return out, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(recs []matching.Recommendation, pred func(matching.Recommendation) bool) ([]matching.Recommendation, Step) {
	out := make([]matching.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, Step{Initial: len(recs), Dropped: len(recs) - len(out), Left: len(out)}
}
