package filtering

import (
	"context"
	"strings"

	"github.com/Trivo121/side-projects/internal/matching"
)

// AllLocations selects every location.
const AllLocations = "All"

type locationsFilter struct {
	toggle
	locations []string
}

// NewLocations creates a filter that keeps recommendations in the configured locations.
func NewLocations() Filter {
	return &locationsFilter{}
}

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Validate(cfg *Config) error {
	f.locations = nil
	if cfg == nil {
		return nil
	}
	for _, loc := range cfg.Locations {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		if strings.EqualFold(loc, AllLocations) {
			f.locations = nil
			return nil
		}
		f.locations = append(f.locations, loc)
	}
	return nil
}

func (f *locationsFilter) Apply(_ context.Context, _ Deps, recs []matching.Recommendation) ([]matching.Recommendation, Step, error) {
	if len(f.locations) == 0 {
		return recs, Step{Initial: len(recs), Left: len(recs)}, nil
	}
	out, step := keep(recs, func(rec matching.Recommendation) bool {
		for _, loc := range f.locations {
			if strings.EqualFold(strings.TrimSpace(rec.Location), loc) {
				return true
			}
		}
		return false
	})
	return out, step, nil
}

func (f *locationsFilter) Status() Status {
	details := map[string]string{}
	if len(f.locations) > 0 {
		details["locations"] = strings.Join(f.locations, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
