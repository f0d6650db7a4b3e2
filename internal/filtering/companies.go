package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/matching"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies creates a filter that removes recommendations from the configured companies.
func NewExcludedCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "exclude_companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.ExcludeCompanies {
		if c = strings.TrimSpace(c); c != "" {
			f.companies = append(f.companies, c)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, recs []matching.Recommendation) ([]matching.Recommendation, Step, error) {
	if len(f.companies) == 0 {
		return recs, Step{Initial: len(recs), Left: len(recs)}, nil
	}

	var excluded []string
	out, step := keep(recs, func(rec matching.Recommendation) bool {
		for _, c := range f.companies {
			if strings.EqualFold(strings.TrimSpace(rec.Company), c) {
				excluded = append(excluded, rec.Title)
				return false
			}
		}
		return true
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding recommendations by company",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_postings", excluded),
			zap.Int("left", step.Left),
		)
	}
	return out, step, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
