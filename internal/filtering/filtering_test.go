package filtering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/matching"
)

func rec(title, company, location, stipend string, score float64) matching.Recommendation {
	return matching.Recommendation{
		Posting: catalog.Posting{Title: title, Company: company, Location: location, Stipend: stipend},
		Score:   score,
	}
}

func sample() []matching.Recommendation {
	return []matching.Recommendation{
		rec("ML Engineer Intern", "DataTech", "Bangalore", "20K", 92),
		rec("Web Developer Intern", "WebWorks", "Pune", "15K", 75),
		rec("Data Analyst Intern", "InsightCo", "Delhi", "12K", 55),
		rec("Cloud Intern", "Skyline", "Bangalore", "25K", 30),
		rec("NGO Volunteer", "HelpOrg", "Remote", "Unpaid", 10),
	}
}

func titles(recs []matching.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}

func run(t *testing.T, cfg *Config) []matching.Recommendation {
	t.Helper()
	out, err := Run(context.Background(), cfg, Deps{Logger: zap.NewNop()}, Default(), sample())
	require.NoError(t, err)
	return out
}

func TestRunWithoutCriteriaKeepsEverything(t *testing.T) {
	assert.Len(t, run(t, nil), 5)
	assert.Len(t, run(t, &Config{}), 5)
}

func TestMinScore(t *testing.T) {
	out := run(t, &Config{MinScore: 60})
	assert.Equal(t, []string{"ML Engineer Intern", "Web Developer Intern"}, titles(out))
}

func TestMinScoreOutOfRange(t *testing.T) {
	_, err := Run(context.Background(), &Config{MinScore: 120}, Deps{}, Default(), sample())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_score")
}

func TestLocations(t *testing.T) {
	out := run(t, &Config{Locations: []string{"bangalore", "Remote"}})
	assert.Equal(t, []string{"ML Engineer Intern", "Cloud Intern", "NGO Volunteer"}, titles(out))

	out = run(t, &Config{Locations: []string{"Pune", "All"}})
	assert.Len(t, out, 5)
}

func TestStipendBands(t *testing.T) {
	tests := []struct {
		band string
		want []string
	}{
		{band: "10K-15K", want: []string{"Web Developer Intern", "Data Analyst Intern", "NGO Volunteer"}},
		{band: "16K-20K", want: []string{"ML Engineer Intern"}},
		{band: "21k+", want: []string{"Cloud Intern"}},
		{band: "All", want: titles(sample())},
	}

	for _, tt := range tests {
		t.Run(tt.band, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(run(t, &Config{Stipend: tt.band})))
		})
	}
}

func TestUnknownStipendBand(t *testing.T) {
	_, err := ParseStipendBand("50K")
	require.Error(t, err)

	_, err = Run(context.Background(), &Config{Stipend: "50K"}, Deps{}, Default(), sample())
	require.Error(t, err)
}

func TestExcludedCompanies(t *testing.T) {
	out := run(t, &Config{ExcludeCompanies: []string{"datatech", " Skyline "}})
	assert.Equal(t, []string{"Web Developer Intern", "Data Analyst Intern", "NGO Volunteer"}, titles(out))
}

func TestCombinedFiltersCanEmptyTheList(t *testing.T) {
	out := run(t, &Config{MinScore: 90, Stipend: "21K+"})
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRunDoesNotModifyInput(t *testing.T) {
	in := sample()
	_, err := Run(context.Background(), &Config{MinScore: 60}, Deps{}, Default(), in)
	require.NoError(t, err)
	assert.Equal(t, titles(sample()), titles(in))
}

func TestDisableByName(t *testing.T) {
	steps := Default()
	DisableByName(steps, "min_score", "skip requested via flag")

	out, err := Run(context.Background(), &Config{MinScore: 90}, Deps{}, steps, sample())
	require.NoError(t, err)
	assert.Len(t, out, 5)

	statuses := Describe(steps)
	require.Len(t, statuses, 4)
	assert.Equal(t, "min_score", statuses[0].Name)
	assert.False(t, statuses[0].Enabled)
	assert.Equal(t, "skip requested via flag", statuses[0].Reason)
	assert.True(t, statuses[1].Enabled)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, nil, Deps{}, Default(), sample())
	assert.ErrorIs(t, err, context.Canceled)
}
