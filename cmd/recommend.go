package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/filtering"
	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/profile"
)

type recommendOptions struct {
	skills         string
	education      string
	course         string
	year           string
	specialisation string
	experience     string
	cv             string

	limit      int
	details    bool
	skipFilter []string
	filters    filtering.Config
}

var recommendOpts recommendOptions

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank internships for a profile",
	Long: "Rank every catalog internship for a profile given by flags, a PDF CV, " +
		"or interactive prompts when no skills are provided.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return recommend(cmd, recommendOpts)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	f := recommendCmd.Flags()
	f.StringVarP(&recommendOpts.skills, "skills", "s", "", "comma separated technical skills")
	f.StringVar(&recommendOpts.education, "education", "", "education level")
	f.StringVar(&recommendOpts.course, "course", "", "course name")
	f.StringVar(&recommendOpts.year, "year", "", "year of study")
	f.StringVar(&recommendOpts.specialisation, "specialisation", "", "specialisation")
	f.StringVar(&recommendOpts.experience, "experience", "", "work experience level")
	f.StringVar(&recommendOpts.cv, "cv", "", "build the profile from a PDF CV")

	f.IntVarP(&recommendOpts.limit, "limit", "n", 5, "number of recommendations to print (0 prints all)")
	f.BoolVar(&recommendOpts.details, "details", false, "print the analysis of every recommendation")
	f.StringSliceVar(&recommendOpts.skipFilter, "skip-filter", nil, "filters to disable by name")
	f.Float64Var(&recommendOpts.filters.MinScore, "min-score", 0, "minimum match score")
	f.StringSliceVar(&recommendOpts.filters.Locations, "location", nil, "keep only these locations")
	f.StringVar(&recommendOpts.filters.Stipend, "stipend", "", "stipend band: all, 10K-15K, 16K-20K or 21K+")
	f.StringSliceVar(&recommendOpts.filters.ExcludeCompanies, "exclude-company", nil, "drop postings from these companies")
}

func recommend(cmd *cobra.Command, opts recommendOptions) error {
	ctx := cmd.Context()

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		return err
	}

	recommender, err := newRecommender(ctx, config, log)
	if err != nil {
		return err
	}

	p, err := buildProfile(opts, recommender.Catalog().Skills(), promptProfile)
	if err != nil {
		return err
	}

	log.Info("ranking internships",
		zap.String("source", string(p.Source)),
		zap.Strings("skills", p.TechnicalSkills),
		zap.Int("postings", recommender.Catalog().Len()),
	)

	recs := recommender.Recommend(ctx, p)

	steps := filtering.Default()
	for _, name := range opts.skipFilter {
		filtering.DisableByName(steps, strings.TrimSpace(name), "skip requested via flag")
	}
	filtered, err := filtering.Run(ctx, &opts.filters, filtering.Deps{Logger: log}, steps, recs)
	if err != nil {
		return err
	}

	printRecommendations(cmd.OutOrStdout(), matching.Summarize(recs), filtered, opts.limit, opts.details)
	return nil
}

type profilePrompter func() (profile.Profile, error)

func buildProfile(opts recommendOptions, vocabulary []string, prompt profilePrompter) (profile.Profile, error) {
	if path := strings.TrimSpace(opts.cv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("reading cv: %w", err)
		}
		return profile.FromPDF(data, path, vocabulary, time.Now())
	}

	var p profile.Profile
	if strings.TrimSpace(opts.skills) == "" {
		var err error
		if p, err = prompt(); err != nil {
			return profile.Profile{}, err
		}
	} else {
		p = profile.Profile{
			Source:          profile.SourceManual,
			TechnicalSkills: profile.ParseSkills(opts.skills),
			EducationLevel:  opts.education,
			CourseName:      opts.course,
			YearOfStudy:     opts.year,
			Specialization:  opts.specialisation,
			WorkExperience:  opts.experience,
		}
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func promptProfile() (profile.Profile, error) {
	required := func(label string) func(string) error {
		return func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New(label + " is required")
			}
			return nil
		}
	}

	text := func(label string) (string, error) {
		prompt := promptui.Prompt{Label: label, Validate: required(label)}
		return prompt.Run()
	}
	choose := func(label string, items []string) (string, error) {
		prompt := promptui.Select{Label: label, Items: items}
		_, value, err := prompt.Run()
		return value, err
	}

	var (
		p   = profile.Profile{Source: profile.SourceManual}
		err error
		raw string
	)

	if raw, err = text("Technical skills (comma separated)"); err != nil {
		return p, err
	}
	p.TechnicalSkills = profile.ParseSkills(raw)
	if p.EducationLevel, err = choose("Education level", profile.EducationLevels); err != nil {
		return p, err
	}
	if p.CourseName, err = text("Course name"); err != nil {
		return p, err
	}
	if p.YearOfStudy, err = choose("Year of study", profile.YearsOfStudy); err != nil {
		return p, err
	}
	if p.Specialization, err = text("Specialisation"); err != nil {
		return p, err
	}
	if p.WorkExperience, err = choose("Work experience", profile.ExperienceLevels); err != nil {
		return p, err
	}
	return p, nil
}

func printRecommendations(w io.Writer, summary matching.Summary, recs []matching.Recommendation, limit int, details bool) {
	fmt.Fprintf(w, "Total matches: %d  High match (80%%+): %d  Good match (60-79%%): %d\n",
		summary.Total, summary.HighMatch, summary.GoodMatch)
	fmt.Fprintf(w, "Showing %d recommendations\n\n", len(recs))

	if len(recs) == 0 {
		fmt.Fprintln(w, "No internships match your current filters. Try adjusting the criteria.")
		return
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tTITLE\tCOMPANY\tLOCATION\tSTIPEND\tSOURCE")
	for i, rec := range recs {
		fmt.Fprintf(tw, "%d\t%.0f%%\t%s\t%s\t%s\t%s\t%s\n",
			i+1, rec.Score, rec.Title, rec.Company, rec.Location, rec.Stipend, rec.Analysis.Source)
	}
	tw.Flush()

	if !details {
		return
	}
	for i, rec := range recs {
		fmt.Fprintf(w, "\n%d. %s at %s\n", i+1, rec.Title, rec.Company)
		fmt.Fprintf(w, "   Skill alignment: %s\n", rec.Analysis.SkillAlignment)
		fmt.Fprintf(w, "   Key strengths: %s\n", rec.Analysis.KeyStrengths)
		fmt.Fprintf(w, "   Areas for improvement: %s\n", rec.Analysis.AreasForImprovement)
		fmt.Fprintf(w, "   Why: %s\n", rec.Analysis.RecommendationReason)
	}
}
