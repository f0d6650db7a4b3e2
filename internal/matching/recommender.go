package matching

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/Trivo121/side-projects/internal/ai"
	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/profile"
	"github.com/Trivo121/side-projects/internal/utils"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

// High and good match bands used in summaries.
const (
	HighMatchScore = 80.0
	GoodMatchScore = 60.0
)

// Recommendation is a posting with its analysis and the promoted score.
type Recommendation struct {
	catalog.Posting
	Analysis Analysis `json:"ai_analysis"`
	Score    float64  `json:"match_score"`
}

// Summary counts recommendations by score band.
type Summary struct {
	Total     int `json:"total"`
	HighMatch int `json:"high_match"`
	GoodMatch int `json:"good_match"`
}

// Recorder observes every analysis the recommender produces.
type Recorder interface {
	ObserveAnalysis(source string, elapsed time.Duration)
}

// Recommender scores every catalog posting for a profile.
type Recommender struct {
	catalog   *catalog.Catalog
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
	recorder  Recorder
}

// NewRecommender returns a recommender over c. A nil generator makes every
// analysis use the fallback path.
func NewRecommender(c *catalog.Catalog, generator ai.Generator, logger *zap.Logger, maxLogLength int) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Recommender{
		catalog:   c,
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// WithRecorder attaches r and returns the recommender.
func (r *Recommender) WithRecorder(rec Recorder) *Recommender {
	r.recorder = rec
	return r
}

// Catalog returns the catalog the recommender iterates.
func (r *Recommender) Catalog() *catalog.Catalog {
	return r.catalog
}

// Generator returns the remote model, or nil when only fallback analysis runs.
func (r *Recommender) Generator() ai.Generator {
	return r.generator
}

// Recommend analyzes every posting in catalog order and returns them sorted
// by descending score. Ties keep catalog order. It never fails: postings whose
// remote analysis fails get a fallback analysis instead.
func (r *Recommender) Recommend(ctx context.Context, p profile.Profile) []Recommendation {
	postings := r.catalog.Postings()
	recommendations := make([]Recommendation, 0, len(postings))
	if len(postings) == 0 {
		r.logger.Info("no postings available")
		return recommendations
	}

	description := p.Describe()
	for i, posting := range postings {
		r.logger.Debug("analyzing posting",
			zap.Int("posting_id", posting.ID),
			zap.String("title", posting.Title),
			zap.Int("position", i+1),
			zap.Int("total", len(postings)),
		)

		analysis := r.Analyze(ctx, description, p.TechnicalSkills, posting)
		recommendations = append(recommendations, Recommendation{
			Posting:  posting,
			Analysis: analysis,
			Score:    analysis.Score,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	r.logger.Info("recommendations ready", zap.Int("count", len(recommendations)))
	return recommendations
}

// Analyze runs the remote path for one posting and falls back on any failure.
func (r *Recommender) Analyze(ctx context.Context, description string, skills []string, posting catalog.Posting) Analysis {
	started := time.Now()
	analysis := r.analyze(ctx, description, skills, posting)
	if r.recorder != nil {
		r.recorder.ObserveAnalysis(analysis.Source, time.Since(started))
	}
	return analysis
}

func (r *Recommender) analyze(ctx context.Context, description string, skills []string, posting catalog.Posting) Analysis {
	if r.generator == nil {
		return Fallback(skills, posting)
	}

	prompt := BuildPrompt(description, posting)
	r.logger.Debug("generate content request",
		zap.Int("posting_id", posting.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		r.logger.Warn("remote analysis failed, using fallback",
			zap.Int("posting_id", posting.ID),
			zap.String("title", posting.Title),
			zap.Error(err),
		)
		return Fallback(skills, posting)
	}

	r.logger.Debug("generate content response",
		zap.Int("posting_id", posting.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		r.logger.Warn("could not parse remote analysis, using fallback",
			zap.Int("posting_id", posting.ID),
			zap.String("title", posting.Title),
			zap.Error(err),
		)
		return Fallback(skills, posting)
	}

	return analysis
}

// Summarize counts recommendations in the high and good bands.
func Summarize(recommendations []Recommendation) Summary {
	s := Summary{Total: len(recommendations)}
	for _, rec := range recommendations {
		switch {
		case rec.Score >= HighMatchScore:
			s.HighMatch++
		case rec.Score >= GoodMatchScore:
			s.GoodMatch++
		}
	}
	return s
}
