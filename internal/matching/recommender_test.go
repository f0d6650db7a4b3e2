package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Trivo121/side-projects/internal/ai"
	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/profile"
	"go.uber.org/zap"
)

type stubGenerator struct {
	responses map[string]string
	failures  map[string]error
	fallback  string
	prompts   []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	for title, err := range s.failures {
		if strings.Contains(prompt, "- Title: "+title+"\n") {
			return "", err
		}
	}
	for title, resp := range s.responses {
		if strings.Contains(prompt, "- Title: "+title+"\n") {
			return resp, nil
		}
	}
	return s.fallback, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	sources []string
}

func (r *recordingObserver) ObserveAnalysis(source string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

func remoteJSON(score int) string {
	return fmt.Sprintf(`{"match_score": %d, "skill_alignment": "a", "key_strengths": "b", "areas_for_improvement": "c", "recommendation_reason": "d"}`, score)
}

func testProfile() profile.Profile {
	return profile.Profile{
		Source:          profile.SourceManual,
		TechnicalSkills: []string{"Python", "React"},
		EducationLevel:  "Pursuing Bachelor's",
		CourseName:      "B.Tech",
		YearOfStudy:     "3",
		Specialization:  "Computer Science",
		WorkExperience:  "No experience",
	}
}

func threePostings() []catalog.Posting {
	return []catalog.Posting{
		{ID: 1, Title: "Frontend Developer Intern", Company: "TechCorp", Skills: []string{"HTML/CSS", "JavaScript", "React", "Bootstrap"}},
		mlPosting,
		{ID: 3, Title: "Backend Developer Intern", Company: "ServerStack", Skills: []string{"Node.js", "API Development"}},
	}
}

func TestRecommendIsolatesRemoteFailures(t *testing.T) {
	postings := threePostings()
	gen := &stubGenerator{
		responses: map[string]string{
			"Frontend Developer Intern": remoteJSON(90),
			"Backend Developer Intern":  remoteJSON(40),
		},
		failures: map[string]error{
			"ML Engineer Intern": fmt.Errorf("generate content: %w", ai.ErrRemoteUnavailable),
		},
	}

	r := NewRecommender(catalog.New(postings), gen, zap.NewNop(), 0)
	recs := r.Recommend(context.Background(), testProfile())

	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}
	if len(gen.prompts) != 3 {
		t.Fatalf("expected one remote call per posting, got %d", len(gen.prompts))
	}

	var failed *Recommendation
	for i := range recs {
		if recs[i].ID == mlPosting.ID {
			failed = &recs[i]
		}
	}
	if failed == nil {
		t.Fatalf("failing posting missing from results")
	}

	expected := Fallback(testProfile().TechnicalSkills, mlPosting)
	if failed.Analysis != expected {
		t.Fatalf("expected fallback analysis:\n%+v\ngot:\n%+v", expected, failed.Analysis)
	}
	if failed.Score != expected.Score {
		t.Fatalf("expected promoted score %v, got %v", expected.Score, failed.Score)
	}

	order := []int{recs[0].ID, recs[1].ID, recs[2].ID}
	if order[0] != 1 || order[1] != 3 || order[2] != 2 {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestRecommendFallsBackOnMalformedResponse(t *testing.T) {
	postings := threePostings()[:1]
	gen := &stubGenerator{fallback: "I am unable to produce JSON today."}

	recs := NewRecommender(catalog.New(postings), gen, nil, 0).Recommend(context.Background(), testProfile())
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Analysis.Source != SourceFallback {
		t.Fatalf("expected fallback analysis, got %q", recs[0].Analysis.Source)
	}
}

func TestRecommendSortIsStable(t *testing.T) {
	postings := []catalog.Posting{
		{ID: 10, Title: "First"},
		{ID: 11, Title: "Second"},
		{ID: 12, Title: "Third"},
		{ID: 13, Title: "Fourth"},
	}
	gen := &stubGenerator{
		fallback:  remoteJSON(70),
		responses: map[string]string{"Third": remoteJSON(95)},
	}

	recs := NewRecommender(catalog.New(postings), gen, zap.NewNop(), 0).Recommend(context.Background(), testProfile())

	got := make([]int, 0, len(recs))
	for _, rec := range recs {
		got = append(got, rec.ID)
	}
	want := []int{12, 10, 11, 13}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	recs := NewRecommender(catalog.New(nil), &stubGenerator{}, zap.NewNop(), 0).Recommend(context.Background(), testProfile())
	if recs == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(recs) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(recs))
	}
}

func TestRecommendWithoutGenerator(t *testing.T) {
	observer := &recordingObserver{}
	r := NewRecommender(catalog.New(threePostings()), nil, zap.NewNop(), 0).WithRecorder(observer)

	recs := r.Recommend(context.Background(), testProfile())
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}

	for i, rec := range recs {
		if rec.Analysis.Source != SourceFallback {
			t.Fatalf("expected fallback analysis, got %q", rec.Analysis.Source)
		}
		if i > 0 && recs[i-1].Score < rec.Score {
			t.Fatalf("recommendations are not sorted: %v before %v", recs[i-1].Score, rec.Score)
		}
	}

	if len(observer.sources) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(observer.sources))
	}
}

func TestRecommendScoresStayInRange(t *testing.T) {
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	gen := &stubGenerator{fallback: `{"match_score": 1000}`}

	for _, rec := range NewRecommender(c, gen, zap.NewNop(), 0).Recommend(context.Background(), testProfile()) {
		if rec.Score < 0 || rec.Score > 100 {
			t.Fatalf("score out of range for %s: %v", rec.Title, rec.Score)
		}
	}
}

func TestRecommendHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &stubGenerator{failures: map[string]error{"ML Engineer Intern": errors.Join(ai.ErrRemoteUnavailable, context.Canceled)}}
	recs := NewRecommender(catalog.New([]catalog.Posting{mlPosting}), gen, zap.NewNop(), 0).Recommend(ctx, testProfile())
	if len(recs) != 1 || recs[0].Analysis.Source != SourceFallback {
		t.Fatalf("expected a fallback recommendation, got %+v", recs)
	}
}

func TestBuildPrompt(t *testing.T) {
	posting := catalog.Posting{
		Title:            "Frontend Developer Intern",
		Company:          "TechCorp",
		Location:         "Bangalore",
		Skills:           []string{"HTML/CSS", "React"},
		Responsibilities: []string{"one", "two", "three", "four"},
	}

	prompt := BuildPrompt("User Profile:\n- Technical Skills: React\n", posting)

	for _, want := range []string{
		"User Profile:\n- Technical Skills: React\n\nInternship Details:",
		"- Title: Frontend Developer Intern\n",
		"- Company: TechCorp\n",
		"- Location: Bangalore\n",
		"- Skills Required: HTML/CSS, React\n",
		"- Responsibilities: one; two; three\n",
		`"match_score": <number 0-100>`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "four") {
		t.Fatalf("expected only three responsibilities in prompt")
	}
}

func TestSummarize(t *testing.T) {
	recs := []Recommendation{{Score: 95}, {Score: 80}, {Score: 79.5}, {Score: 60}, {Score: 59}, {Score: 10}}
	s := Summarize(recs)
	if s.Total != 6 || s.HighMatch != 2 || s.GoodMatch != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}
