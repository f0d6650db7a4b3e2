package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/profile"
	"github.com/Trivo121/side-projects/internal/session"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	config, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, 30*time.Second, config.AI.Timeout)
	assert.Equal(t, 1, config.AI.Retries)
	assert.Equal(t, "gemini-2.0-flash", config.AI.Gemini.Model)
	assert.Equal(t, ":8000", config.Server.Address)
	assert.Equal(t, "memory", config.Sessions.Backend)
	assert.Equal(t, session.DefaultTTL, config.Sessions.TTL)
	assert.Equal(t, "localhost:6379", config.Sessions.Redis.Address)
	assert.Equal(t, 200, config.MaxLogLength)
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ribbit.yaml")
	content := `
catalog: custom.json
ai:
  provider: openai
  timeout: 10s
  openai:
    model: gpt-4o
sessions:
  backend: redis
  ttl: 2h
  redis:
    address: cache:6379
    db: 3
server:
  address: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, readConfig(v))

	config, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "custom.json", config.Catalog)
	assert.Equal(t, "openai", config.AI.Provider)
	assert.Equal(t, 10*time.Second, config.AI.Timeout)
	assert.Equal(t, "gpt-4o", config.AI.OpenAI.Model)
	assert.Equal(t, "whisper-1", config.AI.OpenAI.TranscriptionModel)
	assert.Equal(t, "redis", config.Sessions.Backend)
	assert.Equal(t, 2*time.Hour, config.Sessions.TTL)
	assert.Equal(t, "cache:6379", config.Sessions.Redis.Address)
	assert.Equal(t, 3, config.Sessions.Redis.DB)
	assert.Equal(t, ":9090", config.Server.Address)
}

func TestNewGenerator(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	base := func(provider string) *AIConfig {
		return &AIConfig{Provider: provider, Gemini: &GeminiConfig{}, OpenAI: &OpenAIConfig{}}
	}

	generator, err := newGenerator(context.Background(), base("none"), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, generator)

	_, err = newGenerator(context.Background(), base("claude"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai provider")

	_, err = newGenerator(context.Background(), base("gemini"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	_, err = newGenerator(context.Background(), base("openai"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg := base("OpenAI")
	cfg.OpenAI.APIKey = "sk-test"
	generator, err = newGenerator(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, generator)
}

func TestNewSessionStore(t *testing.T) {
	store, closeStore, err := newSessionStore(context.Background(), &SessionsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, store)
	assert.NoError(t, closeStore())

	_, _, err = newSessionStore(context.Background(), &SessionsConfig{Backend: "etcd"}, zap.NewNop())
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, closeStore, err = newSessionStore(context.Background(), &SessionsConfig{
		Backend: "redis",
		TTL:     time.Minute,
		Redis:   session.RedisConfig{Address: mr.Addr()},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &session.RedisStore{}, store)
	assert.NoError(t, closeStore())
}

func TestBuildProfileFromFlags(t *testing.T) {
	opts := recommendOptions{
		skills:         "Python, SQL, ",
		education:      "Pursuing Bachelor's",
		course:         "B.Tech",
		year:           "3",
		specialisation: "CSE",
		experience:     "No experience",
	}
	notCalled := func() (profile.Profile, error) {
		t.Fatal("prompt must not run when skills are given")
		return profile.Profile{}, nil
	}

	p, err := buildProfile(opts, nil, notCalled)
	require.NoError(t, err)
	assert.Equal(t, profile.SourceManual, p.Source)
	assert.Equal(t, []string{"Python", "SQL"}, p.TechnicalSkills)
}

func TestBuildProfileValidation(t *testing.T) {
	_, err := buildProfile(recommendOptions{skills: "Go"}, nil, nil)

	var invalid *profile.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Problems, "Education level is required")
}

func TestBuildProfileUsesPrompt(t *testing.T) {
	prompted := profile.Profile{
		TechnicalSkills: []string{" React "},
		EducationLevel:  "PhD",
		CourseName:      "CS",
		YearOfStudy:     "1",
		Specialization:  "HCI",
		WorkExperience:  "2+ years",
	}

	p, err := buildProfile(recommendOptions{}, nil, func() (profile.Profile, error) { return prompted, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"React"}, p.TechnicalSkills)

	_, err = buildProfile(recommendOptions{}, nil, func() (profile.Profile, error) {
		return profile.Profile{}, errors.New("^C")
	})
	assert.Error(t, err)
}

func TestBuildProfileMissingCV(t *testing.T) {
	_, err := buildProfile(recommendOptions{cv: filepath.Join(t.TempDir(), "missing.pdf")}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading cv")
}

func TestPrintRecommendations(t *testing.T) {
	recs := []matching.Recommendation{
		{Posting: catalog.Posting{Title: "Data Intern", Company: "DataTech"}, Score: 91, Analysis: matching.Analysis{Source: "remote", KeyStrengths: "SQL"}},
		{Posting: catalog.Posting{Title: "Web Intern", Company: "WebWorks"}, Score: 64},
	}

	var buf bytes.Buffer
	printRecommendations(&buf, matching.Summarize(recs), recs, 1, true)

	out := buf.String()
	assert.Contains(t, out, "Total matches: 2  High match (80%+): 1  Good match (60-79%): 1")
	assert.Contains(t, out, "Data Intern")
	assert.Contains(t, out, "Key strengths: SQL")
	assert.NotContains(t, out, "Web Intern")

	buf.Reset()
	printRecommendations(&buf, matching.Summary{}, nil, 5, false)
	assert.Contains(t, buf.String(), "No internships match your current filters")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "ribbit version: unknown\n", buf.String())
}
