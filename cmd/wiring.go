package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/ai"
	"github.com/Trivo121/side-projects/internal/ai/gemini"
	"github.com/Trivo121/side-projects/internal/ai/openai"
	"github.com/Trivo121/side-projects/internal/catalog"
	"github.com/Trivo121/side-projects/internal/logger"
	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/sarvam"
	"github.com/Trivo121/side-projects/internal/secrets"
	"github.com/Trivo121/side-projects/internal/session"
	"github.com/Trivo121/side-projects/internal/voice"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
	providerNone   = "none"

	backendMemory = "memory"
	backendRedis  = "redis"
)

func newLogger() (*zap.Logger, error) {
	return logger.New(logger.Options{
		Name:  app,
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
}

// newGenerator returns the configured text model. It returns a nil generator
// for the "none" provider, which leaves every analysis on the fallback path.
func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		genLogger := logger.WithProvider(log, providerGemini, cfg.Gemini.Model).
			With(zap.Int("ai_retry_attempts", cfg.Retries))
		generator, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Gemini.Model,
			BaseURL:     cfg.Gemini.BaseURL,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.Retries,
			Temperature: cfg.Gemini.Temperature,
		}, genLogger)
		if err != nil {
			return nil, err
		}
		return generator, nil

	case providerOpenAI:
		client, err := newOpenAI(cfg, log)
		if err != nil {
			return nil, err
		}
		return client, nil

	case providerNone:
		log.Info("no ai provider configured, using skill matching only")
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newOpenAI(cfg *AIConfig, log *zap.Logger) (*openai.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "openai api key",
		Value: cfg.OpenAI.APIKey,
		File:  cfg.OpenAI.APIKeyFile,
		Env:   "OPENAI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	return openai.New(openai.Config{
		APIKey:             apiKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		Model:              cfg.OpenAI.Model,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		Timeout:            cfg.Timeout,
		MaxRetries:         cfg.Retries,
	}, logger.WithProvider(log, providerOpenAI, cfg.OpenAI.Model))
}

func newRecommender(ctx context.Context, config *Config, log *zap.Logger) (*matching.Recommender, error) {
	c, err := catalog.Load(config.Catalog, log)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		return nil, err
	}

	return matching.NewRecommender(c, generator, log.Named("matching"), config.MaxLogLength), nil
}

// newPipeline builds the voice pipeline. Missing speech credentials disable
// the affected stage with a warning instead of failing startup.
func newPipeline(generator ai.Generator, config *Config, log *zap.Logger) *voice.Pipeline {
	var stt voice.Transcriber
	if client, err := newOpenAI(config.AI, log); err != nil {
		log.Warn("speech to text disabled", zap.Error(err))
	} else {
		stt = client
	}

	var tts voice.Synthesizer
	if client, err := newSarvam(config.Voice.Sarvam, log); err != nil {
		log.Warn("text to speech disabled", zap.Error(err))
	} else {
		tts = client
	}

	return voice.New(stt, generator, tts, log.Named("voice"))
}

func newSarvam(cfg *SarvamConfig, log *zap.Logger) (*sarvam.Client, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "sarvam api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "SARVAM_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	client, err := sarvam.New(apiKey, logger.WithProvider(log, "sarvam", cfg.Model))
	if err != nil {
		return nil, err
	}
	if url := strings.TrimSpace(cfg.URL); url != "" {
		client.APIURL = url
	}
	if model := strings.TrimSpace(cfg.Model); model != "" {
		client.Model = model
	}
	if speaker := strings.TrimSpace(cfg.Speaker); speaker != "" {
		client.Speaker = speaker
	}
	return client, nil
}

// newSessionStore returns the configured store and a function releasing it.
func newSessionStore(ctx context.Context, cfg *SessionsConfig, log *zap.Logger) (session.Store, func() error, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Backend)) {
	case "", backendMemory:
		return session.NewMemoryStore(cfg.TTL), func() error { return nil }, nil

	case backendRedis:
		client, err := session.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis session store connected", zap.String("address", cfg.Redis.Address), zap.Int("db", cfg.Redis.DB))
		store := session.NewRedisStore(client, cfg.TTL)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported sessions backend: %s", cfg.Backend)
	}
}
