package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Trivo121/side-projects/internal/ai"
	"github.com/Trivo121/side-projects/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = time.Second
	maxRetryDelay     = 10 * time.Second
)

// wait is swapped in tests.
var wait = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

type modelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config tunes the Gemini generator.
type Config struct {
	APIKey          string
	Model           string
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	Temperature     float32
	MaxOutputTokens int32
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models     modelsClient
	model      string
	timeout    time.Duration
	maxRetries int
	config     *genai.GenerateContentConfig
	logger     *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(models modelsClient, cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var genCfg *genai.GenerateContentConfig
	if cfg.Temperature > 0 || cfg.MaxOutputTokens > 0 {
		genCfg = &genai.GenerateContentConfig{MaxOutputTokens: cfg.MaxOutputTokens}
		if cfg.Temperature > 0 {
			temperature := cfg.Temperature
			genCfg.Temperature = &temperature
		}
	}

	return &Generator{
		models:     models,
		model:      model,
		timeout:    timeout,
		maxRetries: retries,
		config:     genCfg,
		logger:     logger,
	}
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
// Temporary API errors are retried up to the configured budget. Every failure
// wraps ai.ErrRemoteUnavailable.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", fmt.Errorf("%w: gemini generator is not initialized", ai.ErrRemoteUnavailable)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", ai.ErrRemoteUnavailable)
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay, retry := retryDelay(lastErr)
			if !retry {
				break
			}
			g.logger.Debug("retrying gemini request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			if err := wait(ctx, delay); err != nil {
				return "", fmt.Errorf("%w: %w", ai.ErrRemoteUnavailable, err)
			}
		}

		output, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return output, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isTemporary(err) {
			break
		}
	}

	return "", fmt.Errorf("%w: %w", ai.ErrRemoteUnavailable, lastErr)
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func apiError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func isTemporary(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	apiErr, ok := apiError(err)
	if !ok {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}

// retryDelay reports how long to wait before retrying err. Quota errors that
// ask for a longer pause than maxRetryDelay are not retried.
func retryDelay(err error) (time.Duration, bool) {
	if !isTemporary(err) {
		return 0, false
	}

	apiErr, ok := apiError(err)
	if !ok {
		return defaultRetryDelay, true
	}

	match := retryAfterPattern.FindStringSubmatch(apiErr.Message)
	if match == nil {
		return defaultRetryDelay, true
	}

	seconds, parseErr := strconv.ParseFloat(match[1], 64)
	if parseErr != nil {
		return defaultRetryDelay, true
	}

	delay := time.Duration(seconds * float64(time.Second))
	if delay > maxRetryDelay {
		return 0, false
	}
	return delay, true
}
