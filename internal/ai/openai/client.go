package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/ai"
)

const (
	defaultChatModel  = oai.ChatModelGPT4oMini
	defaultSTTModel   = oai.AudioModelWhisper1
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 1
)

// Config tunes the OpenAI client.
type Config struct {
	APIKey             string
	BaseURL            string
	Model              string
	TranscriptionModel string
	Timeout            time.Duration
	MaxRetries         int
	MaxTokens          int64
	HTTPClient         *http.Client
}

// Client talks to OpenAI compatible chat and transcription endpoints.
type Client struct {
	client    *oai.Client
	model     string
	sttModel  string
	maxTokens int64
	logger    *zap.Logger
}

// New builds a client. The SDK applies Timeout per request and retries
// temporary failures MaxRetries times.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(retries),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := oai.NewClient(opts...)

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultChatModel
	}
	sttModel := strings.TrimSpace(cfg.TranscriptionModel)
	if sttModel == "" {
		sttModel = defaultSTTModel
	}

	return &Client{
		client:    &client,
		model:     model,
		sttModel:  sttModel,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}, nil
}

// GenerateContent sends the prompt as a single user message.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", ai.ErrRemoteUnavailable)
	}

	params := oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{oai.UserMessage(prompt)},
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = oai.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai chat: %w", ai.ErrRemoteUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai chat returned no choices", ai.ErrRemoteUnavailable)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: openai chat returned empty response", ai.ErrRemoteUnavailable)
	}

	c.logger.Debug("openai chat completed",
		zap.String("model", resp.Model),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return text, nil
}

// Transcribe converts speech to text. language is a BCP-47 code such as
// "hi-IN"; only its primary subtag is sent, and only when Whisper knows it.
// Otherwise Whisper detects the language itself.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error) {
	if audio == nil {
		return "", errors.New("audio is required")
	}
	if strings.TrimSpace(filename) == "" {
		filename = "audio.wav"
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "audio/wav"
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(audio, filename, contentType),
		Model: oai.AudioModel(c.sttModel),
	}
	if lang := primaryLanguage(language); lang != "" {
		params.Language = oai.String(lang)
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// Model returns the chat model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// whisperLanguages are the ISO-639-1 codes accepted by the transcription endpoint.
var whisperLanguages = map[string]struct{}{}

func init() {
	for _, code := range strings.Fields(`
		af am ar as az ba be bg bn bo br bs ca cs cy da de el en es et eu fa fi fo fr
		gl gu ha he hi hr ht hu hy id is it ja jw ka kk km kn ko la lb ln lo lt lv mg
		mi mk ml mn mr ms mt my ne nl nn no oc pa pl ps pt ro ru sa sd si sk sl sn so
		sq sr su sv sw ta te tg th tk tl tr tt uk ur uz vi yi yo zh`) {
		whisperLanguages[code] = struct{}{}
	}
}

func primaryLanguage(code string) string {
	code = strings.TrimSpace(code)
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	code = strings.ToLower(code)
	if _, ok := whisperLanguages[code]; !ok {
		return ""
	}
	return code
}
