package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Trivo121/side-projects/internal/utils"
	"go.uber.org/zap"
)

const (
	apiURL             = "https://api.sarvam.ai"
	ttsPath            = "/text-to-speech"
	contentType        = "application/json"
	subscriptionHeader = "api-subscription-key"
	defaultModel       = "bulbul:v2"
	// Longer inputs are rejected by the API.
	MaxTextLength = 1500
	maxErrorBody  = 300
)

// Client calls the Sarvam text-to-speech API.
type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
	Model      string
	Speaker    string
}

type ttsRequest struct {
	Text               string `json:"text"`
	TargetLanguageCode string `json:"target_language_code"`
	Model              string `json:"model,omitempty"`
	Speaker            string `json:"speaker,omitempty"`
}

type ttsResponse struct {
	RequestID string   `json:"request_id"`
	Audios    []string `json:"audios"`
}

// New returns a client with the default endpoint and model.
func New(apiKey string, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("sarvam api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey: apiKey,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		APIURL: apiURL,
		Model:  defaultModel,
	}, nil
}

// Synthesize converts text into WAV audio spoken in language.
func (c *Client) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}
	if runes := []rune(text); len(runes) > MaxTextLength {
		c.logger.Debug("truncating text for speech synthesis", zap.Int("length", len(runes)))
		text = string(runes[:MaxTextLength])
	}

	payload, err := json.Marshal(ttsRequest{
		Text:               text,
		TargetLanguageCode: strings.TrimSpace(language),
		Model:              c.Model,
		Speaker:            c.Speaker,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.APIURL, "/")+ttsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody*4))
		return nil, fmt.Errorf("bad status: %s: %s", resp.Status, utils.TruncateForLog(string(body), maxErrorBody))
	}

	var response ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode tts response: %w", err)
	}

	if len(response.Audios) == 0 {
		return nil, errors.New("sarvam api returned no audio")
	}
	if len(response.Audios) > 1 {
		c.logger.Debug("sarvam api returned several audio chunks, using the first",
			zap.String("request_id", response.RequestID),
			zap.Int("chunks", len(response.Audios)),
		)
	}

	audio, err := base64.StdEncoding.DecodeString(response.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	return audio, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(subscriptionHeader, c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("sending request to sarvam",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sarvam request: %w", err)
	}
	return resp, nil
}
