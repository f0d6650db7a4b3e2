package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/logger"
	"github.com/Trivo121/side-projects/internal/voice"
)

type VoiceHandler struct {
	pipeline *voice.Pipeline
	logger   *zap.Logger
}

func NewVoiceHandler(pipeline *voice.Pipeline, log *zap.Logger) *VoiceHandler {
	return &VoiceHandler{pipeline: pipeline, logger: log}
}

type textRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (h *VoiceHandler) HandleLanguages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"languages": voice.Languages()})
}

func (h *VoiceHandler) HandleProcessText(c *fiber.Ctx) error {
	if h.pipeline == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "voice pipeline is not configured")
	}

	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.pipeline.ProcessText(c.UserContext(), req.Text, req.Language)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"llm_response":     reply.LLMResponse,
		"tts_audio_base64": reply.AudioBase64,
	})
}

func (h *VoiceHandler) HandleProcessVoice(c *fiber.Ctx) error {
	if h.pipeline == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "voice pipeline is not configured")
	}

	header, err := c.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio file is required")
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read audio: %v", err))
	}
	defer file.Close()

	audio := voice.Audio{
		Data:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
	}

	reply, err := h.pipeline.ProcessVoice(c.UserContext(), audio, c.FormValue("language"))
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"transcription":    reply.Transcription,
		"llm_response":     reply.LLMResponse,
		"tts_audio_base64": reply.AudioBase64,
	})
}

func (h *VoiceHandler) fail(c *fiber.Ctx, err error) error {
	code := voiceStatus(err)
	logger.WithFields(h.logger, logger.RequestFields(requestID(c), "")...).
		Warn("voice request failed", zap.Int("status", code), zap.Error(err))
	return withStatus(code, err)
}

func voiceStatus(err error) int {
	if errors.Is(err, voice.ErrInvalidInput) {
		return fiber.StatusBadRequest
	}

	var stageErr *voice.StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case voice.StageTranscribe:
			return fiber.StatusBadRequest
		case voice.StageRespond:
			return fiber.StatusBadGateway
		}
	}
	return fiber.StatusInternalServerError
}
