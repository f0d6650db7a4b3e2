package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Trivo121/side-projects/internal/ai"
	"github.com/Trivo121/side-projects/internal/logger"
	"github.com/Trivo121/side-projects/internal/utils"
	"go.uber.org/zap"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageTranscribe Stage = "stt"
	StageRespond    Stage = "llm"
	StageSynthesize Stage = "tts"
)

// ErrInvalidInput is returned for requests rejected before any stage runs.
var ErrInvalidInput = errors.New("invalid input")

// StageError wraps the failure of a single pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Transcriber converts speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error)
}

// Synthesizer converts text to WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Recorder observes stage durations and outcomes.
type Recorder interface {
	ObserveStage(stage string, elapsed time.Duration, err error)
}

// Audio is an uploaded recording.
type Audio struct {
	Data        io.Reader
	FileName    string
	ContentType string
}

// Reply is the pipeline output.
type Reply struct {
	Transcription string `json:"transcription,omitempty"`
	LLMResponse   string `json:"llm_response"`
	AudioBase64   string `json:"tts_audio_base64"`
	Audio         []byte `json:"-"`
}

// Pipeline chains transcription, a language model and speech synthesis.
type Pipeline struct {
	stt       Transcriber
	llm       ai.Generator
	tts       Synthesizer
	logger    *zap.Logger
	recorder  Recorder
	maxLogLen int
}

// New builds a pipeline. stt may be nil when only text input is served.
func New(stt Transcriber, llm ai.Generator, tts Synthesizer, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{stt: stt, llm: llm, tts: tts, logger: log, maxLogLen: 200}
}

// WithRecorder attaches r and returns the pipeline.
func (p *Pipeline) WithRecorder(r Recorder) *Pipeline {
	p.recorder = r
	return p
}

// ProcessText answers text and speaks the answer.
func (p *Pipeline) ProcessText(ctx context.Context, text, language string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	lang, err := resolveLanguage(language)
	if err != nil {
		return nil, err
	}

	return p.respond(ctx, text, lang)
}

// ProcessVoice transcribes audio, answers it and speaks the answer.
func (p *Pipeline) ProcessVoice(ctx context.Context, audio Audio, language string) (*Reply, error) {
	if audio.Data == nil {
		return nil, fmt.Errorf("%w: audio is required", ErrInvalidInput)
	}
	lang, err := resolveLanguage(language)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(p.logger, zap.String(logger.FieldLanguage, lang.Code))

	var transcription string
	err = p.run(StageTranscribe, func() error {
		if p.stt == nil {
			return errors.New("speech to text is not configured")
		}
		text, err := p.stt.Transcribe(ctx, audio.Data, audio.FileName, audio.ContentType, lang.Code)
		if err != nil {
			return err
		}
		if transcription = strings.TrimSpace(text); transcription == "" {
			return errors.New("no speech recognized")
		}
		return nil
	})
	if err != nil {
		log.Warn("transcription failed", zap.Error(err))
		return nil, err
	}

	log.Debug("transcription complete", zap.String("transcription", utils.TruncateForLog(transcription, p.maxLogLen)))

	reply, err := p.respond(ctx, transcription, lang)
	if err != nil {
		return nil, err
	}
	reply.Transcription = transcription
	return reply, nil
}

func (p *Pipeline) respond(ctx context.Context, text string, lang Language) (*Reply, error) {
	log := logger.WithFields(p.logger, zap.String(logger.FieldLanguage, lang.Code))

	var answer string
	err := p.run(StageRespond, func() error {
		if p.llm == nil {
			return ai.ErrRemoteUnavailable
		}
		out, err := p.llm.GenerateContent(ctx, BuildPrompt(text, lang))
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		log.Warn("language model failed", zap.Error(err))
		return nil, err
	}

	log.Debug("language model replied",
		zap.Int("response_length", utf8.RuneCountInString(answer)),
		zap.String("response_preview", utils.TruncateForLog(answer, p.maxLogLen)),
	)

	var audio []byte
	err = p.run(StageSynthesize, func() error {
		if p.tts == nil {
			return errors.New("text to speech is not configured")
		}
		out, err := p.tts.Synthesize(ctx, answer, lang.Code)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("empty audio")
		}
		audio = out
		return nil
	})
	if err != nil {
		log.Warn("speech synthesis failed", zap.Error(err))
		return nil, err
	}

	return &Reply{
		LLMResponse: answer,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Audio:       audio,
	}, nil
}

func (p *Pipeline) run(stage Stage, fn func() error) error {
	started := time.Now()
	err := fn()
	if p.recorder != nil {
		p.recorder.ObserveStage(string(stage), time.Since(started), err)
	}
	if err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

// BuildPrompt asks the model to answer in the requested language.
func BuildPrompt(text string, lang Language) string {
	return fmt.Sprintf("%s\n\nReply in %s using plain sentences suitable for reading aloud.", strings.TrimSpace(text), lang.Name)
}

func resolveLanguage(code string) (Language, error) {
	if strings.TrimSpace(code) == "" {
		return Language{}, fmt.Errorf("%w: language is required", ErrInvalidInput)
	}
	lang, ok := LookupLanguage(code)
	if !ok {
		return Language{}, fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, code)
	}
	return lang, nil
}
