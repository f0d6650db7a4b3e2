package ai

import (
	"context"
	"errors"
)

// ErrRemoteUnavailable marks failures of the hosted model: transport errors,
// timeouts, exhausted retries or empty responses.
var ErrRemoteUnavailable = errors.New("remote model unavailable")

// Generator turns a prompt into model text.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
