// Package provider defines the generation provider contract used by the
// scheduler, with a simulated implementation.
package provider

import (
	"context"

	"github.com/dmitrijs2005/vinony/internal/models"
)

// ChatRequest asks for the assistant's reply to Prompt in a thread.
type ChatRequest struct {
	ThreadID string
	Model    string
	Prompt   string
	History  []models.Message
	// AccessToken is the session token of the submitting user, if any.
	AccessToken string
}

// ImageRequest asks for an image rendering of Prompt.
type ImageRequest struct {
	ID          string
	Model       string
	Prompt      string
	AccessToken string
}

// Provider produces generation results. Implementations must be safe for
// concurrent use.
type Provider interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
	Render(ctx context.Context, req ImageRequest) (string, error)
}

// Linker builds the result URL of an image render.
type Linker interface {
	Link(ctx context.Context, id, prompt string) (string, error)
}

// TokenVerifier checks a session token and returns its user ID.
type TokenVerifier func(token string) (string, error)
