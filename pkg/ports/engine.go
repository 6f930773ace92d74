package ports

import (
	"context"

	"github.com/aretw0/tela/pkg/domain"
)

// Engine is the translation core as seen by driving adapters (HTTP, MCP).
// Each call is independent; implementations keep no per-request state.
type Engine interface {
	// Render translates req.Formula and serializes the requested phase.
	Render(ctx context.Context, req domain.Request) (*domain.Response, error)
}
