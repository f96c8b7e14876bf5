package service

import (
	"context"
	"io"
)

// ArtifactStore persists notebook payloads and returns an opaque reference.
type ArtifactStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}
