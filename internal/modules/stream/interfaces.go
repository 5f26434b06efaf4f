package stream

import (
	"context"

	"vidgate/internal/domain"
)

// VideoRepositoryInterface — the relay only ever reads single videos
type VideoRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Video, error)
}

// LocatorResolver turns a source id into a direct fetchable URL.
type LocatorResolver interface {
	Resolve(ctx context.Context, sourceID string) (string, error)
}
