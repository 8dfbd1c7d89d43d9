package studio

import (
	"context"

	"aloka/internal/domain"
	"aloka/internal/realtime"
	"aloka/internal/repository"
)

// StudioRepository lists the store operations the studio service uses.
type StudioRepository interface {
	List(ctx context.Context, f repository.StudioFilter) ([]domain.Studio, int64, error)
	GetByID(ctx context.Context, id string) (*domain.Studio, error)
	Create(ctx context.Context, studio *domain.Studio) error
	Update(ctx context.Context, studio *domain.Studio) error
	Delete(ctx context.Context, id string) error
}

// ListCache stores serialized list pages under a generation number. Writers
// bump the generation, which orphans every page cached before the write.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string) ([]byte, bool)
	Set(ctx context.Context, gen int64, key string, payload []byte)
	Invalidate(ctx context.Context)
}

// EventPublisher fans studio changes out to live subscribers.
type EventPublisher interface {
	Publish(ev realtime.Event)
}
