package ports

import (
	"context"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// EventPublisher publishes conversion jobs, results and audit events to a
// message broker.
type EventPublisher interface {
	PublishJob(ctx context.Context, job *domain.ReprojectionJob) error
	PublishJobResult(ctx context.Context, res *domain.ReprojectionResult) error
	PublishConversion(ctx context.Context, ev *domain.ConversionEvent) error
}

// EventSubscriber consumes queued reprojection jobs.
type EventSubscriber interface {
	SubscribeJobs(ctx context.Context, handler func(ctx context.Context, job *domain.ReprojectionJob) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
