package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pborman/uuid"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
)

// ErrBrokerUnavailable is returned by Submit when no publisher is configured.
var ErrBrokerUnavailable = errors.New("job submission requires a message broker")

// JobService runs batch reprojection jobs received from the broker.
type JobService struct {
	geometries *GeometryService
	events     ports.EventPublisher
}

// NewJobService creates a JobService. events may be nil, in which case
// results are returned but not published.
func NewJobService(geometries *GeometryService, events ports.EventPublisher) *JobService {
	return &JobService{geometries: geometries, events: events}
}

// Reproject transforms every geometry of job in order. It fails as a whole
// if any member fails.
func (s *JobService) Reproject(ctx context.Context, job *domain.ReprojectionJob) ([]string, error) {
	if job.SourceCRS == "" {
		return nil, &domain.Error{Kind: domain.KindUnknownCRS, Msg: "source CRS is required"}
	}
	out := make([]string, len(job.Geometries))
	for i, text := range job.Geometries {
		res, err := s.geometries.TransformWKT(ctx, text, job.SourceCRS, job.TargetCRS)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		out[i] = res.WKT
	}
	return out, nil
}

// Process runs job and publishes its result. The returned error is only
// non-nil when publishing fails; conversion failures travel in the result.
func (s *JobService) Process(ctx context.Context, job *domain.ReprojectionJob) (*domain.ReprojectionResult, error) {
	target := job.TargetCRS
	if target == "" {
		target = s.geometries.DefaultTarget()
	}
	res := &domain.ReprojectionResult{JobID: job.ID, TargetCRS: target}

	geoms, err := s.Reproject(ctx, job)
	res.FinishedAt = time.Now().UTC()
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = domain.KindOf(err)
		metrics.JobsProcessed.WithLabelValues("failed").Inc()
		slog.WarnContext(ctx, "reprojection job failed", "job_id", job.ID, "error", err)
	} else {
		res.Geometries = geoms
		metrics.JobsProcessed.WithLabelValues("ok").Inc()
	}

	if s.events != nil {
		if perr := s.events.PublishJobResult(ctx, res); perr != nil {
			return res, fmt.Errorf("publish result %s: %w", job.ID, perr)
		}
	}
	return res, nil
}

// Submit publishes job for asynchronous processing.
func (s *JobService) Submit(ctx context.Context, job *domain.ReprojectionJob) error {
	if s.events == nil {
		return ErrBrokerUnavailable
	}
	if job.ID == "" {
		job.ID = "job-" + uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	return s.events.PublishJob(ctx, job)
}
