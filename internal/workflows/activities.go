package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
)

// Activity names as registered on the worker.
const (
	ActivityReprojectChunk = "ReprojectChunk"
	ActivityPublishResult  = "PublishResult"
)

// ChunkInput is one slice of a job's geometries.
type ChunkInput struct {
	JobID      string
	SourceCRS  string
	TargetCRS  string
	Offset     int
	Geometries []string
}

// ChunkOutput carries the reprojected slice back, tagged with its offset.
type ChunkOutput struct {
	Offset     int
	Geometries []string
}

// ReprojectionActivities holds the activity implementations for the
// reprojection workflow.
type ReprojectionActivities struct {
	Jobs   *usecases.JobService
	Events ports.EventPublisher // may be nil
}

// ReprojectChunk reprojects one chunk. Conversion failures are deterministic,
// so they are returned as non-retryable errors typed by their error kind.
func (a *ReprojectionActivities) ReprojectChunk(ctx context.Context, in ChunkInput) (ChunkOutput, error) {
	trace.SpanFromContext(ctx).SetAttributes(telemetry.AttrJobID.String(in.JobID))
	activity.GetLogger(ctx).Debug("reprojecting chunk", "job_id", in.JobID, "offset", in.Offset, "size", len(in.Geometries))

	out, err := a.Jobs.Reproject(ctx, &domain.ReprojectionJob{
		ID:         in.JobID,
		SourceCRS:  in.SourceCRS,
		TargetCRS:  in.TargetCRS,
		Geometries: in.Geometries,
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			msg := shiftIndex(err, in.Offset)
			return ChunkOutput{}, temporal.NewNonRetryableApplicationError(msg, string(de.Kind), nil, msg)
		}
		return ChunkOutput{}, err
	}
	return ChunkOutput{Offset: in.Offset, Geometries: out}, nil
}

// PublishResult publishes the final job result. Without a publisher the
// result is only returned by the workflow.
func (a *ReprojectionActivities) PublishResult(ctx context.Context, res *domain.ReprojectionResult) error {
	if a.Events == nil {
		return nil
	}
	if err := a.Events.PublishJobResult(ctx, res); err != nil {
		return fmt.Errorf("publish result %s: %w", res.JobID, err)
	}
	return nil
}

// shiftIndex rewrites the chunk-local "geometry N" prefix to the job-wide
// index.
func shiftIndex(err error, offset int) string {
	msg := err.Error()
	var local int
	if _, serr := fmt.Sscanf(msg, "geometry %d:", &local); serr != nil {
		return msg
	}
	_, rest, _ := strings.Cut(msg, ":")
	return fmt.Sprintf("geometry %d:%s", local+offset, rest)
}
