package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// DefaultChunkSize is used when the input does not set one.
const DefaultChunkSize = 500

// ReprojectionInput is the input for the reprojection workflow.
type ReprojectionInput struct {
	Job       domain.ReprojectionJob
	ChunkSize int
	// DefaultTarget is the configured target used when the job names none.
	// Empty means domain.DefaultTargetCRS.
	DefaultTarget string
}

// ReprojectionWorkflow splits a bulk job into chunks, reprojects them in
// parallel and reassembles the output in input order. The job is atomic: if
// any chunk fails the result carries only the error. The result is published
// in both cases.
func ReprojectionWorkflow(ctx workflow.Context, input ReprojectionInput) (*domain.ReprojectionResult, error) {
	logger := workflow.GetLogger(ctx)
	job := input.Job
	size := input.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	// Chunks get the resolved target so they never fall back to their own default.
	target := job.TargetCRS
	if target == "" {
		target = input.DefaultTarget
	}
	if target == "" {
		target = domain.DefaultTargetCRS
	}
	logger.Info("Starting reprojection workflow", "job_id", job.ID, "geometries", len(job.Geometries), "chunk_size", size, "target", target)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	futures := make([]workflow.Future, 0, len(job.Geometries)/size+1)
	for off := 0; off < len(job.Geometries); off += size {
		end := off + size
		if end > len(job.Geometries) {
			end = len(job.Geometries)
		}
		futures = append(futures, workflow.ExecuteActivity(ctx, ActivityReprojectChunk, ChunkInput{
			JobID:      job.ID,
			SourceCRS:  job.SourceCRS,
			TargetCRS:  target,
			Offset:     off,
			Geometries: job.Geometries[off:end],
		}))
	}

	res := &domain.ReprojectionResult{JobID: job.ID, TargetCRS: target}

	out := make([]string, len(job.Geometries))
	var firstErr error
	for _, f := range futures {
		var chunk ChunkOutput
		if err := f.Get(ctx, &chunk); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		copy(out[chunk.Offset:], chunk.Geometries)
	}

	res.FinishedAt = workflow.Now(ctx).UTC()
	if firstErr != nil {
		res.Error, res.ErrorKind = describe(firstErr)
		logger.Warn("reprojection job failed", "job_id", job.ID, "error", res.Error)
	} else {
		res.Geometries = out
	}

	if err := workflow.ExecuteActivity(ctx, ActivityPublishResult, res).Get(ctx, nil); err != nil {
		return res, err
	}
	logger.Info("Reprojection workflow finished", "job_id", job.ID, "failed", res.Error != "")
	return res, nil
}

// describe extracts the message and error kind of a failed chunk.
func describe(err error) (string, domain.ErrorKind) {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		var msg string
		if appErr.HasDetails() && appErr.Details(&msg) == nil {
			return msg, domain.ErrorKind(appErr.Type())
		}
		return appErr.Error(), domain.ErrorKind(appErr.Type())
	}
	return err.Error(), ""
}
