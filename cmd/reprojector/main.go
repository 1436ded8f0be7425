package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"

	natsadapter "github.com/samirrijal/reproj/internal/adapters/nats"
	"github.com/samirrijal/reproj/internal/app"
	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/pkg/config"
	"github.com/samirrijal/reproj/internal/pkg/logging"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
	"github.com/samirrijal/reproj/internal/workflows"
)

// reprojector consumes jobs from the GEO_JOBS stream. Jobs are processed
// inline, or handed to the reprojection workflow when Temporal is enabled.
func main() {
	cfg, err := config.Load("reproj-reprojector")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)
	if !cfg.NATS.Enabled {
		log.Fatal("reprojector needs nats.enabled=true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	rt, err := app.Bootstrap(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer rt.Close()
	if rt.Publisher == nil {
		log.Fatal("reprojector cannot publish results: nats unavailable")
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	handle := func(ctx context.Context, job *domain.ReprojectionJob) error {
		res, err := rt.Jobs.Process(ctx, job)
		if err != nil {
			return err
		}
		slog.Info("job processed", "job_id", job.ID, "failed", res.Error != "")
		return nil
	}

	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			log.Fatalf("temporal client: %v", err)
		}
		defer tc.Close()

		handle = func(ctx context.Context, job *domain.ReprojectionJob) error {
			run, err := tc.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:        "reproject-" + job.ID,
				TaskQueue: cfg.Temporal.TaskQueue,
			}, workflows.ReprojectionWorkflow, workflows.ReprojectionInput{
				Job:           *job,
				ChunkSize:     cfg.Temporal.ChunkSize,
				DefaultTarget: rt.Geometry.DefaultTarget(),
			})
			if err != nil {
				return err
			}
			slog.Info("workflow started", "job_id", job.ID, "run_id", run.GetRunID())
			return nil
		}
	}

	if err := sub.SubscribeJobs(ctx, handle); err != nil {
		log.Fatalf("subscribe jobs: %v", err)
	}
	slog.Info("reprojector started", "temporal", cfg.Temporal.Enabled)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("reprojector stopping")
}
