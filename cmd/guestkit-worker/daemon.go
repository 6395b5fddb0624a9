package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/api"
	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/executor"
	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/handlers"
	"github.com/ssahani/guestkit-worker/pkg/inspect"
	"github.com/ssahani/guestkit-worker/pkg/log"
	"github.com/ssahani/guestkit-worker/pkg/metrics"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/transport"
	"github.com/ssahani/guestkit-worker/pkg/transport/file"
	"github.com/ssahani/guestkit-worker/pkg/transport/httpq"
	"github.com/ssahani/guestkit-worker/pkg/worker"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the worker daemon",
	Long: `Start the worker daemon, which fetches jobs from the configured
transport and dispatches each to the built-in handler registry (echo,
inspect, profile) under a bounded concurrency limit.`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().String("worker-id", "", "Unique worker ID (defaults to a generated ULID)")
	daemonCmd.Flags().String("pool", "default", "Worker pool name")
	daemonCmd.Flags().String("transport", "file", "Transport mode: file|http")
	daemonCmd.Flags().String("jobs-dir", "./jobs/incoming", "File transport: directory watched for new job documents")
	daemonCmd.Flags().String("done-dir", "./jobs/done", "File transport: directory jobs are moved to after completion")
	daemonCmd.Flags().String("failed-dir", "./jobs/failed", "File transport: directory jobs are moved to after failure")
	daemonCmd.Flags().String("work-dir", "./work", "Scratch directory handlers may write to, per job")
	daemonCmd.Flags().String("result-dir", "./results", "Directory result envelopes are persisted to")
	daemonCmd.Flags().Int("max-concurrent", 4, "Maximum number of jobs dispatched concurrently")
	daemonCmd.Flags().Duration("poll-interval", 2*time.Second, "Fallback poll interval when no job is immediately available")
	daemonCmd.Flags().Bool("api-enable", true, "Serve the REST API (only meaningful with --transport http)")
	daemonCmd.Flags().String("api-addr", ":8080", "REST API listen address")
	daemonCmd.Flags().Bool("metrics-enable", false, "Serve a standalone Prometheus /metrics and /health endpoint")
	daemonCmd.Flags().String("metrics-addr", ":9090", "Metrics server listen address")

	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	workerID, _ := cmd.Flags().GetString("worker-id")
	pool, _ := cmd.Flags().GetString("pool")
	transportMode, _ := cmd.Flags().GetString("transport")
	jobsDir, _ := cmd.Flags().GetString("jobs-dir")
	doneDir, _ := cmd.Flags().GetString("done-dir")
	failedDir, _ := cmd.Flags().GetString("failed-dir")
	workDir, _ := cmd.Flags().GetString("work-dir")
	resultDir, _ := cmd.Flags().GetString("result-dir")
	maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	apiEnable, _ := cmd.Flags().GetBool("api-enable")
	apiAddr, _ := cmd.Flags().GetString("api-addr")
	metricsEnable, _ := cmd.Flags().GetBool("metrics-enable")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	if workerID == "" {
		workerID = "worker-" + ulid.Make().String()
	}

	registry := handler.NewRegistry()
	registry.Register(handlers.NewEchoHandler())
	registry.Register(handlers.NewInspectHandler(inspect.NoopProvider{}))
	registry.Register(handlers.NewProfileHandler(inspect.NoopProvider{}))

	caps := capability.New(workerID).
		WithOperation("system.echo").
		WithOperation("test.echo").
		WithOperation("guestkit.inspect").
		WithOperation("guestkit.profile").
		WithFeature("inspection").
		WithDiskFormat("qcow2").
		WithDiskFormat("raw").
		WithDiskFormat("vmdk").
		WithMaxConcurrentJobs(maxConcurrent).
		WithMaxDiskSizeGB(500).
		Build()

	results := result.NewWriter(resultDir)
	hook := metrics.NewPrometheusHook()
	exec := executor.New(workerID, workDir, registry, results, hook)

	var tp transport.Transport
	var queue *httpq.Transport

	switch transportMode {
	case "file":
		ft, err := file.New(jobsDir, doneDir, failedDir, pollInterval)
		if err != nil {
			return clientError(fmt.Errorf("create file transport: %w", err))
		}
		defer ft.Close()
		tp = ft
	case "http":
		queue = httpq.New()
		tp = queue
		exec.SetResultPublisher(queue)
	default:
		return clientError(fmt.Errorf("unknown transport mode %q (expected file or http)", transportMode))
	}

	if src, ok := tp.(metrics.QueueDepthSource); ok {
		collector := metrics.NewCollector(src)
		collector.Start(pollInterval)
		defer collector.Stop()
	}

	cfg := worker.DefaultConfig()
	cfg.WorkerID = workerID
	cfg.Pool = pool
	cfg.WorkDir = workDir
	cfg.ResultDir = resultDir
	cfg.MaxConcurrentJobs = maxConcurrent
	cfg.PollInterval = pollInterval

	d := worker.New(cfg, caps, registry, exec, tp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	if metricsEnable {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/health", metrics.HealthHandler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Logger.Error().Err(err).Msg("metrics server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Logger.Info().Str("addr", metricsAddr).Msg("metrics server listening")
	}

	if apiEnable && transportMode == "http" {
		apiSrv := api.NewServer(queue, results, caps)
		go func() {
			if err := apiSrv.ListenAndServe(ctx, apiAddr); err != nil {
				log.Logger.Error().Err(err).Msg("api server error")
			}
		}()
		log.Logger.Info().Str("addr", apiAddr).Msg("REST API listening")
	}

	fmt.Printf("guestkit-worker daemon starting (worker_id=%s transport=%s)\n", workerID, transportMode)
	if err := d.Run(ctx); err != nil {
		return serverError(err)
	}
	fmt.Println("guestkit-worker daemon stopped")
	return nil
}
