package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/bucketgate/internal/client"
	"github.com/timmy/bucketgate/internal/logger"
	"github.com/timmy/bucketgate/internal/source"
	"github.com/timmy/bucketgate/internal/source/localdir"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "bucketgate-bulkupload",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	dir := flag.String("dir", "", "Directory holding the files to upload")
	server := flag.String("server", "http://localhost:3000", "Base URL of the bucketgate server")
	batchSize := flag.Int("batch", 10, "Files per /BulkUpload request")
	useManifest := flag.Bool("manifest", false, "Upload the files listed in manifest.jsonl instead of the whole directory")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per batch request")
	flag.Parse()

	if *dir == "" {
		appLogger.Fatal("-dir is required")
	}
	if *batchSize <= 0 {
		appLogger.Fatal("-batch must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := localdir.NewAdapter(*dir, *useManifest)
	total, err := src.Len()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read source directory")
	}

	appLogger.WithFields(logger.Fields{
		"source": src.GetSourceID(),
		"server": *server,
		"files":  total,
		"batch":  *batchSize,
	}).Info("Starting bulk upload")

	c := client.New(&client.Config{BaseURL: *server, Timeout: *timeout})
	stats := run(ctx, src, c, *batchSize)

	appLogger.WithFields(logger.Fields{
		"batches":   stats.batches,
		"succeeded": stats.succeeded,
		"failed":    stats.failed,
	}).Info("Bulk upload finished")

	if stats.failed > 0 || stats.aborted {
		os.Exit(1)
	}
}

type runStats struct {
	batches   int
	succeeded int
	failed    int
	aborted   bool
}

// run walks the source batch by batch until it is exhausted, the context ends
// or the server rejects a request.
func run(ctx context.Context, src source.Source, c *client.Client, batchSize int) runStats {
	var stats runStats
	cursor := ""

	for {
		if ctx.Err() != nil {
			logger.CtxWarn(ctx, "Bulk upload interrupted")
			stats.aborted = true
			return stats
		}

		files, next, err := src.FetchBatch(ctx, cursor, batchSize)
		if err != nil {
			logger.GetDefault().WithError(err).Error("Failed to fetch batch")
			stats.aborted = true
			return stats
		}
		if len(files) == 0 {
			return stats
		}

		start := time.Now()
		result, status, err := c.BulkUpload(ctx, files)
		if err != nil {
			logger.GetDefault().WithError(err).WithField("cursor", cursor).Error("Batch request failed")
			stats.aborted = true
			return stats
		}

		stats.batches++
		stats.succeeded += len(result.Successful)
		stats.failed += len(result.Failed)

		batchCtx := logger.SetBatchID(ctx, result.BatchID)
		for _, f := range result.Failed {
			logger.FromContext(batchCtx).WithField(logger.FieldFileName, f.OriginalName).
				WithField("error", f.Error).Warn("File failed")
		}
		logger.With(logger.Fields{
			logger.FieldStatus:     status,
			logger.FieldCount:      len(files),
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
		}).Info(batchCtx, "Batch settled: succeeded=%d, failed=%d", len(result.Successful), len(result.Failed))

		if next == "" {
			return stats
		}
		cursor = next
	}
}
