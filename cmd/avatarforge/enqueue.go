package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/deploy"
	"github.com/dunamismax/avatarforge/internal/id"
	"github.com/dunamismax/avatarforge/internal/queue"
	"github.com/dunamismax/avatarforge/internal/storage"
)

var (
	enqueueFormat    string
	enqueueQuality   int
	enqueueSize      int
	enqueueThreshold int
	enqueueUpload    bool
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [flags] <input-dir>",
	Short: "Schedule every logo in a directory on the worker queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := log.New(os.Stderr, "[enqueue] ", log.LstdFlags|log.Lmsgprefix)
		if !codec.SupportedFormat(enqueueFormat) {
			return fmt.Errorf("unsupported --format %q (png, jpeg or webp)", enqueueFormat)
		}
		if enqueueThreshold < 0 || enqueueThreshold > 255 {
			return fmt.Errorf("--threshold must be between 0 and 255")
		}

		inputDir, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		tasks, err := batch.Enumerate(inputDir)
		if err != nil {
			return err
		}

		runID := id.NewRunID(time.Now())

		if enqueueUpload {
			client, err := storage.NewClient(storage.Config{
				Endpoint: cfg.Storage.Endpoint,
				Access:   cfg.Storage.AccessKey,
				Secret:   cfg.Storage.SecretKey,
				Bucket:   cfg.Storage.Bucket,
				UseSSL:   cfg.Storage.UseSSL,
			})
			if err != nil {
				return err
			}
			if err := client.EnsureBucket(ctx); err != nil {
				return err
			}
			staged, uploaded, err := deploy.StageSources(ctx, client, cfg.Storage.SourcePrefix, tasks)
			if err != nil {
				return err
			}
			logger.Printf("sources staged bucket=%s prefix=%s uploaded=%d reused=%d", client.Bucket(), cfg.Storage.SourcePrefix, uploaded, len(staged)-uploaded)
			tasks = staged
		}

		client := queue.NewClient(cfg.Queue.RedisClientOpt(), cfg.Queue.Name)
		defer func() {
			if err := client.Close(); err != nil {
				logger.Printf("queue client close error: %v", err)
			}
		}()

		render := queue.Render{
			Format:         enqueueFormat,
			Quality:        enqueueQuality,
			Size:           enqueueSize,
			WhiteThreshold: enqueueThreshold,
		}
		now := time.Now()
		for _, task := range tasks {
			info, err := client.EnqueueProcessLogo(ctx, queue.PayloadFor(runID, task, render, now))
			if err != nil {
				return fmt.Errorf("enqueue %s: %w", task.Name, err)
			}
			logger.Printf("enqueued name=%s task_id=%s queue=%s", task.Name, info.ID, info.Queue)
		}

		fmt.Fprintf(os.Stdout, "run_id=%s tasks=%d\n", runID, len(tasks))
		return nil
	},
}

func init() {
	enqueueCmd.Flags().StringVarP(&enqueueFormat, "format", "f", cfg.Process.Format, "output format: png, jpeg or webp")
	enqueueCmd.Flags().IntVarP(&enqueueQuality, "quality", "q", cfg.Process.Quality, "quality for lossy encoders (1-100)")
	enqueueCmd.Flags().IntVarP(&enqueueSize, "size", "s", cfg.Process.Size, "final square size in pixels (0 keeps the trimmed size)")
	enqueueCmd.Flags().IntVar(&enqueueThreshold, "threshold", 0, "white threshold sent with each task (0 defers to the worker's AVATARFORGE_WHITE_THRESHOLD)")
	enqueueCmd.Flags().BoolVar(&enqueueUpload, "upload", false, "upload sources to the bucket and enqueue object_store tasks")

	rootCmd.AddCommand(enqueueCmd)
}
