package main

import (
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/cache"
	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/cutout"
	"github.com/dunamismax/avatarforge/internal/pipeline"
)

var (
	processFormat    string
	processQuality   int
	processSize      int
	processThreshold int
	processCache     bool
)

var processCmd = &cobra.Command{
	Use:   "process [flags] <input-dir> [output-dir]",
	Short: "Remove the white background from every logo in a directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir := cfg.Process.OutputDir
		if len(args) == 2 {
			outputDir = args[1]
		}
		if !codec.SupportedFormat(processFormat) {
			return fmt.Errorf("unsupported --format %q (png, jpeg or webp)", processFormat)
		}
		if processThreshold < 0 || processThreshold > 255 {
			return fmt.Errorf("--threshold must be between 0 and 255")
		}
		if processSize < 0 {
			return fmt.Errorf("--size must not be negative")
		}

		if err := codec.Startup(); err != nil {
			return err
		}
		defer codec.Shutdown()

		tasks, err := batch.Enumerate(args[0])
		if err != nil {
			return err
		}

		transformer := pipeline.CutoutTransformer{
			Format:  processFormat,
			Quality: processQuality,
			Size:    processSize,
			Options: cutout.Options{WhiteThreshold: uint8(processThreshold)},
		}
		processor, err := pipeline.NewLocalProcessor(outputDir, transformer)
		if err != nil {
			return err
		}

		if processCache {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Queue.RedisAddr,
				Password: cfg.Queue.RedisPassword,
				DB:       cfg.Queue.RedisDB,
			})
			defer rdb.Close()
			logger := log.New(os.Stderr, "[cache] ", log.LstdFlags|log.Lmsgprefix)
			digests, err := cache.Connect(cmd.Context(), rdb, cfg.Cache.KeyPrefix, cfg.Cache.TTL, logger)
			if err != nil {
				return err
			}
			processor.WithCache(digests)
		}

		return runBatch(cmd.Context(), "avatarforge ✂", tasks, processor, outputDir)
	},
}

func init() {
	processCmd.Flags().StringVarP(&processFormat, "format", "f", cfg.Process.Format, "output format: png, jpeg or webp")
	processCmd.Flags().IntVarP(&processQuality, "quality", "q", cfg.Process.Quality, "quality for lossy encoders (1-100)")
	processCmd.Flags().IntVarP(&processSize, "size", "s", cfg.Process.Size, "final square size in pixels (0 keeps the trimmed size)")
	processCmd.Flags().IntVar(&processThreshold, "threshold", cfg.Process.WhiteThreshold, "how far below 255 a channel may be and still count as white")
	processCmd.Flags().BoolVar(&processCache, "cache", false, "skip logos whose source is unchanged since the last run (redis, in memory when unreachable)")

	rootCmd.AddCommand(processCmd)
}
