package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/pipeline"
)

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import [flags] <source-dir> <dest-dir>",
	Short: "Convert raw logos into the working format without touching their pixels",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !codec.SupportedFormat(importFormat) {
			return fmt.Errorf("unsupported --format %q (png, jpeg or webp)", importFormat)
		}

		if err := codec.Startup(); err != nil {
			return err
		}
		defer codec.Shutdown()

		tasks, err := batch.Enumerate(args[0])
		if err != nil {
			return err
		}

		processor, err := pipeline.NewLocalProcessor(args[1], pipeline.ConvertTransformer{Format: importFormat, Quality: cfg.Process.Quality})
		if err != nil {
			return err
		}
		return runBatch(cmd.Context(), "avatarforge import", tasks, processor, args[1])
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", cfg.Process.ImportFormat, "output format: png, jpeg or webp")

	rootCmd.AddCommand(importCmd)
}
