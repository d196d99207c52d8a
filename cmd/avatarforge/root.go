package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dunamismax/avatarforge/internal/config"
	"github.com/dunamismax/avatarforge/internal/telemetry"
)

var (
	cfg             = config.Load()
	concurrency     int
	plain           bool
	record          bool
	shutdownTracing = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:           "avatarforge",
	Short:         "avatarforge - turn white-background logos into transparent square avatars",
	Long:          "avatarforge removes the white background of logo images, cutting round logos out as circles and flood-filling everything else.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		shutdown, err := telemetry.SetupTracing(cmd.Context(), telemetry.TraceConfig{
			ServiceName:  "avatarforge",
			Exporter:     cfg.Tracing.Exporter,
			OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
			OTLPInsecure: cfg.Tracing.OTLPInsecure,
		}, nil)
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(ctx)
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", cfg.Process.Concurrency, "number of logos processed at once")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "log lines instead of the progress UI")
	rootCmd.PersistentFlags().BoolVar(&record, "record", false, "persist outcomes to postgres (POSTGRES_DSN)")
}
