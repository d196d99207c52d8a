package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dunamismax/avatarforge/internal/deploy"
	"github.com/dunamismax/avatarforge/internal/storage"
	"github.com/dunamismax/avatarforge/internal/tui"
)

var (
	deploySourceDir string
	deployPrefix    string
	deployDryRun    bool
	deploySkip      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy [flags] <dir>",
	Short: "Write md5 aliases for every avatar and upload the directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.New(os.Stderr, "[deploy] ", log.LstdFlags|log.Lmsgprefix)
		opts := deploy.Options{
			SourceDir:    deploySourceDir,
			Prefix:       deployPrefix,
			DryRun:       deployDryRun,
			SkipExisting: deploySkip,
			Logger:       logger,
		}

		var uploader deploy.Uploader
		if !deployDryRun {
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
			if err := client.EnsureBucket(cmd.Context()); err != nil {
				return err
			}
			logger.Printf("publishing bucket=%s prefix=%s", client.Bucket(), deployPrefix)
			uploader = client
		}

		summary, err := deploy.Publish(cmd.Context(), args[0], uploader, opts)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary([]tui.SummaryRow{
			{Label: "Sources copied", Value: fmt.Sprintf("%d", summary.Copied)},
			{Label: "Aliases written", Value: fmt.Sprintf("%d", summary.Aliased)},
			{Label: "Files uploaded", Value: fmt.Sprintf("%d", summary.Uploaded)},
			{Label: "Already published", Value: fmt.Sprintf("%d", summary.Skipped)},
		}))
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVar(&deploySourceDir, "source", "", "copy the original logos from this directory next to the avatars")
	deployCmd.Flags().StringVar(&deployPrefix, "prefix", cfg.Storage.DeployPrefix, "object key prefix in the bucket")
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "write aliases but upload nothing")
	deployCmd.Flags().BoolVar(&deploySkip, "skip-existing", false, "do not re-upload keys already under the prefix")

	rootCmd.AddCommand(deployCmd)
}
