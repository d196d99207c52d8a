package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/id"
	"github.com/dunamismax/avatarforge/internal/store"
	"github.com/dunamismax/avatarforge/internal/tui"
)

// runBatch drives one batch with either the progress UI or plain log lines
// and prints the summary table afterwards.
func runBatch(ctx context.Context, title string, tasks []domain.Task, processor batch.TaskProcessor, outputDir string) error {
	runner := &batch.Runner{
		Processor:   processor,
		Concurrency: concurrency,
		RunID:       id.NewRunID(time.Now()),
	}

	if record {
		pg, err := store.NewPostgresOutcomeStore(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		runner.Store = pg
	}

	var report batch.Report
	if plain {
		runner.Logger = log.New(os.Stderr, "[avatarforge] ", log.LstdFlags|log.Lmsgprefix)
		r, err := runner.Run(ctx, tasks)
		if err != nil {
			return err
		}
		report = r
	} else {
		runner.Logger = log.New(io.Discard, "", 0)
		updates := make(chan batch.ProgressUpdate, 64)
		runner.Updates = updates

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		program := tea.NewProgram(tui.NewModel(title, len(tasks), updates))
		uiDone := followProgress(program, updates, cancel)

		r, err := runner.Run(runCtx, tasks)
		close(updates)
		<-uiDone
		if err != nil {
			return err
		}
		report = r
	}

	fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.ReportRows(report)))
	if failures := tui.RenderFailures(report); failures != "" {
		fmt.Fprintln(os.Stdout, failures)
	}
	if outputDir != "" {
		outPath := outputDir
		if abs, err := filepath.Abs(outputDir); err == nil {
			outPath = abs
		}
		fmt.Fprintf(os.Stdout, "Avatars written to: %s\n", outPath)
	}
	return nil
}

type programRunner interface {
	Run() (tea.Model, error)
}

// followProgress runs the progress UI. When the UI exits before the batch
// does (ctrl+c), the batch context is cancelled and the remaining updates
// are drained so workers never block on a full channel.
func followProgress(program programRunner, updates <-chan batch.ProgressUpdate, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = program.Run()
		cancel()
		for range updates {
		}
	}()
	return done
}
