package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/domain"
)

func writeLogo(t *testing.T, path string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 60, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x >= 5 && x < 55 && y >= 5 && y < 25 {
				c = color.NRGBA{B: 160, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestProcessCommandWritesAvatars(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "avatars")
	writeLogo(t, filepath.Join(in, "initech（us）.png"))

	if err := execute(t, "process", "--plain", "--size", "48", in, out); err != nil {
		t.Fatalf("process command: %v", err)
	}

	f, err := os.Open(filepath.Join(out, "initechus.png"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 48 || cfg.Height != 48 {
		t.Fatalf("expected 48x48 avatar, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessCommandRejectsUnknownFormat(t *testing.T) {
	err := execute(t, "process", "--plain", "--format", "gif", "--size", "0", t.TempDir())
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
	processFormat = "png"
}

func TestProcessCommandMissingInputDir(t *testing.T) {
	err := execute(t, "process", "--plain", "--format", "png", filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing input dir")
	}
}

func TestImportCommandConvertsToWebp(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "imported")
	writeLogo(t, filepath.Join(in, "hooli.png"))

	if err := execute(t, "import", "--plain", in, out); err != nil {
		t.Fatalf("import command: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "hooli.webp"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Fatal("expected a webp container")
	}
}

type quitProgram struct{}

func (quitProgram) Run() (tea.Model, error) { return nil, nil }

type okProcessor struct{}

func (okProcessor) Process(_ context.Context, task domain.Task) domain.Outcome {
	return domain.Success(task, "")
}

func TestBatchFinishesAfterProgressUIQuits(t *testing.T) {
	tasks := make([]domain.Task, 200)
	for i := range tasks {
		tasks[i] = domain.Task{Name: "logo.png", OutputName: "logo", SourceType: domain.SourceTypeLocalFile, SourceKey: "logo.png"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := make(chan batch.ProgressUpdate, 1)
	uiDone := followProgress(quitProgram{}, updates, cancel)
	runner := &batch.Runner{Processor: okProcessor{}, Concurrency: 4, Updates: updates}

	finished := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx, tasks)
		close(updates)
		finished <- err
	}()

	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("batch blocked on progress updates after the UI quit")
	}
	<-uiDone
	if ctx.Err() == nil {
		t.Fatal("expected the batch context to be cancelled when the UI quits")
	}
}
