package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dunamismax/avatarforge/internal/domain"
)

func TestMemoryOutcomeStore_RecordAndList(t *testing.T) {
	s := NewMemoryOutcomeStore()
	ctx := context.Background()

	ok := domain.Success(domain.Task{Name: "b.png", OutputName: "b"}, "/out/b.png")
	ok.Shape = "circular"
	ok.Duration = 1500 * time.Millisecond
	failed := domain.Failure(domain.Task{Name: "a.png", OutputName: "a"}, domain.StageNone, domain.ErrorKindDecode, "bad header")

	if err := s.Record(ctx, "run-1", ok); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := s.Record(ctx, "run-1", failed); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := s.Record(ctx, "run-2", ok); err != nil {
		t.Fatalf("record other run: %v", err)
	}

	records, err := s.ListRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("list run: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first, second := records[0], records[1]
	if first.Name != "a.png" || first.Status != domain.StatusFailed || first.ErrorKind != "decode_error" {
		t.Fatalf("unexpected failure record: %+v", first)
	}
	if second.Status != domain.StatusSucceeded || second.Shape != "circular" || second.DurationMS != 1500 {
		t.Fatalf("unexpected success record: %+v", second)
	}
	if second.Stage != "encoded" || second.OutputPath != "/out/b.png" {
		t.Fatalf("unexpected success record: %+v", second)
	}
}

func TestMemoryOutcomeStore_RequiresRunID(t *testing.T) {
	err := NewMemoryOutcomeStore().Record(context.Background(), " ", domain.Outcome{})
	if !errors.Is(err, ErrRunIDRequired) {
		t.Fatalf("expected ErrRunIDRequired, got %v", err)
	}
}

func TestMemoryOutcomeStore_UnknownRunIsEmpty(t *testing.T) {
	records, err := NewMemoryOutcomeStore().ListRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("list run: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestPostgresOutcomeStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("AVATARFORGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AVATARFORGE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := NewPostgresOutcomeStore(ctx, dsn)
	if err != nil {
		t.Fatalf("new postgres outcome store: %v", err)
	}
	defer s.Close()

	runID := "test-" + time.Now().UTC().Format("20060102T150405.000000000")
	skipped := domain.Success(domain.Task{Name: "logo.png", OutputName: "logo"}, "")
	skipped.Skipped = true

	if err := s.Record(ctx, runID, skipped); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := s.ListRun(ctx, runID)
	if err != nil {
		t.Fatalf("list run: %v", err)
	}
	if len(records) != 1 || records[0].Status != domain.StatusSkipped {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestNewRecordFlattensOutcome(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("x", 3600))
	rec := NewRecord("run", domain.Failure(domain.Task{Name: "x.png"}, domain.StageTrimmed, domain.ErrorKindInvalidGeometry, "empty"), now)

	if rec.Stage != "trimmed" || rec.ErrorKind != "invalid_geometry" || rec.Message != "empty" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", rec.CreatedAt.Location())
	}
}
