package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/cutout"
	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/pixbuf"
)

var (
	ErrUnsupportedSourceType = errors.New("unsupported source_type")
	ErrInvalidOutputName     = errors.New("invalid output name")
	errFetch                 = errors.New("fetch stage")
	errEmit                  = errors.New("emit stage")
)

type Fetcher interface {
	Fetch(ctx context.Context, task domain.Task) ([]byte, error)
}

type Emitter interface {
	Emit(ctx context.Context, task domain.Task, data []byte, format string) (string, error)
}

// DigestCache remembers the source digest of the last successful output per key.
type DigestCache interface {
	Digest(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, digest string) error
}

type Processor struct {
	fetcher     Fetcher
	transformer Transformer
	emitter     Emitter
	cache       DigestCache
	now         func() time.Time
}

func NewProcessor(fetcher Fetcher, transformer Transformer, emitter Emitter) (*Processor, error) {
	if fetcher == nil || transformer == nil || emitter == nil {
		return nil, errors.New("fetcher, transformer and emitter are required")
	}
	return &Processor{
		fetcher:     fetcher,
		transformer: transformer,
		emitter:     emitter,
		now:         time.Now,
	}, nil
}

func NewLocalProcessor(outputDir string, transformer Transformer) (*Processor, error) {
	return NewProcessor(LocalFileFetcher{}, transformer, LocalFileEmitter{OutputDir: outputDir})
}

// WithCache enables skipping sources whose digest matches the last
// successful run for the same output and variant.
func (p *Processor) WithCache(cache DigestCache) *Processor {
	p.cache = cache
	return p
}

// Process runs one task to completion and reports the outcome. It never
// returns an error: every failure is captured in the outcome.
func (p *Processor) Process(ctx context.Context, task domain.Task) (out domain.Outcome) {
	startedAt := p.now()
	out = domain.Outcome{Task: task}
	defer func() {
		if r := recover(); r != nil {
			out = domain.Failure(task, domain.StageFailed, domain.ErrorKindPanic, fmt.Sprint(r))
		}
		out.Duration = p.now().Sub(startedAt)
	}()

	if err := task.Validate(); err != nil {
		return domain.Failure(task, domain.StageNone, domain.ErrorKindIO, err.Error())
	}

	source, err := p.fetcher.Fetch(ctx, task)
	if err != nil {
		err = fmt.Errorf("%w: %w", errFetch, err)
		return domain.Failure(task, domain.StageNone, KindOf(err), err.Error())
	}

	cacheKey := task.OutputName + "|" + p.transformer.Variant()
	digest := sourceDigest(source)
	if p.cache != nil {
		if prev, ok, err := p.cache.Digest(ctx, cacheKey); err == nil && ok && prev == digest {
			out = domain.Success(task, "")
			out.Stage = domain.StageNone
			out.Skipped = true
			return out
		}
	}

	transformed, err := p.transformer.Transform(ctx, source)
	if err != nil {
		err = fmt.Errorf("transform stage: %w", err)
		failed := domain.Failure(task, transformed.Stage, KindOf(err), err.Error())
		failed.Shape = transformed.Shape
		return failed
	}

	written, err := p.emitter.Emit(ctx, task, transformed.Data, transformed.Format)
	if err != nil {
		err = fmt.Errorf("%w: %w", errEmit, err)
		failed := domain.Failure(task, transformed.Stage, KindOf(err), err.Error())
		failed.Shape = transformed.Shape
		return failed
	}

	if p.cache != nil {
		// A failed write only costs a re-run next time.
		_ = p.cache.Remember(ctx, cacheKey, digest)
	}

	out = domain.Success(task, written)
	out.Shape = transformed.Shape
	out.Bytes = len(transformed.Data)
	out.Pixels = int64(transformed.Width) * int64(transformed.Height)
	return out
}

// KindOf maps a processing error to the kind reported in outcomes.
func KindOf(err error) domain.ErrorKind {
	switch {
	case err == nil:
		return domain.ErrorKindNone
	case errors.Is(err, codec.ErrDecode):
		return domain.ErrorKindDecode
	case errors.Is(err, cutout.ErrInvalidGeometry), errors.Is(err, pixbuf.ErrInvalidBuffer):
		return domain.ErrorKindInvalidGeometry
	case errors.Is(err, codec.ErrEncode), errors.Is(err, codec.ErrUnsupportedFormat):
		return domain.ErrorKindEncode
	default:
		return domain.ErrorKindIO
	}
}

func sourceDigest(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

type LocalFileFetcher struct{}

func (LocalFileFetcher) Fetch(ctx context.Context, task domain.Task) ([]byte, error) {
	if task.SourceType != domain.SourceTypeLocalFile {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSourceType, task.SourceType)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(task.SourceKey)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", task.SourceKey, err)
	}
	return data, nil
}

type LocalFileEmitter struct {
	OutputDir string
}

func (e LocalFileEmitter) Emit(_ context.Context, task domain.Task, data []byte, format string) (string, error) {
	if strings.TrimSpace(e.OutputDir) == "" {
		return "", errors.New("output directory is required")
	}
	filename, err := outputFilename(task.OutputName, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	fullPath := filepath.Join(e.OutputDir, filename)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return fullPath, nil
}

// outputFilename keeps the name as given (including non-ASCII) but refuses
// anything that would escape the output directory.
func outputFilename(name, format string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidOutputName, name)
	}
	return fmt.Sprintf("%s.%s", name, codec.Extension(format)), nil
}
