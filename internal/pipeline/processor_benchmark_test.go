package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/dunamismax/avatarforge/internal/domain"
)

func BenchmarkProcessorCutout(b *testing.B) {
	source := buildLogoPNG(b, 1200, 600)
	processor, err := NewProcessor(staticFetcher{data: source}, CutoutTransformer{Format: "png"}, discardEmitter{})
	if err != nil {
		b.Fatalf("new processor: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		task := localTask("bench.png", fmt.Sprintf("bench-%d", i), "ignored.png")
		if out := processor.Process(context.Background(), task); out.Failed() {
			b.Fatalf("process: %s", out.Message)
		}
	}
}

func BenchmarkProcessorConvertWebp(b *testing.B) {
	source := buildLogoPNG(b, 1200, 600)
	processor, err := NewProcessor(staticFetcher{data: source}, ConvertTransformer{Format: "webp"}, discardEmitter{})
	if err != nil {
		b.Fatalf("new processor: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if out := processor.Process(context.Background(), localTask("bench.png", "bench", "ignored.png")); out.Failed() {
			b.Fatalf("process: %s", out.Message)
		}
	}
}

type staticFetcher struct {
	data []byte
}

func (f staticFetcher) Fetch(_ context.Context, _ domain.Task) ([]byte, error) {
	return f.data, nil
}

type discardEmitter struct{}

func (discardEmitter) Emit(_ context.Context, _ domain.Task, _ []byte, _ string) (string, error) {
	return "", nil
}
