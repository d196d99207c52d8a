package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/domain"
)

// ObjectStorage is the subset of storage.Client the object-store stages use.
type ObjectStorage interface {
	ReadObject(ctx context.Context, objectKey string) ([]byte, error)
	WriteObject(ctx context.Context, objectKey string, data []byte, contentType string) error
}

type ObjectStoreFetcher struct {
	Storage ObjectStorage
}

func (f ObjectStoreFetcher) Fetch(ctx context.Context, task domain.Task) ([]byte, error) {
	if f.Storage == nil {
		return nil, errors.New("storage client is required")
	}
	if task.SourceType != domain.SourceTypeObjectStore {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSourceType, task.SourceType)
	}
	return f.Storage.ReadObject(ctx, task.SourceKey)
}

type ObjectStoreEmitter struct {
	Storage      ObjectStorage
	OutputPrefix string
}

func (e ObjectStoreEmitter) Emit(ctx context.Context, task domain.Task, data []byte, format string) (string, error) {
	if e.Storage == nil {
		return "", errors.New("storage client is required")
	}
	filename, err := outputFilename(task.OutputName, format)
	if err != nil {
		return "", err
	}

	objectKey := path.Join(defaultOutputPrefix(e.OutputPrefix), filename)
	if err := e.Storage.WriteObject(ctx, objectKey, data, codec.ContentType(format)); err != nil {
		return "", err
	}
	return objectKey, nil
}

func defaultOutputPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "avatars"
	}
	return prefix
}
