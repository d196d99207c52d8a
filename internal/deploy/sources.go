package deploy

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/codec"
	"github.com/dunamismax/avatarforge/internal/domain"
)

type SourceStore interface {
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	UploadFile(ctx context.Context, objectKey, path, contentType string) error
}

// StageSources uploads the file of every local task to
// <prefix>/<md5 of content>.<ext> and returns object_store copies of the
// tasks. Content already in the bucket is not uploaded again; the second
// return value counts actual uploads.
func StageSources(ctx context.Context, store SourceStore, prefix string, tasks []domain.Task) ([]domain.Task, int, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	staged := make([]domain.Task, 0, len(tasks))
	uploaded := 0

	for _, task := range tasks {
		if task.SourceType != domain.SourceTypeLocalFile {
			staged = append(staged, task)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, uploaded, err
		}

		sum, err := fileDigest(task.SourceKey)
		if err != nil {
			return nil, uploaded, err
		}
		_, ext := batch.SplitName(task.Name)
		key := path.Join(prefix, sum+"."+strings.ToLower(ext))

		exists, err := store.ObjectExists(ctx, key)
		if err != nil {
			return nil, uploaded, err
		}
		if !exists {
			if err := store.UploadFile(ctx, key, task.SourceKey, codec.ContentType(ext)); err != nil {
				return nil, uploaded, err
			}
			uploaded++
		}

		task.SourceType = domain.SourceTypeObjectStore
		task.SourceKey = key
		staged = append(staged, task)
	}
	return staged, uploaded, nil
}

func fileDigest(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
