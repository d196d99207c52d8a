// Package deploy prepares a directory of finished avatars for publishing and
// uploads it to the object store.
package deploy

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dunamismax/avatarforge/internal/batch"
	"github.com/dunamismax/avatarforge/internal/codec"
)

var digestName = regexp.MustCompile(`^[0-9a-f]{32}$`)

type Uploader interface {
	UploadFile(ctx context.Context, objectKey, path, contentType string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

type Options struct {
	// SourceDir, when set, has its files copied next to the outputs under
	// their sanitized names before aliasing.
	SourceDir string
	Prefix    string
	// DryRun prepares the directory but uploads nothing.
	DryRun bool
	// SkipExisting leaves keys that are already under Prefix untouched.
	SkipExisting bool
	Logger       *log.Logger
}

type Summary struct {
	Copied   int
	Aliased  int
	Uploaded int
	Skipped  int
	Keys     []string
}

// Digest is the alias stem for an output name: the hex md5 of the name.
func Digest(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Publish copies sources, writes aliases and uploads every file in dir.
func Publish(ctx context.Context, dir string, uploader Uploader, opts Options) (Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if uploader == nil && !opts.DryRun {
		return Summary{}, errors.New("uploader is required")
	}

	var summary Summary
	if opts.SourceDir != "" {
		copied, err := CopySources(opts.SourceDir, dir)
		if err != nil {
			return summary, err
		}
		summary.Copied = copied
		logger.Printf("sources copied count=%d from=%s", copied, opts.SourceDir)
	}

	aliased, err := WriteAliases(dir)
	if err != nil {
		return summary, err
	}
	summary.Aliased = aliased
	logger.Printf("aliases written count=%d dir=%s", aliased, dir)

	if opts.DryRun {
		return summary, nil
	}

	files, err := regularFiles(dir)
	if err != nil {
		return summary, err
	}

	prefix := strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	existing := make(map[string]bool)
	if opts.SkipExisting {
		listPrefix := prefix
		if listPrefix != "" {
			listPrefix += "/"
		}
		keys, err := uploader.ListKeys(ctx, listPrefix)
		if err != nil {
			return summary, err
		}
		for _, key := range keys {
			existing[key] = true
		}
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, ext := batch.SplitName(file)
		key := file
		if prefix != "" {
			key = path.Join(prefix, file)
		}
		if existing[key] {
			summary.Skipped++
			continue
		}
		if err := uploader.UploadFile(ctx, key, filepath.Join(dir, file), codec.ContentType(ext)); err != nil {
			return summary, fmt.Errorf("upload %s: %w", file, err)
		}
		summary.Uploaded++
		summary.Keys = append(summary.Keys, key)
	}
	logger.Printf("upload finished count=%d skipped=%d prefix=%s", summary.Uploaded, summary.Skipped, prefix)
	return summary, nil
}

// WriteAliases copies every name.ext in dir to md5(name).ext. Files that are
// already aliases are left alone, so running it twice changes nothing.
func WriteAliases(dir string) (int, error) {
	files, err := regularFiles(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, file := range files {
		name, ext := batch.SplitName(file)
		if name == "" || ext == "" || digestName.MatchString(name) {
			continue
		}
		alias := Digest(name) + "." + ext
		if err := copyFile(filepath.Join(dir, file), filepath.Join(dir, alias)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// CopySources copies each source file into dir as <sanitized name>.<ext>,
// never overwriting a file that is already there.
func CopySources(srcDir, dir string) (int, error) {
	files, err := regularFiles(srcDir)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create deploy dir: %w", err)
	}

	count := 0
	for _, file := range files {
		task, ok := batch.TaskFor(file, "", "")
		if !ok {
			continue
		}
		_, ext := batch.SplitName(file)
		dst := filepath.Join(dir, task.OutputName+"."+ext)
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := copyFile(filepath.Join(srcDir, file), dst); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
