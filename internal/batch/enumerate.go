package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dunamismax/avatarforge/internal/domain"
)

// SplitName splits a file name at its first dot. "logo.v2.png" yields
// ("logo", "v2"); names without a dot yield an empty ext.
func SplitName(file string) (name, ext string) {
	parts := strings.SplitN(file, ".", 3)
	name = parts[0]
	if len(parts) > 1 {
		ext = parts[1]
	}
	return name, ext
}

// SanitizeName strips the fullwidth parentheses that some logo files carry.
func SanitizeName(name string) string {
	return strings.NewReplacer("（", "", "）", "").Replace(name)
}

// Enumerate lists the regular files of dir as local tasks, sorted by name.
// Entries with an empty name or no extension are skipped silently.
func Enumerate(dir string) ([]domain.Task, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}

	tasks := make([]domain.Task, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		task, ok := TaskFor(entry.Name(), domain.SourceTypeLocalFile, filepath.Join(dir, entry.Name()))
		if !ok {
			continue
		}
		tasks = append(tasks, task)
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks, nil
}

// TaskFor builds the task for one file name, reporting false when the name
// does not split into a name and an extension.
func TaskFor(file, sourceType, sourceKey string) (domain.Task, bool) {
	name, ext := SplitName(file)
	if name == "" || ext == "" {
		return domain.Task{}, false
	}
	return domain.Task{
		Name:       file,
		OutputName: SanitizeName(name),
		SourceType: sourceType,
		SourceKey:  sourceKey,
	}, true
}
