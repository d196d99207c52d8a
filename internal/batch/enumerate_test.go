package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dunamismax/avatarforge/internal/domain"
)

func TestSplitName(t *testing.T) {
	cases := []struct {
		file, name, ext string
	}{
		{"logo.png", "logo", "png"},
		{"logo.v2.png", "logo", "v2"},
		{"README", "README", ""},
		{".DS_Store", "", "DS_Store"},
		{"trailing.", "trailing", ""},
	}
	for _, tc := range cases {
		name, ext := SplitName(tc.file)
		if name != tc.name || ext != tc.ext {
			t.Fatalf("SplitName(%q) = (%q, %q), want (%q, %q)", tc.file, name, ext, tc.name, tc.ext)
		}
	}
}

func TestSanitizeNameStripsFullwidthParens(t *testing.T) {
	if got := SanitizeName("北京（总部）"); got != "北京总部" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if got := SanitizeName("acme (eu)"); got != "acme (eu)" {
		t.Fatalf("ascii parentheses must be kept, got %q", got)
	}
}

func TestEnumerateFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.png", "alpha（1）.webp", "README", ".hidden", "beta.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tasks, err := Enumerate(dir)
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d: %+v", len(tasks), tasks)
	}

	want := []domain.Task{
		{Name: "alpha（1）.webp", OutputName: "alpha1", SourceType: domain.SourceTypeLocalFile, SourceKey: filepath.Join(dir, "alpha（1）.webp")},
		{Name: "beta.jpg", OutputName: "beta", SourceType: domain.SourceTypeLocalFile, SourceKey: filepath.Join(dir, "beta.jpg")},
		{Name: "zeta.png", OutputName: "zeta", SourceType: domain.SourceTypeLocalFile, SourceKey: filepath.Join(dir, "zeta.png")},
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Fatalf("task %d: expected %+v, got %+v", i, want[i], tasks[i])
		}
	}
}

func TestEnumerateMissingDir(t *testing.T) {
	if _, err := Enumerate(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
