package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

func mkdirAll(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", p, err)
	}
}

func TestLocateSharedRootWins(t *testing.T) {
	shared := t.TempDir()
	private := t.TempDir()
	rec := toolbox.Record{Name: "fft-tools"}
	mkdirAll(t, filepath.Join(shared, "fft-tools"))
	mkdirAll(t, filepath.Join(private, "fft-tools"))

	p, display := Locate(rec, shared, private)
	if p != filepath.Join(shared, "fft-tools") {
		t.Fatalf("expected shared path, got %s", p)
	}
	if display != "fft-tools" {
		t.Fatalf("unexpected display name %q", display)
	}
}

func TestLocatePrivateFallback(t *testing.T) {
	shared := t.TempDir()
	private := t.TempDir()
	rec := toolbox.Record{Name: "fft-tools"}
	mkdirAll(t, filepath.Join(private, "fft-tools"))

	p, _ := Locate(rec, shared, private)
	if p != filepath.Join(private, "fft-tools") {
		t.Fatalf("expected private path, got %s", p)
	}
}

func TestLocateSubfolder(t *testing.T) {
	private := t.TempDir()
	rec := toolbox.Record{Name: "fft-tools", Subfolder: "toolbox"}
	mkdirAll(t, filepath.Join(private, "fft-tools", "toolbox"))

	p, _ := Locate(rec, "", private)
	if p != filepath.Join(private, "fft-tools", "toolbox") {
		t.Fatalf("expected subfolder path, got %s", p)
	}
}

func TestLocateMissKeepsDisplayName(t *testing.T) {
	p, display := Locate(toolbox.Record{Name: "ghost"}, t.TempDir(), t.TempDir())
	if p != "" {
		t.Fatalf("expected empty path, got %s", p)
	}
	if display != "ghost" {
		t.Fatalf("expected display name for miss, got %q", display)
	}
}

func TestLocateFileIsNotADirectory(t *testing.T) {
	private := t.TempDir()
	if err := os.WriteFile(filepath.Join(private, "flat"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, _ := Locate(toolbox.Record{Name: "flat"}, "", private)
	if p != "" {
		t.Fatalf("expected plain file to be ignored, got %s", p)
	}
}
