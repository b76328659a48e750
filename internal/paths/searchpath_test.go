package paths

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

func newTestPath(t *testing.T) *FileSearchPath {
	t.Helper()
	return NewFileSearchPath(filepath.Join(t.TempDir(), "path"))
}

func TestAddPrependAndAppend(t *testing.T) {
	sp := newTestPath(t)
	if err := sp.Add("/a", toolbox.PlacePrepend); err != nil {
		t.Fatal(err)
	}
	if err := sp.Add("/b", toolbox.PlacePrepend); err != nil {
		t.Fatal(err)
	}
	if err := sp.Add("/c", toolbox.PlaceAppend); err != nil {
		t.Fatal(err)
	}
	got, err := sp.Current()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/b", "/a", "/c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAddMovesExistingEntry(t *testing.T) {
	sp := newTestPath(t)
	for _, p := range []string{"/a", "/b", "/c"} {
		if err := sp.Add(p, toolbox.PlaceAppend); err != nil {
			t.Fatal(err)
		}
	}
	if err := sp.Add("/a", toolbox.PlacePrepend); err != nil {
		t.Fatal(err)
	}
	got, err := sp.Current()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/a", "/b", "/c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected no duplicate, got %v", got)
	}
}

func TestResetClears(t *testing.T) {
	sp := newTestPath(t)
	if err := sp.Add("/a", toolbox.PlaceAppend); err != nil {
		t.Fatal(err)
	}
	if err := sp.Reset(false); err != nil {
		t.Fatal(err)
	}
	got, err := sp.Current()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty path after reset, got %v", got)
	}
}

func TestResetKeepInstalled(t *testing.T) {
	sp := newTestPath(t)
	installed := t.TempDir()
	if err := sp.Add(installed, toolbox.PlaceAppend); err != nil {
		t.Fatal(err)
	}
	if err := sp.Add("/gone/by/now", toolbox.PlaceAppend); err != nil {
		t.Fatal(err)
	}
	if err := sp.Reset(true); err != nil {
		t.Fatal(err)
	}
	got, err := sp.Current()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != installed {
		t.Fatalf("expected only installed entry kept, got %v", got)
	}
}

func TestCurrentOnMissingManifest(t *testing.T) {
	sp := newTestPath(t)
	got, err := sp.Current()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}
