package registry

import (
	"fmt"
	"testing"

	"github.com/flarebyte/seshat-toolkit/internal/config"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

type fakeStore map[string]Definition

func (s fakeStore) Lookup(name string) (Definition, error) {
	def, ok := s[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return def, nil
}

func names(records []toolbox.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestExpandDirectEntries(t *testing.T) {
	resolved, included := Expand([]config.Entry{
		{Name: "a", Source: "./a"},
		{Name: "b", Source: "./b"},
	}, fakeStore{})
	if len(resolved) != 2 || len(included) != 0 {
		t.Fatalf("resolved=%v included=%v", names(resolved), names(included))
	}
}

func TestExpandIncludePointer(t *testing.T) {
	store := fakeStore{
		"bundle": {Record: toolbox.Record{Name: "bundle", LocalHookTemplate: "hooks/local.lua.tmpl"}, Includes: []string{"a", "b"}},
		"a":      {Record: toolbox.Record{Name: "a", Source: "./a"}},
		"b":      {Record: toolbox.Record{Name: "b", Source: "./b"}},
	}
	resolved, included := Expand([]config.Entry{{Include: "bundle"}}, store)
	if got := names(resolved); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("resolved = %v", got)
	}
	if got := names(included); len(got) != 1 || got[0] != "bundle" {
		t.Fatalf("included = %v", got)
	}
	if included[0].LocalHookTemplate == "" {
		t.Fatal("included record lost its hook template")
	}
}

func TestExpandNestedIncludes(t *testing.T) {
	store := fakeStore{
		"outer": {Record: toolbox.Record{Name: "outer"}, Includes: []string{"inner"}},
		"inner": {Record: toolbox.Record{Name: "inner"}, Includes: []string{"leaf"}},
		"leaf":  {Record: toolbox.Record{Name: "leaf", Source: "./leaf"}},
	}
	resolved, included := Expand([]config.Entry{{Include: "outer"}}, store)
	if got := names(resolved); len(got) != 1 || got[0] != "leaf" {
		t.Fatalf("resolved = %v", got)
	}
	if got := names(included); len(got) != 2 {
		t.Fatalf("included = %v", got)
	}
}

func TestExpandToleratesCycles(t *testing.T) {
	store := fakeStore{
		"a": {Record: toolbox.Record{Name: "a"}, Includes: []string{"b"}},
		"b": {Record: toolbox.Record{Name: "b"}, Includes: []string{"a"}},
	}
	resolved, included := Expand([]config.Entry{{Include: "a"}}, store)
	if len(resolved) != 0 || len(included) != 2 {
		t.Fatalf("resolved=%v included=%v", names(resolved), names(included))
	}
}

func TestExpandDeduplicates(t *testing.T) {
	store := fakeStore{
		"x": {Record: toolbox.Record{Name: "x", Source: "./x"}},
		"p": {Record: toolbox.Record{Name: "p"}, Includes: []string{"x"}},
		"q": {Record: toolbox.Record{Name: "q"}, Includes: []string{"x"}},
	}
	resolved, _ := Expand([]config.Entry{{Include: "p"}, {Include: "q"}}, store)
	if got := names(resolved); len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected x resolved once, got %v", got)
	}
}

func TestExpandLookupMissBecomesFailedIncluded(t *testing.T) {
	resolved, included := Expand([]config.Entry{{Include: "ghost"}}, fakeStore{})
	if len(resolved) != 0 {
		t.Fatalf("resolved = %v", names(resolved))
	}
	if len(included) != 1 || included[0].Status != toolbox.StatusFetchFailed {
		t.Fatalf("included = %+v", included)
	}
}

func TestExpandConstraintViolation(t *testing.T) {
	store := fakeStore{
		"old": {Record: toolbox.Record{Name: "old", Source: "./old", Version: "0.9.0"}},
	}
	resolved, included := Expand([]config.Entry{{Include: "old", Version: ">= 1.0"}}, store)
	if len(resolved) != 0 {
		t.Fatalf("expected constraint rejection, resolved = %v", names(resolved))
	}
	if len(included) != 1 || included[0].Status != toolbox.StatusFetchFailed {
		t.Fatalf("included = %+v", included)
	}
}

func TestExpandConstraintSatisfied(t *testing.T) {
	store := fakeStore{
		"new": {Record: toolbox.Record{Name: "new", Source: "./new", Version: "1.2.0"}},
	}
	resolved, included := Expand([]config.Entry{{Include: "new", Version: ">= 1.0"}}, store)
	if len(resolved) != 1 || len(included) != 0 {
		t.Fatalf("resolved=%v included=%v", names(resolved), names(included))
	}
}
