package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "deploy.cue")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Toolboxes) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadValid(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
registry: "./registry"
portableHookPolicy: "always"
toolboxes: [
	{name: "fft-tools", source: "./src/fft-tools", placement: "append", hook: "hooks/post.lua"},
	{include: "base-tools", version: ">= 1.0"},
]
luaSandbox: {timeoutMs: 5000}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigVersion != "1" {
		t.Fatalf("configVersion = %q", cfg.ConfigVersion)
	}
	if len(cfg.Toolboxes) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(cfg.Toolboxes))
	}
	if cfg.Toolboxes[0].Name != "fft-tools" || cfg.Toolboxes[0].Placement != "append" {
		t.Fatalf("unexpected first entry: %+v", cfg.Toolboxes[0])
	}
	if cfg.Toolboxes[1].Include != "base-tools" {
		t.Fatalf("unexpected include entry: %+v", cfg.Toolboxes[1])
	}
	if cfg.LuaSandbox == nil || cfg.LuaSandbox.TimeoutMs != 5000 {
		t.Fatalf("unexpected sandbox options: %+v", cfg.LuaSandbox)
	}
}

func TestLoadMissingConfigVersion(t *testing.T) {
	p := writeConfig(t, `toolboxes: []`)
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "configVersion") {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestLoadRejectsNameAndInclude(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
toolboxes: [{name: "a", include: "b"}]
`)
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "exactly one") {
		t.Fatalf("expected entry validation error, got %v", err)
	}
}

func TestLoadRejectsBadPlacement(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
toolboxes: [{name: "a", placement: "sideways"}]
`)
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "placement") {
		t.Fatalf("expected placement error, got %v", err)
	}
}

func TestLoadRejectsBadConstraint(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
toolboxes: [{include: "a", version: "not a constraint"}]
`)
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "constraint") {
		t.Fatalf("expected constraint error, got %v", err)
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	p := writeConfig(t, `
configVersion: "1"
portableHookPolicy: "sometimes"
`)
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "portableHookPolicy") {
		t.Fatalf("expected policy error, got %v", err)
	}
}

func TestLoadRejectsNonCue(t *testing.T) {
	p := filepath.Join(t.TempDir(), "deploy.yaml")
	if err := os.WriteFile(p, []byte("configVersion: 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "expected .cue") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestBuildRecord(t *testing.T) {
	e := BuildRecord("extra-tools")
	if e.Include != "extra-tools" || e.Name != "" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}
