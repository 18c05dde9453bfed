package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[server]
listen = ":9000"
sweep-interval = "5m"
sweep-ttl = "30m"

[store]
path = "snapshots.db"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Server.Listen != ":9000" {
		t.Errorf("Listen = %q, want %q", c.Server.Listen, ":9000")
	}
	if c.Server.SweepInterval.Std() != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want 5m", c.Server.SweepInterval.Std())
	}
	if c.Server.SweepTTL.Std() != 30*time.Minute {
		t.Errorf("SweepTTL = %v, want 30m", c.Server.SweepTTL.Std())
	}
	if c.Store.Path != "snapshots.db" {
		t.Errorf("Store.Path = %q, want %q", c.Store.Path, "snapshots.db")
	}
	if c.Dir == "" {
		t.Error("Dir not set at load time")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Server.Listen != Default().Server.Listen {
		t.Errorf("Listen = %q, want default %q", c.Server.Listen, Default().Server.Listen)
	}
	if c.Server.SweepInterval.Std() != 0 {
		t.Error("sweeper enabled by default")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[server]
sweep-interval = "not-a-duration"
`)
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted a bad duration")
	}
}

func TestFindAndLoad_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[server]\nlisten = \":7000\"\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad returned error: %v", err)
	}
	if c.Server.Listen != ":7000" {
		t.Errorf("Listen = %q, want %q", c.Server.Listen, ":7000")
	}
}

func TestFindAndLoad_NoFileReturnsDefaults(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad returned error: %v", err)
	}
	if c.Server.Listen != Default().Server.Listen {
		t.Errorf("Listen = %q, want default", c.Server.Listen)
	}
}
