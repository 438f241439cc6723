package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveConfigDir(t *testing.T) {
	t.Setenv(envConfigDir, "/tmp/explicit")
	if got, _ := resolveConfigDir(); got != "/tmp/explicit" {
		t.Errorf("explicit dir = %q", got)
	}

	t.Setenv(envConfigDir, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, _ := resolveConfigDir(); got != filepath.Join("/tmp/xdg", appName) {
		t.Errorf("xdg dir = %q", got)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EvalTimeout != 5*time.Second || cfg.LogLevel != "warn" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	data := `
search_path: [/opt/scad/lib, ./vendor]
header: "$fn = 64;\n"
omit_source: true
eval_timeout: 250ms
log_level: debug
openscad: /usr/local/bin/openscad
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(cfg.SearchPath, ",") != "/opt/scad/lib,./vendor" {
		t.Errorf("search_path = %v", cfg.SearchPath)
	}
	if cfg.Header != "$fn = 64;\n" || !cfg.OmitSource || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.EvalTimeout != 250*time.Millisecond {
		t.Errorf("eval_timeout = %s", cfg.EvalTimeout)
	}
	if cfg.OpenSCAD != "/usr/local/bin/openscad" {
		t.Errorf("openscad = %q", cfg.OpenSCAD)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("search_path: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(dir); err == nil || !strings.Contains(err.Error(), "config.yaml") {
		t.Errorf("err = %v", err)
	}
}

func TestResolveSearchPath(t *testing.T) {
	t.Setenv(envSearchPath, "/env/a::/env/b")
	cfg := Config{SearchPath: []string{"/cfg"}}
	got := strings.Join(resolveSearchPath(cfg, []string{"/flag"}), ",")
	if got != "/cfg,/env/a,/env/b,/flag" {
		t.Errorf("search path = %s", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("shown", "k", 1)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown k=1") {
		t.Errorf("log output = %q", buf.String())
	}

	if _, err := newLogger(&buf, "loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
