// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/yamlbook/yamlbook/internal/issue"
	"github.com/yamlbook/yamlbook/internal/logging"
	"github.com/yamlbook/yamlbook/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Changes the working directory so ./yamlbook.cue cannot leak in.
	testutil.MustChdir(t, t.TempDir())

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := DefaultConfig()
	if cfg.UI != want.UI {
		t.Errorf("UI = %+v, want %+v", cfg.UI, want.UI)
	}
	if cfg.Watch.Debounce != DefaultDebounce || cfg.Watch.ClearScreen || len(cfg.Watch.Ignore) != 0 {
		t.Errorf("Watch = %+v, want defaults", cfg.Watch)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	testutil.MustChdir(t, t.TempDir())
	dir := t.TempDir()
	writeConfig(t, dir, `
ui: {
	color_scheme: "dark"
	log_level:    "debug"
}
watch: {
	debounce: "1.5s"
	ignore: ["drafts/**", "*.tmp.yaml"]
}
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("resolved path = %q", path)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q, want dark", cfg.UI.ColorScheme)
	}
	if cfg.UI.LogLevel != logging.LevelDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.UI.LogLevel)
	}
	if cfg.UI.Verbose {
		t.Error("Verbose should keep its default when left out")
	}
	if cfg.Watch.Debounce != 1500*time.Millisecond {
		t.Errorf("Debounce = %s, want 1.5s", cfg.Watch.Debounce)
	}
	if !slices.Equal(cfg.Watch.Ignore, []string{"drafts/**", "*.tmp.yaml"}) {
		t.Errorf("Ignore = %v", cfg.Watch.Ignore)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	work := t.TempDir()
	testutil.MustChdir(t, work)
	if err := os.WriteFile(filepath.Join(work, LocalConfigFile), []byte("ui: verbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != LocalConfigFile {
		t.Errorf("resolved path = %q, want %q", path, LocalConfigFile)
	}
	if !cfg.UI.Verbose {
		t.Error("Verbose should come from ./yamlbook.cue")
	}
}

func TestLoad_ConfigDirWinsOverLocalFile(t *testing.T) {
	work := t.TempDir()
	testutil.MustChdir(t, work)
	if err := os.WriteFile(filepath.Join(work, LocalConfigFile), []byte("ui: color_scheme: \"light\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	writeConfig(t, dir, "ui: color_scheme: \"dark\"\n")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q, want dark from the config directory", cfg.UI.ColorScheme)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.cue")
	if err := os.WriteFile(path, []byte("watch: clear_screen: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path, ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Watch.ClearScreen {
		t.Error("ClearScreen should come from the explicit file")
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil {
		t.Fatal("Load() expected error for a missing explicit file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error should wrap fs.ErrNotExist, got: %v", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.ConfigLoadFailedId {
		t.Errorf("error should be an ActionableError linked to the config guide, got %T", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "syntax error", content: "ui: {\n", contains: "load configuration"},
		{name: "unknown color scheme", content: "ui: color_scheme: \"neon\"\n", contains: "color_scheme"},
		{name: "unknown field", content: "data_dir: \"src\"\n", contains: "data_dir"},
		{name: "bad debounce", content: "watch: debounce: \"soon\"\n", contains: "debounce"},
		{name: "zero debounce", content: "watch: debounce: \"0s\"\n", contains: "watch.debounce must be positive"},
		{name: "bad glob", content: "watch: ignore: [\"[abc\"]\n", contains: "watch.ignore[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	if testutil.IsWindows() || testutil.IsDarwin() {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join(xdg, AppName); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestConfigDir_HomeFallback(t *testing.T) {
	if testutil.IsWindows() {
		t.Skip("APPDATA takes precedence over the home directory on Windows")
	}
	home := t.TempDir()
	testutil.SetHomeDir(t, home)
	t.Setenv("XDG_CONFIG_HOME", "")

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}

	want := filepath.Join(home, ".config", AppName)
	if testutil.IsDarwin() {
		want = filepath.Join(home, "Library", "Application Support", AppName)
	}
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestResolvePath_None(t *testing.T) {
	testutil.MustChdir(t, t.TempDir())

	path, err := ResolvePath(LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("ResolvePath() error: %v", err)
	}
	if path != "" {
		t.Errorf("ResolvePath() = %q, want empty when no file exists", path)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", AppName)
	opts := LoadOptions{ConfigDirPath: dir}

	path, created, err := CreateDefaultConfig(opts)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if !created {
		t.Error("first call should create the file")
	}

	cfg, loadedFrom, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if loadedFrom != path {
		t.Errorf("loaded from %q, want %q", loadedFrom, path)
	}
	if cfg.UI != DefaultConfig().UI || cfg.Watch.Debounce != DefaultDebounce {
		t.Errorf("generated config = %+v, want defaults", cfg)
	}

	if err := os.WriteFile(path, []byte("ui: verbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, created, err = CreateDefaultConfig(opts); err != nil || created {
		t.Errorf("second call: created=%v err=%v, want existing file kept", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ui: verbose: true\n" {
		t.Error("an existing config file must not be overwritten")
	}
}
