package config

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Build.Winding != WindingForward {
		t.Errorf("expected forward winding, got %s", cfg.Build.Winding)
	}
	if cfg.Build.Mirrored() {
		t.Error("expected Mirrored() to be false by default")
	}
	if cfg.Build.Jobs != 1 {
		t.Errorf("expected 1 job, got %d", cfg.Build.Jobs)
	}
	if cfg.Texture.Unit != 0 {
		t.Errorf("expected texture unit 0, got %d", cfg.Texture.Unit)
	}
	if !cfg.Window.Hidden {
		t.Error("expected hidden window by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
build:
  winding: mirrored
  jobs: 4

texture:
  unit: 2

window:
  title: "viewer"
  width: 320
  height: 240
  hidden: false

logging:
  level: "debug"
  log_file: "build.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Build.Mirrored() {
		t.Error("expected mirrored winding")
	}
	if cfg.Build.Jobs != 4 {
		t.Errorf("expected 4 jobs, got %d", cfg.Build.Jobs)
	}
	if cfg.Texture.Unit != 2 {
		t.Errorf("expected texture unit 2, got %d", cfg.Texture.Unit)
	}
	if cfg.Window.Title != "viewer" || cfg.Window.Width != 320 || cfg.Window.Hidden {
		t.Errorf("unexpected window config %+v", cfg.Window)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "build.log" {
		t.Errorf("expected log file 'build.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad syntax", "build:\n  jobs: not a number\n  invalid syntax here\n"},
		{"unknown key", "build:\n  windng: mirrored\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("empty file should leave defaults untouched")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Build.Winding = "sideways"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown winding")
	}

	cfg = Default()
	cfg.Build.Jobs = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero jobs")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "assetforge.yaml")
	if err := os.WriteFile(configPath, []byte("build:\n  jobs: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find assetforge.yaml in current directory")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.Build.Winding = WindingMirrored
	cfg.Build.Jobs = 3
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("saved config differs after reload: %+v vs %+v", cfg, loaded)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "winding flag",
			setup: func() { *flagWinding = WindingMirrored },
			verify: func(cfg *Config) {
				if !cfg.Build.Mirrored() {
					t.Error("expected mirrored winding from flag")
				}
			},
			teardown: func() { *flagWinding = "" },
		},
		{
			name:  "jobs flag",
			setup: func() { *flagJobs = 8 },
			verify: func(cfg *Config) {
				if cfg.Build.Jobs != 8 {
					t.Errorf("expected 8 jobs, got %d", cfg.Build.Jobs)
				}
			},
			teardown: func() { *flagJobs = 0 },
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "out.log" },
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file out.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestParseFlags_TrailingOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		winding string
	}{
		{"leading flags", []string{"-winding", "mirrored", "a.lua", "b.mesh"}, []string{"a.lua", "b.mesh"}, "mirrored"},
		{"trailing flags", []string{"a.lua", "b.mesh", "-winding", "mirrored"}, []string{"a.lua", "b.mesh"}, "mirrored"},
		{"extra positional", []string{"a.lua", "b.mesh", "extra"}, []string{"a.lua", "b.mesh", "extra"}, ""},
		{"too few", []string{"a.lua"}, []string{"a.lua"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			winding := fs.String("winding", "", "")

			got := parseFlags(fs, tt.args, 2)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("positional = %v, want %v", got, tt.want)
			}
			if *winding != tt.winding {
				t.Errorf("winding = %q, want %q", *winding, tt.winding)
			}
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
build:
  winding: mirrored
  jobs: 2
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagJobs = 6
	defer func() {
		*flagConfig = ""
		*flagJobs = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Jobs from flag, winding from file.
	if cfg.Build.Jobs != 6 {
		t.Errorf("expected 6 jobs from flag, got %d", cfg.Build.Jobs)
	}
	if !cfg.Build.Mirrored() {
		t.Error("expected mirrored winding from file")
	}
}
