package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// withConfigHome points XDG_CONFIG_HOME at a temp dir for the test.
func withConfigHome(t *testing.T) string {
	t.Helper()
	ResetGlobalConfigCache()
	orig := os.Getenv("XDG_CONFIG_HOME")
	dir := t.TempDir()
	os.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() {
		os.Setenv("XDG_CONFIG_HOME", orig)
		ResetGlobalConfigCache()
	})
	return dir
}

func TestGlobalConfigPath(t *testing.T) {
	// Save and restore XDG_CONFIG_HOME
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	path := GlobalConfigPath()
	want := "/custom/config/mem/config.yml"
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	os.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	path = GlobalConfigPath()
	want = filepath.Join(home, ".config", "mem", "config.yml")
	if path != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", path, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	withConfigHome(t)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadGlobalConfig() returned nil")
	}
	if *cfg != (GlobalConfig{}) {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", *cfg)
	}

	if got := GetDefaultNamespace(); got != DefaultNamespace {
		t.Errorf("GetDefaultNamespace() = %q, want %q", got, DefaultNamespace)
	}
	if got := GetQueryLimit(); got != DefaultQueryLimit {
		t.Errorf("GetQueryLimit() = %d, want %d", got, DefaultQueryLimit)
	}
	if got := GetCleanupDays(); got != DefaultCleanupDays {
		t.Errorf("GetCleanupDays() = %d, want %d", got, DefaultCleanupDays)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	dir := withConfigHome(t)

	configDir := filepath.Join(dir, "mem")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	cfgData := GlobalConfig{
		StorePath:        "~/bank/store.json",
		DefaultNamespace: "work",
		QueryLimit:       25,
		CleanupDays:      7,
	}
	data, err := yaml.Marshal(cfgData)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.StorePath != filepath.Join(home, "bank/store.json") {
		t.Errorf("StorePath = %q, want tilde expanded", cfg.StorePath)
	}
	if got := GetDefaultNamespace(); got != "work" {
		t.Errorf("GetDefaultNamespace() = %q, want %q", got, "work")
	}
	if got := GetQueryLimit(); got != 25 {
		t.Errorf("GetQueryLimit() = %d, want 25", got)
	}
	if got := GetCleanupDays(); got != 7 {
		t.Errorf("GetCleanupDays() = %d, want 7", got)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	dir := withConfigHome(t)

	configDir := filepath.Join(dir, "mem")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	for name, content := range map[string]string{
		"malformed yaml": "query_limit: [unclosed",
		"negative limit": "query_limit: -3\n",
	} {
		t.Run(name, func(t *testing.T) {
			ResetGlobalConfigCache()
			if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadGlobalConfig(); err == nil {
				t.Error("LoadGlobalConfig() expected error")
			}
		})
	}
}

func TestGlobalConfig_SetGet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"default-namespace", "work", "work", false},
		{"default_namespace", "home", "home", false},
		{"QUERY_LIMIT", "20", "20", false},
		{"query-limit", "-1", "", true},
		{"query-limit", "ten", "", true},
		{"cleanup-days", "90", "90", false},
		{"store-path", "/data/bank.json", "/data/bank.json", false},
		{"unknown", "x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			var cfg GlobalConfig
			err := cfg.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q, %q) error = %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestGlobalConfig_Save(t *testing.T) {
	withConfigHome(t)

	cfg := &GlobalConfig{DefaultNamespace: "work", QueryLimit: 5}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ResetGlobalConfigCache()
	loaded, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, want %+v", *loaded, *cfg)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"query-limit":  "query-limit",
		"query_limit":  "query-limit",
		"QUERY_LIMIT":  "query-limit",
		"Cleanup-Days": "cleanup-days",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
