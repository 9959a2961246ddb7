package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/msto63/lox/foundation/core/error"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{5 * time.Minute}
	result, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(result) != "5m0s" {
		t.Errorf("MarshalText() = %v, want 5m0s", string(result))
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{General: GeneralConfig{DataDir: "/var/lib/lox"}}
	cfg.applyDefaults()

	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}
	if cfg.General.LogFormat != "text" {
		t.Errorf("General.LogFormat = %v, want text", cfg.General.LogFormat)
	}
	if cfg.Scanner.KeywordCapacity != 8 {
		t.Errorf("Scanner.KeywordCapacity = %v, want 8", cfg.Scanner.KeywordCapacity)
	}
	if cfg.Scanner.MaxTokens != 0 {
		t.Errorf("Scanner.MaxTokens = %v, want unlimited", cfg.Scanner.MaxTokens)
	}
	if cfg.Parser.MaxDepth != 512 {
		t.Errorf("Parser.MaxDepth = %v, want 512", cfg.Parser.MaxDepth)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("REPL.Prompt = %q, want \"> \"", cfg.REPL.Prompt)
	}
	if cfg.REPL.HistoryFile != "/var/lib/lox/repl_history" {
		t.Errorf("REPL.HistoryFile = %v", cfg.REPL.HistoryFile)
	}
	if cfg.Store.Path != "/var/lib/lox/history.db" {
		t.Errorf("Store.Path = %v", cfg.Store.Path)
	}
	if cfg.Server.GRPCPort != 9310 || cfg.Server.HTTPPort != 8310 {
		t.Errorf("Server ports = %d/%d, want 9310/8310", cfg.Server.GRPCPort, cfg.Server.HTTPPort)
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout.Duration)
	}
}

func TestConfig_applyDefaults_PreservesValues(t *testing.T) {
	cfg := &Config{
		Parser: ParserConfig{MaxDepth: 64},
		Server: ServerConfig{Host: "0.0.0.0", GRPCPort: 7000},
	}
	cfg.applyDefaults()

	if cfg.Parser.MaxDepth != 64 {
		t.Errorf("Parser.MaxDepth = %v, want 64", cfg.Parser.MaxDepth)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.GRPCPort != 7000 {
		t.Errorf("Server = %s:%d, want 0.0.0.0:7000", cfg.Server.Host, cfg.Server.GRPCPort)
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lox.toml")

	content := `
[general]
log_level = "debug"
data_dir = "/tmp/lox"

[scanner]
max_tokens = 1000
keyword_max_capacity = 32

[parser]
max_depth = 32

[store]
enabled = true

[server]
grpc_port = 9999
read_timeout = "5s"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("General.LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Scanner.MaxTokens != 1000 {
		t.Errorf("Scanner.MaxTokens = %v, want 1000", cfg.Scanner.MaxTokens)
	}
	if cfg.Scanner.KeywordMaxCapacity != 32 {
		t.Errorf("Scanner.KeywordMaxCapacity = %v, want 32", cfg.Scanner.KeywordMaxCapacity)
	}
	if cfg.Parser.MaxDepth != 32 {
		t.Errorf("Parser.MaxDepth = %v, want 32", cfg.Parser.MaxDepth)
	}
	if !cfg.Store.Enabled || cfg.Store.Path != "/tmp/lox/history.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Server.GRPCPort != 9999 || cfg.Server.HTTPPort != 8310 {
		t.Errorf("Server ports = %d/%d", cfg.Server.GRPCPort, cfg.Server.HTTPPort)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.Path != configPath {
		t.Errorf("Path = %v, want %v", cfg.Path, configPath)
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lox.yml")

	content := `
general:
  log_format: json
repl:
  prompt: "lox> "
server:
  http_port: 8088
  write_timeout: 1m
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.LogFormat != "json" {
		t.Errorf("General.LogFormat = %v, want json", cfg.General.LogFormat)
	}
	if cfg.REPL.Prompt != "lox> " {
		t.Errorf("REPL.Prompt = %q", cfg.REPL.Prompt)
	}
	if cfg.Server.HTTPPort != 8088 || cfg.HTTPAddress() != "127.0.0.1:8088" {
		t.Errorf("HTTPAddress() = %v", cfg.HTTPAddress())
	}
	if cfg.Server.WriteTimeout.Duration != time.Minute {
		t.Errorf("Server.WriteTimeout = %v, want 1m", cfg.Server.WriteTimeout.Duration)
	}
}

func TestLoad_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
		code mdwerror.Code
	}{
		{"not found", filepath.Join(tmpDir, "missing.toml"), mdwerror.CodeNotFound},
		{"invalid toml", write("bad.toml", "[general\nlog_level = "), mdwerror.CodeConfigError},
		{"invalid yaml", write("bad.yaml", "general: [unclosed"), mdwerror.CodeConfigError},
		{"bad level", write("level.toml", "[general]\nlog_level = \"loud\""), mdwerror.CodeInvalidConfig},
		{"negative keyword limit", write("kw.toml", "[scanner]\nkeyword_max_capacity = -1"), mdwerror.CodeInvalidConfig},
		{"negative depth", write("depth.toml", "[parser]\nmax_depth = -1"), mdwerror.CodeInvalidConfig},
		{"port range", write("port.toml", "[server]\ngrpc_port = 70000"), mdwerror.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !mdwerror.HasCode(err, tt.code) {
				t.Errorf("Load() code = %v, want %v", mdwerror.GetCode(err), tt.code)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)
	t.Setenv(EnvConfig, "")

	// nothing found: defaults
	cfg, err := LoadFromEnv("")
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Path != "" || cfg.Parser.MaxDepth != 512 {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	// default location in the working directory
	if err := os.WriteFile("lox.toml", []byte("[parser]\nmax_depth = 7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFromEnv("")
	if err != nil || cfg.Parser.MaxDepth != 7 {
		t.Fatalf("LoadFromEnv() = %+v, %v", cfg, err)
	}

	// environment beats default locations
	envPath := filepath.Join(tmpDir, "env.yaml")
	if err := os.WriteFile(envPath, []byte("parser:\n  max_depth: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, envPath)
	cfg, err = LoadFromEnv("")
	if err != nil || cfg.Parser.MaxDepth != 9 {
		t.Fatalf("LoadFromEnv() with %s = %+v, %v", EnvConfig, cfg, err)
	}

	// explicit path beats environment
	cfg, err = LoadFromEnv("lox.toml")
	if err != nil || cfg.Parser.MaxDepth != 7 {
		t.Fatalf("LoadFromEnv(explicit) = %+v, %v", cfg, err)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := Default()
	if cfg.General.DataDir != "/home/tester/.local/share/lox" {
		t.Errorf("General.DataDir = %v", cfg.General.DataDir)
	}
	if cfg.Store.Path != "/home/tester/.local/share/lox/history.db" {
		t.Errorf("Store.Path = %v", cfg.Store.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
	if cfg.GRPCAddress() != "127.0.0.1:9310" {
		t.Errorf("GRPCAddress() = %v", cfg.GRPCAddress())
	}
	if cfg.Logger() == nil {
		t.Error("Logger() returned nil")
	}
}
