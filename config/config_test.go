package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emberware/coredrain/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coredrain.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  id: dev-42
upload:
  chunk_size: 300
  base64: true
transport:
  type: redis
  url: redis://localhost:6379
  channel_base: crashes
  command_channel: ops/inject
  timeout: 10s
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Device.ID != "dev-42" {
		t.Errorf("device id = %q", cfg.Device.ID)
	}
	if cfg.Upload.ChunkSize != 300 || !cfg.Upload.Base64 {
		t.Errorf("upload = %+v", cfg.Upload)
	}
	if cfg.Transport.Type != "redis" || cfg.Transport.ChannelBase != "crashes" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	if cfg.Transport.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Transport.Timeout.Duration)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("COLLECTOR_URL", "https://collector.example.com/ingest")

	path := writeConfig(t, `
transport:
  type: webhook
  url: ${COLLECTOR_URL}
  headers:
    Authorization: Bearer ${COLLECTOR_TOKEN:-anonymous}
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport.URL != "https://collector.example.com/ingest" {
		t.Errorf("url = %q", cfg.Transport.URL)
	}
	if cfg.Transport.Headers["Authorization"] != "Bearer anonymous" {
		t.Errorf("headers = %v", cfg.Transport.Headers)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown transport",
			content: "transport:\n  type: carrier-pigeon\n",
			wantErr: "unknown transport",
		},
		{
			name:    "redis without url",
			content: "transport:\n  type: redis\n",
			wantErr: "requires url",
		},
		{
			name:    "s3 without bucket",
			content: "transport:\n  type: s3\n",
			wantErr: "requires bucket",
		},
		{
			name:    "stream without address",
			content: "transport:\n  type: stream\n",
			wantErr: "requires address",
		},
		{
			name:    "bad duration",
			content: "transport:\n  type: webhook\n  url: http://x\n  timeout: soon\n",
			wantErr: "invalid duration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestLoad_EmptyConfigIsValid(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Upload.ChunkSize != 0 {
		t.Errorf("zero config chunk size = %d", cfg.Upload.ChunkSize)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SET_VAR", "value")

	tests := []struct {
		in, want string
	}{
		{"${SET_VAR}", "value"},
		{"${UNSET_VAR_XYZ}", ""},
		{"${UNSET_VAR_XYZ:-fallback}", "fallback"},
		{"${SET_VAR:-fallback}", "value"},
		{"prefix-${SET_VAR}-suffix", "prefix-value-suffix"},
		{"no vars here", "no vars here"},
	}
	for _, tt := range tests {
		if got := config.ExpandEnv(tt.in); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
