package cmd

import (
	"flag"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/emberware/coredrain/config"
)

func newTestContext(t *testing.T, args map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.String("device-id", "", "")
	set.Uint("chunk-size", 0, "")
	set.Bool("base64", false, "")
	set.String("transport", "", "")
	set.String("url", "", "")
	set.String("bucket", "", "")
	set.String("address", "", "")
	for k, v := range args {
		if err := set.Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestResolveConfig_FlagOverlay(t *testing.T) {
	c := newTestContext(t, map[string]string{
		"device-id":  "dev-99",
		"chunk-size": "300",
		"base64":     "true",
		"transport":  "webhook",
		"url":        "https://collector.example.com",
	})

	cfg, err := resolveConfig(c)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Device.ID != "dev-99" {
		t.Errorf("device id = %q", cfg.Device.ID)
	}
	if cfg.Upload.ChunkSize != 300 || !cfg.Upload.Base64 {
		t.Errorf("upload = %+v", cfg.Upload)
	}
	if cfg.Transport.Type != "webhook" {
		t.Errorf("transport = %q", cfg.Transport.Type)
	}
}

func TestResolveConfig_DefaultsDeviceID(t *testing.T) {
	c := newTestContext(t, map[string]string{
		"transport": "webhook",
		"url":       "https://collector.example.com",
	})
	cfg, err := resolveConfig(c)
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.Device.ID == "" {
		t.Error("device id must be derived when unset")
	}
}

func TestResolveConfig_InvalidTransport(t *testing.T) {
	c := newTestContext(t, map[string]string{"transport": "smoke-signal"})
	if _, err := resolveConfig(c); err == nil {
		t.Error("expected error for unknown transport")
	}
}

func TestBuildTransport(t *testing.T) {
	if _, err := buildTransport(config.TransportConfig{Type: "webhook", URL: "https://collector.example.com"}); err != nil {
		t.Errorf("webhook: %v", err)
	}
	if _, err := buildTransport(config.TransportConfig{Type: "redis", URL: "redis://localhost:6379"}); err != nil {
		t.Errorf("redis: %v", err)
	}
	if _, err := buildTransport(config.TransportConfig{Type: "smoke-signal"}); err == nil {
		t.Error("expected error for unknown transport")
	}
	if _, err := buildTransport(config.TransportConfig{Type: "webhook"}); err == nil {
		t.Error("expected error for webhook without URL")
	}
}
