// Package config handles YAML config file loading for the device agent.
package config

import (
	"fmt"
	"time"
)

// Config represents a coredrain.yaml configuration file.
// All values are optional and act as defaults for CLI flags.
// CLI flags always override config values.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Upload    UploadConfig    `yaml:"upload"`
	Transport TransportConfig `yaml:"transport"`
}

// DeviceConfig identifies the device.
type DeviceConfig struct {
	// ID is the stable device identity. Empty means derive one at runtime.
	ID string `yaml:"id"`
}

// UploadConfig holds chunking defaults.
type UploadConfig struct {
	// ChunkSize is the desired raw chunk size; 0 selects the engine default.
	ChunkSize uint32 `yaml:"chunk_size"`
	// Base64 enables per-chunk Base64 encoding.
	Base64 bool `yaml:"base64"`
}

// TransportConfig selects and configures the collector transport.
type TransportConfig struct {
	// Type is one of: redis, webhook, s3, stream.
	Type string `yaml:"type"`

	// URL is the collector endpoint (redis and webhook).
	URL string `yaml:"url,omitempty"`
	// Headers are custom HTTP headers (webhook only).
	Headers map[string]string `yaml:"headers,omitempty"`
	// ChannelBase is the pub/sub channel namespace (redis only).
	ChannelBase string `yaml:"channel_base,omitempty"`
	// CommandChannel is the fault-injection command channel (redis only).
	CommandChannel string `yaml:"command_channel,omitempty"`

	// Bucket, Prefix, Region, Endpoint, S3PathStyle configure the s3 type.
	Bucket      string `yaml:"bucket,omitempty"`
	Prefix      string `yaml:"prefix,omitempty"`
	Region      string `yaml:"region,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	S3PathStyle bool   `yaml:"s3_path_style,omitempty"`

	// Address is the TCP address to dial (stream only).
	Address string `yaml:"address,omitempty"`

	// Timeout is the per-operation timeout.
	Timeout Duration `yaml:"timeout,omitempty"`
}

// knownTransports lists the accepted transport types.
var knownTransports = map[string]bool{
	"redis":   true,
	"webhook": true,
	"s3":      true,
	"stream":  true,
}

// Validate checks cross-field consistency. A zero Config is valid: every
// field has a usable default or is resolved by flags.
func (c *Config) Validate() error {
	if c.Transport.Type != "" && !knownTransports[c.Transport.Type] {
		return fmt.Errorf("unknown transport type %q", c.Transport.Type)
	}
	switch c.Transport.Type {
	case "redis", "webhook":
		if c.Transport.URL == "" {
			return fmt.Errorf("transport %q requires url", c.Transport.Type)
		}
	case "s3":
		if c.Transport.Bucket == "" {
			return fmt.Errorf("transport s3 requires bucket")
		}
	case "stream":
		if c.Transport.Address == "" {
			return fmt.Errorf("transport stream requires address")
		}
	}
	return nil
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
