// Package s3 implements an object-store collector transport.
//
// Each chunk is written as its own object under
// <prefix>/<device-id>/<boot-id>/chunk-NNNNN, the announcement as
// announce.json at session start, and a manifest.json at session end. A
// collector (or a human) can reassemble the image by listing the boot's
// keys in order.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/emberware/coredrain/transport"
	"github.com/emberware/coredrain/uploader"
)

// DefaultTimeout is the default per-object timeout.
const DefaultTimeout = 30 * time.Second

// Client is the subset of the S3 API the transport uses.
// Satisfied by *s3.Client; tests substitute a fake.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config configures the S3 transport.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
	// Timeout is the per-object timeout (default 30s).
	Timeout time.Duration
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3 transport requires a bucket")
	}
	return nil
}

// Transport writes upload objects to an S3 bucket.
type Transport struct {
	config Config
	client Client
}

// New creates an S3 transport using the AWS SDK default credential chain
// (env vars, shared config, IAM role).
func New(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 transport: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg)
}

// NewWithClient creates a transport over an existing client. Used by tests
// and callers that manage their own AWS configuration.
func NewWithClient(client Client, cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Transport{config: cfg, client: client}, nil
}

// Name implements transport.Transport.
func (t *Transport) Name() string { return "s3" }

// session tracks the per-upload key prefix and sequence counter.
type session struct {
	meta transport.Meta
	base string
	seq  uint32
	sent uint64
}

// manifest is the JSON document written at session end.
type manifest struct {
	DeviceID   string `json:"device_id"`
	BootID     string `json:"boot_id"`
	ResetCause string `json:"reset_cause"`
	Parts      uint32 `json:"parts"`
	TotalSize  uint32 `json:"total_size"`
	WireBytes  uint64 `json:"wire_bytes"`
	Base64     bool   `json:"base64"`
}

// Bind implements transport.Transport.
func (t *Transport) Bind(meta transport.Meta) uploader.Callbacks {
	return uploader.Callbacks{
		Ctx: &session{
			meta: meta,
			base: path.Join(t.config.Prefix, meta.DeviceID, meta.BootID),
		},
		Start: func(ctx any) error {
			s := ctx.(*session)
			body, err := json.Marshal(s.meta.Announcement())
			if err != nil {
				return fmt.Errorf("s3: marshal announcement: %w", err)
			}
			return t.put(path.Join(s.base, "announce.json"), "application/json", body)
		},
		Write: func(ctx any, data []byte) error {
			s := ctx.(*session)
			s.seq++
			s.sent += uint64(len(data))
			key := path.Join(s.base, fmt.Sprintf("chunk-%05d", s.seq))
			return t.put(key, "application/octet-stream", data)
		},
		End: func(ctx any) error {
			s := ctx.(*session)
			body, err := json.Marshal(manifest{
				DeviceID:   s.meta.DeviceID,
				BootID:     s.meta.BootID,
				ResetCause: string(s.meta.ResetCause),
				Parts:      s.seq,
				TotalSize:  s.meta.Descriptor.TotalSize,
				WireBytes:  s.sent,
				Base64:     s.meta.Descriptor.UseBase64,
			})
			if err != nil {
				return fmt.Errorf("s3: marshal manifest: %w", err)
			}
			return t.put(path.Join(s.base, "manifest.json"), "application/json", body)
		},
	}
}

// Close implements transport.Transport.
func (t *Transport) Close() error { return nil }

func (t *Transport) put(key, contentType string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.Timeout)
	defer cancel()

	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &t.config.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}
