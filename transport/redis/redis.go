// Package redis implements a Redis pub/sub collector transport.
//
// The session topology mirrors a broker-style collector: the announcement
// and completion marker are published on the session channel
// (<base>/<device-id>), and chunk n is published on <channel>/<n> so
// collectors can fan chunks out by pattern subscription. Payloads are
// msgpack envelopes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/emberware/coredrain/transport"
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
)

// DefaultChannelBase is the default channel namespace for uploads.
const DefaultChannelBase = "coredump"

// DefaultCommandChannel is the channel the device listens on for fault
// injection commands.
const DefaultCommandChannel = "device/fault_injection"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// Config configures the Redis pub/sub transport.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// ChannelBase is the channel namespace (default: coredump).
	ChannelBase string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
}

// Transport publishes upload envelopes via Redis PUBLISH.
type Transport struct {
	config Config
	client *goredis.Client
}

// New creates a Redis pub/sub transport from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Transport, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis transport requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis transport: invalid URL: %w", err)
	}
	if cfg.ChannelBase == "" {
		cfg.ChannelBase = DefaultChannelBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Transport{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// NewWithClient creates a transport over an existing client. Used by tests.
func NewWithClient(client *goredis.Client, cfg Config) *Transport {
	if cfg.ChannelBase == "" {
		cfg.ChannelBase = DefaultChannelBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Transport{config: cfg, client: client}
}

// Name implements transport.Transport.
func (t *Transport) Name() string { return "redis" }

// session tracks the per-upload channel and sequence counter.
type session struct {
	meta    transport.Meta
	channel string
	seq     uint32
	sent    uint64
}

// Bind implements transport.Transport.
func (t *Transport) Bind(meta transport.Meta) uploader.Callbacks {
	return uploader.Callbacks{
		Ctx: &session{
			meta:    meta,
			channel: fmt.Sprintf("%s/%s", t.config.ChannelBase, meta.DeviceID),
		},
		Start: func(ctx any) error {
			s := ctx.(*session)
			return t.publish(s.channel, s.meta.Announcement())
		},
		Write: func(ctx any, data []byte) error {
			s := ctx.(*session)
			s.seq++
			s.sent += uint64(len(data))
			return t.publish(fmt.Sprintf("%s/%d", s.channel, s.seq), &types.ChunkEnvelope{
				Type:     types.EnvelopeChunk,
				DeviceID: s.meta.DeviceID,
				BootID:   s.meta.BootID,
				Seq:      s.seq,
				Data:     data,
			})
		},
		End: func(ctx any) error {
			s := ctx.(*session)
			return t.publish(s.channel, &types.UploadComplete{
				Type:      types.EnvelopeComplete,
				DeviceID:  s.meta.DeviceID,
				BootID:    s.meta.BootID,
				Parts:     s.seq,
				WireBytes: s.sent,
			})
		},
	}
}

// Close implements transport.Transport.
func (t *Transport) Close() error {
	return t.client.Close()
}

// publish sends one msgpack envelope. No retries: a failed publish aborts
// the session.
func (t *Transport) publish(channel string, v any) error {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.config.Timeout)
	defer cancel()

	if err := t.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("redis: publish to %s: %w", channel, err)
	}
	return nil
}

// AwaitCommand blocks until one message arrives on the command channel and
// returns its payload. Used by the simulator to receive fault injection
// commands the way the device firmware would.
func (t *Transport) AwaitCommand(ctx context.Context, channel string) (string, error) {
	if channel == "" {
		channel = DefaultCommandChannel
	}
	sub := t.client.Subscribe(ctx, channel)
	defer func() { _ = sub.Close() }()

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		return "", fmt.Errorf("redis: await command on %s: %w", channel, err)
	}
	return msg.Payload, nil
}

// PublishCommand publishes a command payload on the command channel.
// Used by the inject CLI command.
func (t *Transport) PublishCommand(ctx context.Context, channel, payload string) error {
	if channel == "" {
		channel = DefaultCommandChannel
	}
	if err := t.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish command to %s: %w", channel, err)
	}
	return nil
}
