package cmd

import (
	"fmt"
	"net"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/emberware/coredrain/cli/tui"
	"github.com/emberware/coredrain/config"
	"github.com/emberware/coredrain/faults"
	"github.com/emberware/coredrain/log"
	"github.com/emberware/coredrain/metrics"
	"github.com/emberware/coredrain/platform/mem"
	"github.com/emberware/coredrain/transport"
	redistransport "github.com/emberware/coredrain/transport/redis"
	s3transport "github.com/emberware/coredrain/transport/s3"
	streamtransport "github.com/emberware/coredrain/transport/stream"
	webhooktransport "github.com/emberware/coredrain/transport/webhook"
	"github.com/emberware/coredrain/types"
	"github.com/emberware/coredrain/uploader"
)

// RunCommand returns the run command: simulate one device boot and, when
// the reset cause calls for it, upload the captured image.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Simulate a device boot and upload the coredump if one is due",
		Flags: []cli.Flag{
			ConfigFlag,
			DeviceIDFlag,
			ChunkSizeFlag,
			Base64Flag,
			FaultFlag,
			&cli.BoolFlag{
				Name:  "await-fault",
				Usage: "Block on the Redis command channel for a fault injection command before booting",
			},
			&cli.StringFlag{
				Name:  "transport",
				Usage: "Collector transport: redis, webhook, s3, stream",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Collector URL (redis, webhook)",
			},
			&cli.StringFlag{
				Name:  "bucket",
				Usage: "S3 bucket (s3 transport)",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "TCP address to dial (stream transport)",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive upload progress view",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	sim := mem.New()

	// The boot's crash, if any, happens before the agent runs.
	if faultName := c.String("fault"); faultName != "" {
		kind, err := faults.Parse(faultName)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		if err := faults.Inject(sim, kind); err != nil {
			return cli.Exit(err.Error(), 2)
		}
	} else if c.Bool("await-fault") {
		if err := awaitAndInject(c, cfg, sim); err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}

	deviceID := cfg.Device.ID
	bootID := time.Now().UTC().Format("20060102T150405Z")
	meta := log.BootMeta{
		DeviceID:   deviceID,
		BootID:     bootID,
		ResetCause: sim.LastResetReason(),
	}
	logger := log.NewLogger(meta)
	collector := metrics.NewCollector(deviceID, cfg.Transport.Type)

	eng := uploader.New(sim,
		uploader.WithLogger(logger),
		uploader.WithMetrics(collector),
	)

	if !eng.NeedUpload() {
		fmt.Println("normal boot, nothing to upload")
		return nil
	}

	desc, err := eng.GetInfo(cfg.Upload.ChunkSize, cfg.Upload.Base64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("no uploadable image: %v", err), 1)
	}

	tr, err := buildTransport(cfg.Transport)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer func() { _ = tr.Close() }()

	sessionMeta := transport.Meta{
		DeviceID:   deviceID,
		BootID:     bootID,
		ResetCause: sim.LastResetReason(),
		Descriptor: desc,
	}
	cbs := tr.Bind(sessionMeta)

	if c.Bool("tui") {
		err = uploadWithTUI(eng, cbs, desc, deviceID, tr.Name())
	} else {
		cbs.Progress = chainProgress(cbs.Progress, func(chunkIndex, bytesSent int) {
			fmt.Printf("chunk %d/%d (%d bytes sent)\n", chunkIndex+1, desc.ChunkCount, bytesSent)
		})
		err = eng.Upload(cbs, desc)
	}

	printSummary(collector.Snapshot(), err)
	if err != nil {
		return cli.Exit(fmt.Sprintf("upload failed: %v", err), 1)
	}
	return nil
}

// chainProgress prepends a display hook to an optional transport progress
// slot, preserving the transport's return value.
func chainProgress(
	next func(ctx any, desc *types.ImageDescriptor, chunkIndex, bytesSent int) error,
	show func(chunkIndex, bytesSent int),
) func(ctx any, desc *types.ImageDescriptor, chunkIndex, bytesSent int) error {
	return func(ctx any, desc *types.ImageDescriptor, chunkIndex, bytesSent int) error {
		show(chunkIndex, bytesSent)
		if next != nil {
			return next(ctx, desc, chunkIndex, bytesSent)
		}
		return nil
	}
}

// uploadWithTUI runs the upload with a Bubble Tea progress view attached.
func uploadWithTUI(eng *uploader.Engine, cbs uploader.Callbacks, desc *types.ImageDescriptor, deviceID, transportName string) error {
	prog := tea.NewProgram(tui.NewModel(deviceID, transportName, desc))

	cbs.Progress = chainProgress(cbs.Progress, func(chunkIndex, bytesSent int) {
		prog.Send(tui.ChunkMsg{Index: chunkIndex, BytesSent: bytesSent})
	})

	done := make(chan error, 1)
	go func() {
		err := eng.Upload(cbs, desc)
		prog.Send(tui.DoneMsg{Err: err})
		done <- err
	}()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return <-done
}

// awaitAndInject blocks for one fault command on the Redis command channel
// and plants the matching fault, the way device firmware would react to a
// remote fault injection trigger.
func awaitAndInject(c *cli.Context, cfg *config.Config, sim *mem.Platform) error {
	if cfg.Transport.Type != "redis" || cfg.Transport.URL == "" {
		return fmt.Errorf("--await-fault requires the redis transport")
	}
	tr, err := redistransport.New(redistransport.Config{
		URL:         cfg.Transport.URL,
		ChannelBase: cfg.Transport.ChannelBase,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tr.Close() }()

	fmt.Println("waiting for fault injection command...")
	payload, err := tr.AwaitCommand(c.Context, cfg.Transport.CommandChannel)
	if err != nil {
		return err
	}
	kind, err := faults.Parse(payload)
	if err != nil {
		return err
	}
	fmt.Printf("injecting fault: %s\n", kind)
	return faults.Inject(sim, kind)
}

// resolveConfig loads the config file (if any) and overlays CLI flags.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := c.String("device-id"); v != "" {
		cfg.Device.ID = v
	}
	if cfg.Device.ID == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "sim-device"
		}
		cfg.Device.ID = host
	}

	if c.IsSet("chunk-size") {
		cfg.Upload.ChunkSize = uint32(c.Uint("chunk-size"))
	}
	if c.IsSet("base64") {
		cfg.Upload.Base64 = c.Bool("base64")
	}

	if v := c.String("transport"); v != "" {
		cfg.Transport.Type = v
	}
	if v := c.String("url"); v != "" {
		cfg.Transport.URL = v
	}
	if v := c.String("bucket"); v != "" {
		cfg.Transport.Bucket = v
	}
	if v := c.String("address"); v != "" {
		cfg.Transport.Address = v
	}
	if cfg.Transport.Type == "" {
		cfg.Transport.Type = "redis"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildTransport constructs the configured collector transport.
func buildTransport(tc config.TransportConfig) (transport.Transport, error) {
	switch tc.Type {
	case "redis":
		return redistransport.New(redistransport.Config{
			URL:         tc.URL,
			ChannelBase: tc.ChannelBase,
			Timeout:     tc.Timeout.Duration,
		})
	case "webhook":
		return webhooktransport.New(webhooktransport.Config{
			URL:     tc.URL,
			Headers: tc.Headers,
			Timeout: tc.Timeout.Duration,
		})
	case "s3":
		return s3transport.New(s3transport.Config{
			Bucket:       tc.Bucket,
			Prefix:       tc.Prefix,
			Region:       tc.Region,
			Endpoint:     tc.Endpoint,
			UsePathStyle: tc.S3PathStyle,
			Timeout:      tc.Timeout.Duration,
		})
	case "stream":
		conn, err := net.Dial("tcp", tc.Address)
		if err != nil {
			return nil, fmt.Errorf("stream transport: dial %s: %w", tc.Address, err)
		}
		return streamtransport.New(conn)
	default:
		return nil, fmt.Errorf("unknown transport type %q", tc.Type)
	}
}

func printSummary(snap metrics.Snapshot, err error) {
	status := "committed"
	if err != nil {
		status = "failed"
	}
	fmt.Printf("upload %s: %d chunks, %d raw bytes, %d wire bytes\n",
		status, snap.ChunksSent, snap.RawBytesSent, snap.WireBytesSent)
}
