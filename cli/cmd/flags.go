// Package cmd provides CLI commands for the coredrain binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags across commands.
var (
	// ConfigFlag points at a coredrain.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to coredrain.yaml",
	}

	// DeviceIDFlag overrides the device identity.
	DeviceIDFlag = &cli.StringFlag{
		Name:  "device-id",
		Usage: "Device identity used in channels, object keys, and logs",
	}

	// ChunkSizeFlag overrides the raw chunk size; 0 uses the engine default.
	ChunkSizeFlag = &cli.UintFlag{
		Name:  "chunk-size",
		Usage: "Raw chunk size in bytes (0 = default)",
	}

	// Base64Flag enables per-chunk Base64 encoding.
	Base64Flag = &cli.BoolFlag{
		Name:  "base64",
		Usage: "Base64-encode each chunk before transmission",
	}

	// FaultFlag injects a fault into the simulated platform before boot.
	FaultFlag = &cli.StringFlag{
		Name:  "fault",
		Usage: "Inject a fault before booting (illegal_instruction, load_prohibited, store_prohibited, divide_by_zero, stack_overflow)",
	}
)
