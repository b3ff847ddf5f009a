package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/emberware/coredrain/faults"
	"github.com/emberware/coredrain/platform/mem"
	"github.com/emberware/coredrain/uploader"
)

// InfoCommand returns the info command: print the chunk geometry a given
// image and chunking configuration would produce, without uploading.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show chunk geometry for an image without uploading",
		Flags: []cli.Flag{
			ChunkSizeFlag,
			Base64Flag,
			FaultFlag,
			&cli.UintFlag{
				Name:  "image-size",
				Usage: "Synthetic image payload size in bytes",
				Value: faults.DefaultImageSize,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Value:   "text",
			},
		},
		Action: infoAction,
	}
}

func infoAction(c *cli.Context) error {
	sim := mem.New()

	kind := faults.IllegalInstruction
	if faultName := c.String("fault"); faultName != "" {
		parsed, err := faults.Parse(faultName)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		kind = parsed
	}
	if err := sim.SetImage(kind.Image(int(c.Uint("image-size")))); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	eng := uploader.New(sim)
	desc, err := eng.GetInfo(uint32(c.Uint("chunk-size")), c.Bool("base64"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.String("format") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	}

	fmt.Printf("total size:      %d bytes\n", desc.TotalSize)
	fmt.Printf("chunk size:      %d bytes\n", desc.ChunkSize)
	fmt.Printf("chunk count:     %d\n", desc.ChunkCount)
	fmt.Printf("last chunk:      %d bytes\n", desc.LastChunkSize)
	if desc.UseBase64 {
		fmt.Printf("b64 chunk size:  %d bytes\n", desc.B64ChunkSize)
		fmt.Printf("b64 last chunk:  %d bytes\n", desc.B64LastChunkSize)
		fmt.Printf("b64 total:       %d bytes\n", desc.B64TotalSize)
	}
	return nil
}
