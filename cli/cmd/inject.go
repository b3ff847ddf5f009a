package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/emberware/coredrain/faults"
	redistransport "github.com/emberware/coredrain/transport/redis"
)

// InjectCommand returns the inject command: publish a fault injection
// command on the Redis command channel for a waiting device to pick up.
func InjectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inject",
		Usage:     "Publish a fault injection command to a waiting device",
		ArgsUsage: "<fault-kind>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Usage:    "Redis connection URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Command channel",
				Value: redistransport.DefaultCommandChannel,
			},
		},
		Action: injectAction,
	}
}

func injectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		kinds := make([]string, 0, len(faults.Kinds()))
		for _, k := range faults.Kinds() {
			kinds = append(kinds, string(k))
		}
		return cli.Exit(fmt.Sprintf("expected one fault kind: %s", strings.Join(kinds, ", ")), 2)
	}

	kind, err := faults.Parse(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	tr, err := redistransport.New(redistransport.Config{URL: c.String("url")})
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer func() { _ = tr.Close() }()

	if err := tr.PublishCommand(c.Context, c.String("channel"), string(kind)); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Printf("published %s to %s\n", kind, c.String("channel"))
	return nil
}
