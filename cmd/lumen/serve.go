package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/studymetrics/lumen/internal/engine"
	"github.com/studymetrics/lumen/pkg/config"
)

// maxLineBytes bounds one request envelope; batch payloads can be large.
const maxLineBytes = 64 << 20

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Process newline-delimited JSON request envelopes from stdin",
		Description: `Reads one request envelope per line from stdin and writes one
response envelope per line to stdout. Requests run sequentially; each
response carries the request id (or a generated one) for correlation.`,
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return runServe(c, cfg)
		},
	}
}

func runServe(c *cli.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.WithConfig(cfg))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := eng.HandleMessage(ctx, line)
		if _, err := out.Write(resp); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
		// Flush per response so interactive hosts see replies immediately.
		if err := out.Flush(); err != nil {
			return err
		}

		if c.Bool("verbose") {
			fmt.Fprintf(os.Stderr, "handled %d bytes\n", len(line))
		}
	}
	return scanner.Err()
}
