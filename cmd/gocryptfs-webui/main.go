package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/varenne/gocryptfs-webui/internal/command"
	"github.com/varenne/gocryptfs-webui/internal/config"
	"github.com/varenne/gocryptfs-webui/internal/driver"
	"github.com/varenne/gocryptfs-webui/internal/log"
	"github.com/varenne/gocryptfs-webui/internal/mounttable"
	"github.com/varenne/gocryptfs-webui/internal/picker"
	"github.com/varenne/gocryptfs-webui/internal/server"
	"github.com/varenne/gocryptfs-webui/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:  "gocryptfs-webui",
		Usage: "A local web UI for managing gocryptfs volumes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Address for the HTTP server",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Configuration file path",
				Value:   config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:  "picker",
				Usage: "Folder picker backend: zenity or portal",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"V"},
				Usage:   "Print version information",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	// Handle version flag
	if cmd.Bool("version") {
		fmt.Println(version.String())
		return nil
	}

	// Setup logging
	log.Setup(cmd.Bool("verbose"))

	// Load config file
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Merge CLI flags (CLI takes precedence)
	cfg.Merge(
		cmd.String("listen"),
		cmd.String("picker"),
	)

	// Apply defaults
	cfg.ApplyDefaults()

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	warnIfExposed(cfg.ListenAddr)

	// Create components
	runner := command.NewRunner()
	prober := mounttable.NewProber(runner)
	d := driver.NewDriver(prober, runner)

	folderPicker, err := picker.NewPicker(cfg.Picker, runner)
	if err != nil {
		return fmt.Errorf("create folder picker: %w", err)
	}

	srv := server.NewServer(d, folderPicker)

	log.Info("starting web ui",
		"listen", cfg.ListenAddr,
		"picker", cfg.Picker,
	)

	return srv.HTTPServer(cfg.ListenAddr).ListenAndServe()
}

// warnIfExposed logs when the server binds beyond loopback. The API is
// unauthenticated and request bodies carry passwords.
func warnIfExposed(addr string) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "localhost" {
		return
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return
	}
	log.Warn("listen address is not loopback; anyone who can reach it controls your volumes", "listen", addr)
}
