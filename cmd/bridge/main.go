package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/five82/bridge/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "bridge: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(stderr, "bridge: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (app.Options, error) {
	fs := pflag.NewFlagSet("bridge", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: bridge [flags] [room-id]")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	var opts app.Options
	var pollMS int
	fs.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/bridge/config.toml)")
	fs.StringVarP(&opts.RoomID, "room", "r", "", "room to open (default: last opened room)")
	fs.BoolVarP(&opts.NewRoom, "new", "n", false, "create a new room")
	fs.IntVar(&pollMS, "poll", 0, "refresh interval in milliseconds (default from config, 1000)")
	fs.StringVar(&opts.DownloadDir, "download-dir", "", "where downloads and QR images are saved")
	fs.StringVar(&opts.LogFile, "log-file", "", "log file path")
	fs.BoolVar(&opts.Debug, "debug", false, "log poll failures")

	if err := fs.Parse(args); err != nil {
		return app.Options{}, err
	}
	if pollMS < 0 {
		return app.Options{}, fmt.Errorf("--poll must be positive")
	}
	opts.PollInterval = time.Duration(pollMS) * time.Millisecond

	switch rest := fs.Args(); {
	case len(rest) > 1:
		return app.Options{}, fmt.Errorf("unexpected arguments: %v", rest[1:])
	case len(rest) == 1 && opts.RoomID == "":
		opts.RoomID = rest[0]
	case len(rest) == 1:
		return app.Options{}, fmt.Errorf("room given twice")
	}
	if opts.NewRoom && opts.RoomID != "" {
		return app.Options{}, fmt.Errorf("--new and a room id are mutually exclusive")
	}
	return opts, nil
}
