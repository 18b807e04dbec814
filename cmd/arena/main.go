package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustline/arena/internal/config"
	"github.com/spf13/pflag"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentClientVersion string = "0.0.1"
	BuildDate            string = "unknown"

	ClientName string = "arena"
)

func main() {
	configDir := pflag.String("config", ".", "directory containing arena.cfg.json")
	duration := pflag.Duration("duration", 0, "stop after this long, 0 runs until interrupted")
	pflag.String("log-level", "", "log level (debug, info, warn, error)")
	pflag.String("name", "", "player display name")
	pflag.String("character", "", "character: ranger, vanguard, specter or bulwark")
	pflag.String("match", "", "match code to join")
	pflag.String("map", "", "built-in map when no layout file is set")
	pflag.String("layout", "", "arena layout file")
	pflag.String("storage", "", "storage backend: memory, sqlite or postgres")
	pflag.Int64("seed", 0, "simulation seed, 0 picks one from the clock")
	version := pflag.Bool("version", false, "print the version and exit")
	pflag.Parse()

	if *version {
		fmt.Printf("%s %s (%s)\n", ClientName, CurrentClientVersion, BuildDate)
		return
	}

	if err := config.BindFlags(pflag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	rt, err := setup(*configDir, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	reason := rt.run(ctx)
	if err := rt.shutdown(reason); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown finished with errors: %v\n", err)
		os.Exit(1)
	}
}
