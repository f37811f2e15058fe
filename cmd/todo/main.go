package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
)

func main() {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand the remaining args to the CLI runner.
	code := cli.Run(ctx, fs.Args(), cfg, cli.Env{})
	stop()
	os.Exit(code)
}
