package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/iudanet/otagate/internal/client/api"
	"github.com/iudanet/otagate/internal/client/cli"
	"github.com/iudanet/otagate/internal/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://192.168.4.1", "Controller URL")
	passwordFile := flag.String("password-file", "", "Path to file containing the admin password")

	flag.Usage = func() {
		cli.PrintUsage(os.Stderr)
	}
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	// Получаем команду
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := cli.New(api.NewClient(*serverURL), iocli.NewStdio(), os.Stdout, cli.Passwords{FromFile: *passwordFile})

	if err := c.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			cli.PrintUsage(os.Stderr)
		}
		stop()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("otagatectl\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
