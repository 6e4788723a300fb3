package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tjun/sortenv/internal/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	app := commands.NewCommand()

	// cli.Exit errors terminate inside Run with their own code.
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "sortenv: %v\n", err)
		os.Exit(2)
	}
}
