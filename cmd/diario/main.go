package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/jimalvess/diario-cli/internal/client/cli"

	_ "modernc.org/sqlite"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}

}
