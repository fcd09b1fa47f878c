package main

import (
	"context"
	"os"
	"os/signal"

	"shellkit/internal/app"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, app.DefaultDeps(), version, os.Args[1:])
	stop()
	os.Exit(code)
}
