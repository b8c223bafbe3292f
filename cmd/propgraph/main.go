// Command propgraph compiles MongoDB-style filters and queries a SQLite
// property graph.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/roach88/propgraph/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
