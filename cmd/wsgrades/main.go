// Command wsgrades reconciles workshop peer-assessment reports with course
// participant exports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "wsgrades:", err)
		os.Exit(1)
	}
}
