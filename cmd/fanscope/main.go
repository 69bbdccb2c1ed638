// Command fanscope extracts follower and like counts from Kwai profiles.
//
// Usage:
//
//	fanscope extract https://www.kwai.com/@johndoe
//	fanscope batch profiles.txt --json
//	fanscope batch - < profiles.txt
//
// Cookies are read from KWAI_COOKIES / KWAI_DID, or from local browser
// stores with --browser-cookies. Settings may be kept in fanscope.json5,
// with per-machine overrides in fanscope.local.json5.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
