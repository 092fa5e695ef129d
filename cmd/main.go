// Command cacheprovider exercises the cache providers from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/krisalay/cacheprovider/internal/logging"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	logging.Init()

	ctx := context.Background()
	if err := NewApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
