// SPDX-License-Identifier: MIT

// Command vegasflow integrates the stock test functions with the adaptive
// or uniform Monte Carlo integrators.
//
//	vegasflow integrate --algo vegas --integrand lepage --dim 4 --calls 100000 \
//	    --freeze-after 5 --iterations 5 --output result.yaml --plot plots/
//	vegasflow version
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version is the CLI release.
const Version = "0.3.0"

func main() {
	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run builds the command tree and executes it against args.
func run(ctx context.Context, outW io.Writer, args []string) error {
	var root = newRootCmd(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
