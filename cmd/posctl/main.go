// Command posctl is the operator CLI of the POS sales journal.
package main

import (
	"context"
	"fmt"
	"os"

	"posjournal/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext(context.Background())
	opts := &rootOptions{}
	err := newRootCommand(opts).ExecuteContext(ctx)
	if cerr := opts.close(); cerr != nil && err == nil {
		err = cerr
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
