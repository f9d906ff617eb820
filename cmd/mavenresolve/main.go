package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenresolve/internal/cli"
	mrerrors "github.com/matzehuels/mavenresolve/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Set the log level before the CLI loads its configuration.
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps error classes to distinct exit statuses so scripts can
// tell bad input from network trouble.
func exitCode(err error) int {
	switch mrerrors.GetCode(err) {
	case mrerrors.ErrCodeInvalidInput, mrerrors.ErrCodeMalformedNotation, mrerrors.ErrCodeInvalidPath:
		return 2
	case mrerrors.ErrCodeRepositoryUnreachable, mrerrors.ErrCodeTransferFailed, mrerrors.ErrCodeAuthenticationFailed:
		return 3
	case mrerrors.ErrCodePartialDeploy:
		return 4
	default:
		return 1
	}
}
