package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/internal/cli"
	perrors "github.com/matzehuels/possible/pkg/errors"
)

// Exit codes.
const (
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130 // Standard shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", message(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// --verbose must take effect before the config file can lower the level.
	configure := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return configure(cmd, args)
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps an error to a process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case perrors.Is(err, perrors.ErrCodeInvalidInput),
		perrors.Is(err, perrors.ErrCodeInvalidConfig),
		perrors.Is(err, perrors.ErrCodeInvalidPath):
		return exitUsage
	default:
		return exitError
	}
}

// message returns the user-facing text of err, keeping the cause of coded
// errors.
func message(err error) string {
	var e *perrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return perrors.UserMessage(err)
}
