// Package cmd provides the CLI command for sigmaindex.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ixerrors "github.com/Aman-CERP/sigmaindex/internal/errors"
	"github.com/Aman-CERP/sigmaindex/internal/index"
	"github.com/Aman-CERP/sigmaindex/internal/logging"
	"github.com/Aman-CERP/sigmaindex/internal/output"
	"github.com/Aman-CERP/sigmaindex/pkg/version"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const usageLine = "Usage: sigmaindex <sigma_rules_dir> <output_json>"

// NewRootCmd creates the root command for the sigmaindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sigmaindex <sigma_rules_dir> <output_json>",
		Short: "Build a searchable JSON catalog of Sigma rules",
		Long: `sigmaindex scans a Sigma rules directory for *.yml files and writes a
single JSON array with one entry per rule, sorted by title.

Each entry carries the rule's title, id, status, level, tags and logsource,
plus its path and a link into the SigmaHQ repository. Files that cannot be
parsed, or that have no title, are skipped.`,
		Version:       version.String(),
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBuild(ctx, cmd, args[0], args[1])
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		printUsage(c)
		return ixerrors.UsageError(err.Error())
	})

	return cmd
}

// exactArgs rejects any other argument count before the command touches the
// filesystem.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			printUsage(cmd)
			return ixerrors.UsageError(
				fmt.Sprintf("expected %d arguments, got %d", n, len(args)))
		}
		return nil
	}
}

func printUsage(cmd *cobra.Command) {
	output.NewPlain(cmd.OutOrStdout()).Println(usageLine)
}

func runBuild(ctx context.Context, cmd *cobra.Command, rulesDir, outputPath string) error {
	cfg := logging.DefaultConfig()
	cfg.Output = cmd.ErrOrStderr()
	logger := logging.Setup(cfg)

	builder := index.NewBuilder(index.WithLogger(logger))
	result, err := builder.BuildIndex(ctx, rulesDir, outputPath)
	if err != nil {
		return err
	}

	output.New(cmd.OutOrStdout()).Successf("Wrote %d rules to %s", len(result.Entries), outputPath)
	return nil
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case ixerrors.IsUsage(err):
		return ExitUsage
	default:
		return ExitError
	}
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	return execute(NewRootCmd())
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err != nil && !ixerrors.IsUsage(err) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), ixerrors.FormatForCLI(err))
	}
	return ExitCode(err)
}
