package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verboseFlag bool
	dirFlag     string

	logger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "castmap",
		Short: "Mapping profile tooling",
		Long: `castmap helps writing mapping profiles.

  castmap enums ./...                        print the enums of packages as a profile skeleton
  castmap check profile.yaml ./...           validate a profile against packages`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			l, err := newLogger(verboseFlag)
			if err != nil {
				return err
			}

			logger = l

			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log debug messages")
	cmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "directory package patterns are resolved in")

	cmd.AddCommand(newEnumsCmd(), newCheckCmd())

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true

	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}

	return cfg.Build()
}
