package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"caster/internal/diagnostic"
	"caster/internal/mapping"
)

var errProfileInvalid = errors.New("profile has errors")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <profile.yaml> [packages...]",
		Short: "Validate a profile against packages",
		Long: `Validate the types, members, enum members and expressions a profile refers to
against the given packages, "./..." by default. Member type convertibility is checked
when the mapper is built, not here.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := mapping.LoadFile(args[0])
			if err != nil {
				return err
			}

			graph, err := loadGraph(args[1:])
			if err != nil {
				return err
			}

			diags := mapping.Validate(mf, graph)
			printDiagnostics(cmd.OutOrStdout(), diags)

			logger.Debug("profile checked",
				zap.String("profile", args[0]),
				zap.Int("errors", len(diags.Errors)),
				zap.Int("warnings", len(diags.Warnings)))

			if diags.HasErrors() {
				return fmt.Errorf("%s: %w", args[0], errProfileInvalid)
			}

			return nil
		},
	}
}

func printDiagnostics(w io.Writer, diags *diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		fmt.Fprintln(w, d)
	}

	if !diags.HasErrors() {
		fmt.Fprintf(w, "ok, %d warning(s)\n", len(diags.Warnings))
	}
}
