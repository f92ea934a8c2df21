package main

import (
	"cmp"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"caster/internal/analyze"
	"caster/internal/mapping"
)

func newEnumsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enums [packages...]",
		Short: "Print the enums of packages as a profile skeleton",
		Long: `Print every named integer or string type with declared constants as the enums
section of a profile. Member values are the constant values; mapped values are left
for the profile author.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := loadGraph(args)
			if err != nil {
				return err
			}

			out, err := mapping.Marshal(enumSkeleton(graph))
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}
}

func loadGraph(patterns []string) (*analyze.TypeGraph, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	graph, err := analyze.NewAnalyzer(dirFlag).LoadPackages(patterns...)
	if err != nil {
		return nil, err
	}

	logger.Debug("packages loaded",
		zap.Strings("patterns", patterns),
		zap.Int("packages", len(graph.Packages)),
		zap.Int("types", len(graph.Types)),
		zap.Int("enums", len(graph.Enums)))

	return graph, nil
}

// enumSkeleton lists the enums of graph ordered by type, members in declaration order.
func enumSkeleton(graph *analyze.TypeGraph) *mapping.MappingFile {
	mf := &mapping.MappingFile{Version: mapping.CurrentVersion}

	enums := make([]*analyze.EnumInfo, 0, len(graph.Enums))
	for _, e := range graph.Enums {
		enums = append(enums, e)
	}

	slices.SortFunc(enums, func(a, b *analyze.EnumInfo) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	for _, e := range enums {
		def := mapping.EnumDef{Type: e.ID.Short()}

		for _, c := range e.Constants {
			def.Members = append(def.Members, mapping.MemberDef{Name: c.Name, Value: c.Value})
		}

		mf.Enums = append(mf.Enums, def)
	}

	return mf
}
