package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/pkg/selectorgen"
)

func genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Code generation commands",
		Long:  `Generate code for store packages.`,
	}
	cmd.AddCommand(genSelectorsCmd())
	return cmd
}

func genSelectorsCmd() *cobra.Command {
	var (
		dir    string
		types  []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "selectors",
		Short: "Generate typed store selectors",
		Long: `Generate a typed accessor for every exported field of the given state
structs.

Use it from a go:generate directive in the package holding the state:

  //go:generate go run github.com/sakinah-dev/sakinah/cmd/sakinah gen selectors --type GlobalState

The output path is relative to --dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			for _, t := range types {
				if t = strings.TrimSpace(t); t != "" {
					names = append(names, t)
				}
			}
			if len(names) == 0 {
				return errors.New("E300").
					WithDetail("no --type given").
					WithSuggestion("Pass the state struct names, e.g. --type GlobalState")
			}

			out := output
			if !filepath.IsAbs(out) {
				out = filepath.Join(dir, out)
			}
			if err := selectorgen.Run(dir, names, out); err != nil {
				return errors.New("E302").Wrap(err)
			}
			success(cmd.OutOrStdout(), "Generated %s (%s)", out, strings.Join(names, ", "))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Package directory to scan")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "State struct names (comma separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "selectors_gen.go", "Output file")
	return cmd
}
