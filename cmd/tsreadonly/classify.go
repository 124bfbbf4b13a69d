package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frroossst/readonlylint/config"
	"github.com/frroossst/readonlylint/internal/logging"
	"github.com/frroossst/readonlylint/tsfront"
	"github.com/frroossst/readonlylint/typenode"
)

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <type>",
		Short: "Print the immutability level of a type expression",
		Long: `Classify parses a standalone TypeScript type and prints its level under the
effective configuration's overrides and wrappers. Names other than the
built-in collections cannot be resolved and make the answer uncertain.

Example:
  tsreadonly classify 'ReadonlyMap<string, readonly number[]>'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _, err := a.loadConfig()
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			engines, err := file.Build(config.WithLogger(logging.Logger()))
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			n, resolver, err := tsfront.NewParser().ParseType(cmd.Context(), args[0])
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			res := engines.Classifier.Analyze(n, resolver)
			line := fmt.Sprintf("%s: %s", typenode.Print(n), res.Level)
			if res.Uncertain {
				line += " (uncertain)"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
			return err
		},
	}
}
