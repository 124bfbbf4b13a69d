package main

import (
	"github.com/spf13/cobra"

	"github.com/frroossst/readonlylint/config"
)

func (a *app) configCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			file, _, err := a.loadConfig()
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			return config.Encode(cmd.OutOrStdout(), file, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output syntax: yaml, toml or json")
	return cmd
}
