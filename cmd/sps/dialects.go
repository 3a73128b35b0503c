package main

import (
	"github.com/spf13/cobra"

	"github.com/aledsdavies/sps/runtime/commands"
)

func (a *app) newDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the registered dialects",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError("dialects takes no arguments, got %q", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// a dialect file registers its dialect so it shows up here
			if a.cfg.Dialect.File != "" {
				if _, err := a.resolveDialect(); err != nil {
					return err
				}
			}
			DisplayDialects(a.stdout, commands.Dialects(), commands.LatestDialect().Version, ShouldUseColor(a.noColor, a.stdout))
			return nil
		},
	}
}
