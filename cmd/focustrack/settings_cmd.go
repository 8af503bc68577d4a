package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Show or change timer settings"}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prov, err := openSettings(opts)
			if err != nil {
				return err
			}
			for _, line := range settingsLines(prov.Get()) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Change one setting, e.g. \"set focus_minutes 30\"",
		Example: "  focustrack settings set focus 50\n  focustrack settings set sound off",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prov, err := openSettings(opts)
			if err != nil {
				return err
			}
			if _, err := prov.Set(args[0], args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}
