package main

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/giftcrm/internal/admin"
	"github.com/spf13/cobra"
)

func newResetCmd(opts *options) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Empty every collection (settings are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("reset deletes every record; pass --yes to confirm")
			}

			ctx := cmd.Context()
			app, err := openApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := admin.Reset(ctx, app.Store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All collections emptied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")
	return cmd
}
