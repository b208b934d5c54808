package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *options) *cobra.Command {
	var (
		gift string
		year int
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the campaign settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			st, err := app.Service.Settings(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("gift") || cmd.Flags().Changed("year") {
				if cmd.Flags().Changed("gift") {
					st.RegaloCorrente = gift
				}
				if cmd.Flags().Changed("year") {
					st.AnnoCorrente = year
				}
				if st, err = app.Service.SaveSettings(ctx, st); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
	cmd.Flags().StringVar(&gift, "gift", "", "Set the current gift")
	cmd.Flags().IntVar(&year, "year", 0, "Set the campaign year")
	return cmd
}
