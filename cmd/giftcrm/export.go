package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export [output.xlsx]",
		Short: "Write the GLS shipment sheet for every flagged record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := fmt.Sprintf("spedizioni-gls-%s.xlsx", time.Now().Format("20060102"))
			if len(args) == 1 {
				out = args[0]
			}

			ctx := cmd.Context()
			app, err := openApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			buf, n, err := app.Service.ExportGLS(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d shipments to %s\n", n, out)
			return nil
		},
	}
}
