package main

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/giftcrm/internal/core"
	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *options) *cobra.Command {
	var (
		kind   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a spreadsheet and merge it into a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := record.ParseKind(kind)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := openApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			res := app.Service.ImportFile(ctx, args[0], k)
			if !res.Success {
				return fmt.Errorf("%w: %s (code %s)", core.ErrImportFailed, res.Message, res.Code)
			}
			report, err := app.Service.MergeImported(ctx, res, dryRun)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(record.KindClients), "Target collection (clienti or partner)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the merge outcome without saving")
	return cmd
}

func printReport(w io.Writer, r *core.MergeReport) {
	imp := r.Import
	fmt.Fprintf(w, "Sheet:     %s (%s)\n", imp.Sheet, imp.Strategy)
	fmt.Fprintf(w, "Rows:      %d read, %d kept\n", imp.Total, imp.Kept)
	for _, u := range imp.Unmapped {
		if u.Suggestion != "" {
			fmt.Fprintf(w, "Unmapped:  %q kept as %s (did you mean %s?)\n", u.Column, u.Key, u.Suggestion)
		} else {
			fmt.Fprintf(w, "Unmapped:  %q kept as %s\n", u.Column, u.Key)
		}
	}
	fmt.Fprintf(w, "Merge:     %s\n", r.Merge.Message)
	fmt.Fprintf(w, "Total:     %d records in %s\n", r.Total, imp.Kind)
	if r.DryRun {
		fmt.Fprintln(w, "Dry run - nothing was saved")
	}
}
