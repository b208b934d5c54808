package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/giftcrm/internal/record"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		kind    string
		deleted bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the records of a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := record.KindDeleted
			if !deleted {
				var err error
				if k, err = record.ParseKind(kind); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			app, err := openApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			recs, err := app.Service.LoadRecords(ctx, k, deleted)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOME\tAZIENDA\tLOCALITA\tGLS")
			for i := range recs {
				r := &recs[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Nome, r.Azienda, r.Localita, r.GLS)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records\n", len(recs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(record.KindClients), "Collection (clienti or partner)")
	cmd.Flags().BoolVar(&deleted, "deleted", false, "List the deleted side-table instead")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Soft-delete a record",
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

			if err := app.Service.SoftDelete(ctx, k, record.ID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %s\n", args[0], k)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(record.KindClients), "Collection (clienti or partner)")
	return cmd
}

func newRestoreCmd(opts *options) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "restore [id]",
		Short: "Restore a soft-deleted record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var k record.Kind
			if kind != "" {
				var err error
				if k, err = record.ParseKind(kind); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			app, err := openApp(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Service.Restore(ctx, k, record.ID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s into %s\n", rec.DisplayName(), rec.Tipo)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Collection to restore into when a client and a partner share the id")
	return cmd
}
