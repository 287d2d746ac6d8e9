package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-rental-billing/internal/customers"
)

func newCustomersCmd(opts *rootOptions) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "customers [query]",
		Short: "Search customers by name or phone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			ctx := cmd.Context()
			a, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			found, err := a.Customers.Search(ctx, query, limit)
			if err != nil {
				return err
			}
			return printCustomers(cmd.OutOrStdout(), found, jsonOutput)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func printCustomers(w io.Writer, found []customers.Customer, asJSON bool) error {
	if asJSON {
		if found == nil {
			found = []customers.Customer{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tALT PHONE\tADDRESS")
	for _, c := range found {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.AltPhone, c.Address)
	}
	return tw.Flush()
}
