package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-rental-billing/internal/invoice"
)

var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// writeFile writes the document to path. The file only counts as written
// once Close succeeds.
func writeFile(path string, write func(io.Writer) (invoice.Summary, error)) (invoice.Summary, error) {
	f, err := createFile(path)
	if err != nil {
		return invoice.Summary{}, err
	}
	sum, err := write(f)
	if err != nil {
		_ = f.Close()
		return invoice.Summary{}, err
	}
	if err := f.Close(); err != nil {
		return invoice.Summary{}, fmt.Errorf("close %s: %w", path, err)
	}
	return sum, nil
}

func newInvoiceCmd(opts *rootOptions) *cobra.Command {
	var (
		orderID int64
		out     string
	)
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Render an order's invoice to a PDF file",
		Long: `Render the invoice of a persisted order.

Examples:
  billingctl invoice --order 42                  # writes invoice-<number>.pdf
  billingctl invoice --order 42 --out inv.pdf
  billingctl invoice --order 42 --out - > inv.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if orderID < 1 {
				return fmt.Errorf("--order must be a positive order id")
			}
			ctx := cmd.Context()
			a, err := opts.app(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			// load first: an unknown order must not leave an empty file behind
			doc, err := a.Renderer.Prepare(ctx, orderID)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = fmt.Sprintf("invoice-%s.pdf", doc.InvoiceNo())
			}
			if path == "-" {
				_, err := doc.Write(cmd.OutOrStdout())
				return err
			}

			sum, err := writeFile(path, doc.Write)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s: %d rows, %d pages, total %s\n",
				path, sum.Rows, sum.Pages, sum.Total.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().Int64Var(&orderID, "order", 0, "Order id")
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output path, "-" for stdout`)
	_ = cmd.MarkFlagRequired("order")
	return cmd
}
