package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/praclabs/workinator/internal/app"
	"github.com/praclabs/workinator/internal/offers"
)

func newExportCmd() *cobra.Command {
	var (
		out  string
		city string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored offers as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), cfgFile)
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			n, err := a.Exports.WriteCSV(cmd.Context(), w, offers.Filters{City: city})
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(os.Stderr, "wrote %d offers to %s\n", n, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "destination file (default stdout)")
	cmd.Flags().StringVar(&city, "city", "", "filter by city substring")
	return cmd
}
