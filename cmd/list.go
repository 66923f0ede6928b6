package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/praclabs/workinator/internal/app"
	"github.com/praclabs/workinator/internal/offers"
)

func newListCmd() *cobra.Command {
	var (
		company  string
		position string
		city     string
		since    string
		limit    int
		offset   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored offers as JSON, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), cfgFile)
			if err != nil {
				return err
			}
			defer a.Close()

			filters := offers.Filters{
				Company:  company,
				Position: position,
				City:     city,
				Limit:    limit,
				Offset:   offset,
			}
			if since != "" {
				from, err := time.Parse(time.RFC3339, since)
				if err != nil {
					return fmt.Errorf("invalid --since, want RFC3339: %w", err)
				}
				filters.From = from
			}

			matched, err := a.Exports.Offers(cmd.Context(), filters)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(matched)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "filter by company substring")
	cmd.Flags().StringVar(&position, "position", "", "filter by position substring")
	cmd.Flags().StringVar(&city, "city", "", "filter by city substring")
	cmd.Flags().StringVar(&since, "since", "", "only offers added at or after this RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of offers to print (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of offers to skip")
	return cmd
}
