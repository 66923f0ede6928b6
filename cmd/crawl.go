package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praclabs/workinator/internal/app"
	"github.com/praclabs/workinator/internal/offers"
)

func newCrawlCmd() *cobra.Command {
	var (
		city      string
		distance  int
		maxOffers int
	)
	cmd := &cobra.Command{
		Use:   "crawl <keyword>...",
		Short: "Crawl the listing for the given keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfgFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if maxOffers == 0 {
				maxOffers = a.Cfg.Crawl.MaxOffersDefault
			}
			result, runErr := a.Orchestrator.Run(ctx, offers.SearchQuery{
				Keywords:  args,
				City:      city,
				Distance:  distance,
				MaxOffers: maxOffers,
			})

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("crawl run %s stopped: %w", result.RunID, runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "restrict the search to a city")
	cmd.Flags().IntVar(&distance, "distance", 0, "search radius in km around the city")
	cmd.Flags().IntVar(&maxOffers, "max-offers", 0, "stop after this many new offers (0 = config default)")
	return cmd
}
