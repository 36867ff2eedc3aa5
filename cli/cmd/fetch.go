package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency-rates/handler"
)

func fetch(config *Config) *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the latest rates once and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.load()

			if err != nil {
				return err
			}

			ctx := config.Ctx

			if ctx == nil {
				ctx = context.Background()
			}

			h := config.Handler

			if h == nil {
				h = handler.New()
			}

			res := h.Handle(ctx, v)

			fmt.Fprintln(cmd.OutOrStdout(), res.Body)

			if res.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch failed with status code %d", res.StatusCode)
			}

			return nil
		},
	}

	return fetchCmd
}
