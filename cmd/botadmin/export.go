package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tgbots/internal/analytics/ch"
	"tgbots/internal/report"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export analytics",
	}

	cmd.AddCommand(newExportRatingsCmd())
	return cmd
}

func newExportRatingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Write the rating workbook from ClickHouse analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, _ := cmd.Flags().GetString("bot")
			out, _ := cmd.Flags().GetString("out")
			days, _ := cmd.Flags().GetInt("days")

			store, err := ch.NewClickHouseDB(cmd.Context(), clickHouseConfig())
			if err != nil {
				return err
			}
			defer store.Close()

			now := time.Now()
			f, err := report.Build(cmd.Context(), store, report.Options{Bot: bot, Days: days, Now: now})
			if err != nil {
				return err
			}
			defer f.Close()

			if out == "" {
				out = report.FileName(bot, now)
			}
			if err := f.SaveAs(out); err != nil {
				return fmt.Errorf("failed to save %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
			return nil
		},
	}

	cmd.Flags().String("bot", "", "Bot variant (wardrobe, cooking, document); empty exports all")
	cmd.Flags().String("out", "", "Output file (default ratings_<bot>_<date>.xlsx)")
	cmd.Flags().Int("days", 30, "Days covered by the daily events sheet")
	return cmd
}
