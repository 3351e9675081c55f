package commands

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tourwithmark/engagement/config"
	"github.com/tourwithmark/engagement/store"
)

// NewReportCmd creates the report command.
func NewReportCmd(load func() (config.AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print analytics and like totals as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			analytics := st.Analytics(cmd.Context())
			likes, err := st.LikeStats(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{
				"analytics": analytics,
				"likes":     likes,
			}); err != nil {
				return err
			}
			if failed := analytics.Failed(); len(failed) > 0 {
				return errors.Join(analytics.PageViewsErr, analytics.RecentActivityErr, analytics.TotalStatsErr)
			}
			return nil
		},
	}
}
