package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artisans-asylum/artisans-scripts/internal/config"
	"github.com/artisans-asylum/artisans-scripts/internal/nexudus"
)

// listOptions derives roster pagination settings from the config.
func listOptions(cfg *config.Config) nexudus.ListOptions {
	return nexudus.ListOptions{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
	}
}

func newSyncCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync the full member roster into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := nexudus.NewService(cfg.BaseURL, listOptions(cfg))
			if err != nil {
				return err
			}
			defer svc.Close()

			result, err := svc.Sync(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			if tryJSON(cmd, result) {
				return nil
			}

			PrintSuccess(fmt.Sprintf("Synced %d members in %s (%d new, %d updated, %d removed)",
				result.Total, result.Duration, result.New, result.Updated, result.Removed))
			return nil
		},
	}
}
