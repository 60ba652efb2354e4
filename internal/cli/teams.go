package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/artisans-asylum/artisans-scripts/internal/config"
	"github.com/artisans-asylum/artisans-scripts/internal/nexudus"
)

func newTeamsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Inspect teams",
	}

	var refresh bool
	showCmd := &cobra.Command{
		Use:   "show <team-id>",
		Short: "Show a team and its member count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid team id %q", args[0])
			}

			svc, err := nexudus.NewService(cfg.BaseURL, listOptions(cfg))
			if err != nil {
				return err
			}
			defer svc.Close()

			team, err := svc.Team(cmd.Context(), id, refresh)
			if err != nil {
				return err
			}

			if tryJSON(cmd, team) {
				return nil
			}

			fmt.Println()
			fmt.Printf("  %s\n", titleStyle.Render(team.Name))
			fmt.Printf("  ID:       %d\n", team.ID)
			fmt.Printf("  Members:  %d\n", len(team.CoworkerIDs))
			fmt.Println()
			return nil
		},
	}
	showCmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and query the API")

	cmd.AddCommand(showCmd)
	return cmd
}
