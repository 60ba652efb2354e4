package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisans-asylum/artisans-scripts/internal/config"
	"github.com/artisans-asylum/artisans-scripts/internal/nexudus"
)

func newCoworkersCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coworkers",
		Short: "Inspect the member roster",
	}

	var teamID int64
	var refresh bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active members",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := nexudus.NewService(cfg.BaseURL, listOptions(cfg))
			if err != nil {
				return err
			}
			defer svc.Close()

			roster, err := svc.Roster(cmd.Context(), teamID, refresh)
			if err != nil {
				return fmt.Errorf("failed to list members: %w", err)
			}

			if roster == nil {
				roster = []nexudus.Coworker{}
			}
			if tryJSON(cmd, roster) {
				return nil
			}

			if len(roster) == 0 {
				PrintWarning("No members found. Run 'artisans sync' first?")
				return nil
			}

			fmt.Println()
			fmt.Printf("  %s\n", titleStyle.Render("Members"))

			headers := []string{"ID", "Name", "Email", "Teams"}
			rows := make([][]string, 0, len(roster))
			for _, cw := range roster {
				rows = append(rows, []string{
					strconv.FormatInt(cw.ID, 10),
					cw.FullName,
					cw.Email,
					formatTeamIDs(cw.TeamIDs),
				})
			}
			RenderTable(headers, rows)
			fmt.Println()
			return nil
		},
	}
	listCmd.Flags().Int64Var(&teamID, "team", 0, "Only members of this team ID")
	listCmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and query the API")

	var showRefresh bool
	showCmd := &cobra.Command{
		Use:   "show <email>",
		Short: "Show a member by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := nexudus.NewService(cfg.BaseURL, listOptions(cfg))
			if err != nil {
				return err
			}
			defer svc.Close()

			cw, err := svc.Member(cmd.Context(), args[0], showRefresh)
			if err != nil {
				return err
			}

			if tryJSON(cmd, cw) {
				return nil
			}

			fmt.Println()
			fmt.Printf("  %s\n", titleStyle.Render(cw.FullName))
			fmt.Printf("  ID:     %d\n", cw.ID)
			fmt.Printf("  Email:  %s\n", cw.Email)
			fmt.Printf("  Teams:  %s\n", formatTeamIDs(cw.TeamIDs))
			fmt.Println()
			return nil
		},
	}
	showCmd.Flags().BoolVar(&showRefresh, "refresh", false, "Bypass the cache and query the API")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

func formatTeamIDs(ids []int64) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
