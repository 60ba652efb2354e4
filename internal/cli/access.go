package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/artisans-asylum/artisans-scripts/internal/config"
	"github.com/artisans-asylum/artisans-scripts/internal/nexudus"
)

func newAccessCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Check tool access",
		Long: titleStyle.Render("Access") + "\n" +
			"  Tool testedness is tracked as team membership. A member has access\n" +
			"  to a tool when they belong to the team configured for it.",
	}

	var refresh bool
	checkCmd := &cobra.Command{
		Use:   "check <email> <tool>",
		Short: "Check whether a member is tested on a tool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, tool := args[0], args[1]

			teamID, ok := cfg.ToolTeam(tool)
			if !ok {
				return fmt.Errorf("no team configured for tool %q (known tools: %s)", tool, knownTools(cfg))
			}

			svc, err := nexudus.NewService(cfg.BaseURL, listOptions(cfg))
			if err != nil {
				return err
			}
			defer svc.Close()

			cw, tested, err := svc.CheckAccess(cmd.Context(), email, teamID, refresh)
			if err != nil {
				return err
			}

			result := struct {
				Member string `json:"member"`
				Email  string `json:"email"`
				Tool   string `json:"tool"`
				TeamID int64  `json:"team_id"`
				Tested bool   `json:"tested"`
			}{cw.FullName, cw.Email, tool, teamID, tested}

			if tryJSON(cmd, result) {
				return nil
			}

			if tested {
				PrintSuccess(fmt.Sprintf("%s is tested on %s (team %d)", cw.FullName, tool, teamID))
			} else {
				PrintWarning(fmt.Sprintf("%s is NOT tested on %s (team %d)", cw.FullName, tool, teamID))
			}
			return nil
		},
	}
	checkCmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cache and query the API")

	cmd.AddCommand(checkCmd)
	return cmd
}

func knownTools(cfg *config.Config) string {
	if len(cfg.Tools) == 0 {
		return "none"
	}
	names := make([]string, 0, len(cfg.Tools))
	for name := range cfg.Tools {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
