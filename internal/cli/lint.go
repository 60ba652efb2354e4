package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artisans-asylum/artisans-scripts/internal/devcontainer"
)

const defaultDevcontainerPath = ".devcontainer/devcontainer.json"

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [path]",
		Short: "Lint a devcontainer.json file",
		Long: titleStyle.Render("Lint") + "\n" +
			"  Check a devcontainer.json for schema problems: required keys,\n" +
			"  extension identifier format, and forwarded port ranges.\n" +
			"  Comments in the file are permitted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultDevcontainerPath
			if len(args) == 1 {
				path = args[0]
			}

			issues, err := devcontainer.LintFile(path)
			if err != nil {
				return fmt.Errorf("failed to lint %s: %w", path, err)
			}

			if issues == nil {
				issues = []devcontainer.Issue{}
			}
			if tryJSON(cmd, issues) {
				if len(issues) > 0 {
					return fmt.Errorf("found %d issue(s) in %s", len(issues), path)
				}
				return nil
			}

			if len(issues) == 0 {
				PrintSuccess(fmt.Sprintf("%s looks good", path))
				return nil
			}

			for _, issue := range issues {
				switch issue.Severity {
				case devcontainer.SeverityWarning:
					PrintWarning(issue.String())
				default:
					PrintError(issue.String())
				}
			}
			return fmt.Errorf("found %d issue(s) in %s", len(issues), path)
		},
	}
}
