// Package cli implements the artisans command surface.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/artisans-asylum/artisans-scripts/internal/config"
)

// Version is set by the caller when creating the root command
var cliVersion string

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd(cfg *config.Config, version string) *cobra.Command {
	cliVersion = version

	rootCmd := &cobra.Command{
		Use:   "artisans",
		Short: "Makerspace membership tooling for Nexudus",
		Long: titleStyle.Render("Artisans") + " " + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(version) + "\n" +
			"  Roster, team, and tool-access utilities for a Nexudus-backed makerspace.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Add all command groups
	rootCmd.AddCommand(newLoginCmd(cfg))
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newAuthCmd(cfg))
	rootCmd.AddCommand(newSyncCmd(cfg))
	rootCmd.AddCommand(newCoworkersCmd(cfg))
	rootCmd.AddCommand(newTeamsCmd(cfg))
	rootCmd.AddCommand(newAccessCmd(cfg))
	rootCmd.AddCommand(newLintCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("artisans %s\n", cliVersion)
		},
	}
}

// tryJSON returns true if --json was set and data was printed
func tryJSON(cmd *cobra.Command, v any) bool {
	jsonFlag, _ := cmd.Flags().GetBool("json")
	if !jsonFlag {
		return false
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return false
	}
	fmt.Println(string(out))
	return true
}
