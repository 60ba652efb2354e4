package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/artisans-asylum/artisans-scripts/internal/config"
	"github.com/artisans-asylum/artisans-scripts/internal/nexudus"
)

func newLoginCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Nexudus",
		Long: titleStyle.Render("Login") + "\n" +
			"  Authenticate with the Nexudus Spaces API and store the bearer token.\n" +
			"  Credentials are prompted for, or read from NEXUDUS_EMAIL and\n" +
			"  NEXUDUS_PASSWORD (a local .env file is honored).",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := readCredentials(cmd)
			if err != nil {
				return err
			}

			token, err := nexudus.Login(cmd.Context(), cfg.BaseURL, email, password)
			if err != nil {
				return err
			}
			if err := nexudus.SaveToken(token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}

			PrintSuccess(fmt.Sprintf("Logged in as %s", email))
			return nil
		},
	}
}

// readCredentials reads the login email and password from the environment
// when set, otherwise prompts. The password prompt never echoes.
func readCredentials(cmd *cobra.Command) (string, string, error) {
	email := os.Getenv("NEXUDUS_EMAIL")
	password := os.Getenv("NEXUDUS_PASSWORD")
	if email != "" && password != "" {
		return email, password, nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	if email == "" {
		fmt.Print("Nexudus login email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", fmt.Errorf("no email provided")
	}

	if password == "" {
		fmt.Print("Nexudus password: ")
		if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
			raw, err := term.ReadPassword(fd)
			fmt.Println()
			if err != nil {
				return "", "", fmt.Errorf("failed to read password: %w", err)
			}
			password = string(raw)
		} else {
			// Not a terminal (tests, pipes) — read a line instead
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", "", fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
	}
	if password == "" {
		return "", "", fmt.Errorf("no password provided")
	}

	return email, password, nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Nexudus token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := nexudus.RemoveToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			PrintSuccess("Logged out")
			return nil
		},
	}
}

func newAuthCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Show authentication status",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show token status",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := nexudus.LoadToken()
			if err != nil {
				PrintWarning("Not logged in")
				return nil
			}

			status := struct {
				LoggedIn bool   `json:"logged_in"`
				Valid    bool   `json:"valid"`
				Expiry   string `json:"expiry,omitempty"`
			}{
				LoggedIn: true,
				Valid:    token.Valid(),
			}
			if !token.Expiry.IsZero() {
				status.Expiry = token.Expiry.Format(time.RFC3339)
			}

			if tryJSON(cmd, status) {
				return nil
			}

			if status.Valid {
				PrintSuccess(fmt.Sprintf("Logged in, token valid until %s", status.Expiry))
			} else {
				PrintWarning("Logged in, token expired (it refreshes on next use)")
			}
			return nil
		},
	}

	cmd.AddCommand(statusCmd)
	return cmd
}
