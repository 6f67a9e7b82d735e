package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"valos-cli/internal/store"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(username) == "" {
				return writeErr(cmd, errors.New("--username is required"))
			}
			password, err := readPassword(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			if _, err := client.Login(cmd.Context(), username, password); err != nil {
				return writeErr(cmd, err)
			}

			cfg.Session = &store.SavedSession{
				Token:    client.Session.Token(),
				Username: username,
			}
			if app.APIBaseURL != "" {
				cfg.APIBaseURL = app.APIBaseURL
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"username": username,
				"loggedIn": true,
			}})
		},
	}

	cmd.Flags().StringVar(&username, "username", envOr("VALOS_USERNAME", ""), "Backend username")
	return cmd
}

// readPassword takes VALOS_PASSWORD when set, otherwise reads one line from
// stdin (which also makes `echo secret | valos login` work in scripts).
func readPassword(cmd *cobra.Command) (string, error) {
	if v := os.Getenv("VALOS_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	r := bufio.NewReader(cmd.InOrStdin())
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and drop the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			// Best effort on the backend side; the local session goes either way.
			logoutErr := client.Logout(cmd.Context())

			cfg.Session = nil
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			if logoutErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: backend logout failed: %v\n", logoutErr)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !client.Session.Authenticated() {
				return writeErr(cmd, errors.New("not logged in; run `valos login --username <name>`"))
			}

			out := map[string]any{
				"username": client.Session.Username(),
			}
			if exp, ok := client.Session.ExpiresAt(); ok {
				out["tokenExpiresAt"] = exp.UTC().Format(time.RFC3339)
				out["tokenExpired"] = client.Session.Expired()
			}
			// Confirm with the backend when reachable; a 401 here clears the
			// stale session via the client hook.
			if !app.Offline {
				if me, err := client.Me(cmd.Context()); err == nil {
					out["username"] = me.Username
					if me.Email != "" {
						out["email"] = me.Email
					}
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}
