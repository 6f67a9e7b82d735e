package cli

import (
	"fmt"
	"os"
	"strings"

	"valos-cli/internal/api"
	"valos-cli/internal/format"
	"valos-cli/internal/session"
	"valos-cli/internal/store"
	"valos-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	APIBaseURL string
	Format     string
	PrettyJSON bool
	Offline    bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "valos",
		Short:        "VALOS sales panel CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  valos

  # Scriptable commands
  valos login --username admin
  valos leads list --status new
  valos leads move 7 contacted
  valos quote build VL-01 --qty 3=5000
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIBaseURL, "api-url", envOr("VALOS_API_URL", ""), "Backend base URL (default: config file, then "+api.DefaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("VALOS_FORMAT", "json"), "Output format (json|csv)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.Offline, "offline", false, "Serve list commands from the local snapshot cache without contacting the backend")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newLeadsCmd(app))
	cmd.AddCommand(newCostingsCmd(app))
	cmd.AddCommand(newQuoteCmd(app))
	cmd.AddCommand(newPerfCmd(app))

	return cmd
}

func runTUI(app *App) error {
	client, cfg, err := loadClient(app)
	if err != nil {
		return err
	}
	return tui.Run(client, cfg)
}

// loadClient builds the API client from config plus flags. A saved session
// is restored so scripted invocations do not re-login every time.
func loadClient(app *App) (*api.Client, *store.GlobalConfig, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	sess := session.New()
	if cfg.Session != nil && cfg.Session.Token != "" {
		sess.Init(cfg.Session.Token, cfg.Session.Username)
	}

	baseURL := app.APIBaseURL
	if baseURL == "" {
		baseURL = cfg.APIBaseURL
	}

	client := api.NewClient(baseURL, sess)
	client.OnUnauthorized = func() {
		// The token is dead; drop it from disk too so the next run prompts.
		cfg.Session = nil
		_ = store.SaveConfig(cfg)
	}
	return client, cfg, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
