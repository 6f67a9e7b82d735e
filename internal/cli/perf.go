package cli

import (
	"github.com/spf13/cobra"
)

func newPerfCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Sales performance summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := fetchStats(cmd, client)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"total":          st.Total,
				"new":            st.New,
				"contacted":      st.Contacted,
				"qualified":      st.Qualified,
				"converted":      st.Converted,
				"lost":           st.Lost,
				"activePipeline": st.ActivePipeline(),
				"conversionRate": st.ConversionRate(),
				"lossRate":       st.LossRate(),
			}})
		},
	}
	return cmd
}
