package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"valos-cli/internal/api"
	"valos-cli/internal/model"
	"valos-cli/internal/quote"

	"github.com/spf13/cobra"
)

func newQuoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quotation commands",
	}
	cmd.AddCommand(newQuoteBuildCmd(app))
	cmd.AddCommand(newQuoteSaveCmd(app))
	cmd.AddCommand(newQuoteShowCmd(app))
	cmd.AddCommand(newQuoteExportCmd(app))
	cmd.AddCommand(newQuoteListCmd(app))
	cmd.AddCommand(newQuoteDeleteCmd(app))
	return cmd
}

// buildQuotation fetches a project's costings and computes the quotation
// locally. Every item starts at the seed quantity; --qty overrides replace
// individual entries.
func buildQuotation(cmd *cobra.Command, client *api.Client, projectCode string, qtyFlags []string) (model.Quotation, error) {
	page, err := client.ListCostings(cmd.Context(), api.CostingListParams{
		ProjectCode: projectCode,
		Limit:       1000,
	})
	if err != nil {
		return model.Quotation{}, err
	}
	items := quote.FilterByProject(page.Items, projectCode)
	if len(items) == 0 {
		return model.Quotation{}, fmt.Errorf("no costings found for project %q", projectCode)
	}

	quantities := quote.SeedQuantities(items)
	for _, f := range qtyFlags {
		id, qty, err := parseQtyFlag(f)
		if err != nil {
			return model.Quotation{}, err
		}
		if _, ok := quantities[id]; !ok {
			return model.Quotation{}, fmt.Errorf("costing %d is not part of project %q", id, projectCode)
		}
		quantities[id] = qty
	}

	return quote.Build(projectCode, items, quantities), nil
}

// parseQtyFlag parses "costing-id=quantity".
func parseQtyFlag(s string) (int64, int, error) {
	idStr, qtyStr, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --qty %q (want id=quantity)", s)
	}
	id, err := parseID(idStr)
	if err != nil {
		return 0, 0, err
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 0 {
		return 0, 0, fmt.Errorf("invalid quantity in --qty %q", s)
	}
	return id, qty, nil
}

func newQuoteBuildCmd(app *App) *cobra.Command {
	var qtyFlags []string

	cmd := &cobra.Command{
		Use:   "build <project-code>",
		Short: "Compute a quotation locally without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			q, err := buildQuotation(cmd, client, args[0], qtyFlags)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": q})
		},
	}

	cmd.Flags().StringArrayVar(&qtyFlags, "qty", nil, "Quantity override as id=quantity (repeatable; default 10000 each)")
	return cmd
}

func newQuoteSaveCmd(app *App) *cobra.Command {
	var qtyFlags []string

	cmd := &cobra.Command{
		Use:   "save <project-code>",
		Short: "Compute a quotation and post it to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			q, err := buildQuotation(cmd, client, args[0], qtyFlags)
			if err != nil {
				return writeErr(cmd, err)
			}
			saved, err := client.CreateQuotation(cmd.Context(), q)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": saved})
		},
	}

	cmd.Flags().StringArrayVar(&qtyFlags, "qty", nil, "Quantity override as id=quantity (repeatable; default 10000 each)")
	return cmd
}

func newQuoteShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project-code>",
		Short: "Show the saved quotation for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			q, err := client.GetQuotationByProject(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": q})
		},
	}
	return cmd
}

func newQuoteExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <project-code>",
		Short: "Download the backend-rendered quotation spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := client.ExportQuotationExcel(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			path := out
			if path == "" {
				path = fmt.Sprintf("quotation_%s.xlsx", args[0])
			}
			if err := os.WriteFile(path, b, 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":  path,
				"bytes": len(b),
			}})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default quotation_<project>.xlsx)")
	return cmd
}

func newQuoteListCmd(app *App) *cobra.Command {
	var params api.QuotationListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved quotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			page, err := client.ListQuotations(cmd.Context(), params)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, page)
		},
	}

	cmd.Flags().IntVar(&params.Skip, "skip", 0, "Offset into the collection")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size (default 50)")
	cmd.Flags().StringVar(&params.ProjectCode, "project", "", "Filter by project code")
	return cmd
}

func newQuoteDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <quotation-id>",
		Short: "Delete a saved quotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.DeleteQuotation(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}
