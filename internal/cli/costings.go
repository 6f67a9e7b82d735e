package cli

import (
	"errors"

	"valos-cli/internal/api"
	"valos-cli/internal/model"
	"valos-cli/internal/store"

	"github.com/spf13/cobra"
)

func newCostingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "costings",
		Short: "Product costing commands",
	}
	cmd.AddCommand(newCostingsListCmd(app))
	cmd.AddCommand(newCostingsShowCmd(app))
	cmd.AddCommand(newCostingsCreateCmd(app))
	cmd.AddCommand(newCostingsEditCmd(app))
	cmd.AddCommand(newCostingsDuplicateCmd(app))
	cmd.AddCommand(newCostingsDeleteCmd(app))
	return cmd
}

func newCostingsListCmd(app *App) *cobra.Command {
	var params api.CostingListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List costings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Offline {
				return listCostingsFromCache(cmd, app)
			}
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			page, err := client.ListCostings(cmd.Context(), params)
			if err != nil {
				return writeErr(cmd, err)
			}
			cacheCostings(cmd, page)
			return writeOut(cmd, app, page)
		},
	}

	cmd.Flags().IntVar(&params.Skip, "skip", 0, "Offset into the collection")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size (default 50)")
	cmd.Flags().StringVar(&params.ProjectCode, "project", "", "Filter by project code")
	cmd.Flags().StringVar(&params.Status, "status", "", "Filter by costing status")
	cmd.Flags().StringVar(&params.Search, "search", "", "Free-text search")
	return cmd
}

func listCostingsFromCache(cmd *cobra.Command, app *App) error {
	cache, err := store.OpenCache()
	if err != nil {
		return writeErr(cmd, err)
	}
	defer cache.Close()
	costings, snap, err := cache.Costings(cmd.Context())
	if err != nil {
		return writeErr(cmd, errors.New("no cached costings; run `valos costings list` online first"))
	}
	return writeOut(cmd, app, model.CostingPage{
		Items: costings,
		Total: snap.Total,
		Limit: len(costings),
	})
}

func cacheCostings(cmd *cobra.Command, page *model.CostingPage) {
	cache, err := store.OpenCache()
	if err != nil {
		return
	}
	defer cache.Close()
	_ = cache.PutCostings(cmd.Context(), page.Items, page.Total)
}

func newCostingsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <costing-id>",
		Short: "Show one costing",
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
			out, err := client.GetCosting(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newCostingsCreateCmd(app *App) *cobra.Command {
	var project, product, sku, moq, bottle, cap, label, box, price, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a costing",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Empty fields are dropped from the form; the backend applies its
			// own defaults.
			out, err := client.CreateCosting(cmd.Context(), map[string]string{
				"project_code":     project,
				"product_name":     product,
				"sku_ml":           sku,
				"moq":              moq,
				"bottle_cost":      bottle,
				"cap_cost":         cap,
				"label_cost":       label,
				"box_cost":         box,
				"final_unit_price": price,
				"status":           status,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code")
	cmd.Flags().StringVar(&product, "product", "", "Product name")
	cmd.Flags().StringVar(&sku, "sku-ml", "", "SKU size in ml")
	cmd.Flags().StringVar(&moq, "moq", "", "Minimum order quantity")
	cmd.Flags().StringVar(&bottle, "bottle-cost", "", "Bottle unit cost")
	cmd.Flags().StringVar(&cap, "cap-cost", "", "Cap unit cost")
	cmd.Flags().StringVar(&label, "label-cost", "", "Label unit cost")
	cmd.Flags().StringVar(&box, "box-cost", "", "Box unit cost")
	cmd.Flags().StringVar(&price, "price", "", "Final unit price")
	cmd.Flags().StringVar(&status, "status", "", "Costing status")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func newCostingsEditCmd(app *App) *cobra.Command {
	var edits api.CostingUpdate

	cmd := &cobra.Command{
		Use:   "edit <costing-id>",
		Short: "Replace a costing's fields",
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
			// The endpoint replaces the whole record, so fields the user did
			// not pass keep their current values rather than being zeroed.
			cur, err := client.GetCosting(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			payload := api.CostingUpdateFrom(cur)
			flags := cmd.Flags()
			if flags.Changed("project") {
				payload.ProjectCode = edits.ProjectCode
			}
			if flags.Changed("product") {
				payload.ProductName = edits.ProductName
			}
			if flags.Changed("sku-ml") {
				payload.SkuML = edits.SkuML
			}
			if flags.Changed("moq") {
				payload.MOQ = edits.MOQ
			}
			if flags.Changed("bottle-cost") {
				payload.BottleCost = edits.BottleCost
			}
			if flags.Changed("cap-cost") {
				payload.CapCost = edits.CapCost
			}
			if flags.Changed("label-cost") {
				payload.LabelCost = edits.LabelCost
			}
			if flags.Changed("box-cost") {
				payload.BoxCost = edits.BoxCost
			}
			if flags.Changed("price") {
				payload.FinalUnitPrice = edits.FinalUnitPrice
			}
			if flags.Changed("status") {
				payload.Status = edits.Status
			}
			out, err := client.UpdateCosting(cmd.Context(), id, payload)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&edits.ProjectCode, "project", "", "Project code")
	cmd.Flags().StringVar(&edits.ProductName, "product", "", "Product name")
	cmd.Flags().StringVar(&edits.SkuML, "sku-ml", "", "SKU size in ml")
	cmd.Flags().IntVar(&edits.MOQ, "moq", 0, "Minimum order quantity")
	cmd.Flags().Float64Var(&edits.BottleCost, "bottle-cost", 0, "Bottle unit cost")
	cmd.Flags().Float64Var(&edits.CapCost, "cap-cost", 0, "Cap unit cost")
	cmd.Flags().Float64Var(&edits.LabelCost, "label-cost", 0, "Label unit cost")
	cmd.Flags().Float64Var(&edits.BoxCost, "box-cost", 0, "Box unit cost")
	cmd.Flags().Float64Var(&edits.FinalUnitPrice, "price", 0, "Final unit price")
	cmd.Flags().StringVar(&edits.Status, "status", "", "Costing status")
	return cmd
}

func newCostingsDuplicateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicate <costing-id>",
		Short: "Duplicate a costing as a starting point for a variant",
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
			out, err := client.DuplicateCosting(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}

func newCostingsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <costing-id>",
		Short: "Delete a costing",
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
			if err := client.DeleteCosting(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}
