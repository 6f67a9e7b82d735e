package cli

import (
	"errors"
	"fmt"
	"strconv"

	"valos-cli/internal/api"
	"valos-cli/internal/model"
	"valos-cli/internal/store"

	"github.com/spf13/cobra"
)

func newLeadsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Sales lead commands",
	}
	cmd.AddCommand(newLeadsListCmd(app))
	cmd.AddCommand(newLeadsShowCmd(app))
	cmd.AddCommand(newLeadsCreateCmd(app))
	cmd.AddCommand(newLeadsUpdateCmd(app))
	cmd.AddCommand(newLeadsDeleteCmd(app))
	cmd.AddCommand(newLeadsMoveCmd(app))
	cmd.AddCommand(newLeadsStatsCmd(app))
	return cmd
}

func newLeadsListCmd(app *App) *cobra.Command {
	var params api.LeadListParams
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Offline {
				return listLeadsFromCache(cmd, app)
			}
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if status != "" {
				st := model.LeadStatus(status)
				if !st.Valid() {
					return writeErr(cmd, fmt.Errorf("unknown status %q", status))
				}
				params.Status = st
			}
			page, err := client.ListLeads(cmd.Context(), params)
			if err != nil {
				return writeErr(cmd, err)
			}
			cacheLeads(cmd, page)
			return writeOut(cmd, app, page)
		},
	}

	cmd.Flags().IntVar(&params.Skip, "skip", 0, "Offset into the collection")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size (default 50)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by pipeline status (new|contacted|qualified|converted|lost)")
	cmd.Flags().StringVar(&params.Location, "location", "", "Filter by location")
	cmd.Flags().StringVar(&params.Search, "search", "", "Free-text search")
	return cmd
}

func listLeadsFromCache(cmd *cobra.Command, app *App) error {
	cache, err := store.OpenCache()
	if err != nil {
		return writeErr(cmd, err)
	}
	defer cache.Close()
	leads, snap, err := cache.Leads(cmd.Context())
	if err != nil {
		return writeErr(cmd, errors.New("no cached leads; run `valos leads list` online first"))
	}
	return writeOut(cmd, app, model.LeadPage{
		Items: leads,
		Total: snap.Total,
		Limit: len(leads),
	})
}

// cacheLeads refreshes the offline snapshot after a successful fetch.
// Cache failures never fail the command.
func cacheLeads(cmd *cobra.Command, page *model.LeadPage) {
	cache, err := store.OpenCache()
	if err != nil {
		return
	}
	defer cache.Close()
	_ = cache.PutLeads(cmd.Context(), page.Items, page.Total)
}

func newLeadsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <lead-id>",
		Short: "Show one lead",
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
			lead, err := client.GetLead(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": lead})
		},
	}
	return cmd
}

func newLeadsCreateCmd(app *App) *cobra.Command {
	var lead model.Lead

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if lead.Status == "" {
				lead.Status = model.StatusNew
			}
			if !lead.Status.Valid() {
				return writeErr(cmd, fmt.Errorf("unknown status %q", lead.Status))
			}
			out, err := client.CreateLead(cmd.Context(), lead)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&lead.CompanyName, "company", "", "Company name")
	cmd.Flags().StringVar(&lead.Owner, "owner", "", "Account owner")
	cmd.Flags().StringVar(&lead.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&lead.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&lead.Location, "location", "", "Location")
	cmd.Flags().StringVar(&lead.ProjectCode, "project", "", "Project code")
	cmd.Flags().StringVar(&lead.Segment, "segment", "", "Market segment")
	cmd.Flags().StringVar(&lead.Notes, "notes", "", "Free-form notes (markdown)")
	cmd.Flags().StringVar((*string)(&lead.Status), "status", "", "Initial status (default new)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newLeadsUpdateCmd(app *App) *cobra.Command {
	var patch api.LeadUpdate
	var company, owner, email, phone, location, project, segment, notes, status string

	cmd := &cobra.Command{
		Use:   "update <lead-id>",
		Short: "Update lead fields (only the flags you pass are sent)",
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

			set := func(name string, dst **string, v string) {
				if cmd.Flags().Changed(name) {
					*dst = &v
				}
			}
			set("company", &patch.CompanyName, company)
			set("owner", &patch.Owner, owner)
			set("email", &patch.Email, email)
			set("phone", &patch.Phone, phone)
			set("location", &patch.Location, location)
			set("project", &patch.ProjectCode, project)
			set("segment", &patch.Segment, segment)
			set("notes", &patch.Notes, notes)
			if cmd.Flags().Changed("status") {
				st := model.LeadStatus(status)
				if !st.Valid() {
					return writeErr(cmd, fmt.Errorf("unknown status %q", status))
				}
				patch.Status = &st
			}

			out, err := client.UpdateLead(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company name")
	cmd.Flags().StringVar(&owner, "owner", "", "Account owner")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&location, "location", "", "Location")
	cmd.Flags().StringVar(&project, "project", "", "Project code")
	cmd.Flags().StringVar(&segment, "segment", "", "Market segment")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes (markdown)")
	cmd.Flags().StringVar(&status, "status", "", "Pipeline status")
	return cmd
}

func newLeadsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <lead-id>",
		Short: "Delete a lead",
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
			if err := client.DeleteLead(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}

func newLeadsMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <lead-id> <status>",
		Short: "Move a lead to another pipeline column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			status := model.LeadStatus(args[1])
			if !status.Valid() {
				return writeErr(cmd, fmt.Errorf("unknown status %q (want one of new|contacted|qualified|converted|lost)", args[1]))
			}
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := client.UpdateLeadStatus(cmd.Context(), id, status); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":     id,
				"status": status,
			}})
		},
	}
	return cmd
}

func newLeadsStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Pipeline counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := fetchStats(cmd, client)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
	return cmd
}

// fetchStats prefers the dedicated endpoint and falls back to counting the
// full list when the backend does not expose it.
func fetchStats(cmd *cobra.Command, client *api.Client) (*model.LeadStats, error) {
	st, err := client.LeadStats(cmd.Context())
	if err == nil {
		return st, nil
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		return nil, err
	}
	page, err := client.ListLeads(cmd.Context(), api.LeadListParams{Limit: 1000})
	if err != nil {
		return nil, err
	}
	counted := model.CountLeads(page.Items)
	return &counted, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
