package tui

import (
	"errors"
	"strconv"
	"strings"

	"valos-cli/internal/api"
	"valos-cli/internal/model"
	"valos-cli/internal/notify"
	"valos-cli/internal/optimistic"
	"valos-cli/internal/store"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const boardFetchLimit = 200

type appModel struct {
	client *api.Client
	cfg    *store.GlobalConfig
	pub    *notify.Publisher

	width  int
	height int

	view view

	// Fetch sequencing: a response is applied only when its seq matches the
	// latest issued for its collection.
	leadsSeq    int
	costingsSeq int
	statsSeq    int

	leadSet      *optimistic.LeadSet
	leadsTotal   int
	leadsErr     string
	leadsLoading bool

	costings        []model.Costing
	costingsTotal   int
	costingsErr     string
	costingsLoading bool

	stats    *model.LeadStats
	statsErr string

	// Last-known totals from the snapshot cache, shown on the dashboard
	// until fresh data arrives.
	cachedLeads    int
	cachedCostings int

	login loginState

	boardSearch    textinput.Model
	boardSearching bool
	boardSel       boardSelection
	boardDetail    bool

	salesIdx       int
	salesSkip      int
	salesSearch    textinput.Model
	salesSearching bool
	salesStatus    model.LeadStatus

	costIdx       int
	costSkip      int
	costSearch    textinput.Model
	costSearching bool

	quotation quotationState

	modal        modalKind
	alertTitle   string
	alertBody    string
	confirmBody  string
	confirmFocus confirmFocus
	// confirmKind/confirmID identify what a confirmed delete applies to.
	confirmKind string
	confirmID   int64
	form        *formState

	statusLine string
}

type loginState struct {
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	errText  string
}

func newAppModel(client *api.Client, cfg *store.GlobalConfig) appModel {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword

	boardSearch := textinput.New()
	boardSearch.Placeholder = "search leads"
	salesSearch := textinput.New()
	salesSearch.Placeholder = "search"
	costSearch := textinput.New()
	costSearch.Placeholder = "search"

	m := appModel{
		client:      client,
		cfg:         cfg,
		pub:         notify.NewPublisher(),
		view:        viewLogin,
		leadSet:     optimistic.NewLeadSet(nil),
		login:       loginState{username: user, password: pass},
		boardSearch: boardSearch,
		salesSearch: salesSearch,
		costSearch:  costSearch,
		quotation:   newQuotationState(),
	}
	if client.Session.Authenticated() {
		m.view = viewDashboard
		m.login.username.SetValue(client.Session.Username())
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewLogin {
		return textinput.Blink
	}
	return tea.Batch(m.initialFetches()...)
}

// initialFetches is issued after login and on startup with a saved session:
// leads and costings fetched concurrently, stats for the performance view,
// cached counts for the dashboard, and the periodic refresh tick.
func (m *appModel) initialFetches() []tea.Cmd {
	m.leadsSeq++
	m.costingsSeq++
	m.statsSeq++
	m.leadsLoading = true
	m.costingsLoading = true
	return []tea.Cmd{
		fetchLeadsCmd(m.client, m.leadsSeq, api.LeadListParams{Limit: boardFetchLimit}),
		fetchCostingsCmd(m.client, m.costingsSeq, api.CostingListParams{Limit: boardFetchLimit}),
		fetchStatsCmd(m.client, m.statsSeq),
		loadCachedCountsCmd(),
		perfTickCmd(),
	}
}

func (m *appModel) refetchLeads() tea.Cmd {
	m.leadsSeq++
	m.leadsLoading = true
	params := api.LeadListParams{Limit: boardFetchLimit}
	if m.view == viewSales {
		params.Skip = m.salesSkip
		params.Limit = 0 // default page size
		params.Status = m.salesStatus
		params.Search = strings.TrimSpace(m.salesSearch.Value())
	}
	return fetchLeadsCmd(m.client, m.leadsSeq, params)
}

func (m *appModel) refetchCostings() tea.Cmd {
	m.costingsSeq++
	m.costingsLoading = true
	params := api.CostingListParams{Limit: boardFetchLimit}
	if m.view == viewCostings {
		params.Skip = m.costSkip
		params.Limit = 0
		params.Search = strings.TrimSpace(m.costSearch.Value())
	}
	return fetchCostingsCmd(m.client, m.costingsSeq, params)
}

func (m *appModel) refetchStats() tea.Cmd {
	m.statsSeq++
	return fetchStatsCmd(m.client, m.statsSeq)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case unauthorizedMsg:
		return m.toLogin("session expired; log in again"), nil

	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.errText = errDetail(msg.err)
			return m, nil
		}
		m.cfg.Session = &store.SavedSession{
			Token:    m.client.Session.Token(),
			Username: msg.username,
		}
		_ = store.SaveConfig(m.cfg)
		m.view = viewDashboard
		m.login.errText = ""
		m.login.password.SetValue("")
		return m, tea.Batch(m.initialFetches()...)

	case leadsFetchedMsg:
		if msg.seq != m.leadsSeq {
			return m, nil
		}
		m.leadsLoading = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil // hook already queued unauthorizedMsg
			}
			m.leadsErr = errDetail(msg.err)
			return m, nil
		}
		m.leadsErr = ""
		m.leadSet.ReplaceAll(msg.page.Items)
		m.leadsTotal = msg.page.Total
		return m, snapshotLeadsCmd(msg.page)

	case costingsFetchedMsg:
		if msg.seq != m.costingsSeq {
			return m, nil
		}
		m.costingsLoading = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			m.costingsErr = errDetail(msg.err)
			return m, nil
		}
		m.costingsErr = ""
		m.costings = msg.page.Items
		m.costingsTotal = msg.page.Total
		m.quotation.syncItems(m.costings)
		return m, snapshotCostingsCmd(msg.page)

	case statsFetchedMsg:
		if msg.seq != m.statsSeq {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			m.statsErr = errDetail(msg.err)
			return m, nil
		}
		m.statsErr = ""
		m.stats = msg.stats
		return m, nil

	case statusSavedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			// Board move failures revert silently: mark for reconciliation
			// and install the authoritative list when it arrives.
			m.leadSet.Fail(msg.id)
			return m, m.refetchLeads()
		}
		if next, ok := m.leadSet.Confirm(msg.id); ok {
			// A follow-up change was queued while this persist was in
			// flight; it goes out now.
			return m, saveStatusCmd(m.client, msg.id, next)
		}
		m.pub.Publish(notify.Event{Collection: notify.CollectionLeads})
		return m, nil

	case leadMutatedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			m.modal = modalAlert
			m.alertTitle = "Could not " + msg.action + " lead"
			m.alertBody = errDetail(msg.err)
			return m, nil
		}
		m.modal = modalNone
		m.form = nil
		m.statusLine = "Lead " + msg.action + "d"
		m.pub.Publish(notify.Event{Collection: notify.CollectionLeads})
		return m, tea.Batch(m.refetchLeads(), m.refetchStats())

	case costingMutatedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			m.modal = modalAlert
			m.alertTitle = "Could not " + msg.action + " costing"
			m.alertBody = errDetail(msg.err)
			return m, nil
		}
		m.modal = modalNone
		m.form = nil
		m.statusLine = "Costing " + msg.action + "d"
		m.pub.Publish(notify.Event{Collection: notify.CollectionCostings})
		return m, m.refetchCostings()

	case quotationSavedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			m.modal = modalAlert
			m.alertTitle = "Could not save quotation"
			m.alertBody = errDetail(msg.err)
			return m, nil
		}
		m.quotation.status = "Saved quotation for " + msg.quotation.ProjectCode
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m, nil
			}
			m.modal = modalAlert
			m.alertTitle = "Export failed"
			m.alertBody = errDetail(msg.err)
			return m, nil
		}
		m.quotation.status = "Wrote " + msg.path + " (" + strconv.Itoa(msg.size) + " bytes)"
		return m, nil

	case collectionChangedMsg:
		// Cross-view refresh: a confirmed lead mutation invalidates the
		// performance numbers.
		if msg.collection == notify.CollectionLeads {
			return m, m.refetchStats()
		}
		return m, nil

	case perfTickMsg:
		if m.view == viewLogin {
			return m, perfTickCmd()
		}
		return m, tea.Batch(m.refetchStats(), perfTickCmd())

	case cachedCountsMsg:
		m.cachedLeads = msg.leads
		m.cachedCostings = msg.costings
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modals capture all input while open.
	if m.modal != modalNone {
		return m.updateModalKey(msg)
	}

	if m.view == viewLogin {
		return m.updateLoginKey(msg)
	}

	// Search inputs capture printable keys while active.
	if m.boardSearching || m.salesSearching || m.costSearching {
		return m.updateSearchKey(msg)
	}

	// Quantity editing captures digits before the global view-switch keys.
	if m.view == viewQuotation && m.quotation.editing {
		return m.updateQuotationKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.view = viewDashboard
		return m, nil
	case "2":
		// The shared lead set may hold a filtered sales page; the board
		// wants the wide unfiltered fetch.
		m.view = viewBoard
		return m, m.refetchLeads()
	case "3":
		m.view = viewSales
		return m, m.refetchLeads()
	case "4":
		m.view = viewCostings
		return m, m.refetchCostings()
	case "5":
		m.view = viewQuotation
		return m, nil
	case "6":
		m.view = viewPerformance
		return m, m.refetchStats()
	}

	switch m.view {
	case viewBoard:
		return m.updateBoardKey(msg)
	case viewSales:
		return m.updateSalesKey(msg)
	case viewCostings:
		return m.updateCostingsKey(msg)
	case viewQuotation:
		return m.updateQuotationKey(msg)
	case viewPerformance:
		if msg.String() == "r" {
			return m, m.refetchStats()
		}
	case viewDashboard:
		if msg.String() == "r" {
			return m, tea.Batch(m.refetchLeads(), m.refetchCostings(), m.refetchStats())
		}
	}
	return m, nil
}

func (m appModel) updateLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.login.focus = 1 - m.login.focus
		if m.login.focus == 0 {
			m.login.username.Focus()
			m.login.password.Blur()
		} else {
			m.login.password.Focus()
			m.login.username.Blur()
		}
		return m, textinput.Blink
	case "enter":
		if m.login.busy {
			return m, nil
		}
		username := strings.TrimSpace(m.login.username.Value())
		password := m.login.password.Value()
		if username == "" || password == "" {
			m.login.errText = "username and password are required"
			return m, nil
		}
		m.login.busy = true
		m.login.errText = ""
		return m, loginCmd(m.client, username, password)
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.username, cmd = m.login.username.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.boardSearching = false
		m.salesSearching = false
		m.costSearching = false
		m.boardSearch.Blur()
		m.salesSearch.Blur()
		m.costSearch.Blur()
		return m, nil
	case "enter":
		if m.salesSearching {
			m.salesSearching = false
			m.salesSearch.Blur()
			m.salesSkip = 0
			return m, m.refetchLeads()
		}
		if m.costSearching {
			m.costSearching = false
			m.costSearch.Blur()
			m.costSkip = 0
			return m, m.refetchCostings()
		}
		// Board search filters locally; enter just leaves the input.
		m.boardSearching = false
		m.boardSearch.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.boardSearching:
		m.boardSearch, cmd = m.boardSearch.Update(msg)
	case m.salesSearching:
		m.salesSearch, cmd = m.salesSearch.Update(msg)
	case m.costSearching:
		m.costSearch, cmd = m.costSearch.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	board := buildLeadBoard(m.leadSet.Leads(), m.boardSearch.Value())
	m.boardSel = board.clamp(m.boardSel)

	switch msg.String() {
	case "left", "h":
		m.boardSel.Col--
		m.boardSel.Item = 0
		m.boardSel.LeadID = 0
		m.boardSel = board.clamp(m.boardSel)
		return m, nil
	case "right", "l":
		m.boardSel.Col++
		m.boardSel.Item = 0
		m.boardSel.LeadID = 0
		m.boardSel = board.clamp(m.boardSel)
		return m, nil
	case "up", "k":
		m.boardSel.Item--
		m.boardSel.LeadID = 0
		m.boardSel = board.clamp(m.boardSel)
		return m, nil
	case "down", "j":
		m.boardSel.Item++
		m.boardSel.LeadID = 0
		m.boardSel = board.clamp(m.boardSel)
		return m, nil
	case "shift+left", "H":
		return m.moveSelectedLead(board, -1)
	case "shift+right", "L":
		return m.moveSelectedLead(board, +1)
	case "p":
		if lead, ok := board.selectedLead(m.boardSel); ok {
			m.leadSet.CyclePriority(lead.ID)
		}
		return m, nil
	case "enter":
		m.boardDetail = !m.boardDetail
		return m, nil
	case "/":
		m.boardSearching = true
		m.boardSearch.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.refetchLeads()
	}
	return m, nil
}

// moveSelectedLead is the optimistic board move: the card jumps to the
// neighboring column immediately, then the single-field PATCH goes out. When
// a persist for the lead is already in flight, the new value is queued
// behind it (cancel-and-replace) and no second call is issued yet.
func (m appModel) moveSelectedLead(board leadBoard, dir int) (tea.Model, tea.Cmd) {
	lead, ok := board.selectedLead(m.boardSel)
	if !ok {
		return m, nil
	}
	col := m.boardSel.Col + dir
	if col < 0 || col >= len(model.PipelineStatuses) {
		return m, nil
	}
	target := model.PipelineStatuses[col]

	persistNow, ok := m.leadSet.ApplyStatusChange(lead.ID, target)
	if !ok {
		return m, nil
	}
	m.boardSel.Col = col
	m.boardSel.LeadID = lead.ID
	if !persistNow {
		return m, nil
	}
	return m, saveStatusCmd(m.client, lead.ID, target)
}

func (m appModel) updateSalesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	leads := m.leadSet.Leads()
	switch msg.String() {
	case "up", "k":
		if m.salesIdx > 0 {
			m.salesIdx--
		}
		return m, nil
	case "down", "j":
		if m.salesIdx < len(leads)-1 {
			m.salesIdx++
		}
		return m, nil
	case "n":
		if m.salesSkip+len(leads) < m.leadsTotal {
			m.salesSkip += 50
			m.salesIdx = 0
			return m, m.refetchLeads()
		}
		return m, nil
	case "p":
		if m.salesSkip > 0 {
			m.salesSkip -= 50
			if m.salesSkip < 0 {
				m.salesSkip = 0
			}
			m.salesIdx = 0
			return m, m.refetchLeads()
		}
		return m, nil
	case "/":
		m.salesSearching = true
		m.salesSearch.Focus()
		return m, textinput.Blink
	case "f":
		m.salesStatus = nextStatusFilter(m.salesStatus)
		m.salesSkip = 0
		m.salesIdx = 0
		return m, m.refetchLeads()
	case "a":
		m.form = newLeadForm(nil)
		m.modal = modalLeadForm
		return m, textinput.Blink
	case "e":
		if m.salesIdx < len(leads) {
			lead := leads[m.salesIdx]
			m.form = newLeadForm(&lead)
			m.modal = modalLeadForm
			return m, textinput.Blink
		}
		return m, nil
	case "d":
		if m.salesIdx < len(leads) {
			lead := leads[m.salesIdx]
			m.modal = modalConfirmDelete
			m.confirmKind = "lead"
			m.confirmID = lead.ID
			m.confirmBody = "Delete lead “" + lead.CompanyName + "”? This cannot be undone."
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil
	case "r":
		return m, m.refetchLeads()
	}
	return m, nil
}

// nextStatusFilter cycles all -> new -> ... -> lost -> all.
func nextStatusFilter(cur model.LeadStatus) model.LeadStatus {
	if cur == "" {
		return model.PipelineStatuses[0]
	}
	for i, st := range model.PipelineStatuses {
		if st == cur {
			if i == len(model.PipelineStatuses)-1 {
				return ""
			}
			return model.PipelineStatuses[i+1]
		}
	}
	return ""
}

func (m appModel) updateCostingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.costIdx > 0 {
			m.costIdx--
		}
		return m, nil
	case "down", "j":
		if m.costIdx < len(m.costings)-1 {
			m.costIdx++
		}
		return m, nil
	case "n":
		if m.costSkip+len(m.costings) < m.costingsTotal {
			m.costSkip += 50
			m.costIdx = 0
			return m, m.refetchCostings()
		}
		return m, nil
	case "p":
		if m.costSkip > 0 {
			m.costSkip -= 50
			if m.costSkip < 0 {
				m.costSkip = 0
			}
			m.costIdx = 0
			return m, m.refetchCostings()
		}
		return m, nil
	case "/":
		m.costSearching = true
		m.costSearch.Focus()
		return m, textinput.Blink
	case "a":
		m.form = newCostingForm(nil)
		m.modal = modalCostingForm
		return m, textinput.Blink
	case "e":
		if m.costIdx < len(m.costings) {
			c := m.costings[m.costIdx]
			m.form = newCostingForm(&c)
			m.modal = modalCostingForm
			return m, textinput.Blink
		}
		return m, nil
	case "D":
		if m.costIdx < len(m.costings) {
			return m, duplicateCostingCmd(m.client, m.costings[m.costIdx].ID)
		}
		return m, nil
	case "d":
		if m.costIdx < len(m.costings) {
			c := m.costings[m.costIdx]
			m.modal = modalConfirmDelete
			m.confirmKind = "costing"
			m.confirmID = c.ID
			m.confirmBody = "Delete costing “" + c.ProductName + "”? This cannot be undone."
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil
	case "r":
		return m, m.refetchCostings()
	}
	return m, nil
}

func (m appModel) updateModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalAlert:
		switch msg.String() {
		case "enter", "esc":
			m.modal = modalNone
			m.alertTitle = ""
			m.alertBody = ""
		}
		return m, nil

	case modalConfirmDelete:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			return m, nil
		case "tab", "left", "right":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
			return m, nil
		case "enter":
			if m.confirmFocus == confirmFocusCancel {
				m.modal = modalNone
				return m, nil
			}
			m.modal = modalNone
			switch m.confirmKind {
			case "lead":
				return m, deleteLeadCmd(m.client, m.confirmID)
			case "costing":
				return m, deleteCostingCmd(m.client, m.confirmID)
			}
			return m, nil
		}
		return m, nil

	case modalLeadForm, modalCostingForm:
		return m.updateFormKey(msg)
	}
	return m, nil
}

func (m appModel) updateFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.modal = modalNone
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.form = nil
		return m, nil
	case "tab", "down":
		m.form.focusNext()
		return m, textinput.Blink
	case "shift+tab", "up":
		m.form.focusPrev()
		return m, textinput.Blink
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form.fields[m.form.focus].input, cmd = m.form.fields[m.form.focus].input.Update(msg)
	return m, cmd
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	switch m.modal {
	case modalLeadForm:
		if f.leadID > 0 {
			patch, err := f.leadUpdate()
			if err != nil {
				m.modal = modalAlert
				m.alertTitle = "Invalid input"
				m.alertBody = err.Error()
				return m, nil
			}
			return m, updateLeadCmd(m.client, f.leadID, patch)
		}
		lead, err := f.lead()
		if err != nil {
			m.modal = modalAlert
			m.alertTitle = "Invalid input"
			m.alertBody = err.Error()
			return m, nil
		}
		return m, createLeadCmd(m.client, lead)

	case modalCostingForm:
		if f.costingID > 0 {
			payload, err := f.costingUpdate()
			if err != nil {
				m.modal = modalAlert
				m.alertTitle = "Invalid input"
				m.alertBody = err.Error()
				return m, nil
			}
			return m, updateCostingCmd(m.client, f.costingID, payload)
		}
		fields := f.values()
		if strings.TrimSpace(fields["project_code"]) == "" || strings.TrimSpace(fields["product_name"]) == "" {
			m.modal = modalAlert
			m.alertTitle = "Invalid input"
			m.alertBody = "project code and product name are required"
			return m, nil
		}
		return m, createCostingCmd(m.client, fields)
	}
	return m, nil
}

// toLogin drops all fetched data and returns to the login view. Used on 401
// and logout; the client has already cleared the session.
func (m appModel) toLogin(reason string) appModel {
	m.view = viewLogin
	m.login.busy = false
	m.login.errText = reason
	m.login.password.SetValue("")
	m.login.focus = 1
	m.login.username.Blur()
	m.login.password.Focus()
	m.leadSet = optimistic.NewLeadSet(nil)
	m.costings = nil
	m.stats = nil
	m.modal = modalNone
	m.form = nil
	return m
}

// errDetail prefers the backend's own message over Go error chains.
func errDetail(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}
