// Package ui implements the scanctl terminal dashboard.
//
// The App model is a view router: every navigation passes through the
// route guard, so a view only renders when the session and role allow
// it. Views never fetch on their own; fetch commands are issued here
// and tagged so stale completions cannot overwrite newer state.
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/api"
	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
	"github.com/MikhailDrugie/se-attack-modeling/internal/guard"
	"github.com/MikhailDrugie/se-attack-modeling/internal/history"
	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
	"github.com/MikhailDrugie/se-attack-modeling/internal/session"
)

// view identifies a routed screen. viewScans is the safe default a
// denied navigation falls back to.
type view int

const (
	viewLogin view = iota
	viewScans
	viewScanDetail
	viewNewScan
	viewCWE
	viewUsers
	viewLoading
)

// allowFor is the role allow-list per view. Empty means any
// authenticated user. Lists name every admitted role explicitly;
// Admin appears where admins belong, not implicitly.
func allowFor(v view) []model.Role {
	switch v {
	case viewUsers:
		return []model.Role{model.RoleAdmin}
	case viewNewScan:
		return []model.Role{model.RoleAnalyst, model.RoleAdmin}
	default:
		return nil
	}
}

// App is the root bubbletea model.
type App struct {
	sess    *session.Manager
	client  *api.Client
	history history.Store

	active view
	width  int
	height int

	login  LoginModel
	scans  ScansModel
	detail DetailModel
	form   NewScanModel
	cwe    CWEModel
	users  UsersModel

	notice string

	// initCmd is armed in NewApp so the first fetch's generation is
	// recorded on the model the program actually runs with; Init has a
	// value receiver and cannot record it itself.
	initCmd tea.Cmd
}

// NewApp assembles the dashboard. The session should already have had
// Restore attempted (or be restoring) by the caller.
func NewApp(sess *session.Manager, client *api.Client, hist history.Store) App {
	a := App{
		sess:    sess,
		client:  client,
		history: hist,
		login:   NewLoginModel(),
		scans:   NewScansModel(),
		detail:  NewDetailModel(),
		form:    NewNewScanModel(),
		cwe:     NewCWEModel(),
		users:   NewUsersModel(),
	}
	a.active = a.route(viewScans)
	if a.active == viewScans {
		a.initCmd = a.fetchScans()
	}
	return a
}

// route applies the guard to a navigation target and returns the view
// that actually gets shown.
func (a *App) route(target view) view {
	switch guard.Check(a.sess, allowFor(target)) {
	case guard.ShowLoading:
		return viewLoading
	case guard.RedirectLogin:
		return viewLogin
	case guard.RedirectHome:
		a.notice = "You do not have access to that view."
		return viewScans
	default:
		return target
	}
}

// navigate routes to target and returns the entry command for the
// view that won.
func (a *App) navigate(target view) tea.Cmd {
	a.active = a.route(target)
	switch a.active {
	case viewScans:
		return a.fetchScans()
	case viewScanDetail:
		return a.fetchScanDetail(a.detail.ScanID)
	case viewCWE:
		return a.fetchCWE()
	case viewUsers:
		return a.fetchUsers()
	case viewLogin:
		a.login = NewLoginModel()
		return a.login.Init()
	}
	return nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.initCmd, scheduleRefresh())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.scans.SetSize(msg.Width, msg.Height)
		a.detail.SetSize(msg.Width, msg.Height)
		a.cwe.SetSize(msg.Width, msg.Height)
		a.users.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.HandleResult(msg)
		if msg.err == nil {
			return a, tea.Batch(cmd, a.navigate(viewScans))
		}
		return a, cmd

	case scansLoadedMsg:
		if msg.gen != a.scans.Generation() {
			// Superseded fetch; drop it rather than overwrite
			// state that belongs to a newer request.
			return a, nil
		}
		if msg.err != nil {
			return a, a.handleFetchError(msg.err, &a.scans.Err)
		}
		a.scans.SetScans(msg.scans)
		return a, nil

	case scanDetailLoadedMsg:
		if msg.id != a.detail.ScanID {
			// The user already navigated to a different scan.
			return a, nil
		}
		if msg.err != nil {
			return a, a.handleFetchError(msg.err, &a.detail.Err)
		}
		a.detail.SetScan(msg.scan)
		return a, nil

	case cweLoadedMsg:
		if msg.err != nil {
			return a, a.handleFetchError(msg.err, &a.cwe.Err)
		}
		a.cwe.SetEntries(msg.entries)
		return a, nil

	case usersLoadedMsg:
		if msg.err != nil {
			return a, a.handleFetchError(msg.err, &a.users.Err)
		}
		a.users.SetUsers(msg.users)
		return a, nil

	case scanCreatedMsg:
		var cmd tea.Cmd
		a.form, cmd = a.form.HandleResult(msg)
		if msg.err == nil {
			a.notice = "Scan queued."
			return a, tea.Batch(cmd, a.navigate(viewScans))
		}
		return a, cmd

	case refreshTickMsg:
		switch a.active {
		case viewScans:
			return a, tea.Batch(a.fetchScans(), scheduleRefresh())
		case viewLoading:
			// Session restore may have settled since the last tick.
			return a, tea.Batch(a.navigate(viewScans), scheduleRefresh())
		}
		return a, scheduleRefresh()
	}

	return a.updateActive(msg)
}

// handleGlobalKey processes navigation chords that work everywhere
// except inside text entry.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if a.active == viewLogin || a.active == viewNewScan ||
		(a.active == viewCWE && a.cwe.Filtering()) {
		// Text-entry views own their keys, except for quit.
		if msg.String() == "ctrl+c" {
			return tea.Quit, true
		}
		return nil, false
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit, true
	case "s":
		return a.navigate(viewScans), true
	case "n":
		return a.navigate(viewNewScan), true
	case "w":
		return a.navigate(viewCWE), true
	case "u":
		return a.navigate(viewUsers), true
	case "L":
		a.sess.Logout()
		return a.navigate(viewScans), true
	case "enter":
		if a.active == viewScans {
			if id, ok := a.scans.SelectedScanID(); ok {
				a.detail = NewDetailModel()
				a.detail.ScanID = id
				return a.navigate(viewScanDetail), true
			}
		}
	case "esc":
		if a.active == viewScanDetail {
			return a.navigate(viewScans), true
		}
	case "r":
		switch a.active {
		case viewScans:
			return a.fetchScans(), true
		case viewScanDetail:
			return a.fetchScanDetail(a.detail.ScanID), true
		}
	}
	return nil, false
}

// handleFetchError records the error on the view and, when the failure
// means the session died, routes back to login. The 401 interceptor
// already cleared the credentials by the time this runs.
func (a *App) handleFetchError(err error, sink *error) tea.Cmd {
	if apierr.IsUnauthorized(err) {
		return a.navigate(viewScans) // guard redirects to login
	}
	*sink = err
	return nil
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
		if a.login.Submitted() {
			username, password := a.login.Credentials()
			return a, loginCmd(a.sess, username, password)
		}
	case viewScans:
		a.scans, cmd = a.scans.Update(msg)
	case viewScanDetail:
		a.detail, cmd = a.detail.Update(msg)
	case viewNewScan:
		a.form, cmd = a.form.Update(msg)
		if a.form.Submitted() {
			return a, createScanCmd(a.client, a.form.TargetURL())
		}
		if a.form.Cancelled() {
			a.form = NewNewScanModel()
			return a, a.navigate(viewScans)
		}
	case viewCWE:
		a.cwe, cmd = a.cwe.Update(msg)
	case viewUsers:
		a.users, cmd = a.users.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	header := headerStyle.Render("scanctl | Attack Modeling")
	if user, ok := a.sess.CurrentUser(); ok {
		header += "  " + helpStyle.Render(user.Username+" ("+user.Role.String()+")")
	}

	var body string
	switch a.active {
	case viewLoading:
		body = placeholderStyle.Render("Restoring session...")
	case viewLogin:
		body = a.login.View()
	case viewScans:
		body = a.scans.View()
	case viewScanDetail:
		body = a.detail.View()
	case viewNewScan:
		body = a.form.View()
	case viewCWE:
		body = a.cwe.View()
	case viewUsers:
		body = a.users.View()
	}

	var footer string
	if a.notice != "" {
		footer = helpStyle.Render(a.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Run starts the dashboard program.
func Run(sess *session.Manager, client *api.Client, hist history.Store) error {
	p := tea.NewProgram(NewApp(sess, client, hist), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// --- Messages and fetch commands ---

type loginResultMsg struct{ err error }

type scansLoadedMsg struct {
	gen   uint64
	scans []model.ScanListItem
	err   error
}

type scanDetailLoadedMsg struct {
	id   int
	scan *model.Scan
	err  error
}

type cweLoadedMsg struct {
	entries []model.CWE
	err     error
}

type usersLoadedMsg struct {
	users []model.User
	err   error
}

type scanCreatedMsg struct {
	scan *model.Scan
	err  error
}

type refreshTickMsg struct{}

func loginCmd(sess *session.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: sess.Login(context.Background(), username, password)}
	}
}

// fetchScans captures the current list generation so the completion
// can be discarded if another fetch started meanwhile.
func (a *App) fetchScans() tea.Cmd {
	gen := a.scans.BeginFetch()
	client, hist := a.client, a.history
	return func() tea.Msg {
		scans, err := client.ListScans(context.Background(), 0, 0)
		if err != nil {
			return scansLoadedMsg{gen: gen, err: err}
		}
		if hist != nil {
			for i := range scans {
				if effective, obsErr := hist.Observe(scans[i].ID, scans[i].Status); obsErr == nil {
					scans[i].Status = effective
				}
			}
		}
		return scansLoadedMsg{gen: gen, scans: scans}
	}
}

// fetchScanDetail captures the requested id; results for a scan the
// user has navigated away from are dropped on arrival.
func (a *App) fetchScanDetail(id int) tea.Cmd {
	client, hist := a.client, a.history
	return func() tea.Msg {
		scan, err := client.GetScan(context.Background(), id)
		if err != nil {
			return scanDetailLoadedMsg{id: id, err: err}
		}
		if hist != nil {
			if effective, obsErr := hist.Observe(scan.ID, scan.Status); obsErr == nil {
				scan.Status = effective
			}
		}
		return scanDetailLoadedMsg{id: id, scan: scan}
	}
}

func (a *App) fetchCWE() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		entries, err := client.ListCWE(context.Background())
		return cweLoadedMsg{entries: entries, err: err}
	}
}

func (a *App) fetchUsers() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		users, err := client.ListUsers(context.Background(), 0, 0)
		return usersLoadedMsg{users: users, err: err}
	}
}

func createScanCmd(client *api.Client, targetURL string) tea.Cmd {
	return func() tea.Msg {
		scan, err := client.CreateScan(context.Background(), targetURL)
		return scanCreatedMsg{scan: scan, err: err}
	}
}
