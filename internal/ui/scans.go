package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// refreshInterval is how often the scan list re-polls while visible.
const refreshInterval = 3 * time.Second

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// ScansModel renders the scan list. Each fetch bumps a generation
// counter; completions carrying an older generation are ignored so a
// slow response cannot clobber a fresher one.
type ScansModel struct {
	table   table.Model
	scans   []model.ScanListItem
	gen     uint64
	loading bool

	Err error
}

func NewScansModel() ScansModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Target", Width: 40},
		{Title: "Status", Width: 12},
		{Title: "Findings", Width: 8},
		{Title: "Created", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return ScansModel{table: t, loading: true}
}

// BeginFetch marks a new in-flight fetch and returns its generation.
func (m *ScansModel) BeginFetch() uint64 {
	m.gen++
	m.loading = true
	return m.gen
}

func (m *ScansModel) Generation() uint64 {
	return m.gen
}

func (m *ScansModel) SetSize(width, height int) {
	if height > 8 {
		m.table.SetHeight(height - 8)
	}
}

func (m *ScansModel) SetScans(scans []model.ScanListItem) {
	m.scans = scans
	m.loading = false
	m.Err = nil

	rows := make([]table.Row, 0, len(scans))
	for _, s := range scans {
		rows = append(rows, table.Row{
			strconv.Itoa(s.ID),
			s.TargetURL,
			s.Status.String(),
			strconv.Itoa(s.VulnerabilitiesAmount),
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

// SelectedScanID returns the highlighted scan, if any.
func (m ScansModel) SelectedScanID() (int, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return 0, false
	}
	return id, true
}

func (m ScansModel) Update(msg tea.Msg) (ScansModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ScansModel) View() string {
	if m.Err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load scans: %v", m.Err))
	}
	if m.loading && len(m.scans) == 0 {
		return placeholderStyle.Render("Loading scans...")
	}
	if len(m.scans) == 0 {
		return placeholderStyle.Render("No scans yet. Press n to start one.")
	}

	body := m.table.View()
	help := helpStyle.Render("enter: details • n: new scan • w: CWE • u: users • r: refresh • L: logout • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, "", help)
}
