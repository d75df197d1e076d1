package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// UsersModel is the admin-only user roster.
type UsersModel struct {
	table   table.Model
	users   []model.User
	loading bool

	Err error
}

func NewUsersModel() UsersModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Username", Width: 24},
		{Title: "Role", Width: 20},
		{Title: "Active", Width: 8},
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

	return UsersModel{table: t, loading: true}
}

func (m *UsersModel) SetSize(width, height int) {
	if height > 8 {
		m.table.SetHeight(height - 8)
	}
}

func (m *UsersModel) SetUsers(users []model.User) {
	m.users = users
	m.loading = false
	m.Err = nil

	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(u.ID),
			u.Username,
			u.Role.String(),
			active,
			u.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

func (m UsersModel) Update(msg tea.Msg) (UsersModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m UsersModel) View() string {
	if m.Err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load users: %v", m.Err))
	}
	if m.loading {
		return placeholderStyle.Render("Loading users...")
	}
	help := helpStyle.Render("s: scans • w: CWE • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.table.View(), "", help)
}
