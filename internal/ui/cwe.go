package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

type cweItem struct {
	entry model.CWE
}

func (i cweItem) Title() string       { return i.entry.ID + " " + i.entry.Name }
func (i cweItem) Description() string { return i.entry.Severity }
func (i cweItem) FilterValue() string { return i.entry.ID + " " + i.entry.Name }

// CWEModel is the weakness knowledge base browser: a filterable list
// on the left flow, with the selected entry rendered as markdown.
type CWEModel struct {
	list     list.Model
	vp       viewport.Model
	entries  []model.CWE
	showing  bool
	ready    bool
	width    int
	height   int
	loading  bool
	renderer *glamour.TermRenderer

	Err error
}

func NewCWEModel() CWEModel {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 80, 18)
	l.Title = "CWE Knowledge Base"
	l.SetShowStatusBar(false)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return CWEModel{list: l, loading: true, width: 80, height: 24, renderer: renderer}
}

func (m *CWEModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-6)
	if m.ready {
		m.vp.Width = width
		m.vp.Height = height - 6
	}
}

func (m *CWEModel) SetEntries(entries []model.CWE) {
	m.entries = entries
	m.loading = false
	m.Err = nil

	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, cweItem{entry: e})
	}
	m.list.SetItems(items)
}

// Filtering reports whether the list filter input currently owns the
// keyboard.
func (m CWEModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m CWEModel) Update(msg tea.Msg) (CWEModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if m.showing {
				break
			}
			item, ok := m.list.SelectedItem().(cweItem)
			if !ok {
				break
			}
			if !m.ready {
				m.vp = viewport.New(m.width, m.height-6)
				m.ready = true
			}
			m.vp.SetContent(m.renderEntry(item.entry))
			m.vp.GotoTop()
			m.showing = true
			return m, nil
		case "esc":
			if m.showing {
				m.showing = false
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.showing {
		m.vp, cmd = m.vp.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// renderEntry formats one weakness as markdown and runs it through the
// terminal renderer, falling back to the raw text if rendering fails.
func (m CWEModel) renderEntry(e model.CWE) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", e.ID, e.Name)
	if e.Severity != "" {
		fmt.Fprintf(&b, "**Severity:** %s\n\n", e.Severity)
	}
	if e.Description != "" {
		b.WriteString(e.Description + "\n\n")
	}
	if e.ExtendedDescription != "" {
		b.WriteString(e.ExtendedDescription + "\n\n")
	}
	if e.Remediation != "" {
		b.WriteString("## Remediation\n\n")
		b.WriteString(e.Remediation + "\n\n")
	}
	if len(e.OWASPMapping) > 0 {
		fmt.Fprintf(&b, "**OWASP:** %s\n\n", strings.Join(e.OWASPMapping, ", "))
	}
	if len(e.References) > 0 {
		b.WriteString("## References\n\n")
		for _, r := range e.References {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	md := b.String()
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m CWEModel) View() string {
	if m.Err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load CWE entries: %v", m.Err))
	}
	if m.loading {
		return placeholderStyle.Render("Loading CWE entries...")
	}
	if m.showing {
		help := helpStyle.Render("esc: back to list • q: quit")
		return lipgloss.JoinVertical(lipgloss.Left, m.vp.View(), "", help)
	}
	help := helpStyle.Render("enter: open • /: filter • s: scans • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), "", help)
}
