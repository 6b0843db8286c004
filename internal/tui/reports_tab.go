package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopline-app/loopline-admin/sdk/admin"
)

type reportsTabModel struct {
	client      *admin.Client
	table       table.Model
	reports     []admin.Report
	meta        *admin.ListMeta
	page        int
	pendingOnly bool
	err         error
	status      string
}

type reportsLoadedMsg struct {
	reports []admin.Report
	meta    *admin.ListMeta
	err     error
}

type reportActionMsg struct {
	action string
	err    error
}

func newReportsTabModel(client *admin.Client) reportsTabModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Target", Width: 12},
			{Title: "Reason", Width: 30},
			{Title: "Status", Width: 10},
		}),
		table.WithFocused(true),
	)
	return reportsTabModel{client: client, table: t, page: 1, pendingOnly: true}
}

func (m reportsTabModel) Init() tea.Cmd {
	return m.fetch()
}

func (m reportsTabModel) fetch() tea.Cmd {
	client, page := m.client, m.page
	status := ""
	if m.pendingOnly {
		status = "pending"
	}
	return func() tea.Msg {
		reports, meta, err := client.ListReports(context.Background(), admin.ListOptions{Page: page, Limit: pageSize, Status: status})
		return reportsLoadedMsg{reports: reports, meta: meta, err: err}
	}
}

func (m reportsTabModel) selected() *admin.Report {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.reports) {
		return nil
	}
	return &m.reports[idx]
}

func (m reportsTabModel) close(resolve bool) tea.Cmd {
	report := m.selected()
	if report == nil {
		return nil
	}
	client, id := m.client, report.ID
	return func() tea.Msg {
		var err error
		action := "dismissed"
		if resolve {
			action = "resolved"
			_, err = client.ResolveReport(context.Background(), id, "handled via console")
		} else {
			_, err = client.DismissReport(context.Background(), id, "no action needed")
		}
		return reportActionMsg{action: "report " + action, err: err}
	}
}

func (m reportsTabModel) Update(msg tea.Msg) (reportsTabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.reports = msg.reports
			m.meta = msg.meta
			rows := make([]table.Row, 0, len(msg.reports))
			for _, report := range msg.reports {
				rows = append(rows, table.Row{shortID(report.ID), report.TargetType, truncate(report.Reason, 28), report.Status})
			}
			m.table.SetRows(rows)
		}
		return m, nil

	case reportActionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.action
		return m, m.fetch()

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.fetch()
		case "e":
			return m, m.close(true)
		case "i":
			return m, m.close(false)
		case "f":
			m.pendingOnly = !m.pendingOnly
			m.page = 1
			return m, m.fetch()
		case "n":
			if m.meta != nil && m.page < m.meta.TotalPages {
				m.page++
				return m, m.fetch()
			}
			return m, nil
		case "p":
			if m.page > 1 {
				m.page--
				return m, m.fetch()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *reportsTabModel) SetSize(width, height int) {
	if height > 4 {
		m.table.SetHeight(height - 4)
	}
}

func (m reportsTabModel) View() string {
	title := "Reports (pending)"
	if !m.pendingOnly {
		title = "Reports (all)"
	}
	header := titleStyle.Render(title) + pageIndicator(m.page, m.meta)
	footer := statusBarStyle.Render("e resolve · i dismiss · f filter · n/p page · r reload")
	if m.err != nil {
		footer = errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		footer = successStyle.Render(m.status) + "  " + footer
	}
	return header + "\n" + m.table.View() + "\n" + footer
}
