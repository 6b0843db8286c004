package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loopline-app/loopline-admin/sdk/admin"
)

type dashboardModel struct {
	client *admin.Client
	stats  *admin.DashboardStats
	err    error
	width  int
	height int
}

type dashboardMsg struct {
	stats *admin.DashboardStats
	err   error
}

func newDashboardModel(client *admin.Client) dashboardModel {
	return dashboardModel{client: client}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.fetch()
}

func (m dashboardModel) fetch() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		stats, err := client.Dashboard(context.Background())
		return dashboardMsg{stats: stats, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.stats = msg.stats
		m.err = msg.err
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m *dashboardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return errorStyle.Render("dashboard error: " + m.err.Error())
	}
	if m.stats == nil {
		return "loading..."
	}
	rows := []struct {
		label string
		value int
	}{
		{"Total users", m.stats.TotalUsers},
		{"Active users", m.stats.ActiveUsers},
		{"Total posts", m.stats.TotalPosts},
		{"Businesses", m.stats.TotalBusinesses},
		{"Verified businesses", m.stats.VerifiedBusiness},
		{"Pending reports", m.stats.PendingReports},
		{"Resolved reports", m.stats.ResolvedReports},
		{"Categories", m.stats.TotalCategories},
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render("Platform overview"))
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(row.label)+fmt.Sprintf("%d", row.value))
	}
	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
