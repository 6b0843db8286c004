package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopline-app/loopline-admin/sdk/admin"
)

const pageSize = 15

type usersTabModel struct {
	client *admin.Client
	table  table.Model
	users  []admin.User
	meta   *admin.ListMeta
	page   int
	err    error
	status string
}

type usersLoadedMsg struct {
	users []admin.User
	meta  *admin.ListMeta
	err   error
}

type userActionMsg struct {
	action string
	err    error
}

func newUsersTabModel(client *admin.Client) usersTabModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 20},
			{Title: "Email", Width: 28},
			{Title: "Status", Width: 10},
			{Title: "Posts", Width: 6},
		}),
		table.WithFocused(true),
	)
	return usersTabModel{client: client, table: t, page: 1}
}

func (m usersTabModel) Init() tea.Cmd {
	return m.fetch()
}

func (m usersTabModel) fetch() tea.Cmd {
	client, page := m.client, m.page
	return func() tea.Msg {
		users, meta, err := client.ListUsers(context.Background(), admin.ListOptions{Page: page, Limit: pageSize})
		return usersLoadedMsg{users: users, meta: meta, err: err}
	}
}

func (m usersTabModel) selected() *admin.User {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.users) {
		return nil
	}
	return &m.users[idx]
}

func (m usersTabModel) setStatus(status string) tea.Cmd {
	user := m.selected()
	if user == nil {
		return nil
	}
	client, id := m.client, user.ID
	return func() tea.Msg {
		_, err := client.UpdateUserStatus(context.Background(), id, status)
		return userActionMsg{action: status, err: err}
	}
}

func (m usersTabModel) Update(msg tea.Msg) (usersTabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.users = msg.users
			m.meta = msg.meta
			rows := make([]table.Row, 0, len(msg.users))
			for _, user := range msg.users {
				rows = append(rows, table.Row{shortID(user.ID), user.Name, user.Email, user.Status, fmt.Sprintf("%d", user.PostCount)})
			}
			m.table.SetRows(rows)
		}
		return m, nil

	case userActionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "user " + msg.action
		return m, m.fetch()

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.fetch()
		case "a":
			return m, m.setStatus("active")
		case "s":
			return m, m.setStatus("suspended")
		case "b":
			return m, m.setStatus("banned")
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

func (m *usersTabModel) SetSize(width, height int) {
	if height > 4 {
		m.table.SetHeight(height - 4)
	}
}

func (m usersTabModel) View() string {
	header := titleStyle.Render("Users") + pageIndicator(m.page, m.meta)
	footer := statusBarStyle.Render("a activate · s suspend · b ban · n/p page · r reload")
	if m.err != nil {
		footer = errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		footer = successStyle.Render(m.status) + "  " + footer
	}
	return header + "\n" + m.table.View() + "\n" + footer
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func pageIndicator(page int, meta *admin.ListMeta) string {
	if meta == nil {
		return ""
	}
	return statusBarStyle.Render(fmt.Sprintf("  page %d/%d (%d total)", page, meta.TotalPages, meta.TotalCount))
}
