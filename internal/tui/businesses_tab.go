package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopline-app/loopline-admin/sdk/admin"
)

type businessesTabModel struct {
	client     *admin.Client
	table      table.Model
	businesses []admin.Business
	meta       *admin.ListMeta
	page       int
	err        error
	status     string
}

type businessesLoadedMsg struct {
	businesses []admin.Business
	meta       *admin.ListMeta
	err        error
}

type businessActionMsg struct {
	action string
	err    error
}

func newBusinessesTabModel(client *admin.Client) businessesTabModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Name", Width: 26},
			{Title: "Status", Width: 10},
			{Title: "Verified", Width: 8},
		}),
		table.WithFocused(true),
	)
	return businessesTabModel{client: client, table: t, page: 1}
}

func (m businessesTabModel) Init() tea.Cmd {
	return m.fetch()
}

func (m businessesTabModel) fetch() tea.Cmd {
	client, page := m.client, m.page
	return func() tea.Msg {
		businesses, meta, err := client.ListBusinesses(context.Background(), admin.ListOptions{Page: page, Limit: pageSize})
		return businessesLoadedMsg{businesses: businesses, meta: meta, err: err}
	}
}

func (m businessesTabModel) selected() *admin.Business {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.businesses) {
		return nil
	}
	return &m.businesses[idx]
}

func (m businessesTabModel) Update(msg tea.Msg) (businessesTabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case businessesLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.businesses = msg.businesses
			m.meta = msg.meta
			rows := make([]table.Row, 0, len(msg.businesses))
			for _, business := range msg.businesses {
				verified := "no"
				if business.Verified {
					verified = "yes"
				}
				rows = append(rows, table.Row{shortID(business.ID), business.Name, business.Status, verified})
			}
			m.table.SetRows(rows)
		}
		return m, nil

	case businessActionMsg:
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
		case "v":
			if business := m.selected(); business != nil {
				client, id, verified := m.client, business.ID, !business.Verified
				return m, func() tea.Msg {
					_, err := client.SetBusinessVerified(context.Background(), id, verified)
					return businessActionMsg{action: "verification updated", err: err}
				}
			}
			return m, nil
		case "a", "s":
			if business := m.selected(); business != nil {
				status := "active"
				if msg.String() == "s" {
					status = "suspended"
				}
				client, id := m.client, business.ID
				return m, func() tea.Msg {
					_, err := client.UpdateBusinessStatus(context.Background(), id, status)
					return businessActionMsg{action: "business " + status, err: err}
				}
			}
			return m, nil
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

func (m *businessesTabModel) SetSize(width, height int) {
	if height > 4 {
		m.table.SetHeight(height - 4)
	}
}

func (m businessesTabModel) View() string {
	header := titleStyle.Render("Businesses") + pageIndicator(m.page, m.meta)
	footer := statusBarStyle.Render("v toggle verified · a activate · s suspend · n/p page · r reload")
	if m.err != nil {
		footer = errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		footer = successStyle.Render(m.status) + "  " + footer
	}
	return header + "\n" + m.table.View() + "\n" + footer
}
