package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/loopline-app/loopline-admin/sdk/admin"
)

type postsTabModel struct {
	client *admin.Client
	table  table.Model
	posts  []admin.Post
	meta   *admin.ListMeta
	page   int
	err    error
	status string
}

type postsLoadedMsg struct {
	posts []admin.Post
	meta  *admin.ListMeta
	err   error
}

type postActionMsg struct {
	action string
	err    error
}

func newPostsTabModel(client *admin.Client) postsTabModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Author", Width: 18},
			{Title: "Content", Width: 34},
			{Title: "Status", Width: 10},
			{Title: "Reports", Width: 7},
		}),
		table.WithFocused(true),
	)
	return postsTabModel{client: client, table: t, page: 1}
}

func (m postsTabModel) Init() tea.Cmd {
	return m.fetch()
}

func (m postsTabModel) fetch() tea.Cmd {
	client, page := m.client, m.page
	return func() tea.Msg {
		posts, meta, err := client.ListPosts(context.Background(), admin.ListOptions{Page: page, Limit: pageSize})
		return postsLoadedMsg{posts: posts, meta: meta, err: err}
	}
}

func (m postsTabModel) selected() *admin.Post {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.posts) {
		return nil
	}
	return &m.posts[idx]
}

func (m postsTabModel) setStatus(status string) tea.Cmd {
	post := m.selected()
	if post == nil {
		return nil
	}
	client, id := m.client, post.ID
	return func() tea.Msg {
		_, err := client.UpdatePostStatus(context.Background(), id, status)
		return postActionMsg{action: status, err: err}
	}
}

func (m postsTabModel) Update(msg tea.Msg) (postsTabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case postsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.posts = msg.posts
			m.meta = msg.meta
			rows := make([]table.Row, 0, len(msg.posts))
			for _, post := range msg.posts {
				rows = append(rows, table.Row{shortID(post.ID), post.AuthorName, truncate(post.Content, 32), post.Status, fmt.Sprintf("%d", post.ReportCount)})
			}
			m.table.SetRows(rows)
		}
		return m, nil

	case postActionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "post " + msg.action
		return m, m.fetch()

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.fetch()
		case "u":
			return m, m.setStatus("published")
		case "h":
			return m, m.setStatus("hidden")
		case "x":
			return m, m.setStatus("removed")
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

func (m *postsTabModel) SetSize(width, height int) {
	if height > 4 {
		m.table.SetHeight(height - 4)
	}
}

func (m postsTabModel) View() string {
	header := titleStyle.Render("Posts") + pageIndicator(m.page, m.meta)
	footer := statusBarStyle.Render("u publish · h hide · x remove · n/p page · r reload")
	if m.err != nil {
		footer = errorStyle.Render(m.err.Error())
	} else if m.status != "" {
		footer = successStyle.Render(m.status) + "  " + footer
	}
	return header + "\n" + m.table.View() + "\n" + footer
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
