package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loopline-app/loopline-admin/sdk/admin"
)

type view int

const (
	viewLogin view = iota
	viewTabs
)

type tabID int

const (
	tabDashboard tabID = iota
	tabUsers
	tabPosts
	tabBusinesses
	tabReports
)

var tabNames = []string{"Dashboard", "Users", "Posts", "Businesses", "Reports"}

type loginResultMsg struct {
	profile *admin.AdminProfile
	err     error
}

type sessionCheckMsg struct {
	profile *admin.AdminProfile
	err     error
}

// AppModel is the root console model. It gates the tab views behind a login
// form and drops back to it whenever the stored session expires.
type AppModel struct {
	client *admin.Client

	view      view
	activeTab tabID
	profile   *admin.AdminProfile
	loginErr  string
	width     int
	height    int

	emailInput    textinput.Model
	passwordInput textinput.Model
	focusPassword bool

	dashboard  dashboardModel
	users      usersTabModel
	posts      postsTabModel
	businesses businessesTabModel
	reports    reportsTabModel
}

// NewApp builds the console around an SDK client. A stored credential pair is
// probed first so a restart does not force a fresh login.
func NewApp(client *admin.Client) AppModel {
	email := textinput.New()
	email.Placeholder = "admin@example.com"
	email.CharLimit = 120
	email.Width = 36
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.Width = 36
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return AppModel{
		client:        client,
		view:          viewLogin,
		emailInput:    email,
		passwordInput: password,
		dashboard:     newDashboardModel(client),
		users:         newUsersTabModel(client),
		posts:         newPostsTabModel(client),
		businesses:    newBusinessesTabModel(client),
		reports:       newReportsTabModel(client),
	}
}

func (m AppModel) Init() tea.Cmd {
	client := m.client
	return tea.Batch(textinput.Blink, func() tea.Msg {
		profile, err := client.Me(context.Background())
		return sessionCheckMsg{profile: profile, err: err}
	})
}

func (m AppModel) loginCmd() tea.Cmd {
	client := m.client
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passwordInput.Value()
	return func() tea.Msg {
		profile, err := client.Login(context.Background(), email, password)
		return loginResultMsg{profile: profile, err: err}
	}
}

func (m AppModel) enterTabs() (AppModel, tea.Cmd) {
	m.view = viewTabs
	m.activeTab = tabDashboard
	m.loginErr = ""
	m.passwordInput.SetValue("")
	return m, tea.Batch(
		m.dashboard.Init(),
		m.users.Init(),
		m.posts.Init(),
		m.businesses.Init(),
		m.reports.Init(),
	)
}

func (m AppModel) backToLogin(reason string) (AppModel, tea.Cmd) {
	m.view = viewLogin
	m.profile = nil
	m.loginErr = reason
	m.focusPassword = false
	m.passwordInput.SetValue("")
	m.passwordInput.Blur()
	return m, m.emailInput.Focus()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		content := msg.Height - 2
		m.dashboard.SetSize(msg.Width, content)
		m.users.SetSize(msg.Width, content)
		m.posts.SetSize(msg.Width, content)
		m.businesses.SetSize(msg.Width, content)
		m.reports.SetSize(msg.Width, content)
		return m, nil

	case sessionCheckMsg:
		if msg.err == nil && msg.profile != nil {
			m.profile = msg.profile
			return m.enterTabs()
		}
		return m, nil

	case loginResultMsg:
		if msg.err != nil {
			m.loginErr = msg.err.Error()
			return m, nil
		}
		m.profile = msg.profile
		return m.enterTabs()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if m.view == viewLogin {
		return m.updateLogin(msg)
	}
	return m.updateTabs(msg)
}

func (m AppModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.focusPassword = !m.focusPassword
			if m.focusPassword {
				m.emailInput.Blur()
				return m, m.passwordInput.Focus()
			}
			m.passwordInput.Blur()
			return m, m.emailInput.Focus()
		case "enter":
			if !m.focusPassword {
				m.focusPassword = true
				m.emailInput.Blur()
				return m, m.passwordInput.Focus()
			}
			m.loginErr = ""
			return m, m.loginCmd()
		}
	}

	var cmd tea.Cmd
	if m.focusPassword {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	} else {
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	return m, cmd
}

func (m AppModel) updateTabs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc":
			return m, tea.Quit
		case "ctrl+l":
			client := m.client
			return m, func() tea.Msg {
				err := client.Logout(context.Background())
				return sessionExpiredMsg{reason: "logged out", err: err}
			}
		case "tab", "right":
			m.activeTab = (m.activeTab + 1) % tabID(len(tabNames))
			return m, nil
		case "shift+tab", "left":
			m.activeTab = (m.activeTab + tabID(len(tabNames)) - 1) % tabID(len(tabNames))
			return m, nil
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(key.String()[0] - '1')
			return m, nil
		}
	}

	if expired := expiredFromMsg(msg); expired != "" {
		return m.backToLogin(expired)
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case tabUsers:
		m.users, cmd = m.users.Update(msg)
	case tabPosts:
		m.posts, cmd = m.posts.Update(msg)
	case tabBusinesses:
		m.businesses, cmd = m.businesses.Update(msg)
	case tabReports:
		m.reports, cmd = m.reports.Update(msg)
	}
	return m, cmd
}

type sessionExpiredMsg struct {
	reason string
	err    error
}

// expiredFromMsg inspects tab result messages for a dead session so the root
// model can fall back to the login form instead of rendering a stale error.
func expiredFromMsg(msg tea.Msg) string {
	var err error
	switch msg := msg.(type) {
	case sessionExpiredMsg:
		return msg.reason
	case dashboardMsg:
		err = msg.err
	case usersLoadedMsg:
		err = msg.err
	case userActionMsg:
		err = msg.err
	case postsLoadedMsg:
		err = msg.err
	case postActionMsg:
		err = msg.err
	case businessesLoadedMsg:
		err = msg.err
	case businessActionMsg:
		err = msg.err
	case reportsLoadedMsg:
		err = msg.err
	case reportActionMsg:
		err = msg.err
	}
	if err != nil && errors.Is(err, admin.ErrSessionExpired) {
		return "session expired, sign in again"
	}
	return ""
}

func (m AppModel) View() string {
	if m.view == viewLogin {
		return m.loginView()
	}
	return m.tabsView()
}

func (m AppModel) loginView() string {
	lines := []string{
		titleStyle.Render("Loopline Admin Console"),
		labelStyle.Render("Email") + m.emailInput.View(),
		labelStyle.Render("Password") + m.passwordInput.View(),
		"",
		statusBarStyle.Render("enter submit · tab switch field · esc quit"),
	}
	if m.loginErr != "" {
		lines = append(lines, errorStyle.Render(m.loginErr))
	}
	form := sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}

func (m AppModel) tabsView() string {
	tabs := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if tabID(i) == m.activeTab {
			tabs = append(tabs, tabActiveStyle.Render(name))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(name))
		}
	}
	bar := tabBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	var body string
	switch m.activeTab {
	case tabDashboard:
		body = m.dashboard.View()
	case tabUsers:
		body = m.users.View()
	case tabPosts:
		body = m.posts.View()
	case tabBusinesses:
		body = m.businesses.View()
	case tabReports:
		body = m.reports.View()
	}

	who := ""
	if m.profile != nil {
		who = statusBarStyle.Render("signed in as " + m.profile.Email + " · ctrl+l logout · q quit")
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, body, who)
}
