package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrodrigc/campuseats-client/models"
)

type loginModel struct {
	ctx    context.Context
	engine Engine

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string

	done       bool
	quitByUser bool
}

func newLoginModel(ctx context.Context, engine Engine) loginModel {
	email := textinput.New()
	email.Placeholder = "correo@universidad.edu"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "contraseña"
	password.EchoMode = textinput.EchoPassword

	return loginModel{
		ctx:    ctx,
		engine: engine,
		inputs: []textinput.Model{email, password},
	}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.abort):
			m.quitByUser = true
			return m, tea.Quit
		case key.Matches(msg, keys.tab):
			m.nextFocus()
			return m, nil
		case key.Matches(msg, keys.enter):
			if m.focus < len(m.inputs)-1 {
				m.nextFocus()
				return m, nil
			}
			if m.submitting {
				return m, nil
			}
			m.submitting = true
			m.errMsg = ""
			return m, m.cmdLogin()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *loginModel) nextFocus() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m loginModel) cmdLogin() tea.Cmd {
	creds := models.Credentials{
		Email:    strings.TrimSpace(m.inputs[0].Value()),
		Password: m.inputs[1].Value(),
	}
	return func() tea.Msg {
		session, err := m.engine.Login(m.ctx, creds)
		return loginResultMsg{session: session, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("Correo:\n")
	b.WriteString(m.inputs[0].View())
	b.WriteString("\n\nContraseña:\n")
	b.WriteString(m.inputs[1].View())
	if m.submitting {
		b.WriteString("\n\nIniciando sesión...")
	}
	if m.errMsg != "" {
		b.WriteString("\n\nError: " + m.errMsg)
	}
	return renderPage("CampusEats · Iniciar sesión", b.String(), "tab siguiente  enter entrar  esc salir")
}
