package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
)

// signInForm holds the sign in and sign up form state. Sign up adds a confirmation field.
type signInForm struct {
	register   bool
	remember   bool
	inputs     []textinput.Model
	focused    int
	err        string
	notice     string
	submitting bool
}

func newSignInForm() signInForm {
	email := textinput.New()
	email.Placeholder = "Enter your email"
	email.CharLimit = 256

	password := textinput.New()
	password.Placeholder = "Enter your TMDb API key"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 256

	confirm := textinput.New()
	confirm.Placeholder = "Confirm your TMDb API key"
	confirm.EchoMode = textinput.EchoPassword
	confirm.CharLimit = 256

	return signInForm{inputs: []textinput.Model{email, password, confirm}}
}

func (f *signInForm) fields() int {
	if f.register {
		return 3
	}
	return 2
}

func (f *signInForm) focus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focused].Focus()
}

func (f *signInForm) move(delta int) tea.Cmd {
	n := f.fields()
	f.focused = (f.focused + delta + n) % n
	return f.focus()
}

func (f *signInForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f *signInForm) value(field int) string {
	return f.inputs[field].Value()
}

// switchMode flips between sign in and sign up, keeping the email.
func (f *signInForm) switchMode() tea.Cmd {
	f.register = !f.register
	f.err = ""
	f.notice = ""
	f.inputs[fieldPassword].Reset()
	f.inputs[fieldConfirm].Reset()
	f.focused = fieldEmail
	return f.focus()
}

func (m *Model) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := &m.signIn

	switch {
	case key.Matches(msg, m.keys.mode):
		return m, form.switchMode()
	case key.Matches(msg, m.keys.remember):
		form.remember = !form.remember
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.submitSignIn()
	}

	switch msg.String() {
	case "tab", "down":
		return m, form.move(1)
	case "shift+tab", "up":
		return m, form.move(-1)
	case "esc":
		form.err = ""
		form.notice = ""
		return m, nil
	}

	return m, form.update(msg)
}

// submitSignIn validates the form and runs the login or registration in a command.
func (m *Model) submitSignIn() tea.Cmd {
	form := &m.signIn
	if form.submitting {
		return nil
	}

	email := strings.TrimSpace(form.value(fieldEmail))
	password := form.value(fieldPassword)
	form.err = ""
	form.notice = ""

	if form.register {
		if password != form.value(fieldConfirm) {
			form.err = shared.ErrPasswordMismatch.Error()
			return nil
		}
		form.submitting = true
		return func() tea.Msg {
			user, err := m.auth.Register(m.ctx, email, password)
			return registeredMsg(user, err)
		}
	}

	remember := form.remember
	form.submitting = true
	return func() tea.Msg {
		user, err := m.auth.Login(email, password, remember)
		return signedInMsg(user, err)
	}
}

func (m *Model) onRegistered(msg Msg) (tea.Model, tea.Cmd) {
	form := &m.signIn
	form.submitting = false
	if msg.err != nil {
		form.err = msg.err.Error()
		return m, nil
	}

	user := msg.data.(*models.User)
	cmd := form.switchMode()
	form.inputs[fieldEmail].SetValue(user.ID)
	form.notice = "Sign up complete. Sign in with your new account."
	return m, cmd
}

func (m *Model) onSignedIn(msg Msg) (tea.Model, tea.Cmd) {
	m.signIn.submitting = false
	if msg.err != nil {
		m.signIn.err = shared.ErrLoginFailed.Error()
		m.signIn.inputs[fieldPassword].Reset()
		return m, nil
	}

	m.signIn = newSignInForm()
	m.status = ""
	return m, m.enter(HomeView)
}

func (m *Model) renderSignIn() string {
	form := &m.signIn

	var b strings.Builder
	if form.register {
		b.WriteString(styles.title.Render("Sign Up"))
	} else {
		b.WriteString(styles.title.Render("Sign In"))
	}
	b.WriteString("\n")

	labels := []string{"Email", "Password (TMDb API Key)", "Confirm Password"}
	for i := 0; i < form.fields(); i++ {
		fmt.Fprintf(&b, "%s\n%s\n\n", labels[i], form.inputs[i].View())
	}

	if !form.register {
		check := "[ ]"
		if form.remember {
			check = "[x]"
		}
		fmt.Fprintf(&b, "%s Remember me\n\n", check)
	}

	if form.submitting {
		b.WriteString(styles.help.Render("Checking credentials..."))
		b.WriteString("\n\n")
	}
	if form.err != "" {
		b.WriteString(styles.err.Render(form.err))
		b.WriteString("\n\n")
	}
	if form.notice != "" {
		b.WriteString(styles.ok.Render(form.notice))
		b.WriteString("\n\n")
	}

	if form.register {
		b.WriteString(styles.help.Render("Already have an account? Press ctrl+t to sign in."))
	} else {
		b.WriteString(styles.help.Render("Don't have an account? Press ctrl+t to sign up."))
	}
	b.WriteString("\n\n")

	quit := key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	bindings := []key.Binding{m.keys.enter, m.keys.tab}
	if !form.register {
		bindings = append(bindings, m.keys.remember)
	}
	b.WriteString(m.renderHelp(append(bindings, quit)...))
	return b.String()
}
