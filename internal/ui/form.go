package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/outside/internal/models"
)

type formField struct {
	label    string
	password bool
}

var (
	loginFields = []formField{
		{label: "Username"},
		{label: "Password", password: true},
	}
	signupFields = []formField{
		{label: "Username"},
		{label: "Email"},
		{label: "Full name"},
		{label: "Password", password: true},
		{label: "Confirm password", password: true},
	}
)

// authForm is the login or signup form. Only the focused input receives key messages.
type authForm struct {
	signup bool
	fields []formField
	inputs []textinput.Model
	focus  int
}

func newAuthForm(signup bool) authForm {
	fields := loginFields
	if signup {
		fields = signupFields
	}

	f := authForm{signup: signup, fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, field := range fields {
		in := textinput.New()
		in.Placeholder = field.label
		in.Prompt = ""
		in.CharLimit = 150
		if field.password {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func (f *authForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *authForm) next() { f.setFocus(f.focus + 1) }
func (f *authForm) prev() { f.setFocus(f.focus - 1) }

func (f authForm) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f authForm) value(i int) string {
	return f.inputs[i].Value()
}

// credentials returns the login username and password.
func (f authForm) credentials() (string, string) {
	return f.value(0), f.value(1)
}

// registration returns the signup form values.
func (f authForm) registration() models.Registration {
	return models.Registration{
		Username:  f.value(0),
		Email:     f.value(1),
		FullName:  f.value(2),
		Password:  f.value(3),
		Password2: f.value(4),
	}
}

func (f authForm) view() string {
	var b strings.Builder
	for i, field := range f.fields {
		label := field.label
		if i == f.focus {
			label = styles.ok.Render("› " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n  " + f.inputs[i].View() + "\n\n")
	}
	return b.String()
}
